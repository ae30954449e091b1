package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/casavia/dealerdesk-backend/api/controllers"
	"github.com/casavia/dealerdesk-backend/api/middleware"
	"github.com/casavia/dealerdesk-backend/internal/inventory"
	"github.com/casavia/dealerdesk-backend/internal/leads"
	"github.com/casavia/dealerdesk-backend/internal/settings"
	"github.com/casavia/dealerdesk-backend/internal/staff"
	syncsvc "github.com/casavia/dealerdesk-backend/internal/sync"
	"github.com/casavia/dealerdesk-backend/internal/vendors"
	"github.com/casavia/dealerdesk-backend/pkg/config"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	Pingers   map[string]controllers.Pinger
	Inventory inventory.Service
	Vendors   vendors.Service
	Sync      syncsvc.Service
	Leads     leads.Service
	Staff     staff.Service
	Settings  settings.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Pingers))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/vehicles", controllers.PublicVehicles(params.Inventory, logg))
		r.Post("/leads", controllers.PublicCreateLead(params.Leads, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.ListVehicles(params.Inventory, logg))
			r.Post("/", controllers.CreateVehicle(params.Inventory, logg))
			r.Get("/{vehicleId}", controllers.GetVehicle(params.Inventory, logg))
			r.Patch("/{vehicleId}", controllers.UpdateVehicle(params.Inventory, logg))
			r.Delete("/{vehicleId}", controllers.DeleteVehicle(params.Inventory, logg))
			r.Post("/{vehicleId}/sold", controllers.MarkVehicleSold(params.Inventory, logg))
		})

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", controllers.ListVendors(params.Vendors, logg))
			r.Post("/", controllers.CreateVendor(params.Vendors, logg))
			r.Get("/{vendorId}", controllers.GetVendor(params.Vendors, logg))
			r.Patch("/{vendorId}", controllers.UpdateVendor(params.Vendors, logg))
			r.Delete("/{vendorId}", controllers.DeleteVendor(params.Vendors, logg))
			r.Post("/{vendorId}/sync", controllers.TriggerVendorSync(params.Sync, logg))
			r.Get("/{vendorId}/sync-logs", controllers.VendorSyncLogs(params.Sync, logg))
		})

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", controllers.LeadsBoard(params.Leads, logg))
			r.Patch("/{leadId}", controllers.UpdateLead(params.Leads, logg))
			r.Delete("/{leadId}", controllers.DeleteLead(params.Leads, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsList(params.Settings, logg))
			r.Get("/{key}", controllers.SettingsGet(params.Settings, logg))
			r.Put("/{key}", controllers.SettingsPut(params.Settings, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.StaffRoleAdmin), logg))
			r.Get("/", controllers.StaffList(params.Staff, logg))
			r.Post("/", controllers.StaffInvite(params.Staff, logg))
			r.Patch("/{staffId}", controllers.StaffUpdateRole(params.Staff, logg))
			r.Delete("/{staffId}", controllers.StaffDeactivate(params.Staff, logg))
		})
	})

	return r
}
