package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/api/controllers"
	"github.com/casavia/dealerdesk-backend/internal/inventory"
	"github.com/casavia/dealerdesk-backend/internal/leads"
	"github.com/casavia/dealerdesk-backend/internal/staff"
	syncsvc "github.com/casavia/dealerdesk-backend/internal/sync"
	"github.com/casavia/dealerdesk-backend/internal/vendors"
	pkgauth "github.com/casavia/dealerdesk-backend/pkg/auth"
	"github.com/casavia/dealerdesk-backend/pkg/config"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
	"github.com/casavia/dealerdesk-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubInventory struct{}

func (stubInventory) List(context.Context, inventory.ListFilter, pagination.Params) (*inventory.VehicleListResult, error) {
	return &inventory.VehicleListResult{}, nil
}

func (stubInventory) ListPublished(context.Context, pagination.Params) (*inventory.VehicleListResult, error) {
	return &inventory.VehicleListResult{Vehicles: []models.Vehicle{{Make: "Honda", Model: "Civic"}}}, nil
}

func (stubInventory) Get(context.Context, uuid.UUID) (*models.Vehicle, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
}

func (stubInventory) Create(context.Context, inventory.CreateVehicleInput) (*models.Vehicle, error) {
	return &models.Vehicle{}, nil
}

func (stubInventory) Update(context.Context, uuid.UUID, inventory.UpdateVehicleInput) (*models.Vehicle, error) {
	return &models.Vehicle{}, nil
}

func (stubInventory) MarkSold(context.Context, uuid.UUID) (*models.Vehicle, error) {
	return &models.Vehicle{}, nil
}

func (stubInventory) Delete(context.Context, uuid.UUID) error { return nil }

type stubVendors struct{}

func (stubVendors) List(context.Context) ([]models.Vendor, error)        { return nil, nil }
func (stubVendors) ListEnabled(context.Context) ([]models.Vendor, error) { return nil, nil }

func (stubVendors) Get(context.Context, uuid.UUID) (*models.Vendor, error) {
	return &models.Vendor{}, nil
}

func (stubVendors) GetBySlug(context.Context, string) (*models.Vendor, error) {
	return &models.Vendor{}, nil
}

func (stubVendors) Create(context.Context, vendors.CreateVendorInput) (*models.Vendor, error) {
	return &models.Vendor{}, nil
}

func (stubVendors) Update(context.Context, uuid.UUID, vendors.UpdateVendorInput) (*models.Vendor, error) {
	return &models.Vendor{}, nil
}

func (stubVendors) Delete(context.Context, uuid.UUID) error { return nil }

type stubSync struct{}

func (stubSync) RunVendor(context.Context, uuid.UUID) (*syncsvc.RunSummary, error) {
	return &syncsvc.RunSummary{
		Status:        enums.SyncRunStatusSuccess,
		VehiclesFound: 12,
		New:           2,
		Updated:       3,
		Unchanged:     6,
		Unlisted:      1,
		Duration:      1500 * time.Millisecond,
	}, nil
}

func (stubSync) ListLogs(context.Context, uuid.UUID, int) ([]models.VendorSyncLog, error) {
	return nil, nil
}

type stubLeads struct{}

func (stubLeads) Board(context.Context) (*leads.Board, error) { return &leads.Board{}, nil }

func (stubLeads) Get(context.Context, uuid.UUID) (*models.Lead, error) {
	return &models.Lead{}, nil
}

func (stubLeads) Create(context.Context, leads.CreateLeadInput) (*models.Lead, error) {
	return &models.Lead{}, nil
}

func (stubLeads) Update(context.Context, uuid.UUID, leads.UpdateLeadInput) (*models.Lead, error) {
	return &models.Lead{}, nil
}

func (stubLeads) Delete(context.Context, uuid.UUID) error { return nil }

type stubStaff struct{}

func (stubStaff) List(context.Context) ([]models.User, error) { return nil, nil }

func (stubStaff) Invite(context.Context, staff.InviteStaffInput) (*models.User, error) {
	return &models.User{}, nil
}

func (stubStaff) UpdateRole(context.Context, uuid.UUID, enums.StaffRole) (*models.User, error) {
	return &models.User{}, nil
}

func (stubStaff) Deactivate(context.Context, uuid.UUID) (*models.User, error) {
	return &models.User{}, nil
}

type stubSettings struct{}

func (stubSettings) List(context.Context) ([]models.SiteSetting, error) { return nil, nil }

func (stubSettings) Get(context.Context, string) (*models.SiteSetting, error) {
	return &models.SiteSetting{}, nil
}

func (stubSettings) Put(context.Context, string, string) (*models.SiteSetting, error) {
	return &models.SiteSetting{}, nil
}

func (stubSettings) IsEnabled(context.Context, string) bool { return false }

var routerJWT = config.JWTConfig{
	Secret:            "router-test-secret",
	Issuer:            "dealerdesk-test",
	ExpirationMinutes: 15,
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = routerJWT
	return NewRouter(RouterParams{
		Config:    cfg,
		Logger:    logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
		Pingers:   map[string]controllers.Pinger{"db": stubPinger{}, "redis": stubPinger{}},
		Inventory: stubInventory{},
		Vendors:   stubVendors{},
		Sync:      stubSync{},
		Leads:     stubLeads{},
		Staff:     stubStaff{},
		Settings:  stubSettings{},
	})
}

func mintToken(t *testing.T, role enums.StaffRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(routerJWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthAndPublicRoutesNeedNoAuth(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/api/public/vehicles"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, w.Code)
		}
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestStaffRoutesRequireAdminRole(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleSales))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("sales role must get 403, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/staff", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleAdmin))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("admin role must get 200, got %d", w.Code)
	}
}

func TestTriggerVendorSyncResponseShape(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors/"+uuid.NewString()+"/sync", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.StaffRoleManager))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope struct {
		Data struct {
			Success bool `json:"success"`
			Count   int  `json:"count"`
			Stats   struct {
				New       int `json:"new"`
				Updated   int `json:"updated"`
				Unchanged int `json:"unchanged"`
				Unlisted  int `json:"unlisted"`
				Total     int `json:"total"`
			} `json:"stats"`
			Duration string `json:"duration"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Success || envelope.Data.Count != 12 {
		t.Errorf("unexpected summary: %+v", envelope.Data)
	}
	if envelope.Data.Stats.New != 2 || envelope.Data.Stats.Total != 12 {
		t.Errorf("unexpected stats: %+v", envelope.Data.Stats)
	}
	if envelope.Data.Duration != "1.5s" {
		t.Errorf("duration = %q", envelope.Data.Duration)
	}
}

func TestPublicLeadValidation(t *testing.T) {
	router := newTestRouter(t)

	body := strings.NewReader(`{"email":"someone@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/public/leads", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing name must get 400, got %d", w.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
