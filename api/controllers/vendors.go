package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/casavia/dealerdesk-backend/api/responses"
	"github.com/casavia/dealerdesk-backend/api/validators"
	syncsvc "github.com/casavia/dealerdesk-backend/internal/sync"
	"github.com/casavia/dealerdesk-backend/internal/vendors"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

const maxSyncLogLimit = 50

// ListVendors serves all registered vendors.
func ListVendors(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetVendor serves one vendor by id.
func GetVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendor, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

type createVendorRequest struct {
	Name               string  `json:"name" validate:"required"`
	Slug               string  `json:"slug,omitempty"`
	ListingURL         string  `json:"listing_url" validate:"required,url"`
	Enabled            *bool   `json:"enabled,omitempty"`
	DefaultMarkupType  string  `json:"default_markup_type,omitempty"`
	DefaultMarkupValue float64 `json:"default_markup_value,omitempty"`
	ScrapeDelayMS      int     `json:"scrape_delay_ms,omitempty" validate:"omitempty,min=0"`
	MaxPages           int     `json:"max_pages,omitempty" validate:"omitempty,min=1,max=50"`
}

func (p createVendorRequest) toInput() (vendors.CreateVendorInput, error) {
	input := vendors.CreateVendorInput{
		Name:               strings.TrimSpace(p.Name),
		Slug:               strings.TrimSpace(p.Slug),
		ListingURL:         strings.TrimSpace(p.ListingURL),
		Enabled:            p.Enabled == nil || *p.Enabled,
		DefaultMarkupValue: p.DefaultMarkupValue,
		ScrapeDelayMS:      p.ScrapeDelayMS,
		MaxPages:           p.MaxPages,
	}
	if p.DefaultMarkupType != "" {
		markup, err := enums.ParseMarkupType(p.DefaultMarkupType)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default_markup_type")
		}
		input.DefaultMarkupType = markup
	}
	return input, nil
}

// CreateVendor registers a new sync source.
func CreateVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendor, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vendor)
	}
}

type updateVendorRequest struct {
	Name               *string  `json:"name,omitempty"`
	ListingURL         *string  `json:"listing_url,omitempty" validate:"omitempty,url"`
	Enabled            *bool    `json:"enabled,omitempty"`
	DefaultMarkupType  *string  `json:"default_markup_type,omitempty"`
	DefaultMarkupValue *float64 `json:"default_markup_value,omitempty"`
	ScrapeDelayMS      *int     `json:"scrape_delay_ms,omitempty" validate:"omitempty,min=0"`
	MaxPages           *int     `json:"max_pages,omitempty" validate:"omitempty,min=1,max=50"`
}

func (p updateVendorRequest) toInput() (vendors.UpdateVendorInput, error) {
	input := vendors.UpdateVendorInput{
		Name:               p.Name,
		ListingURL:         p.ListingURL,
		Enabled:            p.Enabled,
		DefaultMarkupValue: p.DefaultMarkupValue,
		ScrapeDelayMS:      p.ScrapeDelayMS,
		MaxPages:           p.MaxPages,
	}
	if p.DefaultMarkupType != nil {
		markup, err := enums.ParseMarkupType(*p.DefaultMarkupType)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default_markup_type")
		}
		input.DefaultMarkupType = &markup
	}
	return input, nil
}

// UpdateVendor applies a partial update to a vendor.
func UpdateVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendor, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

// DeleteVendor removes a vendor.
func DeleteVendor(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type syncRunResponse struct {
	Success        bool         `json:"success"`
	Count          int          `json:"count"`
	Stats          syncRunStats `json:"stats"`
	ImagesUploaded bool         `json:"images_uploaded"`
	Duration       string       `json:"duration"`
	Errors         []string     `json:"errors,omitempty"`
}

type syncRunStats struct {
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Unlisted  int `json:"unlisted"`
	Total     int `json:"total"`
}

// TriggerVendorSync runs the sync pipeline for one vendor synchronously.
func TriggerVendorSync(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.RunVendor(r.Context(), id)
		if err != nil && (summary == nil || summary.Status == enums.SyncRunStatusFailed) {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Partial runs still report success; the stats and errors carry the
		// breakdown.
		responses.WriteSuccess(w, syncRunResponse{
			Success: summary.Status != enums.SyncRunStatusFailed,
			Count:   summary.VehiclesFound,
			Stats: syncRunStats{
				New:       summary.New,
				Updated:   summary.Updated,
				Unchanged: summary.Unchanged,
				Unlisted:  summary.Unlisted,
				Total:     summary.VehiclesFound,
			},
			ImagesUploaded: summary.ImagesUploaded,
			Duration:       summary.Duration.Round(time.Millisecond).String(),
			Errors:         summary.Errors,
		})
	}
}

// VendorSyncLogs serves the vendor's recent sync run history.
func VendorSyncLogs(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "vendorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, maxSyncLogLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logs, err := svc.ListLogs(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, logs)
	}
}
