package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/api/responses"
	"github.com/casavia/dealerdesk-backend/api/validators"
	"github.com/casavia/dealerdesk-backend/internal/inventory"
	"github.com/casavia/dealerdesk-backend/internal/leads"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
	"github.com/casavia/dealerdesk-backend/pkg/pagination"
)

// PublicVehicles serves published, unsold listings to the storefront.
func PublicVehicles(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListPublished(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"vehicles":    result.Vehicles,
			"next_cursor": result.NextCursor,
		})
	}
}

type publicLeadRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string  `json:"phone,omitempty"`
	Message   *string `json:"message,omitempty"`
	VehicleID *string `json:"vehicle_id,omitempty"`
}

// PublicCreateLead receives the storefront contact form.
func PublicCreateLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload publicLeadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := leads.CreateLeadInput{
			CustomerName:  validators.SanitizeString(payload.Name, 120),
			CustomerEmail: validators.SanitizeString(payload.Email, 254),
			CustomerPhone: validators.SanitizeString(payload.Phone, 30),
			Message:       payload.Message,
		}
		if payload.VehicleID != nil {
			id, err := uuid.Parse(*payload.VehicleID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle_id"))
				return
			}
			input.VehicleID = &id
		}

		lead, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lead)
	}
}
