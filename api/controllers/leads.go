package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/api/responses"
	"github.com/casavia/dealerdesk-backend/api/validators"
	"github.com/casavia/dealerdesk-backend/internal/leads"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/logger"
)

// LeadsBoard serves the lead pipeline grouped by column.
func LeadsBoard(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := svc.Board(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, board)
	}
}

type updateLeadRequest struct {
	Status     *string `json:"status,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	Unassign   bool    `json:"unassign,omitempty"`
	Position   *int    `json:"position,omitempty" validate:"omitempty,min=1"`
}

func (p updateLeadRequest) toInput() (leads.UpdateLeadInput, error) {
	input := leads.UpdateLeadInput{
		Unassign: p.Unassign,
		Position: p.Position,
	}
	if p.Status != nil {
		status, err := enums.ParseLeadStatus(*p.Status)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	if p.AssignedTo != nil {
		id, err := uuid.Parse(*p.AssignedTo)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assigned_to")
		}
		input.AssignedTo = &id
	}
	return input, nil
}

// UpdateLead moves, reorders or assigns a lead card.
func UpdateLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateLeadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lead, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lead)
	}
}

// DeleteLead removes a lead card.
func DeleteLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "leadId")
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
