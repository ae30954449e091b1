package leads

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
)

// Board groups leads by pipeline column for the kanban view.
type Board struct {
	Columns map[enums.LeadStatus][]models.Lead `json:"columns"`
}

// Service exposes lead pipeline operations.
type Service interface {
	Board(ctx context.Context) (*Board, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateLeadInput) (*models.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateLeadInput is the public contact-form payload.
type CreateLeadInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Message       *string
	VehicleID     *uuid.UUID
}

// UpdateLeadInput holds optional mutation values for a lead card.
type UpdateLeadInput struct {
	Status     *enums.LeadStatus
	AssignedTo *uuid.UUID
	Unassign   bool
	Position   *int
}

type leadRepo interface {
	Create(ctx context.Context, lead *models.Lead) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	List(ctx context.Context) ([]models.Lead, error)
	MaxPosition(ctx context.Context, status enums.LeadStatus) (int, error)
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo leadRepo
}

// NewService wires the lead service.
func NewService(repo leadRepo) Service {
	return &service{repo: repo}
}

func (s *service) Board(ctx context.Context) (*Board, error) {
	leads, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing leads")
	}
	board := &Board{Columns: make(map[enums.LeadStatus][]models.Lead)}
	for _, lead := range leads {
		board.Columns[lead.Status] = append(board.Columns[lead.Status], lead)
	}
	return board, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLeadLookupError(err)
	}
	return lead, nil
}

func (s *service) Create(ctx context.Context, input CreateLeadInput) (*models.Lead, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" && strings.TrimSpace(input.CustomerPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "an email or phone number is required")
	}

	position, err := s.repo.MaxPosition(ctx, enums.LeadStatusNew)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "computing lead position")
	}

	lead := &models.Lead{
		CustomerName:  name,
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		CustomerPhone: strings.TrimSpace(input.CustomerPhone),
		Message:       input.Message,
		VehicleID:     input.VehicleID,
		Status:        enums.LeadStatusNew,
		Position:      position + 1,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating lead")
	}
	return lead, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateLeadInput) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLeadLookupError(err)
	}

	if input.Status != nil && *input.Status != lead.Status {
		if err := validateTransition(lead.Status, *input.Status); err != nil {
			return nil, err
		}
		lead.Status = *input.Status
		if input.Position == nil {
			// Moving columns without an explicit slot appends to the target.
			max, err := s.repo.MaxPosition(ctx, *input.Status)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "computing lead position")
			}
			lead.Position = max + 1
		}
	}
	if input.Position != nil {
		if *input.Position < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "position cannot be negative")
		}
		lead.Position = *input.Position
	}
	if input.Unassign {
		lead.AssignedTo = nil
	} else if input.AssignedTo != nil {
		lead.AssignedTo = input.AssignedTo
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating lead")
	}
	return lead, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapLeadLookupError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting lead")
	}
	return nil
}

// validateTransition enforces pipeline rules: terminal leads are frozen, and
// a won/lost decision can only come from an active column.
func validateTransition(from, to enums.LeadStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid lead status")
	}
	if from.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeConflict, "a won or lost lead cannot move")
	}
	return nil
}

func mapLeadLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading lead")
}
