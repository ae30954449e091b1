package staff

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
)

// Service exposes staff management. All operations are admin-gated at the
// route layer.
type Service interface {
	List(ctx context.Context) ([]models.User, error)
	Invite(ctx context.Context, input InviteStaffInput) (*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.StaffRole) (*models.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// InviteStaffInput holds the validated payload to add a staff member.
type InviteStaffInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      enums.StaffRole
}

type staffRepo interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type service struct {
	repo staffRepo
}

// NewService wires the staff service.
func NewService(repo staffRepo) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing staff")
	}
	return users, nil
}

func (s *service) Invite(ctx context.Context, input InviteStaffInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	role := input.Role
	if role == "" {
		role = enums.StaffRoleSales
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}

	user := &models.User{
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Role:      role,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a staff member with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating staff member")
	}
	return user, nil
}

func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, role enums.StaffRole) (*models.User, error) {
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStaffLookupError(err)
	}
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating staff role")
	}
	return user, nil
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStaffLookupError(err)
	}
	user.IsActive = false
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivating staff member")
	}
	return user, nil
}

func mapStaffLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "staff member not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading staff member")
}
