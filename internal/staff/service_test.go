package staff

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
)

type fakeStaffRepo struct {
	byID      map[uuid.UUID]*models.User
	createErr error
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{byID: make(map[uuid.UUID]*models.User)}
}

func (f *fakeStaffRepo) Create(_ context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = uuid.New()
	f.byID[user.ID] = user
	return nil
}

func (f *fakeStaffRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStaffRepo) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range f.byID {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeStaffRepo) Update(_ context.Context, user *models.User) error {
	f.byID[user.ID] = user
	return nil
}

func TestInviteDefaultsToSalesRole(t *testing.T) {
	svc := NewService(newFakeStaffRepo())

	user, err := svc.Invite(context.Background(), InviteStaffInput{
		Email:     " Pat.Leduc@Example.com ",
		FirstName: "Pat",
		LastName:  "Leduc",
	})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	if user.Email != "pat.leduc@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", user.Email)
	}
	if user.Role != enums.StaffRoleSales {
		t.Errorf("Role = %s, want sales default", user.Role)
	}
	if !user.IsActive {
		t.Error("new staff member must start active")
	}
}

func TestInviteRejectsBadEmail(t *testing.T) {
	svc := NewService(newFakeStaffRepo())

	_, err := svc.Invite(context.Background(), InviteStaffInput{
		Email:     "not-an-email",
		FirstName: "Pat",
		LastName:  "Leduc",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInviteDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeStaffRepo()
	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`)
	svc := NewService(repo)

	_, err := svc.Invite(context.Background(), InviteStaffInput{
		Email:     "pat@example.com",
		FirstName: "Pat",
		LastName:  "Leduc",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestUpdateRoleAndDeactivate(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := NewService(repo)
	user, err := svc.Invite(context.Background(), InviteStaffInput{
		Email:     "pat@example.com",
		FirstName: "Pat",
		LastName:  "Leduc",
		Role:      enums.StaffRoleSales,
	})
	if err != nil {
		t.Fatalf("Invite returned error: %v", err)
	}

	promoted, err := svc.UpdateRole(context.Background(), user.ID, enums.StaffRoleManager)
	if err != nil {
		t.Fatalf("UpdateRole returned error: %v", err)
	}
	if promoted.Role != enums.StaffRoleManager {
		t.Errorf("Role = %s, want manager", promoted.Role)
	}

	deactivated, err := svc.Deactivate(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if deactivated.IsActive {
		t.Error("Deactivate left the account active")
	}
}

func TestUpdateRoleUnknownStaff(t *testing.T) {
	svc := NewService(newFakeStaffRepo())

	_, err := svc.UpdateRole(context.Background(), uuid.New(), enums.StaffRoleAdmin)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
