package vendors

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

type fakeVendorRepo struct {
	byID      map[uuid.UUID]*models.Vendor
	created   []*models.Vendor
	createErr error
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{byID: make(map[uuid.UUID]*models.Vendor)}
}

func (f *fakeVendorRepo) Create(_ context.Context, vendor *models.Vendor) error {
	if f.createErr != nil {
		return f.createErr
	}
	vendor.ID = uuid.New()
	f.byID[vendor.ID] = vendor
	f.created = append(f.created, vendor)
	return nil
}

func (f *fakeVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *vendor
	return &copied, nil
}

func (f *fakeVendorRepo) FindBySlug(_ context.Context, slug string) (*models.Vendor, error) {
	for _, vendor := range f.byID {
		if vendor.Slug == slug {
			copied := *vendor
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVendorRepo) List(_ context.Context) ([]models.Vendor, error) {
	var out []models.Vendor
	for _, vendor := range f.byID {
		out = append(out, *vendor)
	}
	return out, nil
}

func (f *fakeVendorRepo) ListEnabled(_ context.Context) ([]models.Vendor, error) {
	var out []models.Vendor
	for _, vendor := range f.byID {
		if vendor.Enabled {
			out = append(out, *vendor)
		}
	}
	return out, nil
}

func (f *fakeVendorRepo) Update(_ context.Context, vendor *models.Vendor) error {
	f.byID[vendor.ID] = vendor
	return nil
}

func (f *fakeVendorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func TestCreateVendorDefaults(t *testing.T) {
	repo := newFakeVendorRepo()
	svc := NewService(repo)

	vendor, err := svc.Create(context.Background(), CreateVendorInput{
		Name:       "Groupe Lambert",
		ListingURL: "https://lambert.example.com/inventaire",
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if vendor.Slug != "groupe-lambert" {
		t.Errorf("Slug = %q, want groupe-lambert", vendor.Slug)
	}
	if vendor.BaseOrigin != "https://lambert.example.com" {
		t.Errorf("BaseOrigin = %q, want derived origin", vendor.BaseOrigin)
	}
	if vendor.DefaultMarkupType != enums.MarkupTypeNone {
		t.Errorf("DefaultMarkupType = %s, want none", vendor.DefaultMarkupType)
	}
	if vendor.ScrapeDelayMS != 250 || vendor.MaxPages != 10 {
		t.Errorf("defaults not applied: delay=%d pages=%d", vendor.ScrapeDelayMS, vendor.MaxPages)
	}
}

func TestCreateVendorDuplicateSlugConflicts(t *testing.T) {
	repo := newFakeVendorRepo()
	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "vendors_slug_key" (SQLSTATE 23505)`)
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateVendorInput{
		Name:       "Groupe Lambert",
		ListingURL: "https://lambert.example.com/inventaire",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate slug, got %v", err)
	}
}

func TestCreateVendorRejectsSelfReferentialMarkup(t *testing.T) {
	svc := NewService(newFakeVendorRepo())

	_, err := svc.Create(context.Background(), CreateVendorInput{
		Name:              "Bad",
		ListingURL:        "https://bad.example.com",
		DefaultMarkupType: enums.MarkupTypeVendorDefault,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateVendorPartial(t *testing.T) {
	repo := newFakeVendorRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), CreateVendorInput{
		Name:       "Nani Auto",
		ListingURL: "https://naniauto.example.com/occasion",
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	disabled := false
	markup := enums.MarkupTypePercentage
	value := 7.5
	updated, err := svc.Update(context.Background(), created.ID, UpdateVendorInput{
		Enabled:            &disabled,
		DefaultMarkupType:  &markup,
		DefaultMarkupValue: &value,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Enabled {
		t.Error("Enabled not updated")
	}
	if updated.DefaultMarkupType != enums.MarkupTypePercentage || updated.DefaultMarkupValue != 7.5 {
		t.Errorf("markup not updated: %s %v", updated.DefaultMarkupType, updated.DefaultMarkupValue)
	}
	if updated.Name != "Nani Auto" {
		t.Errorf("untouched field changed: %q", updated.Name)
	}
}

func TestGetVendorNotFound(t *testing.T) {
	svc := NewService(newFakeVendorRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Groupe Lambert", "groupe-lambert"},
		{"  Nani Auto  ", "nani-auto"},
		{"Auto-Prêt 2000", "auto-pr-t-2000"},
		{"ALREADY-SLUGGED", "already-slugged"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.input); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
