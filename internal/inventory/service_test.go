package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/pagination"
)

type fakeVehicleRepo struct {
	byID map[uuid.UUID]*models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{byID: make(map[uuid.UUID]*models.Vehicle)}
}

func (f *fakeVehicleRepo) Create(_ context.Context, vehicle *models.Vehicle) error {
	vehicle.ID = uuid.New()
	f.byID[vehicle.ID] = vehicle
	return nil
}

func (f *fakeVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (f *fakeVehicleRepo) List(_ context.Context, _ ListFilter, _ pagination.Params) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, vehicle := range f.byID {
		out = append(out, *vehicle)
	}
	return out, nil
}

func (f *fakeVehicleRepo) ListPublished(ctx context.Context, params pagination.Params) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, vehicle := range f.byID {
		if vehicle.ListingStatus == enums.ListingStatusPublished && !vehicle.IsSold {
			out = append(out, *vehicle)
		}
	}
	return out, nil
}

func (f *fakeVehicleRepo) Update(_ context.Context, vehicle *models.Vehicle) error {
	f.byID[vehicle.ID] = vehicle
	return nil
}

func (f *fakeVehicleRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeVendorDefaults struct {
	vendor *models.Vendor
}

func (f *fakeVendorDefaults) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	if f.vendor == nil || f.vendor.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.vendor, nil
}

func TestCreateVehicleComputesDisplayPrice(t *testing.T) {
	repo := newFakeVehicleRepo()
	svc := NewService(repo, &fakeVendorDefaults{})

	vehicle, err := svc.Create(context.Background(), CreateVehicleInput{
		StockNumber:      "M1",
		Make:             "Honda",
		Model:            "Civic",
		Year:             2022,
		Price:            20000,
		PriceMarkupType:  enums.MarkupTypeAmount,
		PriceMarkupValue: 1500,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if vehicle.DisplayPrice != 21500 {
		t.Errorf("DisplayPrice = %d, want 21500", vehicle.DisplayPrice)
	}
	if vehicle.ListingStatus != enums.ListingStatusDraft {
		t.Errorf("ListingStatus = %s, want draft default", vehicle.ListingStatus)
	}
}

func TestCreateVehicleRequiresIdentity(t *testing.T) {
	svc := NewService(newFakeVehicleRepo(), &fakeVendorDefaults{})

	_, err := svc.Create(context.Background(), CreateVehicleInput{
		Make:  "Honda",
		Model: "Civic",
		Year:  2022,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error without vin/stock, got %v", err)
	}
}

func TestUpdatePriceRecomputesDisplayPrice(t *testing.T) {
	repo := newFakeVehicleRepo()
	svc := NewService(repo, &fakeVendorDefaults{})

	created, err := svc.Create(context.Background(), CreateVehicleInput{
		StockNumber:      "M1",
		Make:             "Honda",
		Model:            "Civic",
		Year:             2022,
		Price:            20000,
		PriceMarkupType:  enums.MarkupTypePercentage,
		PriceMarkupValue: 10,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.DisplayPrice != 22000 {
		t.Fatalf("DisplayPrice = %d, want 22000", created.DisplayPrice)
	}

	newPrice := 25000
	updated, err := svc.Update(context.Background(), created.ID, UpdateVehicleInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.DisplayPrice != 27500 {
		t.Errorf("DisplayPrice = %d, want 27500 after price change", updated.DisplayPrice)
	}
}

func TestUpdateResolvesVendorDefaultMarkup(t *testing.T) {
	repo := newFakeVehicleRepo()
	vendor := &models.Vendor{
		ID:                 uuid.New(),
		Name:               "Groupe Lambert",
		DefaultMarkupType:  enums.MarkupTypeAmount,
		DefaultMarkupValue: 1500,
	}
	svc := NewService(repo, &fakeVendorDefaults{vendor: vendor})

	row := &models.Vehicle{
		ID:              uuid.New(),
		StockNumber:     "V1",
		Make:            "Toyota",
		Model:           "RAV4",
		Year:            2021,
		Price:           30000,
		VendorID:        &vendor.ID,
		PriceMarkupType: enums.MarkupTypeVendorDefault,
		VendorStatus:    enums.VendorStatusActive,
	}
	repo.byID[row.ID] = row

	newPrice := 31000
	updated, err := svc.Update(context.Background(), row.ID, UpdateVehicleInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.DisplayPrice != 32500 {
		t.Errorf("DisplayPrice = %d, want 32500 via vendor default", updated.DisplayPrice)
	}
	if updated.PriceMarkupType != enums.MarkupTypeVendorDefault {
		t.Errorf("stored markup policy must stay vendor_default, got %s", updated.PriceMarkupType)
	}
}

func TestSoldAndListingStatusStayInSync(t *testing.T) {
	repo := newFakeVehicleRepo()
	svc := NewService(repo, &fakeVendorDefaults{})

	created, err := svc.Create(context.Background(), CreateVehicleInput{
		StockNumber:   "M1",
		Make:          "Honda",
		Model:         "Civic",
		Year:          2022,
		Price:         20000,
		ListingStatus: enums.ListingStatusPublished,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	sold, err := svc.MarkSold(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("MarkSold returned error: %v", err)
	}
	if !sold.IsSold || sold.ListingStatus != enums.ListingStatusSold {
		t.Errorf("sold sync broken: is_sold=%v status=%s", sold.IsSold, sold.ListingStatus)
	}

	// Flipping the status away from sold clears the flag.
	published := enums.ListingStatusPublished
	reopened, err := svc.Update(context.Background(), created.ID, UpdateVehicleInput{ListingStatus: &published})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if reopened.IsSold || reopened.ListingStatus != enums.ListingStatusPublished {
		t.Errorf("reopen sync broken: is_sold=%v status=%s", reopened.IsSold, reopened.ListingStatus)
	}

	// Clearing is_sold directly demotes sold status to published.
	notSold := false
	soldAgain, err := svc.MarkSold(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("MarkSold returned error: %v", err)
	}
	cleared, err := svc.Update(context.Background(), soldAgain.ID, UpdateVehicleInput{IsSold: &notSold})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if cleared.IsSold || cleared.ListingStatus == enums.ListingStatusSold {
		t.Errorf("clearing is_sold left status=%s", cleared.ListingStatus)
	}
}

func TestGetVehicleNotFound(t *testing.T) {
	svc := NewService(newFakeVehicleRepo(), &fakeVendorDefaults{})

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
