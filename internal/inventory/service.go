package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/internal/pricing"
	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	pkgerrors "github.com/casavia/dealerdesk-backend/pkg/errors"
	"github.com/casavia/dealerdesk-backend/pkg/pagination"
)

// Service exposes vehicle inventory management.
type Service interface {
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*VehicleListResult, error)
	ListPublished(ctx context.Context, params pagination.Params) (*VehicleListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	Create(ctx context.Context, input CreateVehicleInput) (*models.Vehicle, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*models.Vehicle, error)
	MarkSold(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VehicleListResult is one page of vehicles plus the next-page cursor.
type VehicleListResult struct {
	Vehicles   []models.Vehicle
	NextCursor string
}

// CreateVehicleInput holds the validated payload for a manual listing.
type CreateVehicleInput struct {
	VIN          string
	StockNumber  string
	Make         string
	Model        string
	Year         int
	Price        int
	Odometer     int
	BodyType     string
	Color        string
	FuelType     string
	Transmission string
	Drivetrain   string
	Description  *string
	Images       []string

	PriceMarkupType  enums.MarkupType
	PriceMarkupValue float64
	ListingStatus    enums.ListingStatus
}

// UpdateVehicleInput holds optional mutation values for a vehicle.
type UpdateVehicleInput struct {
	Price            *int
	Odometer         *int
	BodyType         *string
	Color            *string
	FuelType         *string
	Transmission     *string
	Drivetrain       *string
	Description      *string
	Images           *[]string
	PriceMarkupType  *enums.MarkupType
	PriceMarkupValue *float64
	ListingStatus    *enums.ListingStatus
	IsSold           *bool
}

type vehicleRepo interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Vehicle, error)
	ListPublished(ctx context.Context, params pagination.Params) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type vendorDefaults interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type service struct {
	repo    vehicleRepo
	vendors vendorDefaults
}

// NewService wires the inventory service.
func NewService(repo vehicleRepo, vendors vendorDefaults) Service {
	return &service{repo: repo, vendors: vendors}
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*VehicleListResult, error) {
	vehicles, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing vehicles")
	}
	return buildPage(vehicles, params), nil
}

func (s *service) ListPublished(ctx context.Context, params pagination.Params) (*VehicleListResult, error) {
	vehicles, err := s.repo.ListPublished(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing published vehicles")
	}
	return buildPage(vehicles, params), nil
}

func buildPage(vehicles []models.Vehicle, params pagination.Params) *VehicleListResult {
	limit := pagination.NormalizeLimit(params.Limit)
	result := &VehicleListResult{Vehicles: vehicles}
	if len(vehicles) > limit {
		result.Vehicles = vehicles[:limit]
		last := result.Vehicles[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapVehicleLookupError(err)
	}
	return vehicle, nil
}

func (s *service) Create(ctx context.Context, input CreateVehicleInput) (*models.Vehicle, error) {
	if strings.TrimSpace(input.Make) == "" || strings.TrimSpace(input.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "make and model are required")
	}
	if input.Year <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year is required")
	}
	if input.VIN == "" && input.StockNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vin or stock number is required")
	}

	markupType := input.PriceMarkupType
	if markupType == "" {
		markupType = enums.MarkupTypeNone
	}
	if !markupType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price markup type")
	}
	listingStatus := input.ListingStatus
	if listingStatus == "" {
		listingStatus = enums.ListingStatusDraft
	}
	if !listingStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing status")
	}

	vehicle := &models.Vehicle{
		VIN:          strings.ToUpper(strings.TrimSpace(input.VIN)),
		StockNumber:  strings.TrimSpace(input.StockNumber),
		Make:         strings.TrimSpace(input.Make),
		Model:        strings.TrimSpace(input.Model),
		Year:         input.Year,
		Price:        input.Price,
		Odometer:     input.Odometer,
		BodyType:     input.BodyType,
		Color:        input.Color,
		FuelType:     input.FuelType,
		Transmission: input.Transmission,
		Drivetrain:   input.Drivetrain,
		Description:  input.Description,
		Images:       input.Images,

		// Manually listed vehicles have no vendor; markup applies directly.
		VendorStatus:     enums.VendorStatusActive,
		PriceMarkupType:  markupType,
		PriceMarkupValue: input.PriceMarkupValue,
		ListingStatus:    listingStatus,
	}
	s.applyDerivedFields(ctx, vehicle)

	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating vehicle")
	}
	return vehicle, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapVehicleLookupError(err)
	}

	if input.Price != nil {
		vehicle.Price = *input.Price
	}
	if input.Odometer != nil {
		vehicle.Odometer = *input.Odometer
	}
	if input.BodyType != nil {
		vehicle.BodyType = *input.BodyType
	}
	if input.Color != nil {
		vehicle.Color = *input.Color
	}
	if input.FuelType != nil {
		vehicle.FuelType = *input.FuelType
	}
	if input.Transmission != nil {
		vehicle.Transmission = *input.Transmission
	}
	if input.Drivetrain != nil {
		vehicle.Drivetrain = *input.Drivetrain
	}
	if input.Description != nil {
		vehicle.Description = input.Description
	}
	if input.Images != nil {
		vehicle.Images = *input.Images
	}
	if input.PriceMarkupType != nil {
		if !input.PriceMarkupType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price markup type")
		}
		vehicle.PriceMarkupType = *input.PriceMarkupType
	}
	if input.PriceMarkupValue != nil {
		vehicle.PriceMarkupValue = *input.PriceMarkupValue
	}

	// isSold and listing_status stay in bidirectional sync no matter which
	// one the caller flips.
	if input.ListingStatus != nil {
		if !input.ListingStatus.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing status")
		}
		vehicle.ListingStatus = *input.ListingStatus
		vehicle.IsSold = *input.ListingStatus == enums.ListingStatusSold
	}
	if input.IsSold != nil {
		vehicle.IsSold = *input.IsSold
		if *input.IsSold {
			vehicle.ListingStatus = enums.ListingStatusSold
		} else if vehicle.ListingStatus == enums.ListingStatusSold {
			vehicle.ListingStatus = enums.ListingStatusPublished
		}
	}

	s.applyDerivedFields(ctx, vehicle)

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating vehicle")
	}
	return vehicle, nil
}

func (s *service) MarkSold(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	sold := true
	return s.Update(ctx, id, UpdateVehicleInput{IsSold: &sold})
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return mapVehicleLookupError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting vehicle")
	}
	return nil
}

// applyDerivedFields recomputes display_price from the current price and
// markup policy, resolving vendor_default against the owning vendor when one
// exists.
func (s *service) applyDerivedFields(ctx context.Context, vehicle *models.Vehicle) {
	markupType := vehicle.PriceMarkupType
	markupValue := vehicle.PriceMarkupValue

	if markupType == enums.MarkupTypeVendorDefault && vehicle.VendorID != nil && s.vendors != nil {
		if vendor, err := s.vendors.FindByID(ctx, *vehicle.VendorID); err == nil {
			markupType, markupValue = pricing.Resolve(
				markupType, markupValue,
				vendor.DefaultMarkupType, vendor.DefaultMarkupValue,
			)
		}
	}

	vehicle.DisplayPrice = pricing.DisplayPrice(vehicle.Price, markupType, markupValue)
}

func mapVehicleLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading vehicle")
}
