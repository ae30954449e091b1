package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
	"github.com/casavia/dealerdesk-backend/pkg/pagination"
)

// ListFilter narrows inventory queries.
type ListFilter struct {
	ListingStatus *enums.ListingStatus
	VendorStatus  *enums.VendorStatus
	VendorID      *uuid.UUID
	IsSold        *bool
	Search        string
}

// Repository persists vehicle rows for the admin CRUD surface.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a vehicle row.
func (r *Repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

// FindByID loads one vehicle.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List pages through vehicles matching the filter, newest first. Returns up
// to limit+1 rows so the caller can detect the next page.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&models.Vehicle{})

	if filter.ListingStatus != nil {
		query = query.Where("listing_status = ?", *filter.ListingStatus)
	}
	if filter.VendorStatus != nil {
		query = query.Where("vendor_status = ?", *filter.VendorStatus)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.IsSold != nil {
		query = query.Where("is_sold = ?", *filter.IsSold)
	}
	if filter.Search != "" {
		needle := "%" + filter.Search + "%"
		query = query.Where(
			"make LIKE ? OR model LIKE ? OR vin LIKE ? OR stock_number LIKE ?",
			needle, needle, needle, needle,
		)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var vehicles []models.Vehicle
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// ListPublished returns published, unsold vehicles for the public site.
func (r *Repository) ListPublished(ctx context.Context, params pagination.Params) ([]models.Vehicle, error) {
	status := enums.ListingStatusPublished
	sold := false
	return r.List(ctx, ListFilter{ListingStatus: &status, IsSold: &sold}, params)
}

// Update saves the full vehicle row.
func (r *Repository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

// Delete removes a vehicle row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Vehicle{}, "id = ?", id).Error
}

// ListAllImageRefs returns every stored image reference across the fleet.
// Used by the orphan image cleanup job.
func (r *Repository) ListAllImageRefs(ctx context.Context) ([]string, error) {
	var rows []models.Vehicle
	if err := r.db.WithContext(ctx).Select("images").Find(&rows).Error; err != nil {
		return nil, err
	}
	var refs []string
	for _, row := range rows {
		refs = append(refs, row.Images...)
	}
	return refs, nil
}
