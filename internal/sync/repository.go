package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// Repository covers the persistence the orchestrator needs: the vendor's
// current inventory slice, per-vehicle upserts and the immutable run log.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListVendorVehicles loads every persisted vehicle attributed to the vendor,
// regardless of status. The differ needs sold and unlisted rows too.
func (r *Repository) ListVendorVehicles(ctx context.Context, vendorID uuid.UUID) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// InsertVehicle creates a row for a newly discovered vehicle.
func (r *Repository) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

// UpdateVehicleFromSync refreshes the fields a sync run owns on a matched
// vehicle. Markup policy columns are deliberately absent: vehicle-level
// overrides survive every sync.
func (r *Repository) UpdateVehicleFromSync(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkUnlisted transitions the given vehicles to vendor_status=unlisted.
// listing_status and is_sold are left untouched; unlisted is a visibility
// signal, not a sale signal.
func (r *Repository) MarkUnlisted(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id IN ?", ids).
		Update("vendor_status", enums.VendorStatusUnlisted).Error
}

// TouchVendorLastSync stamps the vendor's last successful sync time.
func (r *Repository) TouchVendorLastSync(ctx context.Context, vendorID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		Update("last_sync_at", at).Error
}

// CreateSyncLog writes the immutable run summary row.
func (r *Repository) CreateSyncLog(ctx context.Context, log *models.VendorSyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListSyncLogs returns the vendor's most recent run summaries.
func (r *Repository) ListSyncLogs(ctx context.Context, vendorID uuid.UUID, limit int) ([]models.VendorSyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []models.VendorSyncLog
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("sync_date DESC").
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
