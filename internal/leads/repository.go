package leads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/casavia/dealerdesk-backend/pkg/db/models"
	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// Repository persists lead rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a lead row.
func (r *Repository) Create(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

// FindByID loads one lead.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// List returns all leads ordered for kanban rendering: column, then card
// position, then recency.
func (r *Repository) List(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	if err := r.db.WithContext(ctx).
		Order("status ASC, position ASC, created_at DESC").
		Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// MaxPosition returns the highest card position within one column.
func (r *Repository) MaxPosition(ctx context.Context, status enums.LeadStatus) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("status = ?", status).
		Select("MAX(position)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// Update saves the full lead row.
func (r *Repository) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}

// Delete removes a lead row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Lead{}, "id = ?", id).Error
}
