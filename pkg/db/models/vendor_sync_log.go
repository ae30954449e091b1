package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// VendorSyncLog summarizes one orchestrator run. Rows are immutable after
// write and exist only for observability.
type VendorSyncLog struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID         uuid.UUID           `gorm:"column:vendor_id;type:uuid;not null"`
	VendorName       string              `gorm:"column:vendor_name;not null"`
	SyncDate         time.Time           `gorm:"column:sync_date;not null"`
	VehiclesFound    int                 `gorm:"column:vehicles_found;not null;default:0"`
	NewVehicles      int                 `gorm:"column:new_vehicles;not null;default:0"`
	UpdatedVehicles  int                 `gorm:"column:updated_vehicles;not null;default:0"`
	UnlistedVehicles int                 `gorm:"column:unlisted_vehicles;not null;default:0"`
	Status           enums.SyncRunStatus `gorm:"column:status;not null"`
	ErrorDetail      *string             `gorm:"column:error_detail"`
	DurationSeconds  float64             `gorm:"column:duration_seconds;not null;default:0"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
}
