package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// Lead is a customer inquiry moving through the pipeline kanban.
type Lead struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerName  string           `gorm:"column:customer_name;not null"`
	CustomerEmail string           `gorm:"column:customer_email"`
	CustomerPhone string           `gorm:"column:customer_phone"`
	Message       *string          `gorm:"column:message"`
	VehicleID     *uuid.UUID       `gorm:"column:vehicle_id;type:uuid"`
	Status        enums.LeadStatus `gorm:"column:status;not null;default:new"`
	AssignedTo    *uuid.UUID       `gorm:"column:assigned_to;type:uuid"`

	// Position orders cards within a kanban column.
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
