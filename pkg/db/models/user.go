package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// User is a dealership staff member with access to the admin console.
type User struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string          `gorm:"column:email;not null;unique"`
	FirstName string          `gorm:"column:first_name;not null"`
	LastName  string          `gorm:"column:last_name;not null"`
	Role      enums.StaffRole `gorm:"column:role;not null;default:sales"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
