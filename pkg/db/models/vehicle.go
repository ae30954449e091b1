package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// Vehicle is the canonical inventory row. Vendor sync is one writer among
// several; admin CRUD is another.
type Vehicle struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VIN         string    `gorm:"column:vin"`
	StockNumber string    `gorm:"column:stock_number;not null"`
	Make        string    `gorm:"column:make;not null"`
	Model       string    `gorm:"column:model;not null"`
	Year        int       `gorm:"column:year;not null"`

	// Price is the vendor/base price in whole currency units.
	Price        int     `gorm:"column:price;not null;default:0"`
	Odometer     int     `gorm:"column:odometer;not null;default:0"`
	BodyType     string  `gorm:"column:body_type"`
	Color        string  `gorm:"column:color"`
	FuelType     string  `gorm:"column:fuel_type"`
	Transmission string  `gorm:"column:transmission"`
	Drivetrain   string  `gorm:"column:drivetrain"`
	Description  *string `gorm:"column:description"`

	// Images holds CDN asset identifiers, with raw source URLs as fallback
	// entries when the relay could not mirror a slot.
	Images    pq.StringArray `gorm:"column:images;type:text[]"`
	SourceURL string         `gorm:"column:source_url"`

	VendorID           *uuid.UUID         `gorm:"column:vendor_id;type:uuid"`
	VendorName         string             `gorm:"column:vendor_name"`
	VendorStatus       enums.VendorStatus `gorm:"column:vendor_status;default:active"`
	LastSeenFromVendor *time.Time         `gorm:"column:last_seen_from_vendor"`

	PriceMarkupType  enums.MarkupType `gorm:"column:price_markup_type;default:vendor_default"`
	PriceMarkupValue float64          `gorm:"column:price_markup_value;default:0"`
	DisplayPrice     int              `gorm:"column:display_price;not null;default:0"`

	IsSold        bool                `gorm:"column:is_sold;not null;default:false"`
	ListingStatus enums.ListingStatus `gorm:"column:listing_status;default:draft"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IdentityKey is the diff key: VIN when present, stock number otherwise.
func (v Vehicle) IdentityKey() string {
	if v.VIN != "" {
		return "vin:" + v.VIN
	}
	return "stock:" + v.StockNumber
}
