package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/casavia/dealerdesk-backend/pkg/enums"
)

// Vendor is an external dealership whose inventory is mirrored into the local
// database by the sync pipeline.
type Vendor struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Slug       string    `gorm:"column:slug;not null;unique"`
	ListingURL string    `gorm:"column:listing_url;not null"`

	// BaseOrigin resolves relative image/detail URLs scraped from the site.
	BaseOrigin string `gorm:"column:base_origin;not null"`
	Enabled    bool   `gorm:"column:enabled;not null;default:true"`

	DefaultMarkupType  enums.MarkupType `gorm:"column:default_markup_type;default:none"`
	DefaultMarkupValue float64          `gorm:"column:default_markup_value;default:0"`

	ScrapeDelayMS int `gorm:"column:scrape_delay_ms;not null;default:250"`
	MaxPages      int `gorm:"column:max_pages;not null;default:10"`

	LastSyncAt *time.Time `gorm:"column:last_sync_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
