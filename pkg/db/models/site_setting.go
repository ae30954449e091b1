package models

import "time"

// SiteSetting is a key-value row backing site configuration and AI feature
// toggles. Value holds a JSON document.
type SiteSetting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
