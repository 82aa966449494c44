package models

import (
	"time"

	"gorm.io/datatypes"
)

// Template is a named, reusable layout configuration.
type Template struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:255;not null;uniqueIndex:idx_templates_name" json:"name"`
	LayoutConfig datatypes.JSON `json:"layout_config"`
	Description  *string        `gorm:"size:1000" json:"description"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
