package models

import (
	"time"

	"gorm.io/datatypes"
)

// Alert lifecycle states.
const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// Alert is an SOS report raised by the public and served to the admins and
// approved supervisors of its region.
type Alert struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	PublicID        string            `gorm:"size:64;uniqueIndex;not null" json:"public_id"`
	Region          string            `gorm:"size:128;index;not null" json:"region"`
	Message         string            `gorm:"size:2048;not null" json:"message"`
	Location        datatypes.JSONMap `gorm:"type:json" json:"location"`
	Status          string            `gorm:"size:32;not null;default:open" json:"status"`
	ReporterContact string            `gorm:"size:255" json:"reporter_contact"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
