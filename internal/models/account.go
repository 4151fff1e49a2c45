package models

import "time"

// Role is the closed set of account kinds recognised by the service.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
)

// Admin is the single coordinator account for a region. One row per region.
type Admin struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ExternalID string    `gorm:"size:128;uniqueIndex;not null" json:"external_id"`
	Region     string    `gorm:"size:128;uniqueIndex;not null" json:"region"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Supervisor is a field responder account. Region stays empty until the
// supervisor completes onboarding, and approval is only meaningful once a
// region has been selected.
type Supervisor struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ExternalID string    `gorm:"size:128;uniqueIndex;not null" json:"external_id"`
	Region     string    `gorm:"size:128;index" json:"region"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Principal is the resolved identity for the current request. It is built
// from directory state on every request; client-supplied role or approval
// claims are never trusted.
type Principal struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Region     string `json:"region"`
	IsApproved bool   `json:"is_approved"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
