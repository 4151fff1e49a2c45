package dto

import "github.com/resqnet/resq-go-api/internal/models"

// AuthStatusResponse is the public role/approval lookup used by clients to
// route a user to the right landing state.
type AuthStatusResponse struct {
	Role       models.Role `json:"role"`
	IsApproved bool        `json:"is_approved"`
	Region     string      `json:"region"`
	Email      string      `json:"email"`
}

// LoginResponse returns the resolved principal after session establishment.
type LoginResponse struct {
	ExternalID string      `json:"external_id"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	Region     string      `json:"region"`
	IsApproved bool        `json:"is_approved"`
}

// NewLoginResponse serializes a principal.
func NewLoginResponse(principal models.Principal) LoginResponse {
	return LoginResponse{
		ExternalID: principal.ExternalID,
		Email:      principal.Email,
		Role:       principal.Role,
		Region:     principal.Region,
		IsApproved: principal.IsApproved,
	}
}
