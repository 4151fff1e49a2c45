package dto

import (
	"time"

	"github.com/resqnet/resq-go-api/internal/models"
)

// RegisterRequest is the initial supervisor signup payload. Region is
// deliberately absent: it is selected in the complete-profile step.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=255"`
	Email      string `json:"email" validate:"required,email"`
	ExternalID string `json:"external_id" validate:"required,min=1,max=128"`
}

// CompleteProfileRequest records the supervisor's region selection.
type CompleteProfileRequest struct {
	Region string `json:"region" validate:"required,min=1,max=128"`
}

// SupervisorResponse serializes a supervisor account.
type SupervisorResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ExternalID string    `json:"external_id"`
	Region     string    `json:"region"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSupervisorResponse maps a supervisor model to its response shape.
func NewSupervisorResponse(supervisor models.Supervisor) SupervisorResponse {
	return SupervisorResponse{
		ID:         supervisor.ID,
		Name:       supervisor.Name,
		Email:      supervisor.Email,
		ExternalID: supervisor.ExternalID,
		Region:     supervisor.Region,
		IsApproved: supervisor.IsApproved,
		CreatedAt:  supervisor.CreatedAt,
		UpdatedAt:  supervisor.UpdatedAt,
	}
}

// NewSupervisorResponseSlice maps a list of supervisors.
func NewSupervisorResponseSlice(supervisors []models.Supervisor) []SupervisorResponse {
	responses := make([]SupervisorResponse, 0, len(supervisors))
	for _, supervisor := range supervisors {
		responses = append(responses, NewSupervisorResponse(supervisor))
	}
	return responses
}
