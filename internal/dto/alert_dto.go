package dto

import (
	"time"

	"github.com/resqnet/resq-go-api/internal/models"
)

// AlertCreateRequest is the public SOS intake payload.
type AlertCreateRequest struct {
	Region          string                 `json:"region" validate:"required,min=1,max=128"`
	Message         string                 `json:"message" validate:"required,min=1,max=2048"`
	Location        map[string]interface{} `json:"location" validate:"omitempty"`
	ReporterContact string                 `json:"reporter_contact" validate:"omitempty,max=255"`
}

// AlertStatusUpdateRequest transitions an alert's lifecycle state.
type AlertStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=acknowledged resolved"`
}

// AlertResponse serializes an SOS alert.
type AlertResponse struct {
	PublicID        string                 `json:"public_id"`
	Region          string                 `json:"region"`
	Message         string                 `json:"message"`
	Location        map[string]interface{} `json:"location"`
	Status          string                 `json:"status"`
	ReporterContact string                 `json:"reporter_contact,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewAlertResponse maps an alert model to its response shape.
func NewAlertResponse(alert models.Alert) AlertResponse {
	return AlertResponse{
		PublicID:        alert.PublicID,
		Region:          alert.Region,
		Message:         alert.Message,
		Location:        alert.Location,
		Status:          alert.Status,
		ReporterContact: alert.ReporterContact,
		CreatedAt:       alert.CreatedAt,
		UpdatedAt:       alert.UpdatedAt,
	}
}

// NewAlertResponseSlice maps a list of alerts.
func NewAlertResponseSlice(alerts []models.Alert) []AlertResponse {
	responses := make([]AlertResponse, 0, len(alerts))
	for _, alert := range alerts {
		responses = append(responses, NewAlertResponse(alert))
	}
	return responses
}
