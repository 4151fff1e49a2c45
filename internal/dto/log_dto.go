package dto

import (
	"time"

	"github.com/resqnet/resq-go-api/internal/models"
)

// LogCreateRequest captures a supervisor activity event.
type LogCreateRequest struct {
	EventType         string `json:"event_type" validate:"required,oneof=login logout action"`
	ActionDescription string `json:"action_description" validate:"max=1024"`
}

// LogEntryResponse serializes one audit trail entry.
type LogEntryResponse struct {
	ID                   uint      `json:"id"`
	SupervisorExternalID string    `json:"supervisor_external_id"`
	Email                string    `json:"email"`
	Region               string    `json:"region"`
	EventType            string    `json:"event_type"`
	ActionDescription    string    `json:"action_description"`
	Timestamp            time.Time `json:"timestamp"`
}

// NewLogEntryResponse maps a log entry model to its response shape.
func NewLogEntryResponse(entry models.SupervisorLog) LogEntryResponse {
	return LogEntryResponse{
		ID:                   entry.ID,
		SupervisorExternalID: entry.SupervisorExternalID,
		Email:                entry.Email,
		Region:               entry.Region,
		EventType:            entry.EventType,
		ActionDescription:    entry.ActionDescription,
		Timestamp:            entry.Timestamp,
	}
}

// NewLogEntryResponseSlice maps a list of log entries.
func NewLogEntryResponseSlice(entries []models.SupervisorLog) []LogEntryResponse {
	responses := make([]LogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewLogEntryResponse(entry))
	}
	return responses
}
