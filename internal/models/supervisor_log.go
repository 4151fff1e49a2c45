package models

import "time"

// Supervisor log event kinds.
const (
	LogEventLogin  = "login"
	LogEventLogout = "logout"
	LogEventAction = "action"
)

// SupervisorLog is an append-only audit record of supervisor activity.
// The region is captured at event time so historical entries keep the
// region the supervisor served when the event happened, even after a
// later revoke resets the account.
type SupervisorLog struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	SupervisorExternalID string    `gorm:"size:128;index;not null" json:"supervisor_external_id"`
	Email                string    `gorm:"size:255;not null" json:"email"`
	Region               string    `gorm:"size:128;index;not null" json:"region"`
	EventType            string    `gorm:"size:32;not null" json:"event_type"`
	ActionDescription    string    `gorm:"size:1024" json:"action_description"`
	Timestamp            time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
}
