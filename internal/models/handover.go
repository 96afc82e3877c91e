package models

import (
	"encoding/json"
	"time"
)

// HandoverStatus enumerates the states of a handover session.
type HandoverStatus string

const (
	HandoverScheduled HandoverStatus = "scheduled"
	HandoverCompleted HandoverStatus = "completed"
	HandoverCancelled HandoverStatus = "cancelled"
)

// HandoverSchedule is a knowledge-transfer session attached to a case.
// Attendees is stored as a JSON array of user IDs.
type HandoverSchedule struct {
	ID          string          `db:"id" json:"id"`
	CaseID      string          `db:"case_id" json:"case_id"`
	Title       string          `db:"title" json:"title"`
	Description *string         `db:"description" json:"description,omitempty"`
	ScheduledAt time.Time       `db:"scheduled_at" json:"scheduled_at"`
	DurationMin int             `db:"duration_min" json:"duration_min"`
	Location    *string         `db:"location" json:"location,omitempty"`
	Attendees   json.RawMessage `db:"attendees" json:"attendees,omitempty"`
	Status      HandoverStatus  `db:"status" json:"status"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CreatedBy   string          `db:"created_by" json:"created_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}
