package models

import "time"

// EmailKind identifies the notification template used.
type EmailKind string

const (
	EmailCaseCreated        EmailKind = "case_created"
	EmailChecklistSubmitted EmailKind = "checklist_submitted"
	EmailSignoffRequested   EmailKind = "signoff_requested"
	EmailSignoffDecided     EmailKind = "signoff_decided"
	EmailCaseCompleted      EmailKind = "case_completed"
)

// EmailStatus records the outcome of a delivery attempt.
type EmailStatus string

const (
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// EmailLog is the audit record written after every delivery attempt.
type EmailLog struct {
	ID        string      `db:"id" json:"id"`
	CaseID    *string     `db:"case_id" json:"case_id,omitempty"`
	Recipient string      `db:"recipient" json:"recipient"`
	Kind      EmailKind   `db:"kind" json:"kind"`
	Subject   string      `db:"subject" json:"subject"`
	Status    EmailStatus `db:"status" json:"status"`
	Error     *string     `db:"error" json:"error,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}
