package models

import "time"

// SignOffStatus enumerates the decision states of a sign-off.
type SignOffStatus string

const (
	SignOffPending  SignOffStatus = "pending"
	SignOffApproved SignOffStatus = "approved"
	SignOffRejected SignOffStatus = "rejected"
)

// SignOffResolution is the aggregate outcome over a case's sign-offs.
type SignOffResolution string

const (
	ResolutionPending      SignOffResolution = "PENDING"
	ResolutionHasRejection SignOffResolution = "HAS_REJECTION"
	ResolutionAllApproved  SignOffResolution = "ALL_APPROVED"
)

// ResolveSignoffs folds a set of sign-off statuses into the aggregate
// outcome. Any pending decision keeps the whole set PENDING; only a
// fully decided set distinguishes rejection from approval. An empty
// set resolves to PENDING so a case never completes without sign-offs.
func ResolveSignoffs(statuses []SignOffStatus) SignOffResolution {
	if len(statuses) == 0 {
		return ResolutionPending
	}
	rejected := false
	for _, s := range statuses {
		switch s {
		case SignOffPending:
			return ResolutionPending
		case SignOffRejected:
			rejected = true
		}
	}
	if rejected {
		return ResolutionHasRejection
	}
	return ResolutionAllApproved
}

// SignOff is one department's approval record for a case. At most one
// sign-off exists per (case, department) pair.
type SignOff struct {
	ID             string        `db:"id" json:"id"`
	CaseID         string        `db:"case_id" json:"case_id"`
	DepartmentID   string        `db:"department_id" json:"department_id"`
	AssigneeID     string        `db:"assignee_id" json:"assignee_id"`
	Status         SignOffStatus `db:"status" json:"status"`
	Comment        *string       `db:"comment" json:"comment,omitempty"`
	DecidedAt      *time.Time    `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
	DepartmentName string        `db:"department_name" json:"department_name,omitempty"`
	AssigneeName   string        `db:"assignee_name" json:"assignee_name,omitempty"`
}
