package models

import "time"

// CaseStatus enumerates the lifecycle states of a separation case.
type CaseStatus string

const (
	// CaseInitiated is declared for wire compatibility with the legacy
	// system but never assigned by any transition; cases are created
	// directly into CaseChecklistPending.
	CaseInitiated          CaseStatus = "initiated"
	CaseChecklistPending   CaseStatus = "checklist_pending"
	CaseChecklistSubmitted CaseStatus = "checklist_submitted"
	CaseSignoffPending     CaseStatus = "signoff_pending"
	CaseCompleted          CaseStatus = "completed"
	CaseCancelled          CaseStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseInitiated, CaseChecklistPending, CaseChecklistSubmitted,
		CaseSignoffPending, CaseCompleted, CaseCancelled:
		return true
	}
	return false
}

// Terminal reports whether the case can no longer change through the
// workflow. A case is "active" while its status is non-terminal.
func (s CaseStatus) Terminal() bool {
	return s == CaseCompleted || s == CaseCancelled
}

// SeparationCase tracks one employee's offboarding end to end.
type SeparationCase struct {
	ID                    string     `db:"id" json:"id"`
	CaseNumber            string     `db:"case_number" json:"case_number"`
	EmployeeID            string     `db:"employee_id" json:"employee_id"`
	DirectManagerID       *string    `db:"direct_manager_id" json:"direct_manager_id,omitempty"`
	SeparationManagerID   *string    `db:"separation_manager_id" json:"separation_manager_id,omitempty"`
	ResignationDate       time.Time  `db:"resignation_date" json:"resignation_date"`
	LastWorkingDay        time.Time  `db:"last_working_day" json:"last_working_day"`
	Reason                *string    `db:"reason" json:"reason,omitempty"`
	Status                CaseStatus `db:"status" json:"status"`
	Notes                 *string    `db:"notes" json:"notes,omitempty"`
	ChecklistSubmittedAt  *time.Time `db:"checklist_submitted_at" json:"checklist_submitted_at,omitempty"`
	CompletedAt           *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// CaseSummary is a case with its derived progress figures and the
// joined party names, fetched explicitly by the repository.
type CaseSummary struct {
	SeparationCase
	EmployeeName      string  `db:"employee_name" json:"employee_name"`
	EmployeeEmail     string  `db:"employee_email" json:"employee_email"`
	DirectManagerName *string `db:"direct_manager_name" json:"direct_manager_name,omitempty"`
	Progress          int     `json:"progress"`
	SignoffProgress   int     `json:"signoff_progress"`
}

// CaseDetail bundles a case with its owned collections.
type CaseDetail struct {
	CaseSummary
	ChecklistItems []ChecklistItem    `json:"checklist_items"`
	Signoffs       []SignOff          `json:"signoffs"`
	Handovers      []HandoverSchedule `json:"handover_schedules"`
}

// CaseFilter captures list criteria. Role scoping fields are mutually
// exclusive and set by the service based on the caller's role.
type CaseFilter struct {
	Status             *CaseStatus
	EmployeeID         string
	DirectManagerID    string
	SignoffAssigneeID  string
	Page               int
	PageSize           int
}
