package models

// CreateCaseRequest starts a new separation case for an employee.
// Dates use the YYYY-MM-DD wire format.
type CreateCaseRequest struct {
	EmployeeID      string  `json:"employee_id" validate:"required,uuid4"`
	ResignationDate string  `json:"resignation_date" validate:"required,datetime=2006-01-02"`
	LastWorkingDay  string  `json:"last_working_day" validate:"required,datetime=2006-01-02"`
	Reason          *string `json:"reason,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// UpdateCaseRequest edits the mutable case fields.
type UpdateCaseRequest struct {
	ResignationDate *string `json:"resignation_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LastWorkingDay  *string `json:"last_working_day,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Reason          *string `json:"reason,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// OverrideStatusRequest forces a case into a specific status.
type OverrideStatusRequest struct {
	Status CaseStatus `json:"status" validate:"required"`
	Reason string     `json:"reason" validate:"required"`
}

// UpdateChecklistItemRequest toggles completion or annotates an item.
type UpdateChecklistItemRequest struct {
	Completed *bool   `json:"completed,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// AssignSignoffRequest creates a department sign-off on a case.
type AssignSignoffRequest struct {
	DepartmentID string `json:"department_id" validate:"required,uuid4"`
	AssigneeID   string `json:"assignee_id" validate:"required,uuid4"`
}

// ProcessSignoffRequest records an approval decision.
type ProcessSignoffRequest struct {
	Status  SignOffStatus `json:"status" validate:"required,oneof=approved rejected"`
	Comment *string       `json:"comment,omitempty"`
}

// CreateHandoverRequest schedules a knowledge-transfer session.
type CreateHandoverRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description *string  `json:"description,omitempty"`
	ScheduledAt string   `json:"scheduled_at" validate:"required"`
	DurationMin int      `json:"duration_min" validate:"required,min=15,max=480"`
	Location    *string  `json:"location,omitempty"`
	Attendees   []string `json:"attendees,omitempty" validate:"omitempty,dive,uuid4"`
}

// UpdateHandoverRequest edits or closes a handover session.
type UpdateHandoverRequest struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	ScheduledAt *string         `json:"scheduled_at,omitempty"`
	DurationMin *int            `json:"duration_min,omitempty" validate:"omitempty,min=15,max=480"`
	Location    *string         `json:"location,omitempty"`
	Attendees   []string        `json:"attendees,omitempty" validate:"omitempty,dive,uuid4"`
	Status      *HandoverStatus `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	Notes       *string         `json:"notes,omitempty"`
}

// TemplateRequest creates or updates a checklist template.
type TemplateRequest struct {
	Title        string  `json:"title" validate:"required"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	Mandatory    bool    `json:"mandatory"`
	DisplayOrder int     `json:"display_order"`
	Active       *bool   `json:"active,omitempty"`
}

// CreateUserRequest registers a user in the directory.
type CreateUserRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=6"`
	FirstName    string   `json:"first_name" validate:"required"`
	LastName     string   `json:"last_name" validate:"required"`
	Role         UserRole `json:"role" validate:"required,oneof=employee direct_manager department_manager separation_manager"`
	DepartmentID *string  `json:"department_id,omitempty" validate:"omitempty,uuid4"`
	ManagerID    *string  `json:"manager_id,omitempty" validate:"omitempty,uuid4"`
	EmployeeCode *string  `json:"employee_code,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
}

// UpdateUserRequest edits directory fields of a user.
type UpdateUserRequest struct {
	FirstName    *string   `json:"first_name,omitempty"`
	LastName     *string   `json:"last_name,omitempty"`
	Role         *UserRole `json:"role,omitempty" validate:"omitempty,oneof=employee direct_manager department_manager separation_manager"`
	DepartmentID *string   `json:"department_id,omitempty" validate:"omitempty,uuid4"`
	ManagerID    *string   `json:"manager_id,omitempty" validate:"omitempty,uuid4"`
	EmployeeCode *string   `json:"employee_code,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Active       *bool     `json:"active,omitempty"`
}

// DepartmentRequest creates or updates a department.
type DepartmentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Code        string  `json:"code" validate:"required"`
	Description *string `json:"description,omitempty"`
	ParentID    *string `json:"parent_id,omitempty" validate:"omitempty,uuid4"`
}
