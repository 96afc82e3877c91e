package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleEmployee          UserRole = "employee"
	RoleDirectManager     UserRole = "direct_manager"
	RoleDepartmentManager UserRole = "department_manager"
	RoleSeparationManager UserRole = "separation_manager"
)

// IsManager reports whether the role can hold sign-off assignments.
func (r UserRole) IsManager() bool {
	switch r {
	case RoleDirectManager, RoleDepartmentManager, RoleSeparationManager:
		return true
	}
	return false
}

// IsSeparationManager reports whether the role has full workflow access.
func (r UserRole) IsSeparationManager() bool {
	return r == RoleSeparationManager
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Role         UserRole   `db:"role" json:"role"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	ManagerID    *string    `db:"manager_id" json:"manager_id,omitempty"`
	EmployeeCode *string    `db:"employee_code" json:"employee_code,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display and mail templates.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role         *UserRole
	DepartmentID string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
