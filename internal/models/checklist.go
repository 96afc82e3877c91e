package models

import "time"

// ChecklistTemplate is a reusable item definition copied into new cases.
type ChecklistTemplate struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Category     *string   `db:"category" json:"category,omitempty"`
	Mandatory    bool      `db:"mandatory" json:"mandatory"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ChecklistItem is a per-case snapshot of a template item. Edits to
// templates after case creation never touch existing items.
type ChecklistItem struct {
	ID           string     `db:"id" json:"id"`
	CaseID       string     `db:"case_id" json:"case_id"`
	TemplateID   *string    `db:"template_id" json:"template_id,omitempty"`
	Title        string     `db:"title" json:"title"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Category     *string    `db:"category" json:"category,omitempty"`
	Mandatory    bool       `db:"mandatory" json:"mandatory"`
	DisplayOrder int        `db:"display_order" json:"display_order"`
	Completed    bool       `db:"completed" json:"completed"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CompletedBy  *string    `db:"completed_by" json:"completed_by,omitempty"`
	Comment      *string    `db:"comment" json:"comment,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
