package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/suvadu/separation-api/internal/models"
)

const templateColumns = `id, title, description, category, mandatory, display_order, active, created_at, updated_at`

// TemplateRepository provides database access for checklist templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository creates a new instance of TemplateRepository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindByID returns a template by identifier.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM checklist_templates WHERE id = $1 LIMIT 1`, templateColumns)
	var tpl models.ChecklistTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return &tpl, nil
}

// List returns templates, optionally restricted to active ones.
func (r *TemplateRepository) List(ctx context.Context, activeOnly bool) ([]models.ChecklistTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM checklist_templates`, templateColumns)
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY display_order, created_at`

	var templates []models.ChecklistTemplate
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// Create inserts a new template.
func (r *TemplateRepository) Create(ctx context.Context, tpl *models.ChecklistTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	const query = `INSERT INTO checklist_templates (id, title, description, category, mandatory, display_order, active, created_at, updated_at) VALUES (:id, :title, :description, :category, :mandatory, :display_order, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// Update updates mutable fields of a template. Existing case items are
// unaffected; they hold their own snapshot of the template fields.
func (r *TemplateRepository) Update(ctx context.Context, tpl *models.ChecklistTemplate) error {
	tpl.UpdatedAt = time.Now().UTC()
	const query = `UPDATE checklist_templates SET title = :title, description = :description, category = :category, mandatory = :mandatory, display_order = :display_order, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// Deactivate soft deletes a template so new cases stop copying it.
func (r *TemplateRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE checklist_templates SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate template: %w", err)
	}
	return nil
}
