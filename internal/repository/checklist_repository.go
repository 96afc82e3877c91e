package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/suvadu/separation-api/internal/models"
)

const checklistColumns = `id, case_id, template_id, title, description, category, mandatory, display_order, completed, completed_at, completed_by, comment, created_at, updated_at`

// ChecklistRepository provides database access for per-case checklist items.
type ChecklistRepository struct {
	db *sqlx.DB
}

// NewChecklistRepository creates a new instance of ChecklistRepository.
func NewChecklistRepository(db *sqlx.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// FindByID returns a checklist item by identifier.
func (r *ChecklistRepository) FindByID(ctx context.Context, id string) (*models.ChecklistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM checklist_items WHERE id = $1 LIMIT 1`, checklistColumns)
	var item models.ChecklistItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find checklist item by id: %w", err)
	}
	return &item, nil
}

// ListByCase returns all items of a case in display order.
func (r *ChecklistRepository) ListByCase(ctx context.Context, caseID string) ([]models.ChecklistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM checklist_items WHERE case_id = $1 ORDER BY display_order, created_at`, checklistColumns)
	var items []models.ChecklistItem
	if err := r.db.SelectContext(ctx, &items, query, caseID); err != nil {
		return nil, fmt.Errorf("list checklist items: %w", err)
	}
	return items, nil
}

// Update persists the completion state and comment of an item.
func (r *ChecklistRepository) Update(ctx context.Context, item *models.ChecklistItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE checklist_items SET completed = :completed, completed_at = :completed_at, completed_by = :completed_by, comment = :comment, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update checklist item: %w", err)
	}
	return nil
}

// CountMandatoryIncomplete returns how many mandatory items of a case
// are still open. Used to gate checklist submission.
func (r *ChecklistRepository) CountMandatoryIncomplete(ctx context.Context, caseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM checklist_items WHERE case_id = $1 AND mandatory = TRUE AND completed = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, caseID); err != nil {
		return 0, fmt.Errorf("count mandatory incomplete: %w", err)
	}
	return count, nil
}

// CountByCase returns total and completed item counts for a case.
func (r *ChecklistRepository) CountByCase(ctx context.Context, caseID string) (total, completed int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE completed) AS completed FROM checklist_items WHERE case_id = $1`
	var row struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
	}
	if err := r.db.GetContext(ctx, &row, query, caseID); err != nil {
		return 0, 0, fmt.Errorf("count checklist items: %w", err)
	}
	return row.Total, row.Completed, nil
}
