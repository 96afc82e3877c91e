package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/suvadu/separation-api/internal/models"
)

const caseColumns = `id, case_number, employee_id, direct_manager_id, separation_manager_id, resignation_date, last_working_day, reason, status, notes, checklist_submitted_at, completed_at, created_at, updated_at`

// SeparationRepository provides database access for separation cases.
type SeparationRepository struct {
	db *sqlx.DB
}

// NewSeparationRepository creates a new instance of SeparationRepository.
func NewSeparationRepository(db *sqlx.DB) *SeparationRepository {
	return &SeparationRepository{db: db}
}

// HasActiveCase reports whether the employee already has a case in a
// non-terminal status.
func (r *SeparationRepository) HasActiveCase(ctx context.Context, employeeID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM separation_cases WHERE employee_id = $1 AND status NOT IN ('completed', 'cancelled')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, employeeID); err != nil {
		return false, fmt.Errorf("check active case: %w", err)
	}
	return count > 0, nil
}

// CreateWithChecklist inserts a case and its checklist snapshot in one
// transaction. The case number SEP-<year>-NNNN is derived from the count
// of cases created in the same year; a per-year advisory lock serialises
// concurrent creations so two cases never share a number.
func (r *SeparationRepository) CreateWithChecklist(ctx context.Context, sc *models.SeparationCase, templates []models.ChecklistTemplate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create case tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	year := now.Year()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(year)); err != nil {
		return fmt.Errorf("acquire case number lock: %w", err)
	}

	var yearCount int
	if err := tx.GetContext(ctx, &yearCount, `SELECT COUNT(*) FROM separation_cases WHERE EXTRACT(YEAR FROM created_at) = $1`, year); err != nil {
		return fmt.Errorf("count cases for year: %w", err)
	}

	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	sc.CaseNumber = fmt.Sprintf("SEP-%d-%04d", year, yearCount+1)
	sc.Status = models.CaseChecklistPending
	sc.CreatedAt = now
	sc.UpdatedAt = now

	const insertCase = `INSERT INTO separation_cases (id, case_number, employee_id, direct_manager_id, separation_manager_id, resignation_date, last_working_day, reason, status, notes, created_at, updated_at) VALUES (:id, :case_number, :employee_id, :direct_manager_id, :separation_manager_id, :resignation_date, :last_working_day, :reason, :status, :notes, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertCase, sc); err != nil {
		return fmt.Errorf("insert case: %w", err)
	}

	const insertItem = `INSERT INTO checklist_items (id, case_id, template_id, title, description, category, mandatory, display_order, completed, created_at, updated_at) VALUES (:id, :case_id, :template_id, :title, :description, :category, :mandatory, :display_order, FALSE, :created_at, :updated_at)`
	for _, tpl := range templates {
		templateID := tpl.ID
		item := models.ChecklistItem{
			ID:           uuid.NewString(),
			CaseID:       sc.ID,
			TemplateID:   &templateID,
			Title:        tpl.Title,
			Description:  tpl.Description,
			Category:     tpl.Category,
			Mandatory:    tpl.Mandatory,
			DisplayOrder: tpl.DisplayOrder,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if _, err := tx.NamedExecContext(ctx, insertItem, &item); err != nil {
			return fmt.Errorf("insert checklist item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create case tx: %w", err)
	}
	return nil
}

// FindByID returns a case by identifier.
func (r *SeparationRepository) FindByID(ctx context.Context, id string) (*models.SeparationCase, error) {
	query := fmt.Sprintf(`SELECT %s FROM separation_cases WHERE id = $1 LIMIT 1`, caseColumns)
	var sc models.SeparationCase
	if err := r.db.GetContext(ctx, &sc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find case by id: %w", err)
	}
	return &sc, nil
}

// FindSummary returns a case joined with the employee and manager names.
func (r *SeparationRepository) FindSummary(ctx context.Context, id string) (*models.CaseSummary, error) {
	const query = `SELECT sc.id, sc.case_number, sc.employee_id, sc.direct_manager_id, sc.separation_manager_id, sc.resignation_date, sc.last_working_day, sc.reason, sc.status, sc.notes, sc.checklist_submitted_at, sc.completed_at, sc.created_at, sc.updated_at,
		e.first_name || ' ' || e.last_name AS employee_name, e.email AS employee_email,
		m.first_name || ' ' || m.last_name AS direct_manager_name
		FROM separation_cases sc
		JOIN users e ON e.id = sc.employee_id
		LEFT JOIN users m ON m.id = sc.direct_manager_id
		WHERE sc.id = $1 LIMIT 1`
	var summary models.CaseSummary
	if err := r.db.GetContext(ctx, &summary, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find case summary: %w", err)
	}
	return &summary, nil
}

// List returns case summaries matching the filter with a total count.
// Role scoping is expressed through the filter's identity fields.
func (r *SeparationRepository) List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error) {
	baseQuery := `FROM separation_cases sc
		JOIN users e ON e.id = sc.employee_id
		LEFT JOIN users m ON m.id = sc.direct_manager_id
		WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("sc.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("sc.employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.DirectManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("(sc.direct_manager_id = $%d OR sc.employee_id IN (SELECT id FROM users WHERE manager_id = $%d))", len(args)+1, len(args)+1))
		args = append(args, filter.DirectManagerID)
	}
	if filter.SignoffAssigneeID != "" {
		conditions = append(conditions, fmt.Sprintf("sc.id IN (SELECT case_id FROM signoffs WHERE assignee_id = $%d)", len(args)+1))
		args = append(args, filter.SignoffAssigneeID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT sc.id, sc.case_number, sc.employee_id, sc.direct_manager_id, sc.separation_manager_id, sc.resignation_date, sc.last_working_day, sc.reason, sc.status, sc.notes, sc.checklist_submitted_at, sc.completed_at, sc.created_at, sc.updated_at,
		e.first_name || ' ' || e.last_name AS employee_name, e.email AS employee_email,
		m.first_name || ' ' || m.last_name AS direct_manager_name
		%s ORDER BY sc.created_at DESC LIMIT %d OFFSET %d`, baseQuery, pageSize, offset)

	var cases []models.CaseSummary
	if err := r.db.SelectContext(ctx, &cases, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list cases: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count cases: %w", err)
	}

	return cases, total, nil
}

// ListByStatus returns all cases in the given statuses, for reporting.
func (r *SeparationRepository) ListByStatus(ctx context.Context, statuses ...models.CaseStatus) ([]models.CaseSummary, error) {
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = s
	}
	query := fmt.Sprintf(`SELECT sc.id, sc.case_number, sc.employee_id, sc.direct_manager_id, sc.separation_manager_id, sc.resignation_date, sc.last_working_day, sc.reason, sc.status, sc.notes, sc.checklist_submitted_at, sc.completed_at, sc.created_at, sc.updated_at,
		e.first_name || ' ' || e.last_name AS employee_name, e.email AS employee_email,
		m.first_name || ' ' || m.last_name AS direct_manager_name
		FROM separation_cases sc
		JOIN users e ON e.id = sc.employee_id
		LEFT JOIN users m ON m.id = sc.direct_manager_id
		WHERE sc.status IN (%s) ORDER BY sc.created_at DESC`, strings.Join(placeholders, ", "))

	var cases []models.CaseSummary
	if err := r.db.SelectContext(ctx, &cases, query, args...); err != nil {
		return nil, fmt.Errorf("list cases by status: %w", err)
	}
	return cases, nil
}

// Update updates the mutable case fields.
func (r *SeparationRepository) Update(ctx context.Context, sc *models.SeparationCase) error {
	sc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE separation_cases SET resignation_date = :resignation_date, last_working_day = :last_working_day, reason = :reason, status = :status, notes = :notes, checklist_submitted_at = :checklist_submitted_at, completed_at = :completed_at, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, sc); err != nil {
		return fmt.Errorf("update case: %w", err)
	}
	return nil
}

// UpdateStatus transitions the case status.
func (r *SeparationRepository) UpdateStatus(ctx context.Context, id string, status models.CaseStatus) error {
	const query = `UPDATE separation_cases SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	return nil
}

// CountByStatus returns the number of cases per status.
func (r *SeparationRepository) CountByStatus(ctx context.Context) (map[models.CaseStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS count FROM separation_cases GROUP BY status`
	rows := []struct {
		Status models.CaseStatus `db:"status"`
		Count  int               `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count cases by status: %w", err)
	}
	counts := make(map[models.CaseStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
