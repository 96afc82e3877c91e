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

const signoffSelect = `SELECT s.id, s.case_id, s.department_id, s.assignee_id, s.status, s.comment, s.decided_at, s.created_at, s.updated_at,
	d.name AS department_name,
	a.first_name || ' ' || a.last_name AS assignee_name
	FROM signoffs s
	JOIN departments d ON d.id = s.department_id
	JOIN users a ON a.id = s.assignee_id`

// SignoffRepository provides database access for case sign-offs.
type SignoffRepository struct {
	db *sqlx.DB
}

// NewSignoffRepository creates a new instance of SignoffRepository.
func NewSignoffRepository(db *sqlx.DB) *SignoffRepository {
	return &SignoffRepository{db: db}
}

// Create inserts a pending sign-off for a case and department.
func (r *SignoffRepository) Create(ctx context.Context, so *models.SignOff) error {
	if so.ID == "" {
		so.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	so.Status = models.SignOffPending
	so.CreatedAt = now
	so.UpdatedAt = now

	const query = `INSERT INTO signoffs (id, case_id, department_id, assignee_id, status, comment, created_at, updated_at) VALUES (:id, :case_id, :department_id, :assignee_id, :status, :comment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, so); err != nil {
		return fmt.Errorf("create signoff: %w", err)
	}
	return nil
}

// ExistsForDepartment reports whether the case already has a sign-off
// for the department.
func (r *SignoffRepository) ExistsForDepartment(ctx context.Context, caseID, departmentID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM signoffs WHERE case_id = $1 AND department_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, caseID, departmentID); err != nil {
		return false, fmt.Errorf("check signoff exists: %w", err)
	}
	return count > 0, nil
}

// FindByID returns a sign-off by identifier.
func (r *SignoffRepository) FindByID(ctx context.Context, id string) (*models.SignOff, error) {
	query := signoffSelect + ` WHERE s.id = $1 LIMIT 1`
	var so models.SignOff
	if err := r.db.GetContext(ctx, &so, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find signoff by id: %w", err)
	}
	return &so, nil
}

// ListByCase returns all sign-offs of a case.
func (r *SignoffRepository) ListByCase(ctx context.Context, caseID string) ([]models.SignOff, error) {
	query := signoffSelect + ` WHERE s.case_id = $1 ORDER BY s.created_at`
	var signoffs []models.SignOff
	if err := r.db.SelectContext(ctx, &signoffs, query, caseID); err != nil {
		return nil, fmt.Errorf("list signoffs: %w", err)
	}
	return signoffs, nil
}

// ListPendingForUser returns the sign-offs awaiting the user's decision.
func (r *SignoffRepository) ListPendingForUser(ctx context.Context, userID string) ([]models.SignOff, error) {
	query := signoffSelect + ` WHERE s.assignee_id = $1 AND s.status = 'pending' ORDER BY s.created_at`
	var signoffs []models.SignOff
	if err := r.db.SelectContext(ctx, &signoffs, query, userID); err != nil {
		return nil, fmt.Errorf("list pending signoffs: %w", err)
	}
	return signoffs, nil
}

// HoldsSignoff reports whether the user is the assignee of any sign-off
// on the case. Holders get read-only case access.
func (r *SignoffRepository) HoldsSignoff(ctx context.Context, caseID, userID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM signoffs WHERE case_id = $1 AND assignee_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, caseID, userID); err != nil {
		return false, fmt.Errorf("check signoff holder: %w", err)
	}
	return count > 0, nil
}

// CountByCase returns total and approved sign-off counts for a case.
func (r *SignoffRepository) CountByCase(ctx context.Context, caseID string) (total, approved int, err error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'approved') AS approved FROM signoffs WHERE case_id = $1`
	var row struct {
		Total    int `db:"total"`
		Approved int `db:"approved"`
	}
	if err := r.db.GetContext(ctx, &row, query, caseID); err != nil {
		return 0, 0, fmt.Errorf("count signoffs: %w", err)
	}
	return row.Total, row.Approved, nil
}

// DecideAndResolve records a decision on a sign-off and resolves the
// case outcome inside one transaction. The case row is locked first so
// two racing final approvals cannot both observe an undecided set; the
// second waits and sees the completed state. It returns the aggregate
// resolution after the decision was applied.
func (r *SignoffRepository) DecideAndResolve(ctx context.Context, signoffID, caseID string, status models.SignOffStatus, comment *string) (models.SignOffResolution, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin decide tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var caseStatus models.CaseStatus
	if err := tx.GetContext(ctx, &caseStatus, `SELECT status FROM separation_cases WHERE id = $1 FOR UPDATE`, caseID); err != nil {
		return "", fmt.Errorf("lock case row: %w", err)
	}

	const decide = `UPDATE signoffs SET status = $2, comment = $3, decided_at = $4, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, decide, signoffID, status, comment, now); err != nil {
		return "", fmt.Errorf("update signoff: %w", err)
	}

	var statuses []models.SignOffStatus
	if err := tx.SelectContext(ctx, &statuses, `SELECT status FROM signoffs WHERE case_id = $1`, caseID); err != nil {
		return "", fmt.Errorf("select signoff statuses: %w", err)
	}

	resolution := models.ResolveSignoffs(statuses)
	if resolution == models.ResolutionAllApproved && !caseStatus.Terminal() {
		const complete = `UPDATE separation_cases SET status = $2, completed_at = $3, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, complete, caseID, models.CaseCompleted, now); err != nil {
			return "", fmt.Errorf("complete case: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit decide tx: %w", err)
	}
	return resolution, nil
}
