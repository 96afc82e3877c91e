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

const handoverColumns = `id, case_id, title, description, scheduled_at, duration_min, location, attendees, status, notes, created_by, created_at, updated_at`

// HandoverRepository provides database access for handover schedules.
type HandoverRepository struct {
	db *sqlx.DB
}

// NewHandoverRepository creates a new instance of HandoverRepository.
func NewHandoverRepository(db *sqlx.DB) *HandoverRepository {
	return &HandoverRepository{db: db}
}

// FindByID returns a handover schedule by identifier.
func (r *HandoverRepository) FindByID(ctx context.Context, id string) (*models.HandoverSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM handover_schedules WHERE id = $1 LIMIT 1`, handoverColumns)
	var hs models.HandoverSchedule
	if err := r.db.GetContext(ctx, &hs, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find handover by id: %w", err)
	}
	return &hs, nil
}

// ListByCase returns all handover sessions of a case, soonest first.
func (r *HandoverRepository) ListByCase(ctx context.Context, caseID string) ([]models.HandoverSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM handover_schedules WHERE case_id = $1 ORDER BY scheduled_at`, handoverColumns)
	var sessions []models.HandoverSchedule
	if err := r.db.SelectContext(ctx, &sessions, query, caseID); err != nil {
		return nil, fmt.Errorf("list handovers: %w", err)
	}
	return sessions, nil
}

// Create inserts a new handover session.
func (r *HandoverRepository) Create(ctx context.Context, hs *models.HandoverSchedule) error {
	if hs.ID == "" {
		hs.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if hs.Status == "" {
		hs.Status = models.HandoverScheduled
	}
	hs.CreatedAt = now
	hs.UpdatedAt = now

	const query = `INSERT INTO handover_schedules (id, case_id, title, description, scheduled_at, duration_min, location, attendees, status, notes, created_by, created_at, updated_at) VALUES (:id, :case_id, :title, :description, :scheduled_at, :duration_min, :location, :attendees, :status, :notes, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, hs); err != nil {
		return fmt.Errorf("create handover: %w", err)
	}
	return nil
}

// Update persists mutable fields of a handover session.
func (r *HandoverRepository) Update(ctx context.Context, hs *models.HandoverSchedule) error {
	hs.UpdatedAt = time.Now().UTC()
	const query = `UPDATE handover_schedules SET title = :title, description = :description, scheduled_at = :scheduled_at, duration_min = :duration_min, location = :location, attendees = :attendees, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, hs); err != nil {
		return fmt.Errorf("update handover: %w", err)
	}
	return nil
}

// Delete removes a handover session.
func (r *HandoverRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM handover_schedules WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete handover: %w", err)
	}
	return nil
}
