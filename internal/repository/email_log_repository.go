package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/suvadu/separation-api/internal/models"
)

// EmailLogRepository records delivery attempts for outbound mail.
type EmailLogRepository struct {
	db *sqlx.DB
}

// NewEmailLogRepository creates a new instance of EmailLogRepository.
func NewEmailLogRepository(db *sqlx.DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Create inserts a delivery attempt record.
func (r *EmailLogRepository) Create(ctx context.Context, log *models.EmailLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO email_logs (id, case_id, recipient, kind, subject, status, error, created_at) VALUES (:id, :case_id, :recipient, :kind, :subject, :status, :error, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create email log: %w", err)
	}
	return nil
}

// ListByCase returns delivery records for a case, newest first.
func (r *EmailLogRepository) ListByCase(ctx context.Context, caseID string) ([]models.EmailLog, error) {
	const query = `SELECT id, case_id, recipient, kind, subject, status, error, created_at FROM email_logs WHERE case_id = $1 ORDER BY created_at DESC`
	var logs []models.EmailLog
	if err := r.db.SelectContext(ctx, &logs, query, caseID); err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	return logs, nil
}
