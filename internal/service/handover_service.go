package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
)

type handoverRepository interface {
	FindByID(ctx context.Context, id string) (*models.HandoverSchedule, error)
	ListByCase(ctx context.Context, caseID string) ([]models.HandoverSchedule, error)
	Create(ctx context.Context, hs *models.HandoverSchedule) error
	Update(ctx context.Context, hs *models.HandoverSchedule) error
	Delete(ctx context.Context, id string) error
}

// CalendarPublisher pushes a scheduled session to an external calendar.
// The local record is the source of truth; publish failures are logged
// and never fail the request.
type CalendarPublisher interface {
	PublishSession(ctx context.Context, hs *models.HandoverSchedule) error
}

// HandoverService manages knowledge-transfer sessions on a case.
type HandoverService struct {
	repo      handoverRepository
	cases     separationCaseRepository
	signoffs  caseSignoffRepository
	users     caseDirectoryRepository
	calendar  CalendarPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHandoverService constructs a HandoverService instance.
func NewHandoverService(repo handoverRepository, cases separationCaseRepository, signoffs caseSignoffRepository, users caseDirectoryRepository, calendar CalendarPublisher, validate *validator.Validate, logger *zap.Logger) *HandoverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &HandoverService{repo: repo, cases: cases, signoffs: signoffs, users: users, calendar: calendar, validator: validate, logger: logger}
}

// ListByCase returns the handover sessions of a case.
func (s *HandoverService) ListByCase(ctx context.Context, claims *models.JWTClaims, caseID string) ([]models.HandoverSchedule, error) {
	if _, err := s.authorizeCase(ctx, claims, caseID, AccessReadOnly); err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list handovers")
	}
	return sessions, nil
}

// Create schedules a session on a non-terminal case.
func (s *HandoverService) Create(ctx context.Context, claims *models.JWTClaims, caseID string, req models.CreateHandoverRequest) (*models.HandoverSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid handover payload")
	}

	sc, err := s.authorizeCase(ctx, claims, caseID, AccessFull)
	if err != nil {
		return nil, err
	}
	if sc.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "case is already closed")
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_at must be RFC 3339")
	}

	var attendees json.RawMessage
	if len(req.Attendees) > 0 {
		attendees, _ = json.Marshal(req.Attendees)
	}

	hs := &models.HandoverSchedule{
		CaseID:      caseID,
		Title:       req.Title,
		Description: req.Description,
		ScheduledAt: scheduledAt.UTC(),
		DurationMin: req.DurationMin,
		Location:    req.Location,
		Attendees:   attendees,
		CreatedBy:   claims.UserID,
	}
	if err := s.repo.Create(ctx, hs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create handover")
	}

	s.recordAudit(ctx, claims, models.AuditActionHandoverCreate, hs.ID)
	s.publish(ctx, hs)
	return hs, nil
}

// Update edits or closes a session.
func (s *HandoverService) Update(ctx context.Context, claims *models.JWTClaims, caseID, handoverID string, req models.UpdateHandoverRequest) (*models.HandoverSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid handover payload")
	}

	if _, err := s.authorizeCase(ctx, claims, caseID, AccessFull); err != nil {
		return nil, err
	}

	hs, err := s.repo.FindByID(ctx, handoverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "handover not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load handover")
	}
	if hs.CaseID != caseID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "handover not found")
	}

	if req.Title != nil {
		hs.Title = *req.Title
	}
	if req.Description != nil {
		hs.Description = req.Description
	}
	if req.ScheduledAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_at must be RFC 3339")
		}
		hs.ScheduledAt = parsed.UTC()
	}
	if req.DurationMin != nil {
		hs.DurationMin = *req.DurationMin
	}
	if req.Location != nil {
		hs.Location = req.Location
	}
	if len(req.Attendees) > 0 {
		attendees, _ := json.Marshal(req.Attendees)
		hs.Attendees = attendees
	}
	if req.Status != nil {
		hs.Status = *req.Status
	}
	if req.Notes != nil {
		hs.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, hs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update handover")
	}

	s.recordAudit(ctx, claims, models.AuditActionHandoverUpdate, hs.ID)
	if hs.Status == models.HandoverScheduled {
		s.publish(ctx, hs)
	}
	return hs, nil
}

// Delete removes a session from a case.
func (s *HandoverService) Delete(ctx context.Context, claims *models.JWTClaims, caseID, handoverID string) error {
	if _, err := s.authorizeCase(ctx, claims, caseID, AccessFull); err != nil {
		return err
	}

	hs, err := s.repo.FindByID(ctx, handoverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "handover not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load handover")
	}
	if hs.CaseID != caseID {
		return appErrors.Clone(appErrors.ErrNotFound, "handover not found")
	}

	if err := s.repo.Delete(ctx, handoverID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete handover")
	}
	return nil
}

func (s *HandoverService) authorizeCase(ctx context.Context, claims *models.JWTClaims, caseID string, need CaseAccess) (*models.SeparationCase, error) {
	sc, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}

	holds := false
	if !claims.Role.IsSeparationManager() {
		holds, err = s.signoffs.HoldsSignoff(ctx, caseID, claims.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check signoff access")
		}
	}

	access := ResolveCaseAccess(sc, claims.UserID, claims.Role, holds)
	if access < need {
		if access == AccessNone {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no access to this case")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "read-only access to this case")
	}
	return sc, nil
}

func (s *HandoverService) publish(ctx context.Context, hs *models.HandoverSchedule) {
	if s.calendar == nil {
		return
	}
	if err := s.calendar.PublishSession(ctx, hs); err != nil {
		s.logger.Warn("failed to publish handover to calendar", zap.String("handover_id", hs.ID), zap.Error(err))
	}
}

func (s *HandoverService) recordAudit(ctx context.Context, claims *models.JWTClaims, action, handoverID string) {
	if s.users == nil {
		return
	}
	userID := claims.UserID
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "handover_schedule",
		ResourceID: &handoverID,
	}); err != nil {
		s.logger.Warn("failed to record handover audit log", zap.Error(err))
	}
}
