package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
)

// CalendarService is the current CalendarPublisher implementation. It
// records the event in the application log only.
// TODO: replace with the CalDAV push once the scheduling backend is provisioned.
type CalendarService struct {
	logger  *zap.Logger
	enabled bool
}

// NewCalendarService constructs a CalendarService instance.
func NewCalendarService(logger *zap.Logger, enabled bool) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{logger: logger, enabled: enabled}
}

// PublishSession emits the session as a structured log event.
func (s *CalendarService) PublishSession(ctx context.Context, hs *models.HandoverSchedule) error {
	if !s.enabled {
		return nil
	}
	s.logger.Info("calendar event published",
		zap.String("handover_id", hs.ID),
		zap.String("case_id", hs.CaseID),
		zap.String("title", hs.Title),
		zap.Time("scheduled_at", hs.ScheduledAt),
		zap.Int("duration_min", hs.DurationMin))
	return nil
}
