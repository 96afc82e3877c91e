package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
)

// EmployeeDashboard is the self-service view of one's own offboarding.
type EmployeeDashboard struct {
	ActiveCase      *models.CaseSummary `json:"active_case"`
	PendingSignoffs []models.SignOff    `json:"pending_signoffs"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// ManagerDashboard is the operational overview for separation managers.
type ManagerDashboard struct {
	StatusCounts    map[models.CaseStatus]int `json:"status_counts"`
	ActiveCases     int                       `json:"active_cases"`
	RecentCases     []models.CaseSummary      `json:"recent_cases"`
	UpcomingExits   []models.CaseSummary      `json:"upcoming_exits"`
	PendingSignoffs []models.SignOff          `json:"pending_signoffs"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

type dashboardCaseRepository interface {
	List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error)
	CountByStatus(ctx context.Context) (map[models.CaseStatus]int, error)
	ListByStatus(ctx context.Context, statuses ...models.CaseStatus) ([]models.CaseSummary, error)
}

// DashboardService aggregates workflow state into role-specific views.
// Views are cached briefly in Redis; any case mutation invalidates them.
type DashboardService struct {
	cases    dashboardCaseRepository
	signoffs caseSignoffRepository
	cache    *CacheService
	ttl      time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(cases dashboardCaseRepository, signoffs caseSignoffRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &DashboardService{cases: cases, signoffs: signoffs, cache: cache, ttl: ttl, logger: logger}
}

// EmployeeView returns the caller's own offboarding snapshot.
func (s *DashboardService) EmployeeView(ctx context.Context, claims *models.JWTClaims) (*EmployeeDashboard, error) {
	key := fmt.Sprintf("dashboard:employee:%s", claims.UserID)
	var cached EmployeeDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	cases, _, err := s.cases.List(ctx, models.CaseFilter{EmployeeID: claims.UserID, PageSize: 10})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cases")
	}

	view := &EmployeeDashboard{GeneratedAt: time.Now().UTC()}
	for i := range cases {
		if !cases[i].Status.Terminal() {
			view.ActiveCase = &cases[i]
			break
		}
	}

	pending, err := s.signoffs.ListPendingForUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signoffs")
	}
	view.PendingSignoffs = pending

	if err := s.cache.Set(ctx, key, view, s.ttl); err != nil {
		s.logger.Warn("failed to cache employee dashboard", zap.Error(err))
	}
	return view, nil
}

// ManagerView returns the operational overview. Upcoming exits are the
// active cases whose last working day falls within the next 30 days.
func (s *DashboardService) ManagerView(ctx context.Context, claims *models.JWTClaims) (*ManagerDashboard, error) {
	key := "dashboard:manager"
	var cached ManagerDashboard
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		cached.PendingSignoffs = nil
		if err := s.attachPendingSignoffs(ctx, claims, &cached); err != nil {
			return nil, err
		}
		return &cached, nil
	}

	counts, err := s.cases.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count cases")
	}

	active, err := s.cases.ListByStatus(ctx, models.CaseChecklistPending, models.CaseChecklistSubmitted, models.CaseSignoffPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active cases")
	}

	horizon := time.Now().UTC().AddDate(0, 0, 30)
	var upcoming []models.CaseSummary
	for _, c := range active {
		if c.LastWorkingDay.Before(horizon) {
			upcoming = append(upcoming, c)
		}
	}

	recent, _, err := s.cases.List(ctx, models.CaseFilter{PageSize: 5})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent cases")
	}

	view := &ManagerDashboard{
		StatusCounts:  counts,
		ActiveCases:   len(active),
		RecentCases:   recent,
		UpcomingExits: upcoming,
		GeneratedAt:   time.Now().UTC(),
	}

	if err := s.cache.Set(ctx, key, view, s.ttl); err != nil {
		s.logger.Warn("failed to cache manager dashboard", zap.Error(err))
	}

	if err := s.attachPendingSignoffs(ctx, claims, view); err != nil {
		return nil, err
	}
	return view, nil
}

// The pending sign-off queue is per caller, so it stays out of the
// shared cached payload.
func (s *DashboardService) attachPendingSignoffs(ctx context.Context, claims *models.JWTClaims, view *ManagerDashboard) error {
	pending, err := s.signoffs.ListPendingForUser(ctx, claims.UserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signoffs")
	}
	view.PendingSignoffs = pending
	return nil
}
