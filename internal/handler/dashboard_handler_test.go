package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/middleware"
	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/internal/service"
)

type fakeDashboardCases struct {
	summaries []models.CaseSummary
	counts    map[models.CaseStatus]int
}

func (f *fakeDashboardCases) List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error) {
	return f.summaries, len(f.summaries), nil
}

func (f *fakeDashboardCases) CountByStatus(ctx context.Context) (map[models.CaseStatus]int, error) {
	return f.counts, nil
}

func (f *fakeDashboardCases) ListByStatus(ctx context.Context, statuses ...models.CaseStatus) ([]models.CaseSummary, error) {
	return f.summaries, nil
}

type fakeDashboardSignoffs struct {
	pending []models.SignOff
}

func (f *fakeDashboardSignoffs) Create(ctx context.Context, so *models.SignOff) error { return nil }

func (f *fakeDashboardSignoffs) ExistsForDepartment(ctx context.Context, caseID, departmentID string) (bool, error) {
	return false, nil
}

func (f *fakeDashboardSignoffs) FindByID(ctx context.Context, id string) (*models.SignOff, error) {
	return nil, nil
}

func (f *fakeDashboardSignoffs) ListByCase(ctx context.Context, caseID string) ([]models.SignOff, error) {
	return nil, nil
}

func (f *fakeDashboardSignoffs) ListPendingForUser(ctx context.Context, userID string) ([]models.SignOff, error) {
	return f.pending, nil
}

func (f *fakeDashboardSignoffs) HoldsSignoff(ctx context.Context, caseID, userID string) (bool, error) {
	return false, nil
}

func (f *fakeDashboardSignoffs) CountByCase(ctx context.Context, caseID string) (int, int, error) {
	return 0, 0, nil
}

func (f *fakeDashboardSignoffs) DecideAndResolve(ctx context.Context, signoffID, caseID string, status models.SignOffStatus, comment *string) (models.SignOffResolution, error) {
	return models.ResolutionPending, nil
}

type dashboardEnvelope struct {
	Data map[string]interface{} `json:"data"`
}

func newDashboardHandler(cases *fakeDashboardCases, signoffs *fakeDashboardSignoffs) *DashboardHandler {
	svc := service.NewDashboardService(cases, signoffs, nil, time.Minute, zap.NewNop())
	return NewDashboardHandler(svc)
}

func activeSummary() models.CaseSummary {
	summary := models.CaseSummary{}
	summary.ID = "case-1"
	summary.CaseNumber = "SEP-2026-0001"
	summary.Status = models.CaseChecklistPending
	summary.LastWorkingDay = time.Now().UTC().AddDate(0, 0, 14)
	summary.EmployeeName = "Asha Rao"
	return summary
}

func TestDashboardHandlerEmployee(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDashboardHandler(
		&fakeDashboardCases{summaries: []models.CaseSummary{activeSummary()}},
		&fakeDashboardSignoffs{pending: []models.SignOff{{ID: "signoff-1", Status: models.SignOffPending}}},
	)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/employee", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "emp-1", Role: models.RoleEmployee})

	handler.Employee(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope dashboardEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	activeCase, ok := envelope.Data["active_case"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "SEP-2026-0001", activeCase["case_number"])
	assert.Len(t, envelope.Data["pending_signoffs"], 1)
}

func TestDashboardHandlerEmployeeRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDashboardHandler(&fakeDashboardCases{}, &fakeDashboardSignoffs{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/employee", nil)

	handler.Employee(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerManager(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDashboardHandler(
		&fakeDashboardCases{
			summaries: []models.CaseSummary{activeSummary()},
			counts: map[models.CaseStatus]int{
				models.CaseChecklistPending: 3,
				models.CaseCompleted:        7,
			},
		},
		&fakeDashboardSignoffs{},
	)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/manager", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "mgr-1", Role: models.RoleSeparationManager})

	handler.Manager(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope dashboardEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	counts, ok := envelope.Data["status_counts"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), counts["checklist_pending"])
	assert.Equal(t, float64(1), envelope.Data["active_cases"])
	assert.Len(t, envelope.Data["recent_cases"], 1)
	assert.Len(t, envelope.Data["upcoming_exits"], 1)
}
