package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
	"github.com/suvadu/separation-api/pkg/storage"
)

type mockReportCases struct {
	cases        []models.CaseSummary
	lastStatuses []models.CaseStatus
}

func (m *mockReportCases) ListByStatus(ctx context.Context, statuses ...models.CaseStatus) ([]models.CaseSummary, error) {
	m.lastStatuses = statuses
	return m.cases, nil
}

func reportFixture(t *testing.T, enabled bool) (*ReportService, *mockReportCases) {
	t.Helper()
	cases := &mockReportCases{}
	summary := models.CaseSummary{}
	summary.ID = "case-1"
	summary.CaseNumber = "SEP-2026-0001"
	summary.Status = models.CaseCompleted
	summary.LastWorkingDay = time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	summary.EmployeeName = "Asha Rao"
	summary.EmployeeEmail = "asha@example.com"
	cases.cases = []models.CaseSummary{summary}

	var store *storage.LocalStorage
	var signer *storage.SignedURLSigner
	if enabled {
		var err error
		store, err = storage.NewLocalStorage(t.TempDir())
		require.NoError(t, err)
		signer = storage.NewSignedURLSigner("test-secret", time.Hour)
	}
	directory := &mockDirectoryRepo{users: map[string]*models.User{}}
	return NewReportService(cases, directory, store, signer, zap.NewNop(), enabled), cases
}

func TestReportServiceGenerateCSVAndDownload(t *testing.T) {
	svc, _ := reportFixture(t, true)

	result, err := svc.GenerateCaseRegister(context.Background(), sepManagerClaims(), ReportFormatCSV, nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", result.Format)
	require.True(t, strings.HasPrefix(result.URL, "/api/v1/reports/download/"))

	token := strings.TrimPrefix(result.URL, "/api/v1/reports/download/")
	download, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	defer download.File.Close()

	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(content), "SEP-2026-0001")
	assert.Contains(t, string(content), "Asha Rao")
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))
}

func TestReportServiceGeneratePDF(t *testing.T) {
	svc, _ := reportFixture(t, true)

	result, err := svc.GenerateCaseRegister(context.Background(), sepManagerClaims(), ReportFormatPDF, []models.CaseStatus{models.CaseCompleted})
	require.NoError(t, err)

	token := strings.TrimPrefix(result.URL, "/api/v1/reports/download/")
	download, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	defer download.File.Close()

	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.True(t, len(content) > 0)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}

func TestReportServiceDefaultsToAllStatuses(t *testing.T) {
	svc, cases := reportFixture(t, true)

	_, err := svc.GenerateCaseRegister(context.Background(), sepManagerClaims(), ReportFormatCSV, nil)
	require.NoError(t, err)
	assert.Len(t, cases.lastStatuses, 5)
}

func TestReportServiceDisabled(t *testing.T) {
	svc, _ := reportFixture(t, false)

	_, err := svc.GenerateCaseRegister(context.Background(), sepManagerClaims(), ReportFormatCSV, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestReportServiceUnknownFormat(t *testing.T) {
	svc, _ := reportFixture(t, true)

	_, err := svc.GenerateCaseRegister(context.Background(), sepManagerClaims(), ReportFormat("xlsx"), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceInvalidToken(t *testing.T) {
	svc, _ := reportFixture(t, true)

	_, err := svc.ResolveDownload("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
