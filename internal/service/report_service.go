package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
	"github.com/suvadu/separation-api/pkg/export"
	"github.com/suvadu/separation-api/pkg/storage"
)

type reportCaseRepository interface {
	ListByStatus(ctx context.Context, statuses ...models.CaseStatus) ([]models.CaseSummary, error)
}

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportResult describes a generated export ready for download.
type ReportResult struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ReportService renders the separation case register to CSV or PDF and
// hands out signed download links.
type ReportService struct {
	cases   reportCaseRepository
	users   caseDirectoryRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	storage *storage.LocalStorage
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	enabled bool
}

// NewReportService constructs a ReportService instance.
func NewReportService(cases reportCaseRepository, users caseDirectoryRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, enabled bool) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		cases:   cases,
		users:   users,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		storage: store,
		signer:  signer,
		logger:  logger,
		enabled: enabled,
	}
}

// GenerateCaseRegister exports the full case register, optionally
// restricted to a set of statuses.
func (s *ReportService) GenerateCaseRegister(ctx context.Context, claims *models.JWTClaims, format ReportFormat, statuses []models.CaseStatus) (*ReportResult, error) {
	if !s.enabled || s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "report generation is disabled")
	}
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	if len(statuses) == 0 {
		statuses = []models.CaseStatus{
			models.CaseChecklistPending, models.CaseChecklistSubmitted,
			models.CaseSignoffPending, models.CaseCompleted, models.CaseCancelled,
		}
	}
	for _, status := range statuses {
		if !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown case status")
		}
	}

	cases, err := s.cases.ListByStatus(ctx, statuses...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cases")
	}

	dataset := caseRegisterDataset(cases)

	var payload []byte
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Separation Case Register")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	reportID := uuid.NewString()
	relPath := filepath.Join("reports", fmt.Sprintf("case-register-%s.%s", reportID, format))
	if _, err := s.storage.Save(relPath, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(reportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.recordAudit(ctx, claims, reportID, string(format))

	return &ReportResult{
		ID:        reportID,
		Format:    string(format),
		URL:       fmt.Sprintf("/api/v1/reports/download/%s", token),
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates a signed token and opens the stored file.
func (s *ReportService) ResolveDownload(token string) (*ReportDownload, error) {
	if s.storage == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "report generation is disabled")
	}
	_, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file no longer exists")
	}
	return &ReportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		ExpiresAt: expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ReportService) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	if s.storage == nil || interval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if deleted, err := s.storage.CleanupOlderThan(ttl); err != nil {
					s.logger.Warn("report cleanup failed", zap.Error(err))
				} else if len(deleted) > 0 {
					s.logger.Info("expired reports removed", zap.Int("count", len(deleted)))
				}
			}
		}
	}()
}

func caseRegisterDataset(cases []models.CaseSummary) export.Dataset {
	headers := []string{"Case Number", "Employee", "Status", "Resignation Date", "Last Working Day", "Created At"}
	rows := make([]map[string]string, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, map[string]string{
			"Case Number":      c.CaseNumber,
			"Employee":         c.EmployeeName,
			"Status":           string(c.Status),
			"Resignation Date": c.ResignationDate.Format("2006-01-02"),
			"Last Working Day": c.LastWorkingDay.Format("2006-01-02"),
			"Created At":       c.CreatedAt.Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (s *ReportService) recordAudit(ctx context.Context, claims *models.JWTClaims, reportID, format string) {
	if s.users == nil || claims == nil {
		return
	}
	userID := claims.UserID
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionReportExport,
		Resource:   "report",
		ResourceID: &reportID,
		NewValues:  []byte(fmt.Sprintf(`{"format":%q}`, format)),
	}); err != nil {
		s.logger.Warn("failed to record report audit log", zap.Error(err))
	}
}
