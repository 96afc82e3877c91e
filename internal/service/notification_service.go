package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/pkg/jobs"
	"github.com/suvadu/separation-api/pkg/mailer"
)

type emailLogRepository interface {
	Create(ctx context.Context, log *models.EmailLog) error
}

type notificationUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// NotificationService delivers workflow emails asynchronously. Every
// delivery attempt is recorded in email_logs; failures never propagate
// to the request that triggered them.
type NotificationService struct {
	mailer      mailer.Mailer
	emailLogs   emailLogRepository
	users       notificationUserRepository
	metrics     *MetricsService
	logger      *zap.Logger
	queue       *jobs.Queue
	frontendURL string
	enabled     bool
}

// NewNotificationService constructs a NotificationService and its
// backing queue. Call Start before enqueueing and Stop on shutdown.
func NewNotificationService(m mailer.Mailer, emailLogs emailLogRepository, users notificationUserRepository, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig, frontendURL string, enabled bool) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		mailer:      m,
		emailLogs:   emailLogs,
		users:       users,
		metrics:     metrics,
		logger:      logger,
		frontendURL: frontendURL,
		enabled:     enabled,
	}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.handleEmailJob, cfg)
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

type emailJob struct {
	Kind      models.EmailKind
	CaseID    string
	Recipient string
	Name      string
	Subject   string
	Data      map[string]interface{}
}

var emailTemplates = template.Must(template.New("case_created").Parse(`
<p>Hello {{.Name}},</p>
<p>Separation case <strong>{{.CaseNumber}}</strong> has been opened for {{.EmployeeName}}.</p>
<p>Last working day: {{.LastWorkingDay}}.</p>
<p><a href="{{.Link}}">Open the case</a></p>`))

func init() {
	template.Must(emailTemplates.New("checklist_submitted").Parse(`
<p>Hello {{.Name}},</p>
<p>The offboarding checklist for case <strong>{{.CaseNumber}}</strong> ({{.EmployeeName}}) has been submitted and is ready for sign-off assignment.</p>
<p><a href="{{.Link}}">Open the case</a></p>`))

	template.Must(emailTemplates.New("signoff_requested").Parse(`
<p>Hello {{.Name}},</p>
<p>Your department's sign-off is requested on separation case <strong>{{.CaseNumber}}</strong> ({{.EmployeeName}}).</p>
<p><a href="{{.Link}}">Review and decide</a></p>`))

	template.Must(emailTemplates.New("signoff_decided").Parse(`
<p>Hello {{.Name}},</p>
<p>The {{.DepartmentName}} sign-off on case <strong>{{.CaseNumber}}</strong> was <strong>{{.Decision}}</strong>.</p>
<p><a href="{{.Link}}">Open the case</a></p>`))

	template.Must(emailTemplates.New("case_completed").Parse(`
<p>Hello {{.Name}},</p>
<p>Separation case <strong>{{.CaseNumber}}</strong> ({{.EmployeeName}}) is complete. All sign-offs were approved.</p>
<p><a href="{{.Link}}">View the record</a></p>`))
}

// CaseCreated notifies the employee and their direct manager.
func (s *NotificationService) CaseCreated(summary *models.CaseSummary) {
	data := s.caseData(summary)
	subject := fmt.Sprintf("Separation case %s opened", summary.CaseNumber)
	s.enqueue(models.EmailCaseCreated, summary, summary.EmployeeEmail, summary.EmployeeName, subject, data)
	s.enqueueForUser(models.EmailCaseCreated, summary, summary.DirectManagerID, subject, data)
}

// ChecklistSubmitted notifies the separation manager running the case.
func (s *NotificationService) ChecklistSubmitted(summary *models.CaseSummary) {
	data := s.caseData(summary)
	subject := fmt.Sprintf("Checklist submitted for case %s", summary.CaseNumber)
	s.enqueueForUser(models.EmailChecklistSubmitted, summary, summary.SeparationManagerID, subject, data)
}

// SignoffRequested notifies the reviewer who must decide.
func (s *NotificationService) SignoffRequested(summary *models.CaseSummary, signoff *models.SignOff, assignee *models.User) {
	if assignee == nil {
		return
	}
	data := s.caseData(summary)
	subject := fmt.Sprintf("Sign-off requested on case %s", summary.CaseNumber)
	s.enqueue(models.EmailSignoffRequested, summary, assignee.Email, assignee.FullName(), subject, data)
}

// SignoffDecided notifies the separation manager and the employee.
func (s *NotificationService) SignoffDecided(summary *models.CaseSummary, signoff *models.SignOff) {
	data := s.caseData(summary)
	data["DepartmentName"] = signoff.DepartmentName
	data["Decision"] = string(signoff.Status)
	subject := fmt.Sprintf("Sign-off %s on case %s", signoff.Status, summary.CaseNumber)
	s.enqueueForUser(models.EmailSignoffDecided, summary, summary.SeparationManagerID, subject, data)
	s.enqueue(models.EmailSignoffDecided, summary, summary.EmployeeEmail, summary.EmployeeName, subject, data)
}

// CaseCompleted notifies every case party.
func (s *NotificationService) CaseCompleted(summary *models.CaseSummary) {
	data := s.caseData(summary)
	subject := fmt.Sprintf("Separation case %s completed", summary.CaseNumber)
	s.enqueue(models.EmailCaseCompleted, summary, summary.EmployeeEmail, summary.EmployeeName, subject, data)
	s.enqueueForUser(models.EmailCaseCompleted, summary, summary.DirectManagerID, subject, data)
	s.enqueueForUser(models.EmailCaseCompleted, summary, summary.SeparationManagerID, subject, data)
}

func (s *NotificationService) caseData(summary *models.CaseSummary) map[string]interface{} {
	return map[string]interface{}{
		"CaseNumber":     summary.CaseNumber,
		"EmployeeName":   summary.EmployeeName,
		"LastWorkingDay": summary.LastWorkingDay.Format("2006-01-02"),
		"Link":           fmt.Sprintf("%s/cases/%s", s.frontendURL, summary.ID),
	}
}

func (s *NotificationService) enqueueForUser(kind models.EmailKind, summary *models.CaseSummary, userID *string, subject string, data map[string]interface{}) {
	if userID == nil {
		return
	}
	user, err := s.users.FindByID(context.Background(), *userID)
	if err != nil {
		s.logger.Warn("failed to resolve notification recipient", zap.String("user_id", *userID), zap.Error(err))
		return
	}
	s.enqueue(kind, summary, user.Email, user.FullName(), subject, data)
}

func (s *NotificationService) enqueue(kind models.EmailKind, summary *models.CaseSummary, email, name, subject string, data map[string]interface{}) {
	if !s.enabled || email == "" {
		return
	}
	payload := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["Name"] = name

	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: string(kind),
		Payload: emailJob{
			Kind:      kind,
			CaseID:    summary.ID,
			Recipient: email,
			Name:      name,
			Subject:   subject,
			Data:      payload,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *NotificationService) handleEmailJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(emailJob)
	if !ok {
		s.logger.Error("notification job carries unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, string(payload.Kind), payload.Data); err != nil {
		s.logger.Error("failed to render notification", zap.String("kind", string(payload.Kind)), zap.Error(err))
		return nil
	}

	sendErr := s.mailer.Send(payload.Recipient, payload.Name, payload.Subject, body.String())

	log := &models.EmailLog{
		CaseID:    &payload.CaseID,
		Recipient: payload.Recipient,
		Kind:      payload.Kind,
		Subject:   payload.Subject,
		Status:    models.EmailSent,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		log.Status = models.EmailFailed
		log.Error = &msg
	}
	if err := s.emailLogs.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record email log", zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordEmailDelivery(sendErr == nil)
	}

	if sendErr != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("kind", string(payload.Kind)),
			zap.String("recipient", payload.Recipient),
			zap.Error(sendErr))
		return sendErr
	}
	return nil
}
