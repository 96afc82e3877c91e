package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/pkg/jobs"
)

type mockMailer struct {
	mu       sync.Mutex
	sent     []string
	bodies   []string
	failWith error
}

func (m *mockMailer) Send(toEmail, toName, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, toEmail)
	m.bodies = append(m.bodies, htmlBody)
	return nil
}

type mockEmailLogRepo struct {
	mu   sync.Mutex
	logs []models.EmailLog
}

func (m *mockEmailLogRepo) Create(ctx context.Context, log *models.EmailLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *log)
	return nil
}

type mockUserLookup struct {
	users map[string]*models.User
}

func (m *mockUserLookup) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, errors.New("no such user")
}

func notificationFixture(m *mockMailer, logs *mockEmailLogRepo) *NotificationService {
	users := &mockUserLookup{users: map[string]*models.User{}}
	return NewNotificationService(m, logs, users, nil, zap.NewNop(), jobs.QueueConfig{}, "http://app.local", true)
}

func testSummary() *models.CaseSummary {
	summary := &models.CaseSummary{}
	summary.ID = "case-1"
	summary.CaseNumber = "SEP-2026-0007"
	summary.EmployeeName = "Asha Rao"
	summary.EmployeeEmail = "asha@example.com"
	return summary
}

func emailJobFor(kind models.EmailKind, recipient, subject string) jobs.Job {
	return jobs.Job{
		ID:   "job-1",
		Type: string(kind),
		Payload: emailJob{
			Kind:      kind,
			CaseID:    "case-1",
			Recipient: recipient,
			Name:      "Asha Rao",
			Subject:   subject,
			Data: map[string]interface{}{
				"Name":           "Asha Rao",
				"CaseNumber":     "SEP-2026-0007",
				"EmployeeName":   "Asha Rao",
				"LastWorkingDay": "2026-09-30",
				"Link":           "http://app.local/cases/case-1",
				"DepartmentName": "IT",
				"Decision":       "approved",
			},
		},
	}
}

func TestNotificationDeliveryRecordsSentLog(t *testing.T) {
	m := &mockMailer{}
	logs := &mockEmailLogRepo{}
	svc := notificationFixture(m, logs)

	err := svc.handleEmailJob(context.Background(), emailJobFor(models.EmailCaseCreated, "asha@example.com", "Separation case SEP-2026-0007 opened"))
	require.NoError(t, err)

	require.Len(t, m.sent, 1)
	assert.Contains(t, m.bodies[0], "SEP-2026-0007")
	require.Len(t, logs.logs, 1)
	assert.Equal(t, models.EmailSent, logs.logs[0].Status)
	assert.Nil(t, logs.logs[0].Error)
	require.NotNil(t, logs.logs[0].CaseID)
	assert.Equal(t, "case-1", *logs.logs[0].CaseID)
}

func TestNotificationDeliveryRecordsFailureAndReturnsError(t *testing.T) {
	m := &mockMailer{failWith: errors.New("smtp unreachable")}
	logs := &mockEmailLogRepo{}
	svc := notificationFixture(m, logs)

	err := svc.handleEmailJob(context.Background(), emailJobFor(models.EmailSignoffRequested, "it@example.com", "Sign-off requested"))
	require.Error(t, err)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, models.EmailFailed, logs.logs[0].Status)
	require.NotNil(t, logs.logs[0].Error)
	assert.Contains(t, *logs.logs[0].Error, "smtp unreachable")
}

func TestNotificationTemplatesRenderForEveryKind(t *testing.T) {
	m := &mockMailer{}
	logs := &mockEmailLogRepo{}
	svc := notificationFixture(m, logs)

	kinds := []models.EmailKind{
		models.EmailCaseCreated,
		models.EmailChecklistSubmitted,
		models.EmailSignoffRequested,
		models.EmailSignoffDecided,
		models.EmailCaseCompleted,
	}
	for _, kind := range kinds {
		err := svc.handleEmailJob(context.Background(), emailJobFor(kind, "asha@example.com", "subject"))
		require.NoError(t, err, "kind %s", kind)
	}
	require.Len(t, m.bodies, len(kinds))
	for _, body := range m.bodies {
		assert.True(t, strings.Contains(body, "Asha Rao"))
	}
}

func TestNotificationDisabledEnqueuesNothing(t *testing.T) {
	m := &mockMailer{}
	logs := &mockEmailLogRepo{}
	users := &mockUserLookup{users: map[string]*models.User{}}
	svc := NewNotificationService(m, logs, users, nil, zap.NewNop(), jobs.QueueConfig{}, "http://app.local", false)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.CaseCreated(testSummary())

	assert.Empty(t, m.sent)
	assert.Empty(t, logs.logs)
}

func TestNotificationEnqueueAndDeliver(t *testing.T) {
	m := &mockMailer{}
	logs := &mockEmailLogRepo{}
	svc := notificationFixture(m, logs)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.CaseCreated(testSummary())

	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.sent) == 1
	}, 2*time.Second, 10*time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, "asha@example.com", m.sent[0])
}
