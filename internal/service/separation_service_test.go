package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
)

const (
	testEmployeeID   = "5b8d0d44-9f23-4b52-a1cc-1a4b7e3a9f10"
	testManagerID    = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testSepManagerID = "16fd2706-8baf-433b-82eb-8c7fada847da"
	testDeptID       = "6ba7b810-9dad-41d1-80b4-00c04fd430c8"
	testAssigneeID   = "1c0e9f3a-2d4b-4f5e-9a6b-0c1d2e3f4a5b"
)

type mockCaseRepo struct {
	summaries     map[string]*models.CaseSummary
	hasActive     bool
	created       *models.SeparationCase
	templateCount int
	statusChanges []models.CaseStatus
	listResult    []models.CaseSummary
	listTotal     int
	lastFilter    models.CaseFilter
}

func (m *mockCaseRepo) HasActiveCase(ctx context.Context, employeeID string) (bool, error) {
	return m.hasActive, nil
}

func (m *mockCaseRepo) CreateWithChecklist(ctx context.Context, sc *models.SeparationCase, templates []models.ChecklistTemplate) error {
	sc.ID = "case-1"
	sc.CaseNumber = "SEP-2026-0001"
	sc.Status = models.CaseChecklistPending
	m.created = sc
	m.templateCount = len(templates)
	if m.summaries == nil {
		m.summaries = make(map[string]*models.CaseSummary)
	}
	m.summaries[sc.ID] = &models.CaseSummary{SeparationCase: *sc}
	return nil
}

func (m *mockCaseRepo) FindByID(ctx context.Context, id string) (*models.SeparationCase, error) {
	if summary, ok := m.summaries[id]; ok {
		cp := summary.SeparationCase
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCaseRepo) FindSummary(ctx context.Context, id string) (*models.CaseSummary, error) {
	if summary, ok := m.summaries[id]; ok {
		cp := *summary
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCaseRepo) List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error) {
	m.lastFilter = filter
	return m.listResult, m.listTotal, nil
}

func (m *mockCaseRepo) Update(ctx context.Context, sc *models.SeparationCase) error {
	if summary, ok := m.summaries[sc.ID]; ok {
		summary.SeparationCase = *sc
	}
	return nil
}

func (m *mockCaseRepo) UpdateStatus(ctx context.Context, id string, status models.CaseStatus) error {
	m.statusChanges = append(m.statusChanges, status)
	if summary, ok := m.summaries[id]; ok {
		summary.Status = status
	}
	return nil
}

type mockChecklistRepo struct {
	items          map[string]*models.ChecklistItem
	mandatoryOpen  int
	total          int
	completedCount int
}

func (m *mockChecklistRepo) FindByID(ctx context.Context, id string) (*models.ChecklistItem, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockChecklistRepo) ListByCase(ctx context.Context, caseID string) ([]models.ChecklistItem, error) {
	var result []models.ChecklistItem
	for _, item := range m.items {
		if item.CaseID == caseID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockChecklistRepo) Update(ctx context.Context, item *models.ChecklistItem) error {
	cp := *item
	if m.items == nil {
		m.items = make(map[string]*models.ChecklistItem)
	}
	m.items[item.ID] = &cp
	return nil
}

func (m *mockChecklistRepo) CountMandatoryIncomplete(ctx context.Context, caseID string) (int, error) {
	return m.mandatoryOpen, nil
}

func (m *mockChecklistRepo) CountByCase(ctx context.Context, caseID string) (int, int, error) {
	return m.total, m.completedCount, nil
}

type mockSignoffRepo struct {
	items      map[string]*models.SignOff
	existsDept bool
	holds      bool
	pending    []models.SignOff
	resolution models.SignOffResolution
	total      int
	approved   int
}

func (m *mockSignoffRepo) Create(ctx context.Context, so *models.SignOff) error {
	so.ID = "signoff-1"
	so.Status = models.SignOffPending
	if m.items == nil {
		m.items = make(map[string]*models.SignOff)
	}
	cp := *so
	m.items[so.ID] = &cp
	return nil
}

func (m *mockSignoffRepo) ExistsForDepartment(ctx context.Context, caseID, departmentID string) (bool, error) {
	return m.existsDept, nil
}

func (m *mockSignoffRepo) FindByID(ctx context.Context, id string) (*models.SignOff, error) {
	if so, ok := m.items[id]; ok {
		cp := *so
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSignoffRepo) ListByCase(ctx context.Context, caseID string) ([]models.SignOff, error) {
	var result []models.SignOff
	for _, so := range m.items {
		if so.CaseID == caseID {
			result = append(result, *so)
		}
	}
	return result, nil
}

func (m *mockSignoffRepo) ListPendingForUser(ctx context.Context, userID string) ([]models.SignOff, error) {
	return m.pending, nil
}

func (m *mockSignoffRepo) HoldsSignoff(ctx context.Context, caseID, userID string) (bool, error) {
	return m.holds, nil
}

func (m *mockSignoffRepo) CountByCase(ctx context.Context, caseID string) (int, int, error) {
	return m.total, m.approved, nil
}

func (m *mockSignoffRepo) DecideAndResolve(ctx context.Context, signoffID, caseID string, status models.SignOffStatus, comment *string) (models.SignOffResolution, error) {
	if so, ok := m.items[signoffID]; ok {
		now := time.Now().UTC()
		so.Status = status
		so.Comment = comment
		so.DecidedAt = &now
	}
	return m.resolution, nil
}

type mockDirectoryRepo struct {
	users  map[string]*models.User
	audits []models.AuditLog
}

func (m *mockDirectoryRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDirectoryRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

type mockTemplateRepo struct {
	templates []models.ChecklistTemplate
}

func (m *mockTemplateRepo) List(ctx context.Context, activeOnly bool) ([]models.ChecklistTemplate, error) {
	return m.templates, nil
}

func (m *mockTemplateRepo) FindByID(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	for i := range m.templates {
		if m.templates[i].ID == id {
			cp := m.templates[i]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockDeptRepo struct {
	depts map[string]*models.Department
}

func (m *mockDeptRepo) FindByID(ctx context.Context, id string) (*models.Department, error) {
	if dept, ok := m.depts[id]; ok {
		cp := *dept
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockHandoverLister struct {
	sessions []models.HandoverSchedule
}

func (m *mockHandoverLister) ListByCase(ctx context.Context, caseID string) ([]models.HandoverSchedule, error) {
	return m.sessions, nil
}

type mockNotifier struct {
	created   int
	submitted int
	requested int
	decided   int
	completed int
}

func (m *mockNotifier) CaseCreated(summary *models.CaseSummary) { m.created++ }

func (m *mockNotifier) ChecklistSubmitted(summary *models.CaseSummary) { m.submitted++ }

func (m *mockNotifier) SignoffRequested(summary *models.CaseSummary, signoff *models.SignOff, assignee *models.User) {
	m.requested++
}

func (m *mockNotifier) SignoffDecided(summary *models.CaseSummary, signoff *models.SignOff) {
	m.decided++
}

func (m *mockNotifier) CaseCompleted(summary *models.CaseSummary) { m.completed++ }

type caseFixture struct {
	cases      *mockCaseRepo
	checklists *mockChecklistRepo
	signoffs   *mockSignoffRepo
	directory  *mockDirectoryRepo
	templates  *mockTemplateRepo
	depts      *mockDeptRepo
	handovers  *mockHandoverLister
	notifier   *mockNotifier
	service    *SeparationService
}

func newCaseFixture() *caseFixture {
	managerID := testManagerID
	f := &caseFixture{
		cases:      &mockCaseRepo{summaries: map[string]*models.CaseSummary{}},
		checklists: &mockChecklistRepo{items: map[string]*models.ChecklistItem{}},
		signoffs:   &mockSignoffRepo{items: map[string]*models.SignOff{}},
		directory: &mockDirectoryRepo{users: map[string]*models.User{
			testEmployeeID: {ID: testEmployeeID, Email: "emp@example.com", FirstName: "Asha", LastName: "Rao", Role: models.RoleEmployee, ManagerID: &managerID, Active: true},
			testManagerID:  {ID: testManagerID, Email: "mgr@example.com", FirstName: "Dev", LastName: "Nair", Role: models.RoleDirectManager, Active: true},
			testAssigneeID: {ID: testAssigneeID, Email: "it@example.com", FirstName: "Lena", LastName: "Koshy", Role: models.RoleDepartmentManager, Active: true},
		}},
		templates: &mockTemplateRepo{templates: []models.ChecklistTemplate{
			{ID: "tpl-1", Title: "Return laptop", Mandatory: true, Active: true},
			{ID: "tpl-2", Title: "Exit interview", Mandatory: false, Active: true},
		}},
		depts: &mockDeptRepo{depts: map[string]*models.Department{
			testDeptID: {ID: testDeptID, Name: "IT", Code: "IT"},
		}},
		handovers: &mockHandoverLister{},
		notifier:  &mockNotifier{},
	}
	f.service = NewSeparationService(
		f.cases, f.checklists, f.signoffs, f.directory, f.templates, f.depts, f.handovers,
		f.notifier, nil, validator.New(), zap.NewNop(),
	)
	return f
}

func (f *caseFixture) seedCase(status models.CaseStatus) *models.CaseSummary {
	managerID := testManagerID
	sepManagerID := testSepManagerID
	summary := &models.CaseSummary{SeparationCase: models.SeparationCase{
		ID:                  "case-1",
		CaseNumber:          "SEP-2026-0001",
		EmployeeID:          testEmployeeID,
		DirectManagerID:     &managerID,
		SeparationManagerID: &sepManagerID,
		ResignationDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		LastWorkingDay:      time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		Status:              status,
	}}
	f.cases.summaries["case-1"] = summary
	return summary
}

func sepManagerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: testSepManagerID, Role: models.RoleSeparationManager}
}

func employeeClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: testEmployeeID, Role: models.RoleEmployee}
}

func TestSeparationServiceCreateCase(t *testing.T) {
	f := newCaseFixture()

	summary, err := f.service.CreateCase(context.Background(), sepManagerClaims(), models.CreateCaseRequest{
		EmployeeID:      testEmployeeID,
		ResignationDate: "2026-09-01",
		LastWorkingDay:  "2026-09-30",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CaseChecklistPending, summary.Status)
	assert.Equal(t, "SEP-2026-0001", summary.CaseNumber)
	assert.Equal(t, 2, f.cases.templateCount)
	require.NotNil(t, f.cases.created.DirectManagerID)
	assert.Equal(t, testManagerID, *f.cases.created.DirectManagerID)
	require.NotNil(t, f.cases.created.SeparationManagerID)
	assert.Equal(t, testSepManagerID, *f.cases.created.SeparationManagerID)
	assert.Equal(t, 1, f.notifier.created)
	assert.Len(t, f.directory.audits, 1)
}

func TestSeparationServiceCreateCaseEmployeeSelf(t *testing.T) {
	f := newCaseFixture()

	summary, err := f.service.CreateCase(context.Background(), employeeClaims(), models.CreateCaseRequest{
		EmployeeID:      testEmployeeID,
		ResignationDate: "2026-09-01",
		LastWorkingDay:  "2026-09-30",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CaseChecklistPending, summary.Status)
	assert.Nil(t, f.cases.created.SeparationManagerID)
}

func TestSeparationServiceCreateCaseForAnotherEmployeeForbidden(t *testing.T) {
	f := newCaseFixture()

	_, err := f.service.CreateCase(context.Background(), employeeClaims(), models.CreateCaseRequest{
		EmployeeID:      testManagerID,
		ResignationDate: "2026-09-01",
		LastWorkingDay:  "2026-09-30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, f.notifier.created)
}

func TestSeparationServiceCreateCaseActiveConflict(t *testing.T) {
	f := newCaseFixture()
	f.cases.hasActive = true

	_, err := f.service.CreateCase(context.Background(), sepManagerClaims(), models.CreateCaseRequest{
		EmployeeID:      testEmployeeID,
		ResignationDate: "2026-09-01",
		LastWorkingDay:  "2026-09-30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, f.notifier.created)
}

func TestSeparationServiceCreateCaseDateOrder(t *testing.T) {
	f := newCaseFixture()

	_, err := f.service.CreateCase(context.Background(), sepManagerClaims(), models.CreateCaseRequest{
		EmployeeID:      testEmployeeID,
		ResignationDate: "2026-09-30",
		LastWorkingDay:  "2026-09-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceCreateCaseUnknownEmployee(t *testing.T) {
	f := newCaseFixture()

	_, err := f.service.CreateCase(context.Background(), sepManagerClaims(), models.CreateCaseRequest{
		EmployeeID:      "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa",
		ResignationDate: "2026-09-01",
		LastWorkingDay:  "2026-09-30",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceGetCaseOutsiderForbidden(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)

	outsider := &models.JWTClaims{UserID: "someone-else", Role: models.RoleEmployee}
	_, err := f.service.GetCase(context.Background(), outsider, "case-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceGetCaseSignoffHolderReadOnly(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)
	f.signoffs.holds = true

	holder := &models.JWTClaims{UserID: testAssigneeID, Role: models.RoleDepartmentManager}
	detail, err := f.service.GetCase(context.Background(), holder, "case-1")
	require.NoError(t, err)
	assert.Equal(t, "case-1", detail.ID)

	completed := true
	_, err = f.service.UpdateChecklistItem(context.Background(), holder, "case-1", "item-1", models.UpdateChecklistItemRequest{Completed: &completed})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceListCasesScopedToEmployee(t *testing.T) {
	f := newCaseFixture()

	_, _, err := f.service.ListCases(context.Background(), employeeClaims(), models.CaseFilter{})
	require.NoError(t, err)
	assert.Equal(t, testEmployeeID, f.cases.lastFilter.EmployeeID)
	assert.Empty(t, f.cases.lastFilter.DirectManagerID)
	assert.Empty(t, f.cases.lastFilter.SignoffAssigneeID)
}

func TestSeparationServiceListCasesScopedToDirectManager(t *testing.T) {
	f := newCaseFixture()

	claims := &models.JWTClaims{UserID: testManagerID, Role: models.RoleDirectManager}
	_, _, err := f.service.ListCases(context.Background(), claims, models.CaseFilter{EmployeeID: "injected"})
	require.NoError(t, err)
	assert.Equal(t, testManagerID, f.cases.lastFilter.DirectManagerID)
	assert.Empty(t, f.cases.lastFilter.EmployeeID)
}

func TestSeparationServiceUpdateChecklistItem(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)
	f.checklists.items["item-1"] = &models.ChecklistItem{ID: "item-1", CaseID: "case-1", Title: "Return laptop", Mandatory: true}

	completed := true
	item, err := f.service.UpdateChecklistItem(context.Background(), employeeClaims(), "case-1", "item-1", models.UpdateChecklistItemRequest{Completed: &completed})
	require.NoError(t, err)
	assert.True(t, item.Completed)
	require.NotNil(t, item.CompletedBy)
	assert.Equal(t, testEmployeeID, *item.CompletedBy)
	assert.NotNil(t, item.CompletedAt)
}

func TestSeparationServiceUpdateChecklistItemDirectManagerForbidden(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)
	f.checklists.items["item-1"] = &models.ChecklistItem{ID: "item-1", CaseID: "case-1", Title: "Return laptop", Mandatory: true}

	completed := true
	claims := &models.JWTClaims{UserID: testManagerID, Role: models.RoleDirectManager}
	_, err := f.service.UpdateChecklistItem(context.Background(), claims, "case-1", "item-1", models.UpdateChecklistItemRequest{Completed: &completed})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.False(t, f.checklists.items["item-1"].Completed)
}

func TestSeparationServiceUpdateChecklistItemWrongCase(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)
	f.checklists.items["item-9"] = &models.ChecklistItem{ID: "item-9", CaseID: "other-case", Title: "Stray item"}

	completed := true
	_, err := f.service.UpdateChecklistItem(context.Background(), employeeClaims(), "case-1", "item-9", models.UpdateChecklistItemRequest{Completed: &completed})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceSubmitChecklistMandatoryIncomplete(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)
	f.checklists.mandatoryOpen = 2

	_, err := f.service.SubmitChecklist(context.Background(), employeeClaims(), "case-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.CaseChecklistPending, f.cases.summaries["case-1"].Status)
	assert.Equal(t, 0, f.notifier.submitted)
}

func TestSeparationServiceSubmitChecklist(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)

	summary, err := f.service.SubmitChecklist(context.Background(), employeeClaims(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, models.CaseChecklistSubmitted, summary.Status)
	assert.NotNil(t, summary.ChecklistSubmittedAt)
	assert.Equal(t, 1, f.notifier.submitted)
}

func TestSeparationServiceSubmitChecklistManagerForbidden(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)

	_, err := f.service.SubmitChecklist(context.Background(), sepManagerClaims(), "case-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.CaseChecklistPending, f.cases.summaries["case-1"].Status)
	assert.Equal(t, 0, f.notifier.submitted)
}

func TestSeparationServiceSubmitChecklistTwice(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistSubmitted)

	_, err := f.service.SubmitChecklist(context.Background(), employeeClaims(), "case-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceAssignSignoffTransitionsCase(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistSubmitted)

	so, err := f.service.AssignSignoff(context.Background(), sepManagerClaims(), "case-1", models.AssignSignoffRequest{
		DepartmentID: testDeptID,
		AssigneeID:   testAssigneeID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SignOffPending, so.Status)
	require.Len(t, f.cases.statusChanges, 1)
	assert.Equal(t, models.CaseSignoffPending, f.cases.statusChanges[0])
	assert.Equal(t, 1, f.notifier.requested)
}

func TestSeparationServiceAssignSignoffDuplicateDepartment(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)
	f.signoffs.existsDept = true

	_, err := f.service.AssignSignoff(context.Background(), sepManagerClaims(), "case-1", models.AssignSignoffRequest{
		DepartmentID: testDeptID,
		AssigneeID:   testAssigneeID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceAssignSignoffBeforeSubmission(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)

	_, err := f.service.AssignSignoff(context.Background(), sepManagerClaims(), "case-1", models.AssignSignoffRequest{
		DepartmentID: testDeptID,
		AssigneeID:   testAssigneeID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceAssignSignoffNonManagerAssignee(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistSubmitted)

	_, err := f.service.AssignSignoff(context.Background(), sepManagerClaims(), "case-1", models.AssignSignoffRequest{
		DepartmentID: testDeptID,
		AssigneeID:   testEmployeeID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceProcessSignoffApprovalCompletes(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)
	f.signoffs.items["signoff-1"] = &models.SignOff{ID: "signoff-1", CaseID: "case-1", DepartmentID: testDeptID, AssigneeID: testAssigneeID, Status: models.SignOffPending}
	f.signoffs.resolution = models.ResolutionAllApproved

	claims := &models.JWTClaims{UserID: testAssigneeID, Role: models.RoleDepartmentManager}
	so, err := f.service.ProcessSignoff(context.Background(), claims, "signoff-1", models.ProcessSignoffRequest{Status: models.SignOffApproved})
	require.NoError(t, err)
	assert.Equal(t, models.SignOffApproved, so.Status)
	assert.NotNil(t, so.DecidedAt)
	assert.Equal(t, 1, f.notifier.decided)
	assert.Equal(t, 1, f.notifier.completed)
}

func TestSeparationServiceProcessSignoffRejectionKeepsCaseOpen(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)
	f.signoffs.items["signoff-1"] = &models.SignOff{ID: "signoff-1", CaseID: "case-1", DepartmentID: testDeptID, AssigneeID: testAssigneeID, Status: models.SignOffPending}
	f.signoffs.resolution = models.ResolutionHasRejection

	claims := &models.JWTClaims{UserID: testAssigneeID, Role: models.RoleDepartmentManager}
	so, err := f.service.ProcessSignoff(context.Background(), claims, "signoff-1", models.ProcessSignoffRequest{Status: models.SignOffRejected})
	require.NoError(t, err)
	assert.Equal(t, models.SignOffRejected, so.Status)
	assert.Equal(t, 1, f.notifier.decided)
	assert.Equal(t, 0, f.notifier.completed)
}

func TestSeparationServiceProcessSignoffWrongAssignee(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)
	f.signoffs.items["signoff-1"] = &models.SignOff{ID: "signoff-1", CaseID: "case-1", DepartmentID: testDeptID, AssigneeID: testAssigneeID, Status: models.SignOffPending}

	claims := &models.JWTClaims{UserID: testManagerID, Role: models.RoleDirectManager}
	_, err := f.service.ProcessSignoff(context.Background(), claims, "signoff-1", models.ProcessSignoffRequest{Status: models.SignOffApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceProcessSignoffSeparationManagerOverride(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)
	f.signoffs.items["signoff-1"] = &models.SignOff{ID: "signoff-1", CaseID: "case-1", DepartmentID: testDeptID, AssigneeID: testAssigneeID, Status: models.SignOffPending}
	f.signoffs.resolution = models.ResolutionPending

	so, err := f.service.ProcessSignoff(context.Background(), sepManagerClaims(), "signoff-1", models.ProcessSignoffRequest{Status: models.SignOffApproved})
	require.NoError(t, err)
	assert.Equal(t, models.SignOffApproved, so.Status)
	assert.Equal(t, 1, f.notifier.decided)
}

func TestSeparationServiceProcessSignoffAlreadyDecided(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)
	f.signoffs.items["signoff-1"] = &models.SignOff{ID: "signoff-1", CaseID: "case-1", DepartmentID: testDeptID, AssigneeID: testAssigneeID, Status: models.SignOffApproved}

	claims := &models.JWTClaims{UserID: testAssigneeID, Role: models.RoleDepartmentManager}
	_, err := f.service.ProcessSignoff(context.Background(), claims, "signoff-1", models.ProcessSignoffRequest{Status: models.SignOffApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceCancelCaseRequiresSeparationManager(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseChecklistPending)

	_, err := f.service.CancelCase(context.Background(), employeeClaims(), "case-1", "changed mind")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	summary, err := f.service.CancelCase(context.Background(), sepManagerClaims(), "case-1", "changed mind")
	require.NoError(t, err)
	assert.Equal(t, models.CaseCancelled, summary.Status)
}

func TestSeparationServiceUpdateCaseClosed(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseCompleted)

	reason := "updated"
	_, err := f.service.UpdateCase(context.Background(), sepManagerClaims(), "case-1", models.UpdateCaseRequest{Reason: &reason})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSeparationServiceOverrideStatus(t *testing.T) {
	f := newCaseFixture()
	f.seedCase(models.CaseSignoffPending)

	summary, err := f.service.OverrideStatus(context.Background(), sepManagerClaims(), "case-1", models.OverrideStatusRequest{
		Status: models.CaseChecklistPending,
		Reason: "checklist reopened after rejected signoff",
	})
	require.NoError(t, err)
	assert.Equal(t, models.CaseChecklistPending, summary.Status)

	_, err = f.service.OverrideStatus(context.Background(), sepManagerClaims(), "case-1", models.OverrideStatusRequest{
		Status: models.CaseStatus("bogus"),
		Reason: "typo",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
