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

type separationCaseRepository interface {
	HasActiveCase(ctx context.Context, employeeID string) (bool, error)
	CreateWithChecklist(ctx context.Context, sc *models.SeparationCase, templates []models.ChecklistTemplate) error
	FindByID(ctx context.Context, id string) (*models.SeparationCase, error)
	FindSummary(ctx context.Context, id string) (*models.CaseSummary, error)
	List(ctx context.Context, filter models.CaseFilter) ([]models.CaseSummary, int, error)
	Update(ctx context.Context, sc *models.SeparationCase) error
	UpdateStatus(ctx context.Context, id string, status models.CaseStatus) error
}

type caseChecklistRepository interface {
	FindByID(ctx context.Context, id string) (*models.ChecklistItem, error)
	ListByCase(ctx context.Context, caseID string) ([]models.ChecklistItem, error)
	Update(ctx context.Context, item *models.ChecklistItem) error
	CountMandatoryIncomplete(ctx context.Context, caseID string) (int, error)
	CountByCase(ctx context.Context, caseID string) (total, completed int, err error)
}

type caseSignoffRepository interface {
	Create(ctx context.Context, so *models.SignOff) error
	ExistsForDepartment(ctx context.Context, caseID, departmentID string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.SignOff, error)
	ListByCase(ctx context.Context, caseID string) ([]models.SignOff, error)
	ListPendingForUser(ctx context.Context, userID string) ([]models.SignOff, error)
	HoldsSignoff(ctx context.Context, caseID, userID string) (bool, error)
	CountByCase(ctx context.Context, caseID string) (total, approved int, err error)
	DecideAndResolve(ctx context.Context, signoffID, caseID string, status models.SignOffStatus, comment *string) (models.SignOffResolution, error)
}

type caseDirectoryRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type caseTemplateRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.ChecklistTemplate, error)
	FindByID(ctx context.Context, id string) (*models.ChecklistTemplate, error)
}

type caseDepartmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

type caseHandoverLister interface {
	ListByCase(ctx context.Context, caseID string) ([]models.HandoverSchedule, error)
}

// CaseNotifier publishes workflow events as best-effort notifications.
// Implementations must not block the caller.
type CaseNotifier interface {
	CaseCreated(summary *models.CaseSummary)
	ChecklistSubmitted(summary *models.CaseSummary)
	SignoffRequested(summary *models.CaseSummary, signoff *models.SignOff, assignee *models.User)
	SignoffDecided(summary *models.CaseSummary, signoff *models.SignOff)
	CaseCompleted(summary *models.CaseSummary)
}

// SeparationService drives the offboarding workflow end to end.
type SeparationService struct {
	cases      separationCaseRepository
	checklists caseChecklistRepository
	signoffs   caseSignoffRepository
	users      caseDirectoryRepository
	templates  caseTemplateRepository
	depts      caseDepartmentRepository
	handovers  caseHandoverLister
	notifier   CaseNotifier
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSeparationService constructs a SeparationService instance.
func NewSeparationService(
	cases separationCaseRepository,
	checklists caseChecklistRepository,
	signoffs caseSignoffRepository,
	users caseDirectoryRepository,
	templates caseTemplateRepository,
	depts caseDepartmentRepository,
	handovers caseHandoverLister,
	notifier CaseNotifier,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SeparationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SeparationService{
		cases:      cases,
		checklists: checklists,
		signoffs:   signoffs,
		users:      users,
		templates:  templates,
		depts:      depts,
		handovers:  handovers,
		notifier:   notifier,
		cache:      cache,
		validator:  validate,
		logger:     logger,
	}
}

const caseDateFormat = "2006-01-02"

// CreateCase opens a separation case for an employee. An employee can
// hold only one non-terminal case at a time. Active checklist templates
// are snapshotted into the case at creation.
func (s *SeparationService) CreateCase(ctx context.Context, claims *models.JWTClaims, req models.CreateCaseRequest) (*models.CaseSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case payload")
	}

	resignationDate, err := time.Parse(caseDateFormat, req.ResignationDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid resignation_date")
	}
	lastWorkingDay, err := time.Parse(caseDateFormat, req.LastWorkingDay)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid last_working_day")
	}
	if lastWorkingDay.Before(resignationDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "last working day must not precede resignation date")
	}

	if claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing caller identity")
	}
	// Employees may resign on their own behalf; only a separation
	// manager can open a case for someone else.
	if claims.Role != models.RoleSeparationManager && req.EmployeeID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot open a case for another employee")
	}

	employee, err := s.users.FindByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if !employee.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee account is inactive")
	}

	active, err := s.cases.HasActiveCase(ctx, employee.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check active cases")
	}
	if active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee already has an active separation case")
	}

	templates, err := s.templates.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist templates")
	}

	sc := &models.SeparationCase{
		EmployeeID:      employee.ID,
		DirectManagerID: employee.ManagerID,
		ResignationDate: resignationDate,
		LastWorkingDay:  lastWorkingDay,
		Reason:          req.Reason,
		Notes:           req.Notes,
	}
	if claims.Role == models.RoleSeparationManager {
		managerID := claims.UserID
		sc.SeparationManagerID = &managerID
	}

	if err := s.cases.CreateWithChecklist(ctx, sc, templates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create case")
	}

	s.audit(ctx, claims, models.AuditActionCaseCreate, sc.ID, map[string]interface{}{
		"case_number": sc.CaseNumber,
		"employee_id": sc.EmployeeID,
	})
	s.invalidateDashboards(ctx)

	summary, err := s.loadSummary(ctx, sc.ID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.CaseCreated(summary)
	}
	return summary, nil
}

// GetCase returns a case with its checklist, sign-offs and handovers.
// Sign-off holders outside the case parties get read-only access.
func (s *SeparationService) GetCase(ctx context.Context, claims *models.JWTClaims, caseID string) (*models.CaseDetail, error) {
	summary, _, err := s.authorize(ctx, claims, caseID, AccessReadOnly)
	if err != nil {
		return nil, err
	}

	items, err := s.checklists.ListByCase(ctx, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist")
	}
	signoffs, err := s.signoffs.ListByCase(ctx, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signoffs")
	}
	var handovers []models.HandoverSchedule
	if s.handovers != nil {
		handovers, err = s.handovers.ListByCase(ctx, caseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load handovers")
		}
	}

	return &models.CaseDetail{
		CaseSummary:    *summary,
		ChecklistItems: items,
		Signoffs:       signoffs,
		Handovers:      handovers,
	}, nil
}

// ListCases returns case summaries scoped to the caller's role.
func (s *SeparationService) ListCases(ctx context.Context, claims *models.JWTClaims, filter models.CaseFilter) ([]models.CaseSummary, int, error) {
	switch {
	case claims.Role.IsSeparationManager():
		// unrestricted
	case claims.Role == models.RoleEmployee:
		filter.EmployeeID = claims.UserID
		filter.DirectManagerID = ""
		filter.SignoffAssigneeID = ""
	case claims.Role == models.RoleDirectManager:
		filter.DirectManagerID = claims.UserID
		filter.EmployeeID = ""
		filter.SignoffAssigneeID = ""
	default:
		filter.SignoffAssigneeID = claims.UserID
		filter.EmployeeID = ""
		filter.DirectManagerID = ""
	}

	cases, total, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cases")
	}
	for i := range cases {
		s.attachProgress(ctx, &cases[i])
	}
	return cases, total, nil
}

// UpdateCase edits the mutable fields of a non-terminal case.
func (s *SeparationService) UpdateCase(ctx context.Context, claims *models.JWTClaims, caseID string, req models.UpdateCaseRequest) (*models.CaseSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid case payload")
	}

	summary, _, err := s.authorize(ctx, claims, caseID, AccessFull)
	if err != nil {
		return nil, err
	}
	if summary.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "case is already closed")
	}

	sc := summary.SeparationCase
	if req.ResignationDate != nil {
		parsed, err := time.Parse(caseDateFormat, *req.ResignationDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid resignation_date")
		}
		sc.ResignationDate = parsed
	}
	if req.LastWorkingDay != nil {
		parsed, err := time.Parse(caseDateFormat, *req.LastWorkingDay)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid last_working_day")
		}
		sc.LastWorkingDay = parsed
	}
	if sc.LastWorkingDay.Before(sc.ResignationDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "last working day must not precede resignation date")
	}
	if req.Reason != nil {
		sc.Reason = req.Reason
	}
	if req.Notes != nil {
		sc.Notes = req.Notes
	}

	if err := s.cases.Update(ctx, &sc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update case")
	}

	s.audit(ctx, claims, models.AuditActionCaseUpdate, sc.ID, nil)
	s.invalidateDashboards(ctx)
	return s.loadSummary(ctx, caseID)
}

// CancelCase closes a case without completing the workflow.
func (s *SeparationService) CancelCase(ctx context.Context, claims *models.JWTClaims, caseID string, reason string) (*models.CaseSummary, error) {
	if !claims.Role.IsSeparationManager() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only separation managers can cancel cases")
	}

	summary, _, err := s.authorize(ctx, claims, caseID, AccessFull)
	if err != nil {
		return nil, err
	}
	if summary.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "case is already closed")
	}

	if err := s.cases.UpdateStatus(ctx, caseID, models.CaseCancelled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel case")
	}

	s.audit(ctx, claims, models.AuditActionCaseCancel, caseID, map[string]interface{}{"reason": reason})
	s.invalidateDashboards(ctx)
	return s.loadSummary(ctx, caseID)
}

// OverrideStatus forces a case into a specific status. Restricted to
// separation managers and the known status set; intended for repairing
// stuck workflows, not everyday use.
func (s *SeparationService) OverrideStatus(ctx context.Context, claims *models.JWTClaims, caseID string, req models.OverrideStatusRequest) (*models.CaseSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !claims.Role.IsSeparationManager() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only separation managers can override status")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown case status")
	}

	if _, _, err := s.authorize(ctx, claims, caseID, AccessFull); err != nil {
		return nil, err
	}

	if err := s.cases.UpdateStatus(ctx, caseID, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to override status")
	}

	s.audit(ctx, claims, models.AuditActionCaseUpdate, caseID, map[string]interface{}{
		"status": req.Status,
		"reason": req.Reason,
	})
	s.invalidateDashboards(ctx)
	return s.loadSummary(ctx, caseID)
}

// UpdateChecklistItem toggles completion or annotates a checklist item.
func (s *SeparationService) UpdateChecklistItem(ctx context.Context, claims *models.JWTClaims, caseID, itemID string, req models.UpdateChecklistItemRequest) (*models.ChecklistItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid checklist payload")
	}

	summary, _, err := s.authorize(ctx, claims, caseID, AccessFull)
	if err != nil {
		return nil, err
	}
	// The checklist belongs to the departing employee; a separation
	// manager may correct it, the direct manager may not.
	if summary.EmployeeID != claims.UserID && claims.Role != models.RoleSeparationManager {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "checklist items can only be edited by the employee or a separation manager")
	}
	if summary.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "case is already closed")
	}

	item, err := s.checklists.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "checklist item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load checklist item")
	}
	if item.CaseID != caseID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "checklist item not found")
	}

	if req.Completed != nil {
		item.Completed = *req.Completed
		if item.Completed {
			now := time.Now().UTC()
			userID := claims.UserID
			item.CompletedAt = &now
			item.CompletedBy = &userID
		} else {
			item.CompletedAt = nil
			item.CompletedBy = nil
		}
	}
	if req.Comment != nil {
		item.Comment = req.Comment
	}

	if err := s.checklists.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update checklist item")
	}

	s.audit(ctx, claims, models.AuditActionChecklistUpdate, item.ID, nil)
	s.invalidateDashboards(ctx)
	return item, nil
}

// SubmitChecklist transitions the case out of the checklist phase. Every
// mandatory item must be complete; optional items may remain open.
func (s *SeparationService) SubmitChecklist(ctx context.Context, claims *models.JWTClaims, caseID string) (*models.CaseSummary, error) {
	summary, _, err := s.authorize(ctx, claims, caseID, AccessFull)
	if err != nil {
		return nil, err
	}
	// Submission is the employee's own act; managers cannot vouch for it.
	if summary.EmployeeID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the departing employee can submit the checklist")
	}
	if summary.Status != models.CaseChecklistPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "checklist was already submitted")
	}

	open, err := s.checklists.CountMandatoryIncomplete(ctx, caseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mandatory items")
	}
	if open > 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "mandatory checklist items are incomplete")
	}

	now := time.Now().UTC()
	sc := summary.SeparationCase
	sc.Status = models.CaseChecklistSubmitted
	sc.ChecklistSubmittedAt = &now
	if err := s.cases.Update(ctx, &sc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit checklist")
	}

	s.audit(ctx, claims, models.AuditActionChecklistSubmit, caseID, nil)
	s.invalidateDashboards(ctx)

	updated, err := s.loadSummary(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.ChecklistSubmitted(updated)
	}
	return updated, nil
}

// AssignSignoff creates a pending department sign-off on a case and
// moves the case into the sign-off phase. A department can hold at most
// one sign-off per case.
func (s *SeparationService) AssignSignoff(ctx context.Context, claims *models.JWTClaims, caseID string, req models.AssignSignoffRequest) (*models.SignOff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signoff payload")
	}
	if !claims.Role.IsSeparationManager() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only separation managers can assign signoffs")
	}

	summary, _, err := s.authorize(ctx, claims, caseID, AccessFull)
	if err != nil {
		return nil, err
	}
	if summary.Status != models.CaseChecklistSubmitted && summary.Status != models.CaseSignoffPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "case is not ready for signoffs")
	}

	if _, err := s.depts.FindByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}

	assignee, err := s.users.FindByID(ctx, req.AssigneeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignee")
	}
	if !assignee.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee account is inactive")
	}
	if !assignee.Role.IsManager() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must hold a manager role")
	}

	exists, err := s.signoffs.ExistsForDepartment(ctx, caseID, req.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing signoffs")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "department already has a signoff for this case")
	}

	so := &models.SignOff{
		CaseID:       caseID,
		DepartmentID: req.DepartmentID,
		AssigneeID:   req.AssigneeID,
	}
	if err := s.signoffs.Create(ctx, so); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create signoff")
	}

	if summary.Status != models.CaseSignoffPending {
		if err := s.cases.UpdateStatus(ctx, caseID, models.CaseSignoffPending); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to transition case")
		}
	}

	s.audit(ctx, claims, models.AuditActionSignoffAssign, so.ID, map[string]interface{}{
		"case_id":       caseID,
		"department_id": req.DepartmentID,
		"assignee_id":   req.AssigneeID,
	})
	s.invalidateDashboards(ctx)

	if s.notifier != nil {
		if updated, err := s.loadSummary(ctx, caseID); err == nil {
			s.notifier.SignoffRequested(updated, so, assignee)
		}
	}
	return so, nil
}

// ProcessSignoff records the assignee's decision. The case completes
// automatically once every sign-off is approved; a rejection leaves the
// case open in the sign-off phase for follow-up.
func (s *SeparationService) ProcessSignoff(ctx context.Context, claims *models.JWTClaims, signoffID string, req models.ProcessSignoffRequest) (*models.SignOff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	so, err := s.signoffs.FindByID(ctx, signoffID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "signoff not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load signoff")
	}
	// Separation managers may decide on behalf of an absent reviewer.
	if so.AssigneeID != claims.UserID && claims.Role != models.RoleSeparationManager {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the assigned reviewer can decide this signoff")
	}
	if so.Status != models.SignOffPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "signoff was already decided")
	}

	resolution, err := s.signoffs.DecideAndResolve(ctx, signoffID, so.CaseID, req.Status, req.Comment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	s.audit(ctx, claims, models.AuditActionSignoffProcess, signoffID, map[string]interface{}{
		"case_id":    so.CaseID,
		"status":     req.Status,
		"resolution": resolution,
	})
	s.invalidateDashboards(ctx)

	decided, err := s.signoffs.FindByID(ctx, signoffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload signoff")
	}

	if s.notifier != nil {
		if summary, err := s.loadSummary(ctx, so.CaseID); err == nil {
			s.notifier.SignoffDecided(summary, decided)
			if resolution == models.ResolutionAllApproved {
				s.notifier.CaseCompleted(summary)
			}
		}
	}
	return decided, nil
}

// ListMySignoffs returns the caller's pending sign-off queue.
func (s *SeparationService) ListMySignoffs(ctx context.Context, claims *models.JWTClaims) ([]models.SignOff, error) {
	signoffs, err := s.signoffs.ListPendingForUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list signoffs")
	}
	return signoffs, nil
}

// authorize loads the case and checks the caller's access level.
func (s *SeparationService) authorize(ctx context.Context, claims *models.JWTClaims, caseID string, need CaseAccess) (*models.CaseSummary, CaseAccess, error) {
	summary, err := s.loadSummary(ctx, caseID)
	if err != nil {
		return nil, AccessNone, err
	}

	holds := false
	if !claims.Role.IsSeparationManager() {
		holds, err = s.signoffs.HoldsSignoff(ctx, caseID, claims.UserID)
		if err != nil {
			return nil, AccessNone, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check signoff access")
		}
	}

	access := ResolveCaseAccess(&summary.SeparationCase, claims.UserID, claims.Role, holds)
	if access < need {
		if access == AccessNone {
			return nil, AccessNone, appErrors.Clone(appErrors.ErrForbidden, "no access to this case")
		}
		return nil, access, appErrors.Clone(appErrors.ErrForbidden, "read-only access to this case")
	}
	return summary, access, nil
}

func (s *SeparationService) loadSummary(ctx context.Context, caseID string) (*models.CaseSummary, error) {
	summary, err := s.cases.FindSummary(ctx, caseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load case")
	}
	s.attachProgress(ctx, summary)
	return summary, nil
}

func (s *SeparationService) attachProgress(ctx context.Context, summary *models.CaseSummary) {
	if total, completed, err := s.checklists.CountByCase(ctx, summary.ID); err == nil {
		summary.Progress = ChecklistProgress(total, completed)
	} else {
		s.logger.Warn("failed to compute checklist progress", zap.String("case_id", summary.ID), zap.Error(err))
	}
	if total, approved, err := s.signoffs.CountByCase(ctx, summary.ID); err == nil {
		summary.SignoffProgress = SignoffProgress(total, approved)
	} else {
		s.logger.Warn("failed to compute signoff progress", zap.String("case_id", summary.ID), zap.Error(err))
	}
}

func (s *SeparationService) audit(ctx context.Context, claims *models.JWTClaims, action, resourceID string, values map[string]interface{}) {
	var userID *string
	if claims != nil {
		id := claims.UserID
		userID = &id
	}
	var payload []byte
	if values != nil {
		payload, _ = json.Marshal(values)
	}
	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "separation_case",
		ResourceID: &resourceID,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *SeparationService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
