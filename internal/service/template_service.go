package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/models"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
)

type templateRepository interface {
	FindByID(ctx context.Context, id string) (*models.ChecklistTemplate, error)
	List(ctx context.Context, activeOnly bool) ([]models.ChecklistTemplate, error)
	Create(ctx context.Context, tpl *models.ChecklistTemplate) error
	Update(ctx context.Context, tpl *models.ChecklistTemplate) error
	Deactivate(ctx context.Context, id string) error
}

// TemplateService manages the checklist template catalogue. Changes
// apply to future cases only; existing cases keep their snapshot.
type TemplateService struct {
	repo      templateRepository
	audits    caseDirectoryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTemplateService constructs a TemplateService instance.
func NewTemplateService(repo templateRepository, audits caseDirectoryRepository, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TemplateService{repo: repo, audits: audits, validator: validate, logger: logger}
}

// List returns templates, optionally only the active ones.
func (s *TemplateService) List(ctx context.Context, activeOnly bool) ([]models.ChecklistTemplate, error) {
	templates, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list templates")
	}
	return templates, nil
}

// Create adds a template to the catalogue.
func (s *TemplateService) Create(ctx context.Context, claims *models.JWTClaims, req models.TemplateRequest) (*models.ChecklistTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	tpl := &models.ChecklistTemplate{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Mandatory:    req.Mandatory,
		DisplayOrder: req.DisplayOrder,
		Active:       true,
	}
	if req.Active != nil {
		tpl.Active = *req.Active
	}

	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create template")
	}
	s.recordAudit(ctx, claims, tpl.ID)
	return tpl, nil
}

// Update edits a template in place.
func (s *TemplateService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.TemplateRequest) (*models.ChecklistTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}

	tpl.Title = req.Title
	tpl.Description = req.Description
	tpl.Category = req.Category
	tpl.Mandatory = req.Mandatory
	tpl.DisplayOrder = req.DisplayOrder
	if req.Active != nil {
		tpl.Active = *req.Active
	}

	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update template")
	}
	s.recordAudit(ctx, claims, tpl.ID)
	return tpl, nil
}

// Deactivate retires a template from future cases.
func (s *TemplateService) Deactivate(ctx context.Context, claims *models.JWTClaims, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "template not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate template")
	}
	s.recordAudit(ctx, claims, id)
	return nil
}

func (s *TemplateService) recordAudit(ctx context.Context, claims *models.JWTClaims, templateID string) {
	if s.audits == nil || claims == nil {
		return
	}
	userID := claims.UserID
	if err := s.audits.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionTemplateChange,
		Resource:   "checklist_template",
		ResourceID: &templateID,
	}); err != nil {
		s.logger.Warn("failed to record template audit log", zap.Error(err))
	}
}
