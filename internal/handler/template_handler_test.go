package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suvadu/separation-api/internal/middleware"
	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/internal/service"
)

type fakeTemplateRepo struct {
	templates   []models.ChecklistTemplate
	created     *models.ChecklistTemplate
	deactivated []string
}

func (f *fakeTemplateRepo) FindByID(ctx context.Context, id string) (*models.ChecklistTemplate, error) {
	for i := range f.templates {
		if f.templates[i].ID == id {
			cp := f.templates[i]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTemplateRepo) List(ctx context.Context, activeOnly bool) ([]models.ChecklistTemplate, error) {
	return f.templates, nil
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tpl *models.ChecklistTemplate) error {
	tpl.ID = "tpl-new"
	f.created = tpl
	return nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, tpl *models.ChecklistTemplate) error {
	return nil
}

func (f *fakeTemplateRepo) Deactivate(ctx context.Context, id string) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeAuditSink struct{}

func (f *fakeAuditSink) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeAuditSink) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

type listEnvelope struct {
	Data []map[string]interface{} `json:"data"`
}

type errorEnvelope struct {
	Error map[string]interface{} `json:"error"`
}

func newTemplateHandler(repo *fakeTemplateRepo) *TemplateHandler {
	svc := service.NewTemplateService(repo, &fakeAuditSink{}, nil, zap.NewNop())
	return NewTemplateHandler(svc)
}

func TestTemplateHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTemplateHandler(&fakeTemplateRepo{templates: []models.ChecklistTemplate{
		{ID: "tpl-1", Title: "Return laptop", Mandatory: true, Active: true},
		{ID: "tpl-2", Title: "Exit interview", Active: true},
	}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/templates?active=true", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope listEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, "Return laptop", envelope.Data[0]["title"])
}

func TestTemplateHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeTemplateRepo{}
	handler := newTemplateHandler(repo)

	body := bytes.NewBufferString(`{"title": "Revoke VPN access", "mandatory": true, "display_order": 3}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/templates", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "mgr-1", Role: models.RoleSeparationManager})

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Revoke VPN access", repo.created.Title)
	assert.True(t, repo.created.Mandatory)
	assert.True(t, repo.created.Active)
}

func TestTemplateHandlerCreateMissingTitle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTemplateHandler(&fakeTemplateRepo{})

	body := bytes.NewBufferString(`{"mandatory": true}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/templates", body)
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error["code"])
}

func TestTemplateHandlerDeactivate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeTemplateRepo{templates: []models.ChecklistTemplate{{ID: "tpl-1", Title: "Return laptop", Active: true}}}
	handler := newTemplateHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/templates/tpl-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "tpl-1"}}

	handler.Deactivate(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"tpl-1"}, repo.deactivated)
}
