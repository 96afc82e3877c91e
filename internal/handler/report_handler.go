package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/internal/service"
	"github.com/suvadu/separation-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report service.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// CaseRegister godoc
// @Summary Export the case register
// @Description Render the case register as CSV or PDF and return a signed download link
// @Tags Reports
// @Produce json
// @Param format query string true "Export format (csv or pdf)"
// @Param status query string false "Comma separated status filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/cases [post]
func (h *ReportHandler) CaseRegister(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))

	var statuses []models.CaseStatus
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			statuses = append(statuses, models.CaseStatus(strings.TrimSpace(part)))
		}
	}

	result, err := h.service.GenerateCaseRegister(c.Request.Context(), claimsFromContext(c), format, statuses)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated report
// @Description Stream a report referenced by a signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	contentType := "text/csv"
	if strings.HasSuffix(download.Filename, ".pdf") {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", contentType)
	c.File(download.File.Name())
}
