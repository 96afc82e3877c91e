package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/internal/service"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
	"github.com/suvadu/separation-api/pkg/response"
)

// SeparationHandler wires HTTP endpoints to the separation workflow.
type SeparationHandler struct {
	service *service.SeparationService
}

// NewSeparationHandler creates a new handler.
func NewSeparationHandler(svc *service.SeparationService) *SeparationHandler {
	return &SeparationHandler{service: svc}
}

// CreateCase godoc
// @Summary Open a separation case
// @Description Open an offboarding case for an employee with a checklist snapshot
// @Tags Cases
// @Accept json
// @Produce json
// @Param payload body models.CreateCaseRequest true "Case payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cases [post]
func (h *SeparationHandler) CreateCase(c *gin.Context) {
	var req models.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid case payload"))
		return
	}

	summary, err := h.service.CreateCase(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, summary)
}

// ListCases godoc
// @Summary List separation cases
// @Description List cases visible to the caller's role
// @Tags Cases
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /cases [get]
func (h *SeparationHandler) ListCases(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var filter models.CaseFilter
	if raw := c.Query("status"); raw != "" {
		status := models.CaseStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown case status"))
			return
		}
		filter.Status = &status
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	cases, total, err := h.service.ListCases(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cases, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// GetCase godoc
// @Summary Get case detail
// @Description Fetch a case with its checklist, sign-offs and handovers
// @Tags Cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id} [get]
func (h *SeparationHandler) GetCase(c *gin.Context) {
	detail, err := h.service.GetCase(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdateCase godoc
// @Summary Update case fields
// @Description Edit dates, reason or notes of a non-terminal case
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body models.UpdateCaseRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cases/{id} [patch]
func (h *SeparationHandler) UpdateCase(c *gin.Context) {
	var req models.UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid case payload"))
		return
	}

	summary, err := h.service.UpdateCase(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// CancelCase godoc
// @Summary Cancel a case
// @Description Close a case without completing the workflow
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cases/{id}/cancel [post]
func (h *SeparationHandler) CancelCase(c *gin.Context) {
	var payload struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&payload)

	summary, err := h.service.CancelCase(c.Request.Context(), claimsFromContext(c), c.Param("id"), payload.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// OverrideStatus godoc
// @Summary Override case status
// @Description Force a case into a specific status for workflow repair
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body models.OverrideStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /cases/{id}/status [put]
func (h *SeparationHandler) OverrideStatus(c *gin.Context) {
	var req models.OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	summary, err := h.service.OverrideStatus(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// UpdateChecklistItem godoc
// @Summary Update a checklist item
// @Description Toggle completion or annotate a checklist item
// @Tags Checklist
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param itemId path string true "Checklist item ID"
// @Param payload body models.UpdateChecklistItemRequest true "Item payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id}/checklist/{itemId} [patch]
func (h *SeparationHandler) UpdateChecklistItem(c *gin.Context) {
	var req models.UpdateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checklist payload"))
		return
	}

	item, err := h.service.UpdateChecklistItem(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("itemId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// SubmitChecklist godoc
// @Summary Submit the checklist
// @Description Move the case out of the checklist phase once mandatory items are complete
// @Tags Checklist
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /cases/{id}/checklist/submit [post]
func (h *SeparationHandler) SubmitChecklist(c *gin.Context) {
	summary, err := h.service.SubmitChecklist(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// AssignSignoff godoc
// @Summary Assign a department sign-off
// @Description Create a pending sign-off and move the case into the sign-off phase
// @Tags Signoffs
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body models.AssignSignoffRequest true "Signoff payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cases/{id}/signoffs [post]
func (h *SeparationHandler) AssignSignoff(c *gin.Context) {
	var req models.AssignSignoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signoff payload"))
		return
	}

	signoff, err := h.service.AssignSignoff(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, signoff)
}

// ProcessSignoff godoc
// @Summary Decide a sign-off
// @Description Approve or reject a pending sign-off as its assignee
// @Tags Signoffs
// @Accept json
// @Produce json
// @Param signoffId path string true "Signoff ID"
// @Param payload body models.ProcessSignoffRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /signoffs/{signoffId} [post]
func (h *SeparationHandler) ProcessSignoff(c *gin.Context) {
	var req models.ProcessSignoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}

	signoff, err := h.service.ProcessSignoff(c.Request.Context(), claimsFromContext(c), c.Param("signoffId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signoff, nil)
}

// ListMySignoffs godoc
// @Summary List my pending sign-offs
// @Description Return the caller's pending sign-off queue
// @Tags Signoffs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /signoffs/pending [get]
func (h *SeparationHandler) ListMySignoffs(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	signoffs, err := h.service.ListMySignoffs(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, signoffs, nil)
}
