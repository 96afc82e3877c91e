package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suvadu/separation-api/internal/models"
	"github.com/suvadu/separation-api/internal/service"
	appErrors "github.com/suvadu/separation-api/pkg/errors"
	"github.com/suvadu/separation-api/pkg/response"
)

// HandoverHandler wires HTTP endpoints to the handover service.
type HandoverHandler struct {
	service *service.HandoverService
}

// NewHandoverHandler creates a new handler.
func NewHandoverHandler(svc *service.HandoverService) *HandoverHandler {
	return &HandoverHandler{service: svc}
}

// List godoc
// @Summary List handover sessions
// @Tags Handovers
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Router /cases/{id}/handovers [get]
func (h *HandoverHandler) List(c *gin.Context) {
	sessions, err := h.service.ListByCase(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Create godoc
// @Summary Schedule a handover session
// @Tags Handovers
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param payload body models.CreateHandoverRequest true "Handover payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cases/{id}/handovers [post]
func (h *HandoverHandler) Create(c *gin.Context) {
	var req models.CreateHandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid handover payload"))
		return
	}

	session, err := h.service.Create(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update a handover session
// @Tags Handovers
// @Accept json
// @Produce json
// @Param id path string true "Case ID"
// @Param handoverId path string true "Handover ID"
// @Param payload body models.UpdateHandoverRequest true "Handover payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id}/handovers/{handoverId} [patch]
func (h *HandoverHandler) Update(c *gin.Context) {
	var req models.UpdateHandoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid handover payload"))
		return
	}

	session, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("handoverId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete a handover session
// @Tags Handovers
// @Param id path string true "Case ID"
// @Param handoverId path string true "Handover ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{id}/handovers/{handoverId} [delete]
func (h *HandoverHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("handoverId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
