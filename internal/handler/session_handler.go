package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushour/tutoring-api/internal/service"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
	"github.com/campushour/tutoring-api/pkg/response"
)

// SessionHandler manages scheduled session endpoints.
type SessionHandler struct {
	service *service.SessionService
	metrics *service.MetricsService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc *service.SessionService, metrics *service.MetricsService) *SessionHandler {
	return &SessionHandler{service: svc, metrics: metrics}
}

type cancelRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// List godoc
// @Summary List the current user's sessions
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sessions, err := h.service.ListForUser(c.Request.Context(), claims.ProfileID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Cancel godoc
// @Summary Cancel a scheduled session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body cancelRequest false "Optional reason"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid cancel payload"))
		return
	}
	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims.ProfileID, claims.Role, req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCancellation(string(claims.Role))
	response.NoContent(c)
}
