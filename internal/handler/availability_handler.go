package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushour/tutoring-api/internal/dto"
	"github.com/campushour/tutoring-api/internal/service"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
	"github.com/campushour/tutoring-api/pkg/response"
)

// AvailabilityHandler manages tutor availability endpoints.
type AvailabilityHandler struct {
	service *service.AvailabilityService
	metrics *service.MetricsService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(svc *service.AvailabilityService, metrics *service.MetricsService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc, metrics: metrics}
}

// ReplaceWeekly godoc
// @Summary Replace the tutor's weekly availability
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.WeeklyAvailabilityInput true "Weekly ranges keyed by ISO day"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /me/availability [put]
func (h *AvailabilityHandler) ReplaceWeekly(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var input dto.WeeklyAvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid availability payload"))
		return
	}
	if err := h.service.ReplaceWeekly(c.Request.Context(), claims.ProfileID, input); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetWeekly godoc
// @Summary Get a tutor's weekly availability
// @Tags Availability
// @Produce json
// @Param id path string true "Tutor profile ID"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/availability [get]
func (h *AvailabilityHandler) GetWeekly(c *gin.Context) {
	weekly, err := h.service.GetWeekly(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weekly, nil)
}

// GetSlots godoc
// @Summary List a tutor's bookable slots
// @Tags Availability
// @Produce json
// @Param id path string true "Tutor profile ID"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/slots [get]
func (h *AvailabilityHandler) GetSlots(c *gin.Context) {
	slots, err := h.service.ListSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// PreviewRemoval godoc
// @Summary Preview the sessions a window removal would cancel
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body []service.RemoveWindowInput true "Windows to remove"
// @Success 200 {object} response.Envelope
// @Router /me/availability/removals/preview [post]
func (h *AvailabilityHandler) PreviewRemoval(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var inputs []service.RemoveWindowInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid removal payload"))
		return
	}
	preview, err := h.service.PreviewRemoval(c.Request.Context(), claims.ProfileID, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// RemoveWindows godoc
// @Summary Remove availability windows, cancelling dependent sessions
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body []service.RemoveWindowInput true "Windows to remove"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/availability/removals [post]
func (h *AvailabilityHandler) RemoveWindows(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var inputs []service.RemoveWindowInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid removal payload"))
		return
	}
	result, err := h.service.RemoveWindows(c.Request.Context(), claims.ProfileID, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCascadeSize(len(result.Conflicts))
	response.JSON(c, http.StatusOK, result, nil)
}

// SuggestRange godoc
// @Summary Suggest the next free range on a given day
// @Tags Availability
// @Produce json
// @Param id path string true "Tutor profile ID"
// @Param day query int true "ISO day of week (1=Monday .. 7=Sunday)"
// @Param after query string false "Earliest start, HH:MM"
// @Success 200 {object} response.Envelope
// @Router /tutors/{id}/availability/suggest [get]
func (h *AvailabilityHandler) SuggestRange(c *gin.Context) {
	day, err := strconv.Atoi(c.Query("day"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be an integer"))
		return
	}
	suggestion, err := h.service.SuggestRange(c.Request.Context(), c.Param("id"), day, c.DefaultQuery("after", "08:00"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestion, nil)
}
