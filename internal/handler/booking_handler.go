package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushour/tutoring-api/internal/service"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
	"github.com/campushour/tutoring-api/pkg/response"
)

// BookingHandler manages booking request endpoints.
type BookingHandler struct {
	service *service.BookingService
	metrics *service.MetricsService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(svc *service.BookingService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{service: svc, metrics: metrics}
}

// Submit godoc
// @Summary Submit a booking request
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body service.SubmitBookingRequest true "Booking request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Submit(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid booking payload"))
		return
	}
	request, err := h.service.Submit(c.Request.Context(), claims.ProfileID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Respond godoc
// @Summary Accept or reject a pending booking request
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking request ID"
// @Param payload body service.RespondRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/response [post]
func (h *BookingHandler) Respond(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid respond payload"))
		return
	}
	result, err := h.service.Respond(c.Request.Context(), c.Param("id"), claims.ProfileID, req)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrSlotTaken.Code) {
			h.metrics.RecordSlotConflict()
		}
		response.Error(c, err)
		return
	}
	switch req.Action {
	case "accept":
		h.metrics.RecordBookingOutcome("accepted")
	case "reject":
		h.metrics.RecordBookingOutcome("rejected")
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Inbox godoc
// @Summary List the tutor's pending booking requests
// @Tags Bookings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookings/inbox [get]
func (h *BookingHandler) Inbox(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	items, err := h.service.ListPendingForTutor(c.Request.Context(), claims.ProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
