package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushour/tutoring-api/internal/service"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
	"github.com/campushour/tutoring-api/pkg/response"
)

// ExportHandler serves schedule and audit downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// SchedulePDF godoc
// @Summary Download the current user's schedule as PDF
// @Tags Exports
// @Produce application/pdf
// @Success 200 {file} binary
// @Router /exports/schedule.pdf [get]
func (h *ExportHandler) SchedulePDF(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	content, err := h.service.SchedulePDF(c.Request.Context(), claims.ProfileID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "schedule-" + time.Now().Format("20060102") + ".pdf"
	response.Attachment(c, "application/pdf", filename, content)
}

// CancellationsCSV godoc
// @Summary Download the cancellation audit trail as CSV
// @Tags Exports
// @Produce text/csv
// @Param tutorId query string false "Restrict to one tutor"
// @Success 200 {file} binary
// @Router /exports/cancellations.csv [get]
func (h *ExportHandler) CancellationsCSV(c *gin.Context) {
	content, err := h.service.CancellationsCSV(c.Request.Context(), c.Query("tutorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "cancellations-" + time.Now().Format("20060102") + ".csv"
	response.Attachment(c, "text/csv", filename, content)
}
