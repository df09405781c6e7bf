package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
	"github.com/campushour/tutoring-api/pkg/export"
)

type exportSessionRepository interface {
	ListForProfile(ctx context.Context, profileID string, role models.Role) ([]repository.SessionListRow, error)
}

type cancellationAuditRepository interface {
	ListAudit(ctx context.Context, tutorID string) ([]repository.CancellationAuditRow, error)
}

// ExportService renders schedules and audit trails into downloadable files.
type ExportService struct {
	sessions      exportSessionRepository
	cancellations cancellationAuditRepository
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	logger        *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(sessions exportSessionRepository, cancellations cancellationAuditRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions:      sessions,
		cancellations: cancellations,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		logger:        logger,
	}
}

// SchedulePDF renders the user's full session list as a tabular PDF.
func (s *ExportService) SchedulePDF(ctx context.Context, profileID string, role models.Role) ([]byte, error) {
	rows, err := s.sessions.ListForProfile(ctx, profileID, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions for export")
	}

	counterparty := "Tutor"
	if role == models.RoleTutor {
		counterparty = "Tutee"
	}
	data := export.Dataset{
		Title:   "Tutoring Schedule",
		Headers: []string{"Date", "Time", "Course", counterparty, "Status"},
	}
	for _, row := range rows {
		data.Append(
			row.ScheduledDate.Format("2006-01-02"),
			models.ToTimeString(row.StartMinute),
			row.CourseCode,
			row.CounterpartyName,
			string(row.Status),
		)
	}

	content, err := s.pdf.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule pdf")
	}
	return content, nil
}

// CancellationsCSV renders the cancellation audit trail as CSV. An empty
// tutorID exports all tutors.
func (s *ExportService) CancellationsCSV(ctx context.Context, tutorID string) ([]byte, error) {
	rows, err := s.cancellations.ListAudit(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cancellation audit")
	}

	data := export.Dataset{
		Headers: []string{"session_id", "tutor", "tutee", "course", "date", "time", "cancelled_by", "reason", "cancelled_at"},
	}
	for _, row := range rows {
		reason := ""
		if row.Reason != nil {
			reason = *row.Reason
		}
		data.Append(
			row.SessionID,
			row.TutorName,
			row.TuteeName,
			row.CourseCode,
			row.ScheduledDate.Format("2006-01-02"),
			models.ToTimeString(row.StartMinute),
			row.CancelledBy,
			reason,
			row.CancelledAt.Format(time.RFC3339),
		)
	}

	content, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render cancellation csv")
	}
	return content, nil
}
