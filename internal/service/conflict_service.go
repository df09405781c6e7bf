package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushour/tutoring-api/internal/dto"
	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
)

type conflictSessionRepository interface {
	ListActiveEnrichedByTutor(ctx context.Context, exec sqlx.ExtContext, tutorID string, fromDate time.Time) ([]repository.SessionDetailRow, error)
}

// ConflictService finds confirmed sessions intersecting proposed time ranges.
// The same primitive backs two intents: the advisory pre-flight check behind
// the tutor's confirmation dialog, and the authoritative re-check inside the
// cascade transaction. Callers must never reuse a pre-flight result at
// mutation time.
type ConflictService struct {
	sessions conflictSessionRepository
	logger   *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(sessions conflictSessionRepository, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{sessions: sessions, logger: logger}
}

// FindConflicts returns every non-cancelled session for the tutor on or after
// fromDate whose day-of-week and time fall inside any of the given ranges.
// The scheduled date maps through the Monday=1/Sunday=7 remap; times compare
// with half-open containment. When exec is non-nil the query runs on the
// caller's transaction.
func (s *ConflictService) FindConflicts(ctx context.Context, exec sqlx.ExtContext, tutorID string, ranges []models.WeekdayRange, fromDate time.Time) ([]repository.SessionDetailRow, error) {
	if len(ranges) == 0 {
		return nil, nil
	}

	rows, err := s.sessions.ListActiveEnrichedByTutor(ctx, exec, tutorID, fromDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions for conflict check")
	}

	var conflicts []repository.SessionDetailRow
	for _, row := range rows {
		day := models.ISOWeekday(row.ScheduledDate)
		for _, r := range ranges {
			if r.DayOfWeek == day && row.Range().Overlaps(r.Range()) {
				conflicts = append(conflicts, row)
				break
			}
		}
	}
	return conflicts, nil
}

// Summaries projects conflict rows into the dialog wire shape.
func Summaries(rows []repository.SessionDetailRow) []dto.SessionSummary {
	summaries := make([]dto.SessionSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, dto.SessionSummary{
			SessionID:        row.ID,
			ScheduledDate:    row.ScheduledDate.Format("2006-01-02"),
			DayOfWeek:        models.ISOWeekday(row.ScheduledDate),
			Time:             models.ToTimeString(row.StartMinute),
			CounterpartyName: row.TuteeName,
			CourseCode:       row.CourseCode,
			CourseName:       row.CourseName,
		})
	}
	return summaries
}
