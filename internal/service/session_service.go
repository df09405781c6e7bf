package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushour/tutoring-api/internal/dto"
	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
)

type sessionRepository interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, session *models.ScheduledSession) error
	FindByID(ctx context.Context, id string) (*models.ScheduledSession, error)
	MarkCancelled(ctx context.Context, exec sqlx.ExtContext, sessionID string) (int64, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
	ListForProfile(ctx context.Context, profileID string, role models.Role) ([]repository.SessionListRow, error)
}

type cancellationRepository interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, record *models.CancellationRecord) error
}

type windowCoverageRepository interface {
	HasWindowCovering(ctx context.Context, exec sqlx.ExtContext, tutorID string, dayOfWeek, startMinute, endMinute int) (bool, error)
}

type profileReader interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

type notifier interface {
	Notify(notification models.Notification)
}

// CreateSessionParams carries everything needed to confirm a session.
type CreateSessionParams struct {
	TutorID         string
	TuteeID         string
	CourseID        string
	RequestID       *string
	Date            time.Time
	StartMinute     int
	DurationMinutes int
	RoomLink        string
}

// SessionService owns the ScheduledSession state machine: SCHEDULED advances
// to COMPLETED or CANCELLED, never reverses.
type SessionService struct {
	db            *sqlx.DB
	sessions      sessionRepository
	cancellations cancellationRepository
	windows       windowCoverageRepository
	profiles      profileReader
	notifier      notifier
	logger        *zap.Logger
	cancelNotice  time.Duration
	now           func() time.Time
}

// NewSessionService instantiates SessionService.
func NewSessionService(
	db *sqlx.DB,
	sessions sessionRepository,
	cancellations cancellationRepository,
	windows windowCoverageRepository,
	profiles profileReader,
	notifier notifier,
	cancelNotice time.Duration,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cancelNotice <= 0 {
		cancelNotice = 24 * time.Hour
	}
	return &SessionService{
		db:            db,
		sessions:      sessions,
		cancellations: cancellations,
		windows:       windows,
		profiles:      profiles,
		notifier:      notifier,
		logger:        logger,
		cancelNotice:  cancelNotice,
		now:           time.Now,
	}
}

// CreateFromAcceptedRequest confirms a session on the caller's transaction.
// The chosen time is re-validated against the tutor's live availability so a
// concurrent schedule replace cannot orphan the session, then inserted; the
// partial unique index makes the check-and-insert atomic and a lost race
// surfaces as SlotAlreadyTaken.
func (s *SessionService) CreateFromAcceptedRequest(ctx context.Context, exec sqlx.ExtContext, params CreateSessionParams) (*models.ScheduledSession, error) {
	day := models.ISOWeekday(params.Date)
	covered, err := s.windows.HasWindowCovering(ctx, exec, params.TutorID, day, params.StartMinute, params.StartMinute+params.DurationMinutes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify availability")
	}
	if !covered {
		return nil, appErrors.Clone(appErrors.ErrValidation, "chosen time is no longer within the tutor's availability")
	}

	session := &models.ScheduledSession{
		TutorID:         params.TutorID,
		TuteeID:         params.TuteeID,
		CourseID:        params.CourseID,
		RequestID:       params.RequestID,
		ScheduledDate:   params.Date,
		StartMinute:     params.StartMinute,
		DurationMinutes: params.DurationMinutes,
		Status:          models.SessionStatusScheduled,
		RoomLink:        params.RoomLink,
	}
	if err := s.sessions.Insert(ctx, exec, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Cancel performs a user-initiated cancellation: only the session's own tutor
// or tutee may cancel, and not within the notice period of the start time
// (exactly at the boundary is allowed). The status flip and the audit record
// commit together; the counterparty notification is best-effort afterwards.
func (s *SessionService) Cancel(ctx context.Context, sessionID, actorProfileID string, actorRole models.Role, reason *string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	switch actorRole {
	case models.RoleTutor:
		if session.TutorID != actorProfileID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the session's own tutor or tutee may cancel")
		}
	case models.RoleTutee:
		if session.TuteeID != actorProfileID {
			return appErrors.Clone(appErrors.ErrForbidden, "only the session's own tutor or tutee may cancel")
		}
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "only the session's own tutor or tutee may cancel")
	}

	if session.Status != models.SessionStatusScheduled {
		return appErrors.Clone(appErrors.ErrAlreadyResolved, "session is not in a cancellable state")
	}

	if session.StartsAt(time.Local).Sub(s.now()) < s.cancelNotice {
		return appErrors.Clone(appErrors.ErrTooLateToCancel, "")
	}

	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		affected, err := s.sessions.MarkCancelled(ctx, tx, session.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel session")
		}
		if affected == 0 {
			return appErrors.Clone(appErrors.ErrAlreadyResolved, "session is not in a cancellable state")
		}
		record := &models.CancellationRecord{
			SessionID:   session.ID,
			CancelledBy: actorRole,
			Reason:      reason,
		}
		if err := s.cancellations.Insert(ctx, tx, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record cancellation")
		}
		return nil
	})
	if err != nil {
		return err
	}

	counterpartyID := session.TutorID
	if actorRole == models.RoleTutor {
		counterpartyID = session.TuteeID
	}
	s.notifyCancelled(ctx, session, counterpartyID)

	return nil
}

// CascadeCancel cancels a batch of sessions on the caller's transaction,
// writing one audit record per session. Availability withdrawal may need to
// cancel sessions inside the notice period, so the notice policy does not
// apply here. Any failure aborts the whole batch.
func (s *SessionService) CascadeCancel(ctx context.Context, exec sqlx.ExtContext, sessionIDs []string, byRole models.Role, reason string) error {
	for _, id := range sessionIDs {
		affected, err := s.sessions.MarkCancelled(ctx, exec, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cascade-cancel session")
		}
		if affected == 0 {
			return appErrors.Clone(appErrors.ErrAlreadyResolved, "session changed state during cascade")
		}
		record := &models.CancellationRecord{
			SessionID:   id,
			CancelledBy: byRole,
			Reason:      &reason,
		}
		if err := s.cancellations.Insert(ctx, exec, record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record cascade cancellation")
		}
	}
	return nil
}

// CompleteElapsed advances every elapsed SCHEDULED session to COMPLETED.
func (s *SessionService) CompleteElapsed(ctx context.Context) (int64, error) {
	return s.sessions.CompleteElapsed(ctx, s.now())
}

// ListForUser returns the caller's sessions with counterparty enrichment.
func (s *SessionService) ListForUser(ctx context.Context, profileID string, role models.Role) ([]dto.SessionView, error) {
	rows, err := s.sessions.ListForProfile(ctx, profileID, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	views := make([]dto.SessionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, dto.SessionView{
			ID:               row.ID,
			Date:             row.ScheduledDate.Format("2006-01-02"),
			Time:             models.ToTimeString(row.StartMinute),
			DurationMinutes:  row.DurationMinutes,
			Status:           string(row.Status),
			RoomLink:         row.RoomLink,
			CounterpartyName: row.CounterpartyName,
			CourseCode:       row.CourseCode,
			CancelReason:     row.CancelReason,
		})
	}
	return views, nil
}

func (s *SessionService) notifyCancelled(ctx context.Context, session *models.ScheduledSession, recipientProfileID string) {
	if s.notifier == nil {
		return
	}
	recipient, err := s.profiles.FindByID(ctx, recipientProfileID)
	if err != nil {
		s.logger.Warn("failed to resolve cancellation recipient",
			zap.String("profile_id", recipientProfileID), zap.Error(err))
		return
	}
	s.notifier.Notify(models.Notification{
		To:   recipient.Email,
		Kind: models.NotificationCancelled,
		Payload: map[string]interface{}{
			"session_id": session.ID,
			"date":       session.ScheduledDate.Format("2006-01-02"),
			"time":       models.ToTimeString(session.StartMinute),
		},
	})
}
