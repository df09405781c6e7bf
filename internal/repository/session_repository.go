package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campushour/tutoring-api/internal/models"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
)

const uniqueViolation = "23505"

// SessionDetailRow joins a session with its counterparty and course summary.
type SessionDetailRow struct {
	models.ScheduledSession
	TuteeName  string `db:"tutee_name"`
	TuteeEmail string `db:"tutee_email"`
	TutorName  string `db:"tutor_name"`
	CourseCode string `db:"course_code"`
	CourseName string `db:"course_name"`
}

// SessionListRow is one row in a user's own session list.
type SessionListRow struct {
	models.ScheduledSession
	CounterpartyName string  `db:"counterparty_name"`
	CourseCode       string  `db:"course_code"`
	CancelReason     *string `db:"cancel_reason"`
}

// SessionRepository persists scheduled sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository builds the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Insert creates a session. The sessions table carries a partial unique index
// on (tutor_id, scheduled_date, start_minute) for non-cancelled rows, so the
// check and the insert are one atomic operation; losing the race surfaces as
// ErrSlotTaken.
func (r *SessionRepository) Insert(ctx context.Context, exec sqlx.ExtContext, session *models.ScheduledSession) error {
	now := time.Now().UTC()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusScheduled
	}
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `
INSERT INTO scheduled_sessions (id, tutor_id, tutee_id, course_id, request_id, scheduled_date, start_minute, duration_minutes, status, room_link, created_at, updated_at)
VALUES (:id, :tutor_id, :tutee_id, :course_id, :request_id, :scheduled_date, :start_minute, :duration_minutes, :status, :room_link, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, session); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return appErrors.Clone(appErrors.ErrSlotTaken, "")
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByID loads one session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ScheduledSession, error) {
	const query = `SELECT id, tutor_id, tutee_id, course_id, request_id, scheduled_date, start_minute, duration_minutes, status, room_link, created_at, updated_at
FROM scheduled_sessions WHERE id = $1`
	var session models.ScheduledSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListActiveEnrichedByTutor returns every non-cancelled session for the tutor
// on or after fromDate, joined with tutee and course summaries. Backs both
// the advisory pre-flight conflict check and the authoritative re-check
// inside the cascade transaction.
func (r *SessionRepository) ListActiveEnrichedByTutor(ctx context.Context, exec sqlx.ExtContext, tutorID string, fromDate time.Time) ([]SessionDetailRow, error) {
	const query = `
SELECT
	s.id, s.tutor_id, s.tutee_id, s.course_id, s.request_id, s.scheduled_date,
	s.start_minute, s.duration_minutes, s.status, s.room_link, s.created_at, s.updated_at,
	p.full_name AS tutee_name,
	p.email AS tutee_email,
	t.full_name AS tutor_name,
	c.code AS course_code,
	c.name AS course_name
FROM scheduled_sessions s
JOIN profiles p ON p.id = s.tutee_id
JOIN profiles t ON t.id = s.tutor_id
JOIN courses c ON c.id = s.course_id
WHERE s.tutor_id = $1 AND s.status <> 'CANCELLED' AND s.scheduled_date >= $2
ORDER BY s.scheduled_date ASC, s.start_minute ASC`
	var rows []SessionDetailRow
	if err := sqlx.SelectContext(ctx, r.exec(exec), &rows, query, tutorID, fromDate); err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	return rows, nil
}

// MarkCancelled transitions a SCHEDULED session to CANCELLED. Zero affected
// rows means the session was not in a cancellable state.
func (r *SessionRepository) MarkCancelled(ctx context.Context, exec sqlx.ExtContext, sessionID string) (int64, error) {
	const query = `UPDATE scheduled_sessions SET status = 'CANCELLED', updated_at = $1 WHERE id = $2 AND status = 'SCHEDULED'`
	result, err := r.exec(exec).ExecContext(ctx, query, time.Now().UTC(), sessionID)
	if err != nil {
		return 0, fmt.Errorf("cancel session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel session affected rows: %w", err)
	}
	return affected, nil
}

// CompleteElapsed flips every SCHEDULED session whose end already passed to
// COMPLETED. Invoked by the periodic sweep.
func (r *SessionRepository) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	const query = `
UPDATE scheduled_sessions SET status = 'COMPLETED', updated_at = $1
WHERE status = 'SCHEDULED'
	AND scheduled_date + (start_minute + duration_minutes) * interval '1 minute' < $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("complete elapsed sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete elapsed affected rows: %w", err)
	}
	return affected, nil
}

// ListForProfile returns a user's sessions joined with the counterparty name
// appropriate to the role, newest date first.
func (r *SessionRepository) ListForProfile(ctx context.Context, profileID string, role models.Role) ([]SessionListRow, error) {
	counterparty := "s.tutor_id"
	owner := "s.tutee_id"
	if role == models.RoleTutor {
		counterparty = "s.tutee_id"
		owner = "s.tutor_id"
	}
	query := fmt.Sprintf(`
SELECT
	s.id, s.tutor_id, s.tutee_id, s.course_id, s.request_id, s.scheduled_date,
	s.start_minute, s.duration_minutes, s.status, s.room_link, s.created_at, s.updated_at,
	p.full_name AS counterparty_name,
	c.code AS course_code,
	cr.reason AS cancel_reason
FROM scheduled_sessions s
JOIN profiles p ON p.id = %s
JOIN courses c ON c.id = s.course_id
LEFT JOIN cancellation_records cr ON cr.session_id = s.id
WHERE %s = $1
ORDER BY s.scheduled_date DESC, s.start_minute DESC`, counterparty, owner)

	var rows []SessionListRow
	if err := r.db.SelectContext(ctx, &rows, query, profileID); err != nil {
		return nil, fmt.Errorf("list sessions for profile: %w", err)
	}
	return rows, nil
}
