package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushour/tutoring-api/internal/models"
)

// CancellationAuditRow joins a cancellation record with its session context
// for audit exports.
type CancellationAuditRow struct {
	SessionID     string    `db:"session_id"`
	TutorName     string    `db:"tutor_name"`
	TuteeName     string    `db:"tutee_name"`
	CourseCode    string    `db:"course_code"`
	ScheduledDate time.Time `db:"scheduled_date"`
	StartMinute   int       `db:"start_minute"`
	CancelledBy   string    `db:"cancelled_by"`
	Reason        *string   `db:"reason"`
	CancelledAt   time.Time `db:"cancelled_at"`
}

// CancellationRepository persists the append-only cancellation audit trail.
type CancellationRepository struct {
	db *sqlx.DB
}

// NewCancellationRepository builds the repository.
func NewCancellationRepository(db *sqlx.DB) *CancellationRepository {
	return &CancellationRepository{db: db}
}

func (r *CancellationRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Insert writes one record for a session. A unique index on session_id keeps
// the first cancellation authoritative; later writes are silently dropped.
func (r *CancellationRepository) Insert(ctx context.Context, exec sqlx.ExtContext, record *models.CancellationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CancelledAt.IsZero() {
		record.CancelledAt = time.Now().UTC()
	}

	const query = `
INSERT INTO cancellation_records (id, session_id, cancelled_by, reason, cancelled_at)
VALUES (:id, :session_id, :cancelled_by, :reason, :cancelled_at)
ON CONFLICT (session_id) DO NOTHING`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, record); err != nil {
		return fmt.Errorf("insert cancellation record: %w", err)
	}
	return nil
}

// ListAudit returns the cancellation trail joined with session context,
// newest first. Optionally scoped to one tutor.
func (r *CancellationRepository) ListAudit(ctx context.Context, tutorID string) ([]CancellationAuditRow, error) {
	query := `
SELECT
	cr.session_id,
	tp.full_name AS tutor_name,
	sp.full_name AS tutee_name,
	c.code AS course_code,
	s.scheduled_date,
	s.start_minute,
	cr.cancelled_by,
	cr.reason,
	cr.cancelled_at
FROM cancellation_records cr
JOIN scheduled_sessions s ON s.id = cr.session_id
JOIN profiles tp ON tp.id = s.tutor_id
JOIN profiles sp ON sp.id = s.tutee_id
JOIN courses c ON c.id = s.course_id`

	args := []interface{}{}
	if tutorID != "" {
		query += "\nWHERE s.tutor_id = $1"
		args = append(args, tutorID)
	}
	query += "\nORDER BY cr.cancelled_at DESC"

	var rows []CancellationAuditRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list cancellation audit: %w", err)
	}
	return rows, nil
}
