package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushour/tutoring-api/internal/models"
)

// AvailabilityRepository persists recurring weekly availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository builds the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// DeleteByTutor removes every window for the tutor. Derived slots cascade at
// the schema level.
func (r *AvailabilityRepository) DeleteByTutor(ctx context.Context, exec sqlx.ExtContext, tutorID string) error {
	const query = `DELETE FROM availability_windows WHERE tutor_id = $1`
	if _, err := r.exec(exec).ExecContext(ctx, query, tutorID); err != nil {
		return fmt.Errorf("delete availability windows: %w", err)
	}
	return nil
}

// InsertBatch inserts a fresh set of windows for a tutor.
func (r *AvailabilityRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, windows []models.AvailabilityWindow) error {
	if len(windows) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO availability_windows (id, tutor_id, day_of_week, start_minute, end_minute, created_at)
VALUES (:id, :tutor_id, :day_of_week, :start_minute, :end_minute, :created_at)`

	for i := range windows {
		window := &windows[i]
		if window.ID == "" {
			window.ID = uuid.NewString()
		}
		if window.CreatedAt.IsZero() {
			window.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, window); err != nil {
			return fmt.Errorf("insert availability window: %w", err)
		}
	}
	return nil
}

// ListByTutor returns the tutor's windows ordered by day and start time.
func (r *AvailabilityRepository) ListByTutor(ctx context.Context, tutorID string) ([]models.AvailabilityWindow, error) {
	const query = `SELECT id, tutor_id, day_of_week, start_minute, end_minute, created_at
FROM availability_windows WHERE tutor_id = $1 ORDER BY day_of_week ASC, start_minute ASC`
	var windows []models.AvailabilityWindow
	if err := r.db.SelectContext(ctx, &windows, query, tutorID); err != nil {
		return nil, fmt.Errorf("list availability windows: %w", err)
	}
	return windows, nil
}

// FindWindow locates one window by its (day, start, end) identity.
func (r *AvailabilityRepository) FindWindow(ctx context.Context, exec sqlx.ExtContext, tutorID string, dayOfWeek, startMinute, endMinute int) (*models.AvailabilityWindow, error) {
	const query = `SELECT id, tutor_id, day_of_week, start_minute, end_minute, created_at
FROM availability_windows
WHERE tutor_id = $1 AND day_of_week = $2 AND start_minute = $3 AND end_minute = $4`
	var window models.AvailabilityWindow
	if err := sqlx.GetContext(ctx, r.exec(exec), &window, query, tutorID, dayOfWeek, startMinute, endMinute); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find availability window: %w", err)
	}
	return &window, nil
}

// DeleteWindow removes exactly one window by ID, returning the affected count.
func (r *AvailabilityRepository) DeleteWindow(ctx context.Context, exec sqlx.ExtContext, windowID string) (int64, error) {
	const query = `DELETE FROM availability_windows WHERE id = $1`
	result, err := r.exec(exec).ExecContext(ctx, query, windowID)
	if err != nil {
		return 0, fmt.Errorf("delete availability window: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete availability window affected rows: %w", err)
	}
	return affected, nil
}

// HasWindowCovering reports whether a window fully contains the given range
// on the given day. Booking accept re-validates through here inside its
// transaction so a concurrent schedule replace cannot orphan the session.
func (r *AvailabilityRepository) HasWindowCovering(ctx context.Context, exec sqlx.ExtContext, tutorID string, dayOfWeek, startMinute, endMinute int) (bool, error) {
	const query = `SELECT EXISTS (
SELECT 1 FROM availability_windows
WHERE tutor_id = $1 AND day_of_week = $2 AND start_minute <= $3 AND end_minute >= $4)`
	var exists bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query, tutorID, dayOfWeek, startMinute, endMinute); err != nil {
		return false, fmt.Errorf("check window coverage: %w", err)
	}
	return exists, nil
}
