package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushour/tutoring-api/internal/models"
)

// SlotRepository persists materialized bookable slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository builds the repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch inserts freshly materialized slots. Regeneration always runs in
// the same transaction that replaced the owning windows.
func (r *SlotRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO slots (id, window_id, tutor_id, day_of_week, start_minute, duration_minutes, created_at)
VALUES (:id, :window_id, :tutor_id, :day_of_week, :start_minute, :duration_minutes, :created_at)`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}
	return nil
}

// ListByTutor returns all slots for a tutor ordered by day and start time.
func (r *SlotRepository) ListByTutor(ctx context.Context, tutorID string) ([]models.Slot, error) {
	const query = `SELECT id, window_id, tutor_id, day_of_week, start_minute, duration_minutes, created_at
FROM slots WHERE tutor_id = $1 ORDER BY day_of_week ASC, start_minute ASC`
	var slots []models.Slot
	if err := r.db.SelectContext(ctx, &slots, query, tutorID); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}
