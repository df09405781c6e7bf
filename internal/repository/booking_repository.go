package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushour/tutoring-api/internal/models"
)

// BookingInboxRow is one pending request joined with tutee and course data.
type BookingInboxRow struct {
	RequestID    string    `db:"request_id"`
	TuteeName    string    `db:"tutee_name"`
	CourseCode   string    `db:"course_code"`
	CourseName   string    `db:"course_name"`
	Note         *string   `db:"note"`
	MaterialsURI *string   `db:"materials_uri"`
	CreatedAt    time.Time `db:"created_at"`
}

// BookingRepository persists booking requests and their candidate slots.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository builds the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Insert persists a new request.
func (r *BookingRepository) Insert(ctx context.Context, exec sqlx.ExtContext, request *models.BookingRequest) error {
	now := time.Now().UTC()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.BookingStatusPending
	}
	request.CreatedAt = now
	request.UpdatedAt = now

	const query = `
INSERT INTO booking_requests (id, tutee_id, tutor_id, course_id, status, note, materials_uri, created_at, updated_at)
VALUES (:id, :tutee_id, :tutor_id, :course_id, :status, :note, :materials_uri, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, request); err != nil {
		return fmt.Errorf("insert booking request: %w", err)
	}
	return nil
}

// InsertCandidates persists the tiled candidate set for a request.
func (r *BookingRepository) InsertCandidates(ctx context.Context, exec sqlx.ExtContext, candidates []models.CandidateSlot) error {
	if len(candidates) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `
INSERT INTO booking_request_candidates (id, request_id, slot_date, start_minute, duration_minutes)
VALUES (:id, :request_id, :slot_date, :start_minute, :duration_minutes)`

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == "" {
			candidate.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, candidate); err != nil {
			return fmt.Errorf("insert booking candidate: %w", err)
		}
	}
	return nil
}

// FindByID loads one request.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	const query = `SELECT id, tutee_id, tutor_id, course_id, status, note, materials_uri, created_at, updated_at
FROM booking_requests WHERE id = $1`
	var request models.BookingRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// LockByID loads one request with a row lock so concurrent responses
// serialize on the row.
func (r *BookingRepository) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BookingRequest, error) {
	const query = `SELECT id, tutee_id, tutor_id, course_id, status, note, materials_uri, created_at, updated_at
FROM booking_requests WHERE id = $1 FOR UPDATE`
	var request models.BookingRequest
	if err := sqlx.GetContext(ctx, r.exec(exec), &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// ListCandidates returns a request's candidate slots in submission order.
func (r *BookingRepository) ListCandidates(ctx context.Context, exec sqlx.ExtContext, requestID string) ([]models.CandidateSlot, error) {
	const query = `SELECT id, request_id, slot_date, start_minute, duration_minutes
FROM booking_request_candidates WHERE request_id = $1 ORDER BY slot_date ASC, start_minute ASC`
	var candidates []models.CandidateSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &candidates, query, requestID); err != nil {
		return nil, fmt.Errorf("list booking candidates: %w", err)
	}
	return candidates, nil
}

// UpdateStatus flips a request from one status to another, guarded so a
// terminal status is never overwritten. Zero affected rows means the request
// was already resolved (or does not exist).
func (r *BookingRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from, to models.BookingRequestStatus) (int64, error) {
	const query = `UPDATE booking_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return 0, fmt.Errorf("update booking request status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update booking request affected rows: %w", err)
	}
	return affected, nil
}

// ListPendingForTutor returns the tutor's inbox joined with tutee and course
// summaries, newest first.
func (r *BookingRepository) ListPendingForTutor(ctx context.Context, tutorID string) ([]BookingInboxRow, error) {
	const query = `
SELECT
	br.id AS request_id,
	p.full_name AS tutee_name,
	c.code AS course_code,
	c.name AS course_name,
	br.note AS note,
	br.materials_uri AS materials_uri,
	br.created_at AS created_at
FROM booking_requests br
JOIN profiles p ON p.id = br.tutee_id
JOIN courses c ON c.id = br.course_id
WHERE br.tutor_id = $1 AND br.status = 'PENDING'
ORDER BY br.created_at DESC`
	var rows []BookingInboxRow
	if err := r.db.SelectContext(ctx, &rows, query, tutorID); err != nil {
		return nil, fmt.Errorf("list pending booking requests: %w", err)
	}
	return rows, nil
}

// ListCandidatesForRequests loads the candidate sets for several requests in
// one round trip.
func (r *BookingRepository) ListCandidatesForRequests(ctx context.Context, requestIDs []string) (map[string][]models.CandidateSlot, error) {
	if len(requestIDs) == 0 {
		return map[string][]models.CandidateSlot{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, request_id, slot_date, start_minute, duration_minutes
FROM booking_request_candidates WHERE request_id IN (?) ORDER BY slot_date ASC, start_minute ASC`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("build candidates query: %w", err)
	}
	query = r.db.Rebind(query)

	var candidates []models.CandidateSlot
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, fmt.Errorf("list candidates for requests: %w", err)
	}

	grouped := make(map[string][]models.CandidateSlot, len(requestIDs))
	for _, candidate := range candidates {
		grouped[candidate.RequestID] = append(grouped[candidate.RequestID], candidate)
	}
	return grouped, nil
}
