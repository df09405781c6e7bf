package models

import "time"

// SessionStatus enumerates the session state machine. Status only advances
// SCHEDULED to COMPLETED or SCHEDULED to CANCELLED, never reverses.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// ScheduledSession is a confirmed, time-bound tutoring engagement.
type ScheduledSession struct {
	ID              string        `db:"id" json:"id"`
	TutorID         string        `db:"tutor_id" json:"tutor_id"`
	TuteeID         string        `db:"tutee_id" json:"tutee_id"`
	CourseID        string        `db:"course_id" json:"course_id"`
	RequestID       *string       `db:"request_id" json:"request_id,omitempty"`
	ScheduledDate   time.Time     `db:"scheduled_date" json:"-"`
	StartMinute     int           `db:"start_minute" json:"-"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          SessionStatus `db:"status" json:"status"`
	RoomLink        string        `db:"room_link" json:"room_link"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// StartsAt combines the scheduled date and start minute into a wall-clock
// instant in the given location.
func (s ScheduledSession) StartsAt(loc *time.Location) time.Time {
	d := s.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), s.StartMinute/60, s.StartMinute%60, 0, 0, loc)
}

// Range returns the session's occupied time range within its day.
func (s ScheduledSession) Range() Range {
	return Range{Start: s.StartMinute, End: s.StartMinute + s.DurationMinutes}
}

// CancellationRecord is the append-only audit entry written with every
// session cancellation. At most one record exists per session.
type CancellationRecord struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"session_id"`
	CancelledBy Role      `db:"cancelled_by" json:"cancelled_by"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	CancelledAt time.Time `db:"cancelled_at" json:"cancelled_at"`
}
