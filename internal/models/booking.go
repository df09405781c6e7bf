package models

import "time"

// BookingRequestStatus enumerates the request lifecycle. Transitions run
// PENDING to ACCEPTED or REJECTED exactly once; terminal states are permanent.
type BookingRequestStatus string

const (
	BookingStatusPending  BookingRequestStatus = "PENDING"
	BookingStatusAccepted BookingRequestStatus = "ACCEPTED"
	BookingStatusRejected BookingRequestStatus = "REJECTED"
)

// BookingRequest is a tutee's ask to be tutored in a course by a tutor.
type BookingRequest struct {
	ID           string               `db:"id" json:"id"`
	TuteeID      string               `db:"tutee_id" json:"tutee_id"`
	TutorID      string               `db:"tutor_id" json:"tutor_id"`
	CourseID     string               `db:"course_id" json:"course_id"`
	Status       BookingRequestStatus `db:"status" json:"status"`
	Note         *string              `db:"note" json:"note,omitempty"`
	MaterialsURI *string              `db:"materials_uri" json:"materials_uri,omitempty"`
	CreatedAt    time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `db:"updated_at" json:"updated_at"`
}

// CandidateSlot is one concrete (date, time) option a request proposes,
// produced by tiling the tutee's chosen ranges into fixed-duration chunks.
type CandidateSlot struct {
	ID              string    `db:"id" json:"id"`
	RequestID       string    `db:"request_id" json:"request_id"`
	Date            time.Time `db:"slot_date" json:"-"`
	StartMinute     int       `db:"start_minute" json:"-"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
}

// Matches reports whether the candidate covers the given date and start time.
func (c CandidateSlot) Matches(date time.Time, startMinute int) bool {
	return c.Date.Year() == date.Year() &&
		c.Date.Month() == date.Month() &&
		c.Date.Day() == date.Day() &&
		c.StartMinute == startMinute
}
