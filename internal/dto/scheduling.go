package dto

import "time"

// TimeRangeInput is the wire shape for one "HH:MM" bounded interval.
type TimeRangeInput struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

// WeeklyAvailabilityInput is the tutor editor's full-replace payload, keyed by
// ISO day-of-week (Monday=1 .. Sunday=7).
type WeeklyAvailabilityInput map[int][]TimeRangeInput

// CandidateWindowInput is one calendar date plus the ranges a tutee proposes.
type CandidateWindowInput struct {
	Date   string           `json:"date" validate:"required"`
	Ranges []TimeRangeInput `json:"ranges" validate:"required,min=1,dive"`
}

// TimeRangeView mirrors TimeRangeInput on the read side.
type TimeRangeView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SlotView is one bookable slot in a tutor's materialized weekly surface.
type SlotView struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}

// SessionSummary is the shape surfaced to conflict dialogs.
type SessionSummary struct {
	SessionID        string `db:"session_id" json:"session_id"`
	ScheduledDate    string `json:"scheduled_date"`
	DayOfWeek        int    `json:"day_of_week"`
	Time             string `json:"time"`
	CounterpartyName string `db:"counterparty_name" json:"counterparty_name"`
	CourseCode       string `db:"course_code" json:"course_code"`
	CourseName       string `db:"course_name" json:"course_name"`
}

// CandidateView is one candidate option in a tutor's inbox, with a read-only
// hint whether a confirmed session already occupies it.
type CandidateView struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Taken bool   `json:"taken"`
}

// PendingBookingItem is one enriched inbox entry for a tutor.
type PendingBookingItem struct {
	RequestID    string          `json:"request_id"`
	TuteeName    string          `json:"tutee_name"`
	CourseCode   string          `json:"course_code"`
	CourseName   string          `json:"course_name"`
	Note         *string         `json:"note,omitempty"`
	MaterialsURI *string         `json:"materials_uri,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	Candidates   []CandidateView `json:"candidates"`
}

// RemovalPreview is the dry-run result shown before a window removal.
type RemovalPreview struct {
	Conflicts []SessionSummary `json:"conflicts"`
}

// SessionView is one row in a user's session list.
type SessionView struct {
	ID               string  `json:"id"`
	Date             string  `json:"date"`
	Time             string  `json:"time"`
	DurationMinutes  int     `json:"duration_minutes"`
	Status           string  `json:"status"`
	RoomLink         string  `json:"room_link,omitempty"`
	CounterpartyName string  `json:"counterparty_name"`
	CourseCode       string  `json:"course_code"`
	CancelReason     *string `json:"cancel_reason,omitempty"`
}
