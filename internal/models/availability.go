package models

import "time"

// AvailabilityWindow is one recurring weekly interval a tutor offers.
// StartMinute/EndMinute are wall-clock minutes since midnight.
type AvailabilityWindow struct {
	ID          string    `db:"id" json:"id"`
	TutorID     string    `db:"tutor_id" json:"tutor_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartMinute int       `db:"start_minute" json:"-"`
	EndMinute   int       `db:"end_minute" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Range returns the window's time range.
func (w AvailabilityWindow) Range() Range {
	return Range{Start: w.StartMinute, End: w.EndMinute}
}

// Slot is one materialized bookable unit tiled from an availability window.
type Slot struct {
	ID              string    `db:"id" json:"id"`
	WindowID        string    `db:"window_id" json:"window_id"`
	TutorID         string    `db:"tutor_id" json:"tutor_id"`
	DayOfWeek       int       `db:"day_of_week" json:"day_of_week"`
	StartMinute     int       `db:"start_minute" json:"-"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Range returns the slot's occupied time range.
func (s Slot) Range() Range {
	return Range{Start: s.StartMinute, End: s.StartMinute + s.DurationMinutes}
}
