package models

import (
	"fmt"
	"sort"
	"time"
)

// Range is a half-open [Start, End) interval of wall-clock minutes within a
// single day. Minutes count from midnight; no timezone handling.
type Range struct {
	Start int `json:"-"`
	End   int `json:"-"`
}

// ToMinutes parses an "HH:MM" string into minutes since midnight.
func ToMinutes(t string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(t, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse time %q: %w", t, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q out of range", t)
	}
	return h*60 + m, nil
}

// ToTimeString renders minutes since midnight as "HH:MM".
func ToTimeString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether two half-open ranges intersect. Touching
// endpoints do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Contains reports whether the minute offset falls inside the range.
func (r Range) Contains(minute int) bool {
	return minute >= r.Start && minute < r.End
}

// Empty reports whether the range covers no time.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// String renders the range as "HH:MM-HH:MM".
func (r Range) String() string {
	return ToTimeString(r.Start) + "-" + ToTimeString(r.End)
}

// HasAnyOverlap reports whether any two ranges in the set intersect.
// After sorting by start, checking adjacent pairs is sufficient for
// one-dimensional intervals.
func HasAnyOverlap(ranges []Range) bool {
	if len(ranges) < 2 {
		return false
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return true
		}
	}
	return false
}

// NextAvailableSlot walks forward from dayStart and returns the first gap of
// at least duration minutes after or between the given ranges. UI convenience
// for suggesting a default new range.
func NextAvailableSlot(ranges []Range, dayStart, duration int) Range {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	cursor := dayStart
	for _, r := range sorted {
		if r.Start-cursor >= duration {
			break
		}
		if r.End > cursor {
			cursor = r.End
		}
	}
	return Range{Start: cursor, End: cursor + duration}
}

// ISOWeekday maps a date to its ISO day-of-week: Monday=1 through Sunday=7.
// The Sunday=7 remap is part of the persisted conflict-matching contract.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekdayRange pins a time range to a recurring day of week.
type WeekdayRange struct {
	DayOfWeek int `json:"day_of_week"`
	Start     int `json:"-"`
	End       int `json:"-"`
}

// Range returns the weekday range's time component.
func (w WeekdayRange) Range() Range {
	return Range{Start: w.Start, End: w.End}
}
