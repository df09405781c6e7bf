package service

import (
	"time"

	"github.com/campushour/tutoring-api/internal/models"
)

// MaterializeSlots tiles [window.start, window.end) into consecutive
// fixed-duration slots starting at the window start. A partial remainder
// shorter than the duration is dropped, never emitted as a short slot.
// Deterministic and idempotent for a given window.
func MaterializeSlots(window models.AvailabilityWindow, durationMinutes int) []models.Slot {
	if durationMinutes <= 0 {
		return nil
	}

	var slots []models.Slot
	for start := window.StartMinute; start+durationMinutes <= window.EndMinute; start += durationMinutes {
		slots = append(slots, models.Slot{
			WindowID:        window.ID,
			TutorID:         window.TutorID,
			DayOfWeek:       window.DayOfWeek,
			StartMinute:     start,
			DurationMinutes: durationMinutes,
		})
	}
	return slots
}

// TileCandidates applies the same fixed-step tiling to a calendar date range,
// producing the hourly candidate options a booking request carries.
func TileCandidates(date time.Time, r models.Range, durationMinutes int) []models.CandidateSlot {
	if durationMinutes <= 0 {
		return nil
	}

	var candidates []models.CandidateSlot
	for start := r.Start; start+durationMinutes <= r.End; start += durationMinutes {
		candidates = append(candidates, models.CandidateSlot{
			Date:            date,
			StartMinute:     start,
			DurationMinutes: durationMinutes,
		})
	}
	return candidates
}
