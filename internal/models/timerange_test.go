package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinutes(t *testing.T) {
	cases := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"nonsense", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ToMinutes(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}
}

func TestToTimeStringRoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 1, 60, 570, 1439} {
		got, err := ToMinutes(ToTimeString(minutes))
		require.NoError(t, err)
		assert.Equal(t, minutes, got)
	}
}

func TestRangeOverlaps(t *testing.T) {
	a := Range{Start: 540, End: 600}

	assert.True(t, a.Overlaps(Range{Start: 570, End: 630}))
	assert.True(t, a.Overlaps(Range{Start: 500, End: 545}))
	assert.True(t, a.Overlaps(a), "a range overlaps itself")

	// Touching endpoints share no minute in a half-open interval.
	assert.False(t, a.Overlaps(Range{Start: 600, End: 660}))
	assert.False(t, a.Overlaps(Range{Start: 480, End: 540}))
	assert.False(t, a.Overlaps(Range{Start: 700, End: 760}))
}

func TestRangeOverlapsSymmetric(t *testing.T) {
	pairs := [][2]Range{
		{{Start: 540, End: 600}, {Start: 570, End: 630}},
		{{Start: 540, End: 600}, {Start: 600, End: 660}},
		{{Start: 0, End: 60}, {Start: 120, End: 180}},
	}
	for _, p := range pairs {
		assert.Equal(t, p[0].Overlaps(p[1]), p[1].Overlaps(p[0]))
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: 540, End: 600}
	assert.True(t, r.Contains(540))
	assert.True(t, r.Contains(599))
	assert.False(t, r.Contains(600), "end is exclusive")
	assert.False(t, r.Contains(539))
}

func TestHasAnyOverlap(t *testing.T) {
	assert.False(t, HasAnyOverlap(nil))
	assert.False(t, HasAnyOverlap([]Range{{Start: 540, End: 600}}))
	assert.False(t, HasAnyOverlap([]Range{
		{Start: 600, End: 660},
		{Start: 540, End: 600},
		{Start: 660, End: 720},
	}), "back to back ranges do not overlap")
	assert.True(t, HasAnyOverlap([]Range{
		{Start: 540, End: 600},
		{Start: 660, End: 720},
		{Start: 590, End: 620},
	}))
}

func TestNextAvailableSlot(t *testing.T) {
	// Empty schedule: suggest from the day start.
	got := NextAvailableSlot(nil, 480, 60)
	assert.Equal(t, Range{Start: 480, End: 540}, got)

	// Gap between existing ranges fits the duration.
	got = NextAvailableSlot([]Range{
		{Start: 480, End: 540},
		{Start: 660, End: 720},
	}, 480, 60)
	assert.Equal(t, Range{Start: 540, End: 600}, got)

	// Gap too small: skip past the second range.
	got = NextAvailableSlot([]Range{
		{Start: 480, End: 540},
		{Start: 570, End: 630},
	}, 480, 60)
	assert.Equal(t, Range{Start: 630, End: 690}, got)
}

func TestISOWeekday(t *testing.T) {
	// 2026-08-31 is a Monday, 2026-09-06 a Sunday.
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		assert.Equal(t, i+1, ISOWeekday(day), day.Weekday().String())
	}
}
