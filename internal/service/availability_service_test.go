package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushour/tutoring-api/internal/dto"
	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
)

type availabilityRepoMock struct {
	windows  []models.AvailabilityWindow
	deleted  []string
	cleared  bool
	inserted []models.AvailabilityWindow
}

func (m *availabilityRepoMock) DeleteByTutor(ctx context.Context, exec sqlx.ExtContext, tutorID string) error {
	m.cleared = true
	return nil
}

func (m *availabilityRepoMock) InsertBatch(ctx context.Context, exec sqlx.ExtContext, windows []models.AvailabilityWindow) error {
	m.inserted = append(m.inserted, windows...)
	return nil
}

func (m *availabilityRepoMock) ListByTutor(ctx context.Context, tutorID string) ([]models.AvailabilityWindow, error) {
	return m.windows, nil
}

func (m *availabilityRepoMock) FindWindow(ctx context.Context, exec sqlx.ExtContext, tutorID string, dayOfWeek, startMinute, endMinute int) (*models.AvailabilityWindow, error) {
	for i := range m.windows {
		w := m.windows[i]
		if w.TutorID == tutorID && w.DayOfWeek == dayOfWeek && w.StartMinute == startMinute && w.EndMinute == endMinute {
			return &w, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *availabilityRepoMock) DeleteWindow(ctx context.Context, exec sqlx.ExtContext, windowID string) (int64, error) {
	m.deleted = append(m.deleted, windowID)
	return 1, nil
}

type slotStoreMock struct {
	slots []models.Slot
}

func (m *slotStoreMock) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.Slot) error {
	m.slots = append(m.slots, slots...)
	return nil
}

func (m *slotStoreMock) ListByTutor(ctx context.Context, tutorID string) ([]models.Slot, error) {
	return m.slots, nil
}

type cacheMock struct {
	deleted []string
}

func (m *cacheMock) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *cacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (m *cacheMock) Delete(ctx context.Context, keys ...string) {
	m.deleted = append(m.deleted, keys...)
}

type conflictFinderMock struct {
	rows []repository.SessionDetailRow
}

func (m *conflictFinderMock) FindConflicts(ctx context.Context, exec sqlx.ExtContext, tutorID string, ranges []models.WeekdayRange, fromDate time.Time) ([]repository.SessionDetailRow, error) {
	return m.rows, nil
}

type cascadeCancellerMock struct {
	cancelled []string
	err       error
}

func (m *cascadeCancellerMock) CascadeCancel(ctx context.Context, exec sqlx.ExtContext, sessionIDs []string, byRole models.Role, reason string) error {
	if m.err != nil {
		return m.err
	}
	m.cancelled = append(m.cancelled, sessionIDs...)
	return nil
}

func newAvailabilityServiceForTest(t *testing.T, windows *availabilityRepoMock, slots *slotStoreMock, conflicts *conflictFinderMock, cascade *cascadeCancellerMock, notifier *notifierMock) (*AvailabilityService, *cacheMock, func() error, func()) {
	db, mock, cleanup := newSessionServiceMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	cache := &cacheMock{}
	svc := NewAvailabilityService(db, windows, slots, cache, conflicts, cascade, notifier, nil, nil, time.Hour, time.Minute, nil)
	return svc, cache, mock.ExpectationsWereMet, cleanup
}

func TestReplaceWeekly(t *testing.T) {
	windows := &availabilityRepoMock{}
	slots := &slotStoreMock{}
	svc, cache, expectations, cleanup := newAvailabilityServiceForTest(t, windows, slots, &conflictFinderMock{}, &cascadeCancellerMock{}, &notifierMock{})
	defer cleanup()

	err := svc.ReplaceWeekly(context.Background(), "tutor-1", dto.WeeklyAvailabilityInput{
		1: {{Start: "09:00", End: "12:00"}},
		3: {{Start: "14:00", End: "15:30"}},
	})
	require.NoError(t, err)
	assert.True(t, windows.cleared)
	require.Len(t, windows.inserted, 2)

	// Three hourly slots from Monday, one from Wednesday (remainder dropped).
	assert.Len(t, slots.slots, 4)
	assert.Equal(t, []string{repository.AvailabilityCacheKey("tutor-1")}, cache.deleted)
	assert.NoError(t, expectations())
}

func TestReplaceWeeklyRejectsOverlap(t *testing.T) {
	windows := &availabilityRepoMock{}
	svc, _, _, cleanup := newAvailabilityServiceForTest(t, windows, &slotStoreMock{}, &conflictFinderMock{}, &cascadeCancellerMock{}, &notifierMock{})
	defer cleanup()

	err := svc.ReplaceWeekly(context.Background(), "tutor-1", dto.WeeklyAvailabilityInput{
		1: {{Start: "09:00", End: "12:00"}, {Start: "11:00", End: "13:00"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.False(t, windows.cleared)
}

func TestReplaceWeeklyAllowsTouchingRanges(t *testing.T) {
	windows := &availabilityRepoMock{}
	svc, _, _, cleanup := newAvailabilityServiceForTest(t, windows, &slotStoreMock{}, &conflictFinderMock{}, &cascadeCancellerMock{}, &notifierMock{})
	defer cleanup()

	err := svc.ReplaceWeekly(context.Background(), "tutor-1", dto.WeeklyAvailabilityInput{
		1: {{Start: "09:00", End: "12:00"}, {Start: "12:00", End: "14:00"}},
	})
	require.NoError(t, err)
	assert.Len(t, windows.inserted, 2)
}

func TestReplaceWeeklyRejectsBadInput(t *testing.T) {
	svc, _, _, cleanup := newAvailabilityServiceForTest(t, &availabilityRepoMock{}, &slotStoreMock{}, &conflictFinderMock{}, &cascadeCancellerMock{}, &notifierMock{})
	defer cleanup()

	cases := []dto.WeeklyAvailabilityInput{
		{},
		{0: {{Start: "09:00", End: "10:00"}}},
		{8: {{Start: "09:00", End: "10:00"}}},
		{1: {{Start: "12:00", End: "09:00"}}},
		{1: {{Start: "blah", End: "10:00"}}},
	}
	for _, input := range cases {
		err := svc.ReplaceWeekly(context.Background(), "tutor-1", input)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	}
}

func TestRemoveWindowsCascades(t *testing.T) {
	windows := &availabilityRepoMock{windows: []models.AvailabilityWindow{
		{ID: "w1", TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 540, EndMinute: 720},
	}}
	conflict := repository.SessionDetailRow{TuteeEmail: "tutee@example.com"}
	conflict.ID = "sess-1"
	conflict.ScheduledDate = time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	conflict.StartMinute = 600
	conflicts := &conflictFinderMock{rows: []repository.SessionDetailRow{conflict}}
	cascade := &cascadeCancellerMock{}
	notifier := &notifierMock{}
	svc, cache, expectations, cleanup := newAvailabilityServiceForTest(t, windows, &slotStoreMock{}, conflicts, cascade, notifier)
	defer cleanup()

	result, err := svc.RemoveWindows(context.Background(), "tutor-1", []RemoveWindowInput{
		{DayOfWeek: 1, Start: "09:00", End: "12:00"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1"}, cascade.cancelled)
	assert.Equal(t, []string{"w1"}, windows.deleted)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "sess-1", result.Conflicts[0].SessionID)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "tutee@example.com", notifier.sent[0].To)
	assert.Equal(t, []string{repository.AvailabilityCacheKey("tutor-1")}, cache.deleted)
	assert.NoError(t, expectations())
}

func TestRemoveWindowsKeepsWindowWhenCascadeFails(t *testing.T) {
	windows := &availabilityRepoMock{windows: []models.AvailabilityWindow{
		{ID: "w1", TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 540, EndMinute: 720},
	}}
	conflict := repository.SessionDetailRow{}
	conflict.ID = "sess-1"
	conflicts := &conflictFinderMock{rows: []repository.SessionDetailRow{conflict}}
	cascade := &cascadeCancellerMock{err: appErrors.Clone(appErrors.ErrAlreadyResolved, "session changed state during cascade")}

	db, mock, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewAvailabilityService(db, windows, &slotStoreMock{}, &cacheMock{}, conflicts, cascade, &notifierMock{}, nil, nil, time.Hour, time.Minute, nil)

	_, err := svc.RemoveWindows(context.Background(), "tutor-1", []RemoveWindowInput{
		{DayOfWeek: 1, Start: "09:00", End: "12:00"},
	})
	require.Error(t, err)
	assert.Empty(t, windows.deleted, "window must survive a failed cascade")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveWindowsUnknownWindow(t *testing.T) {
	windows := &availabilityRepoMock{}
	db, mock, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewAvailabilityService(db, windows, &slotStoreMock{}, &cacheMock{}, &conflictFinderMock{}, &cascadeCancellerMock{}, &notifierMock{}, nil, nil, time.Hour, time.Minute, nil)

	_, err := svc.RemoveWindows(context.Background(), "tutor-1", []RemoveWindowInput{
		{DayOfWeek: 2, Start: "09:00", End: "12:00"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestGetWeeklyGroupsByDay(t *testing.T) {
	windows := &availabilityRepoMock{windows: []models.AvailabilityWindow{
		{TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 540, EndMinute: 720},
		{TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 840, EndMinute: 960},
		{TutorID: "tutor-1", DayOfWeek: 5, StartMinute: 600, EndMinute: 660},
	}}
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	svc := NewAvailabilityService(db, windows, &slotStoreMock{}, &cacheMock{}, &conflictFinderMock{}, &cascadeCancellerMock{}, &notifierMock{}, nil, nil, time.Hour, time.Minute, nil)

	weekly, err := svc.GetWeekly(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, weekly[1], 2)
	assert.Equal(t, dto.TimeRangeView{Start: "09:00", End: "12:00"}, weekly[1][0])
	require.Len(t, weekly[5], 1)
	assert.Empty(t, weekly[3])
}

func TestListSlotsGroupsByDay(t *testing.T) {
	slots := &slotStoreMock{slots: []models.Slot{
		{TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 540, DurationMinutes: 60},
		{TutorID: "tutor-1", DayOfWeek: 1, StartMinute: 600, DurationMinutes: 60},
		{TutorID: "tutor-1", DayOfWeek: 3, StartMinute: 840, DurationMinutes: 60},
	}}
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	svc := NewAvailabilityService(db, &availabilityRepoMock{}, slots, &cacheMock{}, &conflictFinderMock{}, &cascadeCancellerMock{}, &notifierMock{}, nil, nil, time.Hour, time.Minute, nil)

	grouped, err := svc.ListSlots(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, grouped[1], 2)
	assert.Equal(t, dto.SlotView{Start: "09:00", End: "10:00", DurationMinutes: 60}, grouped[1][0])
	assert.Equal(t, dto.SlotView{Start: "10:00", End: "11:00", DurationMinutes: 60}, grouped[1][1])
	require.Len(t, grouped[3], 1)
	assert.Equal(t, "14:00", grouped[3][0].Start)
}
