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

type bookingRepoMock struct {
	requests           map[string]*models.BookingRequest
	candidates         map[string][]models.CandidateSlot
	inserted           *models.BookingRequest
	insertedCandidates []models.CandidateSlot
	inbox              []repository.BookingInboxRow
	statusTo           []models.BookingRequestStatus
}

func (m *bookingRepoMock) Insert(ctx context.Context, exec sqlx.ExtContext, request *models.BookingRequest) error {
	if request.ID == "" {
		request.ID = "req-1"
	}
	m.inserted = request
	return nil
}

func (m *bookingRepoMock) InsertCandidates(ctx context.Context, exec sqlx.ExtContext, candidates []models.CandidateSlot) error {
	m.insertedCandidates = append(m.insertedCandidates, candidates...)
	return nil
}

func (m *bookingRepoMock) FindByID(ctx context.Context, id string) (*models.BookingRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *request
	return &cp, nil
}

func (m *bookingRepoMock) LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BookingRequest, error) {
	return m.FindByID(ctx, id)
}

func (m *bookingRepoMock) ListCandidates(ctx context.Context, exec sqlx.ExtContext, requestID string) ([]models.CandidateSlot, error) {
	return m.candidates[requestID], nil
}

func (m *bookingRepoMock) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from, to models.BookingRequestStatus) (int64, error) {
	request, ok := m.requests[id]
	if !ok || request.Status != from {
		return 0, nil
	}
	request.Status = to
	m.statusTo = append(m.statusTo, to)
	return 1, nil
}

func (m *bookingRepoMock) ListPendingForTutor(ctx context.Context, tutorID string) ([]repository.BookingInboxRow, error) {
	return m.inbox, nil
}

func (m *bookingRepoMock) ListCandidatesForRequests(ctx context.Context, requestIDs []string) (map[string][]models.CandidateSlot, error) {
	return m.candidates, nil
}

type sessionCreatorMock struct {
	created *CreateSessionParams
	err     error
}

func (m *sessionCreatorMock) CreateFromAcceptedRequest(ctx context.Context, exec sqlx.ExtContext, params CreateSessionParams) (*models.ScheduledSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &params
	return &models.ScheduledSession{
		ID:              "sess-1",
		TutorID:         params.TutorID,
		TuteeID:         params.TuteeID,
		ScheduledDate:   params.Date,
		StartMinute:     params.StartMinute,
		DurationMinutes: params.DurationMinutes,
		Status:          models.SessionStatusScheduled,
		RoomLink:        params.RoomLink,
	}, nil
}

type courseReaderMock struct {
	courses map[string]*models.Course
}

func (m *courseReaderMock) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

func pendingRequest() *models.BookingRequest {
	return &models.BookingRequest{
		ID:       "req-1",
		TuteeID:  "tutee-1",
		TutorID:  "tutor-1",
		CourseID: "course-1",
		Status:   models.BookingStatusPending,
	}
}

func defaultProfiles() *profileReaderMock {
	return &profileReaderMock{profiles: map[string]*models.Profile{
		"tutor-1": {ID: "tutor-1", Role: models.RoleTutor, Email: "tutor@example.com"},
		"tutee-1": {ID: "tutee-1", Role: models.RoleTutee, Email: "tutee@example.com"},
	}}
}

func defaultCourses() *courseReaderMock {
	return &courseReaderMock{courses: map[string]*models.Course{
		"course-1": {ID: "course-1", Code: "MATH101", Name: "Calculus I"},
	}}
}

func TestBookingSubmitTilesCandidates(t *testing.T) {
	db, mock, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectCommit()

	bookings := &bookingRepoMock{}
	svc := NewBookingService(db, bookings, &sessionCreatorMock{}, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	request, err := svc.Submit(context.Background(), "tutee-1", SubmitBookingRequest{
		TutorID:  "tutor-1",
		CourseID: "course-1",
		Windows: []dto.CandidateWindowInput{
			{Date: "2026-09-07", Ranges: []dto.TimeRangeInput{{Start: "10:00", End: "12:30"}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, request.Status)
	assert.Equal(t, "tutee-1", request.TuteeID)

	// 10:00-12:30 tiles into 10:00 and 11:00; the half-hour tail is dropped.
	require.Len(t, bookings.insertedCandidates, 2)
	for _, candidate := range bookings.insertedCandidates {
		assert.Equal(t, request.ID, candidate.RequestID)
		assert.Equal(t, 60, candidate.DurationMinutes)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingSubmitRejectsTooShortRanges(t *testing.T) {
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()

	svc := NewBookingService(db, &bookingRepoMock{}, &sessionCreatorMock{}, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Submit(context.Background(), "tutee-1", SubmitBookingRequest{
		TutorID:  "tutor-1",
		CourseID: "course-1",
		Windows: []dto.CandidateWindowInput{
			{Date: "2026-09-07", Ranges: []dto.TimeRangeInput{{Start: "10:00", End: "10:30"}}},
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestBookingSubmitUnknownTutor(t *testing.T) {
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()

	svc := NewBookingService(db, &bookingRepoMock{}, &sessionCreatorMock{}, &sessionRepoMock{}, &profileReaderMock{}, defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Submit(context.Background(), "tutee-1", SubmitBookingRequest{
		TutorID:  "ghost",
		CourseID: "course-1",
		Windows: []dto.CandidateWindowInput{
			{Date: "2026-09-07", Ranges: []dto.TimeRangeInput{{Start: "10:00", End: "12:00"}}},
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound.Code))
}

func TestBookingSubmitTargetNotATutor(t *testing.T) {
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()

	svc := NewBookingService(db, &bookingRepoMock{}, &sessionCreatorMock{}, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Submit(context.Background(), "tutee-1", SubmitBookingRequest{
		TutorID:  "tutee-1",
		CourseID: "course-1",
		Windows: []dto.CandidateWindowInput{
			{Date: "2026-09-07", Ranges: []dto.TimeRangeInput{{Start: "10:00", End: "12:00"}}},
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestBookingRespondReject(t *testing.T) {
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()

	bookings := &bookingRepoMock{requests: map[string]*models.BookingRequest{"req-1": pendingRequest()}}
	svc := NewBookingService(db, bookings, &sessionCreatorMock{}, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Respond(context.Background(), "req-1", "tutor-1", RespondRequest{Action: "reject"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRejected, bookings.requests["req-1"].Status)
}

func TestBookingRespondForbidden(t *testing.T) {
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()

	bookings := &bookingRepoMock{requests: map[string]*models.BookingRequest{"req-1": pendingRequest()}}
	svc := NewBookingService(db, bookings, &sessionCreatorMock{}, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Respond(context.Background(), "req-1", "tutor-2", RespondRequest{Action: "reject"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden.Code))
}

func TestBookingRespondAlreadyResolved(t *testing.T) {
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()

	resolved := pendingRequest()
	resolved.Status = models.BookingStatusAccepted
	bookings := &bookingRepoMock{requests: map[string]*models.BookingRequest{"req-1": resolved}}
	svc := NewBookingService(db, bookings, &sessionCreatorMock{}, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Respond(context.Background(), "req-1", "tutor-1", RespondRequest{Action: "reject"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyResolved.Code))
	assert.Equal(t, models.BookingStatusAccepted, bookings.requests["req-1"].Status)
}

func TestBookingRespondAcceptHappyPath(t *testing.T) {
	db, mock, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectCommit()

	chosenDate := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	bookings := &bookingRepoMock{
		requests: map[string]*models.BookingRequest{"req-1": pendingRequest()},
		candidates: map[string][]models.CandidateSlot{
			"req-1": {{RequestID: "req-1", Date: chosenDate, StartMinute: 600, DurationMinutes: 60}},
		},
	}
	creator := &sessionCreatorMock{}
	notifier := &notifierMock{}
	svc := NewBookingService(db, bookings, creator, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), notifier, nil, time.Hour, nil, nil)

	result, err := svc.Respond(context.Background(), "req-1", "tutor-1", RespondRequest{
		Action: "accept", Date: "2026-09-07", Time: "10:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RoomLink)

	require.NotNil(t, creator.created)
	assert.Equal(t, 600, creator.created.StartMinute)
	assert.Equal(t, result.RoomLink, creator.created.RoomLink)
	require.NotNil(t, creator.created.RequestID)
	assert.Equal(t, "req-1", *creator.created.RequestID)

	assert.Equal(t, models.BookingStatusAccepted, bookings.requests["req-1"].Status)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "tutee@example.com", notifier.sent[0].To)
	assert.Equal(t, models.NotificationBooked, notifier.sent[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRespondAcceptOutsideCandidates(t *testing.T) {
	db, mock, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectRollback()

	bookings := &bookingRepoMock{
		requests: map[string]*models.BookingRequest{"req-1": pendingRequest()},
		candidates: map[string][]models.CandidateSlot{
			"req-1": {{RequestID: "req-1", Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local), StartMinute: 600, DurationMinutes: 60}},
		},
	}
	creator := &sessionCreatorMock{}
	svc := NewBookingService(db, bookings, creator, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Respond(context.Background(), "req-1", "tutor-1", RespondRequest{
		Action: "accept", Date: "2026-09-07", Time: "11:00",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
	assert.Nil(t, creator.created)
	assert.Equal(t, models.BookingStatusPending, bookings.requests["req-1"].Status)
}

func TestBookingRespondAcceptSlotTakenLeavesRequestPending(t *testing.T) {
	db, mock, cleanup := newSessionServiceMockDB(t)
	defer cleanup()
	mock.ExpectBegin()
	mock.ExpectRollback()

	bookings := &bookingRepoMock{
		requests: map[string]*models.BookingRequest{"req-1": pendingRequest()},
		candidates: map[string][]models.CandidateSlot{
			"req-1": {{RequestID: "req-1", Date: time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local), StartMinute: 600, DurationMinutes: 60}},
		},
	}
	creator := &sessionCreatorMock{err: appErrors.Clone(appErrors.ErrSlotTaken, "")}
	svc := NewBookingService(db, bookings, creator, &sessionRepoMock{}, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	_, err := svc.Respond(context.Background(), "req-1", "tutor-1", RespondRequest{
		Action: "accept", Date: "2026-09-07", Time: "10:00",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSlotTaken.Code))
	assert.Equal(t, models.BookingStatusPending, bookings.requests["req-1"].Status)
	assert.Empty(t, bookings.statusTo)
}

func TestBookingInboxMarksTakenCandidates(t *testing.T) {
	db, _, cleanup := newSessionServiceMockDB(t)
	defer cleanup()

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local)
	bookings := &bookingRepoMock{
		inbox: []repository.BookingInboxRow{
			{RequestID: "req-1", TuteeName: "Ana", CourseCode: "MATH101", CourseName: "Calculus I"},
		},
		candidates: map[string][]models.CandidateSlot{
			"req-1": {
				{RequestID: "req-1", Date: date, StartMinute: 600, DurationMinutes: 60},
				{RequestID: "req-1", Date: date, StartMinute: 660, DurationMinutes: 60},
			},
		},
	}
	taken := repository.SessionDetailRow{}
	taken.ScheduledDate = date
	taken.StartMinute = 600
	sessionRows := &sessionRepoMock{}
	sessionRows.detailRows = []repository.SessionDetailRow{taken}

	svc := NewBookingService(db, bookings, &sessionCreatorMock{}, sessionRows, defaultProfiles(), defaultCourses(), &notifierMock{}, nil, time.Hour, nil, nil)

	items, err := svc.ListPendingForTutor(context.Background(), "tutor-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Candidates, 2)
	assert.True(t, items[0].Candidates[0].Taken)
	assert.False(t, items[0].Candidates[1].Taken)
	assert.Equal(t, "10:00", items[0].Candidates[0].Time)
}
