package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushour/tutoring-api/internal/dto"
	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
)

type bookingRepository interface {
	Insert(ctx context.Context, exec sqlx.ExtContext, request *models.BookingRequest) error
	InsertCandidates(ctx context.Context, exec sqlx.ExtContext, candidates []models.CandidateSlot) error
	FindByID(ctx context.Context, id string) (*models.BookingRequest, error)
	LockByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.BookingRequest, error)
	ListCandidates(ctx context.Context, exec sqlx.ExtContext, requestID string) ([]models.CandidateSlot, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, from, to models.BookingRequestStatus) (int64, error)
	ListPendingForTutor(ctx context.Context, tutorID string) ([]repository.BookingInboxRow, error)
	ListCandidatesForRequests(ctx context.Context, requestIDs []string) (map[string][]models.CandidateSlot, error)
}

type sessionCreator interface {
	CreateFromAcceptedRequest(ctx context.Context, exec sqlx.ExtContext, params CreateSessionParams) (*models.ScheduledSession, error)
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// SubmitBookingRequest is the submission payload.
type SubmitBookingRequest struct {
	TutorID      string                     `json:"tutor_id" validate:"required"`
	CourseID     string                     `json:"course_id" validate:"required"`
	Windows      []dto.CandidateWindowInput `json:"windows" validate:"required,min=1,dive"`
	Note         *string                    `json:"note,omitempty"`
	MaterialsURI *string                    `json:"materials_uri,omitempty"`
}

// RespondRequest is the tutor's decision payload.
type RespondRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
}

// RespondResult carries the room link when a request was accepted.
type RespondResult struct {
	RoomLink string `json:"room_link,omitempty"`
}

// BookingService owns the booking request lifecycle: pending requests resolve
// to accepted or rejected exactly once.
type BookingService struct {
	db           *sqlx.DB
	bookings     bookingRepository
	sessions     sessionCreator
	sessionRows  conflictSessionRepository
	profiles     profileReader
	courses      courseReader
	notifier     notifier
	locks        *TutorLocks
	validator    *validator.Validate
	logger       *zap.Logger
	slotDuration time.Duration
}

// NewBookingService instantiates BookingService.
func NewBookingService(
	db *sqlx.DB,
	bookings bookingRepository,
	sessions sessionCreator,
	sessionRows conflictSessionRepository,
	profiles profileReader,
	courses courseReader,
	notifier notifier,
	locks *TutorLocks,
	slotDuration time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewTutorLocks()
	}
	if slotDuration <= 0 {
		slotDuration = time.Hour
	}
	return &BookingService{
		db:           db,
		bookings:     bookings,
		sessions:     sessions,
		sessionRows:  sessionRows,
		profiles:     profiles,
		courses:      courses,
		notifier:     notifier,
		locks:        locks,
		validator:    validate,
		logger:       logger,
		slotDuration: slotDuration,
	}
}

// Submit creates a pending request, tiling every proposed (date, range) pair
// into fixed-duration candidate options.
func (s *BookingService) Submit(ctx context.Context, tuteeID string, req SubmitBookingRequest) (*models.BookingRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking request payload")
	}

	tutor, err := s.profiles.FindByID(ctx, req.TutorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tutor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tutor")
	}
	if tutor.Role != models.RoleTutor {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target profile is not a tutor")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	duration := int(s.slotDuration.Minutes())
	var candidates []models.CandidateSlot
	for _, window := range req.Windows {
		date, err := time.ParseInLocation("2006-01-02", window.Date, time.Local)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", window.Date))
		}
		for _, raw := range window.Ranges {
			r, err := parseRange(raw.Start, raw.End)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, TileCandidates(date, r, duration)...)
		}
	}
	if len(candidates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "proposed time ranges are too short to fit a session")
	}

	request := &models.BookingRequest{
		TuteeID:      tuteeID,
		TutorID:      req.TutorID,
		CourseID:     req.CourseID,
		Status:       models.BookingStatusPending,
		Note:         req.Note,
		MaterialsURI: req.MaterialsURI,
	}

	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.bookings.Insert(ctx, tx, request); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save booking request")
		}
		for i := range candidates {
			candidates[i].RequestID = request.ID
		}
		if err := s.bookings.InsertCandidates(ctx, tx, candidates); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save booking candidates")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Respond resolves a pending request. Rejection flips the status; acceptance
// validates the chosen option against the request's own candidate set,
// creates the session and flips the status in one transaction, so a failed
// session creation leaves the request pending. Re-resolving an already
// resolved request fails with AlreadyResolved.
func (s *BookingService) Respond(ctx context.Context, requestID, actorProfileID string, req RespondRequest) (*RespondResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid respond payload")
	}

	request, err := s.bookings.FindByID(ctx, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking request")
	}
	if request.TutorID != actorProfileID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the request's tutor may respond")
	}
	if request.Status != models.BookingStatusPending {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, "")
	}

	if req.Action == "reject" {
		return s.reject(ctx, request)
	}
	return s.accept(ctx, request, req)
}

func (s *BookingService) reject(ctx context.Context, request *models.BookingRequest) (*RespondResult, error) {
	affected, err := s.bookings.UpdateStatus(ctx, nil, request.ID, models.BookingStatusPending, models.BookingStatusRejected)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject booking request")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrAlreadyResolved, "")
	}
	return &RespondResult{}, nil
}

func (s *BookingService) accept(ctx context.Context, request *models.BookingRequest, req RespondRequest) (*RespondResult, error) {
	if req.Date == "" || req.Time == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "accepting requires a chosen date and time")
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", req.Date))
	}
	startMinute, err := models.ToMinutes(req.Time)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time %q", req.Time))
	}

	unlock := s.locks.Lock(request.TutorID)
	defer unlock()

	roomLink := "https://rooms.campushour.io/" + uuid.NewString()
	var session *models.ScheduledSession

	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		locked, err := s.bookings.LockByID(ctx, tx, request.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock booking request")
		}
		if locked.Status != models.BookingStatusPending {
			return appErrors.Clone(appErrors.ErrAlreadyResolved, "")
		}

		candidates, err := s.bookings.ListCandidates(ctx, tx, request.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking candidates")
		}
		var chosen *models.CandidateSlot
		for i := range candidates {
			if candidates[i].Matches(date, startMinute) {
				chosen = &candidates[i]
				break
			}
		}
		if chosen == nil {
			return appErrors.Clone(appErrors.ErrValidation, "chosen date and time are not among the request's candidates")
		}

		session, err = s.sessions.CreateFromAcceptedRequest(ctx, tx, CreateSessionParams{
			TutorID:         request.TutorID,
			TuteeID:         request.TuteeID,
			CourseID:        request.CourseID,
			RequestID:       &request.ID,
			Date:            chosen.Date,
			StartMinute:     chosen.StartMinute,
			DurationMinutes: chosen.DurationMinutes,
			RoomLink:        roomLink,
		})
		if err != nil {
			return err
		}

		affected, err := s.bookings.UpdateStatus(ctx, tx, request.ID, models.BookingStatusPending, models.BookingStatusAccepted)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept booking request")
		}
		if affected == 0 {
			return appErrors.Clone(appErrors.ErrAlreadyResolved, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBooked(ctx, request, session)
	return &RespondResult{RoomLink: roomLink}, nil
}

// ListPendingForTutor returns the tutor's inbox. Each candidate carries a
// read-only hint whether a confirmed session already occupies it, so the UI
// can grey it out; the authoritative check still happens at accept time.
func (s *BookingService) ListPendingForTutor(ctx context.Context, tutorID string) ([]dto.PendingBookingItem, error) {
	rows, err := s.bookings.ListPendingForTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}
	if len(rows) == 0 {
		return []dto.PendingBookingItem{}, nil
	}

	requestIDs := make([]string, len(rows))
	for i, row := range rows {
		requestIDs[i] = row.RequestID
	}
	candidates, err := s.bookings.ListCandidatesForRequests(ctx, requestIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidates")
	}

	taken := make(map[string]struct{})
	sessions, err := s.sessionRows.ListActiveEnrichedByTutor(ctx, nil, tutorID, todayStart())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	for _, session := range sessions {
		taken[occupancyKey(session.ScheduledDate, session.StartMinute)] = struct{}{}
	}

	items := make([]dto.PendingBookingItem, 0, len(rows))
	for _, row := range rows {
		item := dto.PendingBookingItem{
			RequestID:    row.RequestID,
			TuteeName:    row.TuteeName,
			CourseCode:   row.CourseCode,
			CourseName:   row.CourseName,
			Note:         row.Note,
			MaterialsURI: row.MaterialsURI,
			CreatedAt:    row.CreatedAt,
			Candidates:   []dto.CandidateView{},
		}
		for _, candidate := range candidates[row.RequestID] {
			_, isTaken := taken[occupancyKey(candidate.Date, candidate.StartMinute)]
			item.Candidates = append(item.Candidates, dto.CandidateView{
				Date:  candidate.Date.Format("2006-01-02"),
				Time:  models.ToTimeString(candidate.StartMinute),
				Taken: isTaken,
			})
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *BookingService) notifyBooked(ctx context.Context, request *models.BookingRequest, session *models.ScheduledSession) {
	if s.notifier == nil || session == nil {
		return
	}
	tutee, err := s.profiles.FindByID(ctx, request.TuteeID)
	if err != nil {
		s.logger.Warn("failed to resolve booking recipient",
			zap.String("profile_id", request.TuteeID), zap.Error(err))
		return
	}
	s.notifier.Notify(models.Notification{
		To:   tutee.Email,
		Kind: models.NotificationBooked,
		Payload: map[string]interface{}{
			"session_id": session.ID,
			"date":       session.ScheduledDate.Format("2006-01-02"),
			"time":       models.ToTimeString(session.StartMinute),
			"room_link":  session.RoomLink,
		},
	})
}

func occupancyKey(date time.Time, startMinute int) string {
	return date.Format("2006-01-02") + "#" + models.ToTimeString(startMinute)
}
