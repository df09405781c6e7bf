package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campushour/tutoring-api/internal/dto"
	"github.com/campushour/tutoring-api/internal/models"
	"github.com/campushour/tutoring-api/internal/repository"
	appErrors "github.com/campushour/tutoring-api/pkg/errors"
)

// CascadeReason is the audit note written when a tutor's availability
// withdrawal cancels dependent sessions.
const CascadeReason = "tutor removed time slot"

type availabilityRepository interface {
	DeleteByTutor(ctx context.Context, exec sqlx.ExtContext, tutorID string) error
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, windows []models.AvailabilityWindow) error
	ListByTutor(ctx context.Context, tutorID string) ([]models.AvailabilityWindow, error)
	FindWindow(ctx context.Context, exec sqlx.ExtContext, tutorID string, dayOfWeek, startMinute, endMinute int) (*models.AvailabilityWindow, error)
	DeleteWindow(ctx context.Context, exec sqlx.ExtContext, windowID string) (int64, error)
}

type slotStore interface {
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.Slot) error
	ListByTutor(ctx context.Context, tutorID string) ([]models.Slot, error)
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

type cascadeCanceller interface {
	CascadeCancel(ctx context.Context, exec sqlx.ExtContext, sessionIDs []string, byRole models.Role, reason string) error
}

type conflictFinder interface {
	FindConflicts(ctx context.Context, exec sqlx.ExtContext, tutorID string, ranges []models.WeekdayRange, fromDate time.Time) ([]repository.SessionDetailRow, error)
}

// RemoveWindowInput identifies one window by its (day, start, end) identity.
type RemoveWindowInput struct {
	DayOfWeek int    `json:"day_of_week" validate:"required,min=1,max=7"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
}

// AvailabilityService owns a tutor's recurring weekly availability and the
// cascade that runs when withdrawn availability still has sessions attached.
type AvailabilityService struct {
	db           *sqlx.DB
	windows      availabilityRepository
	slots        slotStore
	cache        availabilityCache
	conflicts    conflictFinder
	sessions     cascadeCanceller
	notifier     notifier
	locks        *TutorLocks
	metrics      *MetricsService
	logger       *zap.Logger
	slotDuration time.Duration
	cacheTTL     time.Duration
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(
	db *sqlx.DB,
	windows availabilityRepository,
	slots slotStore,
	cache availabilityCache,
	conflicts conflictFinder,
	sessions cascadeCanceller,
	notifier notifier,
	locks *TutorLocks,
	metrics *MetricsService,
	slotDuration time.Duration,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewTutorLocks()
	}
	if slotDuration <= 0 {
		slotDuration = time.Hour
	}
	return &AvailabilityService{
		db:           db,
		windows:      windows,
		slots:        slots,
		cache:        cache,
		conflicts:    conflicts,
		sessions:     sessions,
		notifier:     notifier,
		locks:        locks,
		metrics:      metrics,
		logger:       logger,
		slotDuration: slotDuration,
		cacheTTL:     cacheTTL,
	}
}

// ReplaceWeekly swaps the tutor's whole weekly schedule for a new one: prior
// windows and their slots are deleted and the new set inserted and
// materialized, all in one transaction. The per-day non-overlap invariant is
// enforced here on submit, not trusted from the client.
func (s *AvailabilityService) ReplaceWeekly(ctx context.Context, tutorID string, input dto.WeeklyAvailabilityInput) error {
	windows, err := s.parseWeeklyInput(tutorID, input)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(tutorID)
	defer unlock()

	duration := int(s.slotDuration.Minutes())
	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.windows.DeleteByTutor(ctx, tx, tutorID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear availability")
		}
		if err := s.windows.InsertBatch(ctx, tx, windows); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save availability")
		}
		var slots []models.Slot
		for _, window := range windows {
			slots = append(slots, MaterializeSlots(window, duration)...)
		}
		if err := s.slots.InsertBatch(ctx, tx, slots); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize slots")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Delete(ctx, repository.AvailabilityCacheKey(tutorID))
	return nil
}

// GetWeekly returns the tutor's windows grouped by day, ordered by start
// time, through the cache when one is configured.
func (s *AvailabilityService) GetWeekly(ctx context.Context, tutorID string) (map[int][]dto.TimeRangeView, error) {
	key := repository.AvailabilityCacheKey(tutorID)

	var cached map[int][]dto.TimeRangeView
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordCacheOperation(true)
		return cached, nil
	}
	s.metrics.RecordCacheOperation(false)

	windows, err := s.windows.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	grouped := make(map[int][]dto.TimeRangeView)
	for _, window := range windows {
		grouped[window.DayOfWeek] = append(grouped[window.DayOfWeek], dto.TimeRangeView{
			Start: models.ToTimeString(window.StartMinute),
			End:   models.ToTimeString(window.EndMinute),
		})
	}

	if err := s.cache.Set(ctx, key, grouped, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache availability", zap.String("tutor_id", tutorID), zap.Error(err))
	}
	return grouped, nil
}

// ListSlots returns the tutor's materialized bookable slots grouped by day,
// ordered by start time. This is the surface the booking UI offers to tutees;
// occupancy is resolved per request against confirmed sessions, not here.
func (s *AvailabilityService) ListSlots(ctx context.Context, tutorID string) (map[int][]dto.SlotView, error) {
	slots, err := s.slots.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}

	grouped := make(map[int][]dto.SlotView)
	for _, slot := range slots {
		grouped[slot.DayOfWeek] = append(grouped[slot.DayOfWeek], dto.SlotView{
			Start:           models.ToTimeString(slot.StartMinute),
			End:             models.ToTimeString(slot.StartMinute + slot.DurationMinutes),
			DurationMinutes: slot.DurationMinutes,
		})
	}
	return grouped, nil
}

// PreviewRemoval is the advisory dry-run behind the confirmation dialog: it
// lists the sessions a removal would cancel, without mutating anything. The
// result is informational only and is re-checked at confirm time.
func (s *AvailabilityService) PreviewRemoval(ctx context.Context, tutorID string, inputs []RemoveWindowInput) (*dto.RemovalPreview, error) {
	ranges, err := parseRemovalInputs(inputs)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.conflicts.FindConflicts(ctx, nil, tutorID, ranges, todayStart())
	if err != nil {
		return nil, err
	}
	return &dto.RemovalPreview{Conflicts: Summaries(conflicts)}, nil
}

// RemoveWindows confirms a withdrawal. In one transaction it re-checks
// conflicts authoritatively, cascade-cancels every affected session, and only
// then deletes the windows; a window is never deleted while a dependent
// session remains active. Notifications go out after commit.
func (s *AvailabilityService) RemoveWindows(ctx context.Context, tutorID string, inputs []RemoveWindowInput) (*dto.RemovalPreview, error) {
	ranges, err := parseRemovalInputs(inputs)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(tutorID)
	defer unlock()

	var cancelled []repository.SessionDetailRow
	err = repository.RunInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		windowIDs := make([]string, 0, len(inputs))
		for i, input := range inputs {
			window, err := s.windows.FindWindow(ctx, tx, tutorID, input.DayOfWeek, ranges[i].Start, ranges[i].End)
			if err != nil {
				if err == sql.ErrNoRows {
					return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("availability window %s %s-%s not found", dayName(input.DayOfWeek), input.Start, input.End))
				}
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability window")
			}
			windowIDs = append(windowIDs, window.ID)
		}

		conflicts, err := s.conflicts.FindConflicts(ctx, tx, tutorID, ranges, todayStart())
		if err != nil {
			return err
		}

		if len(conflicts) > 0 {
			sessionIDs := make([]string, len(conflicts))
			for i, row := range conflicts {
				sessionIDs[i] = row.ID
			}
			if err := s.sessions.CascadeCancel(ctx, tx, sessionIDs, models.RoleTutor, CascadeReason); err != nil {
				return err
			}
		}

		for _, windowID := range windowIDs {
			if _, err := s.windows.DeleteWindow(ctx, tx, windowID); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability window")
			}
		}

		cancelled = conflicts
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, repository.AvailabilityCacheKey(tutorID))

	if s.notifier != nil {
		for _, row := range cancelled {
			s.notifier.Notify(models.Notification{
				To:   row.TuteeEmail,
				Kind: models.NotificationCancelled,
				Payload: map[string]interface{}{
					"session_id": row.ID,
					"date":       row.ScheduledDate.Format("2006-01-02"),
					"time":       models.ToTimeString(row.StartMinute),
					"reason":     CascadeReason,
				},
			})
		}
	}

	return &dto.RemovalPreview{Conflicts: Summaries(cancelled)}, nil
}

// SuggestRange proposes the next free default range for the tutor's editor.
func (s *AvailabilityService) SuggestRange(ctx context.Context, tutorID string, dayOfWeek int, dayStart string) (*dto.TimeRangeView, error) {
	startMinute, err := models.ToMinutes(dayStart)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day start time")
	}

	windows, err := s.windows.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	var ranges []models.Range
	for _, window := range windows {
		if window.DayOfWeek == dayOfWeek {
			ranges = append(ranges, window.Range())
		}
	}

	suggestion := models.NextAvailableSlot(ranges, startMinute, int(s.slotDuration.Minutes()))
	return &dto.TimeRangeView{
		Start: models.ToTimeString(suggestion.Start),
		End:   models.ToTimeString(suggestion.End),
	}, nil
}

func (s *AvailabilityService) parseWeeklyInput(tutorID string, input dto.WeeklyAvailabilityInput) ([]models.AvailabilityWindow, error) {
	total := 0
	for _, ranges := range input {
		total += len(ranges)
	}
	if total == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekly availability must contain at least one window")
	}

	days := make([]int, 0, len(input))
	for day := range input {
		days = append(days, day)
	}
	sort.Ints(days)

	var windows []models.AvailabilityWindow
	for _, day := range days {
		if day < 1 || day > 7 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day of week %d", day))
		}
		var dayRanges []models.Range
		for _, raw := range input[day] {
			r, err := parseRange(raw.Start, raw.End)
			if err != nil {
				return nil, err
			}
			dayRanges = append(dayRanges, r)
			windows = append(windows, models.AvailabilityWindow{
				ID:          uuid.NewString(),
				TutorID:     tutorID,
				DayOfWeek:   day,
				StartMinute: r.Start,
				EndMinute:   r.End,
			})
		}
		if models.HasAnyOverlap(dayRanges) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("availability windows overlap on %s", dayName(day)))
		}
	}
	return windows, nil
}

func parseRemovalInputs(inputs []RemoveWindowInput) ([]models.WeekdayRange, error) {
	if len(inputs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no availability windows specified")
	}
	ranges := make([]models.WeekdayRange, 0, len(inputs))
	for _, input := range inputs {
		if input.DayOfWeek < 1 || input.DayOfWeek > 7 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid day of week %d", input.DayOfWeek))
		}
		r, err := parseRange(input.Start, input.End)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, models.WeekdayRange{DayOfWeek: input.DayOfWeek, Start: r.Start, End: r.End})
	}
	return ranges, nil
}

func parseRange(start, end string) (models.Range, error) {
	startMinute, err := models.ToMinutes(start)
	if err != nil {
		return models.Range{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start time %q", start))
	}
	endMinute, err := models.ToMinutes(end)
	if err != nil {
		return models.Range{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid end time %q", end))
	}
	if endMinute <= startMinute {
		return models.Range{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("end time %s must be after start time %s", end, start))
	}
	return models.Range{Start: startMinute, End: endMinute}, nil
}

func todayStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

var dayNames = map[int]string{
	1: "Monday", 2: "Tuesday", 3: "Wednesday", 4: "Thursday",
	5: "Friday", 6: "Saturday", 7: "Sunday",
}

func dayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return fmt.Sprintf("day %d", day)
}
