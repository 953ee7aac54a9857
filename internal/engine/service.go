package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/dayplan/internal/models"
)

// Service is the day decision engine for a single user population. It is
// evaluated per (user, day): reads resolve the current state from inputs
// fetched just-in-time, transitions mutate the single active recommendation
// and re-resolve.
//
// Thread-safety model:
//   - Resolve / DayEvents / Focus: safe from any goroutine, never mutate.
//   - Transitions: serialized per (user, day) key; one mutation in flight
//     at a time per day.
type Service struct {
	recs  RecommendationProvider
	cal   CalendarProvider
	focus FocusProvider
	sink  TransitionSink
	log   *slog.Logger
	now   func() time.Time
	locks *keyedLocks
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock. Used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service over the given providers and sink.
func New(recs RecommendationProvider, cal CalendarProvider, focus FocusProvider, sink TransitionSink, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		recs:  recs,
		cal:   cal,
		focus: focus,
		sink:  sink,
		log:   log,
		now:   time.Now,
		locks: newKeyedLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func lockKey(userID int, date string) string {
	return fmt.Sprintf("%d/%s", userID, date)
}

// load fetches the three resolution inputs for a (user, day).
func (s *Service) load(ctx context.Context, userID int, date string) (*models.Workout, []models.CalendarEvent, string, error) {
	rec, err := s.recs.Recommendation(ctx, userID, date)
	if err != nil {
		return nil, nil, "", fmt.Errorf("fetching recommendation: %w", err)
	}
	events, err := s.cal.DayEvents(ctx, userID, date)
	if err != nil {
		return nil, nil, "", fmt.Errorf("fetching day events: %w", err)
	}
	focusTitle := ""
	focus, err := s.focus.WeeklyFocus(ctx, userID, date)
	if err != nil {
		return nil, nil, "", fmt.Errorf("fetching weekly focus: %w", err)
	}
	if focus != nil {
		focusTitle = focus.Title
	}
	return rec, events, focusTitle, nil
}

// Resolve computes the decision anchor for a (user, day). Read-only; safe to
// call concurrently with other reads.
func (s *Service) Resolve(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error) {
	rec, events, focusTitle, err := s.load(ctx, userID, date)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	return Resolve(rec, events, focusTitle, s.now())
}

// DayEvents returns the day's schedule ordered by start time.
func (s *Service) DayEvents(ctx context.Context, userID int, date string) ([]models.CalendarEvent, error) {
	events, err := s.cal.DayEvents(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("fetching day events: %w", err)
	}
	models.SortEvents(events)
	return events, nil
}

// Focus returns the weekly focus for the week containing date.
func (s *Service) Focus(ctx context.Context, userID int, date string) (*models.WeeklyFocus, error) {
	return s.focus.WeeklyFocus(ctx, userID, date)
}

// current resolves the pre-transition state from freshly loaded inputs.
func (s *Service) current(ctx context.Context, userID int, date string) (*models.Workout, []models.CalendarEvent, models.DecisionAnchorData, error) {
	rec, events, focusTitle, err := s.load(ctx, userID, date)
	if err != nil {
		return nil, nil, models.DecisionAnchorData{}, err
	}
	anchor, err := Resolve(rec, events, focusTitle, s.now())
	if err != nil {
		return nil, nil, models.DecisionAnchorData{}, err
	}
	return rec, events, anchor, nil
}

// commit persists the mutated workout, records the instrumentation event,
// and re-runs resolution over fresh provider state.
func (s *Service) commit(ctx context.Context, userID int, date string, w *models.Workout, action Action, payload any) (models.DecisionAnchorData, error) {
	if err := s.sink.SaveWorkout(ctx, w); err != nil {
		return models.DecisionAnchorData{}, fmt.Errorf("saving workout: %w", err)
	}
	return s.record(ctx, userID, date, w, action, payload)
}

// record writes the instrumentation event for an already-persisted mutation
// and re-resolves.
func (s *Service) record(ctx context.Context, userID int, date string, w *models.Workout, action Action, payload any) (models.DecisionAnchorData, error) {
	rec := TransitionRecord{
		UserID:     userID,
		Date:       date,
		WorkoutID:  w.ID,
		Action:     action,
		OccurredAt: s.now(),
		Payload:    payload,
	}
	if err := s.sink.RecordTransition(ctx, rec); err != nil {
		return models.DecisionAnchorData{}, fmt.Errorf("recording %s transition: %w", action, err)
	}
	s.log.Info("transition committed", "action", action, "user_id", userID, "date", date, "workout_id", w.ID)
	return s.Resolve(ctx, userID, date)
}

// Start begins the active recommendation. Valid from S1_SCHEDULED,
// S2_UNSCHEDULED, or S4_COLLISION when the conflict is soft.
func (s *Service) Start(ctx context.Context, userID int, date string, source StartSource) (models.DecisionAnchorData, error) {
	defer s.locks.acquire(lockKey(userID, date))()

	rec, _, anchor, err := s.current(ctx, userID, date)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	if anchor.State == models.StateNoRecommendation {
		return models.DecisionAnchorData{}, errNotFound("no active recommendation on %s", date)
	}

	switch anchor.State {
	case models.StateScheduled, models.StateUnscheduled:
	case models.StateCollision:
		if anchor.Collision.Type == models.CollisionHard {
			return models.DecisionAnchorData{}, errInvalidTransition(
				"cannot start over hard conflict with %q", anchor.Collision.ConflictingEvent.Title())
		}
	default:
		return models.DecisionAnchorData{}, errInvalidTransition("start not allowed from %s", anchor.State)
	}

	planned := rec.Planned()
	now := s.now()
	rec.Status = models.StatusInProgress
	rec.StartedAt = &now

	return s.commit(ctx, userID, date, rec, ActionStart, StartPayload{
		Source:           source,
		Recommended:      rec.IsRecommended,
		Planned:          planned,
		DurationSelected: rec.Duration,
	})
}

// Reschedule moves the recommendation's slot. A delay adds N minutes to now;
// custom and specific_time carry the target clock time. A target whose slot
// would run past midnight is rejected without committing. Re-resolution may
// newly produce or clear a collision.
func (s *Service) Reschedule(ctx context.Context, userID int, date string, option models.RescheduleOption) (models.DecisionAnchorData, error) {
	defer s.locks.acquire(lockKey(userID, date))()

	rec, _, anchor, err := s.current(ctx, userID, date)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	if anchor.State == models.StateNoRecommendation {
		return models.DecisionAnchorData{}, errNotFound("no active recommendation on %s", date)
	}
	switch anchor.State {
	case models.StateInProgress, models.StateCompleted:
		return models.DecisionAnchorData{}, errInvalidTransition("reschedule not allowed from %s", anchor.State)
	}

	if err := option.Validate(); err != nil {
		return models.DecisionAnchorData{}, errInvalidOption("reschedule: %v", err)
	}

	var newTime models.ClockTime
	switch option.Type {
	case models.RescheduleDelay:
		newTime = models.ClockTimeOf(s.now()).Add(option.Minutes)
	default:
		newTime, _ = models.ParseClockTime(option.Time) // validated above
	}

	// The prospective slot must fit within the day before anything is
	// written: a committed slot past midnight would fail every subsequent
	// resolution on this day.
	if !newTime.Valid() || int(newTime.Add(rec.Duration)) > models.MinutesPerDay {
		return models.DecisionAnchorData{}, errInvalidSlot(
			"slot %s+%dmin crosses midnight", newTime, rec.Duration)
	}

	reason := ReasonUserInitiated
	if anchor.State == models.StateCollision {
		reason = ReasonCollisionResolution
	}
	fromTime := ""
	if rec.ScheduledTime != nil {
		fromTime = rec.ScheduledTime.String()
	}

	rec.ScheduledTime = &newTime
	rec.ScheduledDate = date

	return s.commit(ctx, userID, date, rec, ActionReschedule, ReschedulePayload{
		FromTime: fromTime,
		ToTime:   newTime.String(),
		Reason:   reason,
	})
}

// Shorten sets the recommendation's duration to one of the closed set
// {45, 30, 15}. Shortening can remove a collision.
func (s *Service) Shorten(ctx context.Context, userID int, date string, option models.ShortenOption) (models.DecisionAnchorData, error) {
	defer s.locks.acquire(lockKey(userID, date))()

	rec, _, anchor, err := s.current(ctx, userID, date)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	if anchor.State == models.StateNoRecommendation {
		return models.DecisionAnchorData{}, errNotFound("no active recommendation on %s", date)
	}
	switch anchor.State {
	case models.StateScheduled, models.StateUnscheduled, models.StateCollision:
	default:
		return models.DecisionAnchorData{}, errInvalidTransition("shorten not allowed from %s", anchor.State)
	}

	if err := option.Validate(); err != nil {
		return models.DecisionAnchorData{}, errInvalidOption("shorten: %v", err)
	}

	oldDuration := rec.Duration
	rec.Duration = int(option)

	return s.commit(ctx, userID, date, rec, ActionShorten, ShortenPayload{
		OldDuration: oldDuration,
		NewDuration: rec.Duration,
	})
}

// Complete finishes an in-progress workout. Valid only from S5_IN_PROGRESS;
// the actual duration is completedAt - startedAt in whole minutes, rounded
// down.
func (s *Service) Complete(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error) {
	defer s.locks.acquire(lockKey(userID, date))()

	rec, _, anchor, err := s.current(ctx, userID, date)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	if anchor.State == models.StateNoRecommendation {
		return models.DecisionAnchorData{}, errNotFound("no active recommendation on %s", date)
	}
	if anchor.State != models.StateInProgress {
		return models.DecisionAnchorData{}, errInvalidTransition("complete not allowed from %s", anchor.State)
	}

	now := s.now()
	rec.Status = models.StatusCompleted
	rec.CompletedAt = &now

	durationActual := 0
	if rec.StartedAt != nil {
		durationActual = int(now.Sub(*rec.StartedAt).Minutes())
	}

	return s.commit(ctx, userID, date, rec, ActionComplete, CompletePayload{
		DurationActual: durationActual,
		Recommended:    rec.IsRecommended,
		Planned:        rec.Planned(),
	})
}

// Cancel removes the workout from the day's active recommendation slot.
// Valid from any state except S6_COMPLETED; the next resolution typically
// lands on S3_NO_RECOMMENDATION unless a fallback recommendation exists.
func (s *Service) Cancel(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error) {
	defer s.locks.acquire(lockKey(userID, date))()

	rec, _, anchor, err := s.current(ctx, userID, date)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	if anchor.State == models.StateNoRecommendation {
		return models.DecisionAnchorData{}, errNotFound("no active recommendation on %s", date)
	}
	if anchor.State == models.StateCompleted {
		return models.DecisionAnchorData{}, errInvalidTransition("cancel not allowed from %s", anchor.State)
	}

	rec.Status = models.StatusCancelled

	return s.commit(ctx, userID, date, rec, ActionCancel, CancelPayload{
		Recommended: rec.IsRecommended,
		Planned:     rec.Planned(),
	})
}

// SelectWorkout assigns a user-chosen workout as the day's active
// recommendation. Valid only from S2_UNSCHEDULED or S3_NO_RECOMMENDATION,
// and rejected while any workout on the day is in progress.
func (s *Service) SelectWorkout(ctx context.Context, userID int, date string, w *models.Workout) (models.DecisionAnchorData, error) {
	defer s.locks.acquire(lockKey(userID, date))()

	rec, events, anchor, err := s.current(ctx, userID, date)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	switch anchor.State {
	case models.StateUnscheduled, models.StateNoRecommendation:
	default:
		return models.DecisionAnchorData{}, errInvalidTransition("select not allowed from %s", anchor.State)
	}
	for _, ev := range events {
		if ev.Workout != nil && ev.Workout.Status == models.StatusInProgress {
			return models.DecisionAnchorData{}, errInvalidTransition(
				"workout %q already in progress on %s", ev.Workout.Name, date)
		}
	}

	if w == nil || w.Duration <= 0 || !models.KnownCategory(w.Category) {
		return models.DecisionAnchorData{}, errInvalidOption("selected workout must have a known category and positive duration")
	}

	w.UserID = userID
	w.ScheduledDate = date
	w.IsRecommended = true
	if w.Status == "" {
		w.Status = models.StatusScheduled
	}

	// Demoting the previous ghost-slot suggestion and saving the replacement
	// move together: a failed replace leaves the old recommendation in place.
	if err := s.sink.ReplaceRecommendation(ctx, rec, w); err != nil {
		return models.DecisionAnchorData{}, fmt.Errorf("replacing recommendation: %w", err)
	}

	return s.record(ctx, userID, date, w, ActionSelect, SelectPayload{
		WorkoutID: w.ID,
		Category:  w.Category,
		Duration:  w.Duration,
	})
}
