package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/dayplan/internal/models"
	"github.com/google/uuid"
)

const testDate = "2026-09-01"

// fakeStore backs all provider interfaces and the sink with in-memory maps,
// so transitions observe their own committed writes on re-resolution.
type fakeStore struct {
	mu        sync.Mutex
	workouts  map[uuid.UUID]models.Workout
	externals []models.ExternalEvent
	focus     *models.WeeklyFocus
	records   []TransitionRecord
	saveErr   map[uuid.UUID]error // injected write failures by workout ID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workouts: make(map[uuid.UUID]models.Workout),
		focus:    &models.WeeklyFocus{Title: "Putting precision", Category: models.CategoryTechnique, TargetMinutes: 180},
	}
}

func (f *fakeStore) put(w models.Workout) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.workouts[w.ID] = w
}

func (f *fakeStore) Recommendation(_ context.Context, userID int, date string) (*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.workouts {
		if w.UserID == userID && w.ScheduledDate == date && w.IsRecommended && w.Status != models.StatusCancelled {
			cp := w
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DayEvents(_ context.Context, userID int, date string) ([]models.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var events []models.CalendarEvent
	for _, w := range f.workouts {
		if w.UserID == userID && w.ScheduledDate == date && w.Status != models.StatusCancelled {
			cp := w
			events = append(events, models.CalendarEvent{Workout: &cp})
		}
	}
	for _, e := range f.externals {
		if e.UserID == userID && e.Date == date {
			cp := e
			events = append(events, models.CalendarEvent{External: &cp})
		}
	}
	return events, nil
}

func (f *fakeStore) WeeklyFocus(_ context.Context, _ int, _ string) (*models.WeeklyFocus, error) {
	return f.focus, nil
}

func (f *fakeStore) SaveWorkout(_ context.Context, w *models.Workout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[w.ID]; err != nil {
		return err
	}
	f.workouts[w.ID] = *w
	return nil
}

// ReplaceRecommendation mirrors the storage transaction: both writes land or
// neither does.
func (f *fakeStore) ReplaceRecommendation(_ context.Context, previous, next *models.Workout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.saveErr[next.ID]; err != nil {
		return err
	}
	if previous != nil {
		if err := f.saveErr[previous.ID]; err != nil {
			return err
		}
		p := f.workouts[previous.ID]
		p.IsRecommended = false
		f.workouts[previous.ID] = p
	}
	f.workouts[next.ID] = *next
	return nil
}

func (f *fakeStore) RecordTransition(_ context.Context, rec TransitionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) lastRecord(t *testing.T) TransitionRecord {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		t.Fatal("no transition records")
	}
	return f.records[len(f.records)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testService builds a Service over a fresh fake store with a pinned clock.
func testService(t *testing.T, now *time.Time) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := New(store, store, store, store, testLogger(), WithClock(func() time.Time { return *now }))
	return svc, store
}

func seedRecommendation(t *testing.T, store *fakeStore, start string, duration int) models.Workout {
	t.Helper()
	w := models.Workout{
		ID:            uuid.New(),
		UserID:        1,
		Name:          "Putting Precision",
		Category:      models.CategoryTechnique,
		Duration:      duration,
		ScheduledDate: testDate,
		Status:        models.StatusScheduled,
		IsRecommended: true,
	}
	if start != "" {
		st := ct(t, start)
		w.ScheduledTime = &st
	}
	store.put(w)
	return w
}

func seedExternal(t *testing.T, store *fakeStore, title, start, end string, ctype models.CollisionType) {
	t.Helper()
	store.externals = append(store.externals, models.ExternalEvent{
		ID:        uuid.New(),
		UserID:    1,
		Title:     title,
		Date:      testDate,
		StartTime: ct(t, start),
		EndTime:   ct(t, end),
		Collision: ctype,
	})
}

func dayClock(t *testing.T, clock string) time.Time {
	t.Helper()
	v, err := time.Parse("2006-01-02 15:04:05", testDate+" "+clock)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// TestStartFromScheduled verifies start from S1 lands in S5 with a zero
// elapsed counter and a fully populated instrumentation record.
func TestStartFromScheduled(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	anchor, err := svc.Start(context.Background(), 1, testDate, SourceDecisionAnchor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateInProgress {
		t.Errorf("state = %s, want %s", anchor.State, models.StateInProgress)
	}
	if anchor.ElapsedSeconds == nil || *anchor.ElapsedSeconds != 0 {
		t.Errorf("elapsed = %v, want 0", anchor.ElapsedSeconds)
	}

	rec := store.lastRecord(t)
	if rec.Action != ActionStart {
		t.Fatalf("action = %s, want start", rec.Action)
	}
	payload, ok := rec.Payload.(StartPayload)
	if !ok {
		t.Fatalf("payload type = %T, want StartPayload", rec.Payload)
	}
	if payload.Source != SourceDecisionAnchor || !payload.Recommended || !payload.Planned || payload.DurationSelected != 45 {
		t.Errorf("payload = %+v, want decision_anchor/recommended/planned/45", payload)
	}
}

// TestStartFromInProgressFails verifies a second start is an invalid
// transition, not a silent no-op.
func TestStartFromInProgressFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	if _, err := svc.Start(context.Background(), 1, testDate, SourceDecisionAnchor); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := svc.Start(context.Background(), 1, testDate, SourceDecisionAnchor)
	if !IsInvalidTransition(err) {
		t.Errorf("second start: expected invalid-transition, got %v", err)
	}
}

// TestStartOverSoftCollision verifies a soft conflict is overridable: start
// from S4 succeeds when the conflict is soft and fails when it is hard.
func TestStartOverSoftCollision(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)
	seedExternal(t, store, "Reminder", "09:15", "09:45", models.CollisionSoft)

	anchor, err := svc.Start(context.Background(), 1, testDate, SourceDetailPanel)
	if err != nil {
		t.Fatalf("start over soft conflict: %v", err)
	}
	if anchor.State != models.StateInProgress {
		t.Errorf("state = %s, want %s", anchor.State, models.StateInProgress)
	}
}

// TestStartOverHardCollisionFails verifies hard conflicts are not
// overridable from the start action.
func TestStartOverHardCollisionFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)
	seedExternal(t, store, "Coach meeting", "09:15", "09:45", models.CollisionHard)

	_, err := svc.Start(context.Background(), 1, testDate, SourceDecisionAnchor)
	if !IsInvalidTransition(err) {
		t.Errorf("expected invalid-transition over hard conflict, got %v", err)
	}
}

// TestStartNoRecommendation verifies start with no candidate fails with
// not-found.
func TestStartNoRecommendation(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, _ := testService(t, &now)

	_, err := svc.Start(context.Background(), 1, testDate, SourceDecisionAnchor)
	if !IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

// TestRescheduleDelay verifies a 15-minute delay issued at 09:00 against a
// 09:00 slot produces 09:15 and re-runs collision detection.
func TestRescheduleDelay(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	anchor, err := svc.Reschedule(context.Background(), 1, testDate, models.RescheduleOption{Type: models.RescheduleDelay, Minutes: 15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateScheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateScheduled)
	}
	if got := anchor.RecommendedWorkout.ScheduledTime.String(); got != "09:15" {
		t.Errorf("new time = %s, want 09:15", got)
	}

	payload := store.lastRecord(t).Payload.(ReschedulePayload)
	if payload.FromTime != "09:00" || payload.ToTime != "09:15" || payload.Reason != ReasonUserInitiated {
		t.Errorf("payload = %+v, want 09:00 -> 09:15 user_initiated", payload)
	}
}

// TestRescheduleClearsCollision verifies moving a colliding slot to a free
// time lands in S1 and records the collision_resolution reason.
func TestRescheduleClearsCollision(t *testing.T) {
	now := dayClock(t, "08:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:30", 60)
	seedExternal(t, store, "Coach meeting", "10:00", "10:30", models.CollisionHard)

	anchor, err := svc.Reschedule(context.Background(), 1, testDate, models.RescheduleOption{Type: models.RescheduleSpecificTime, Time: "14:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateScheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateScheduled)
	}

	payload := store.lastRecord(t).Payload.(ReschedulePayload)
	if payload.Reason != ReasonCollisionResolution {
		t.Errorf("reason = %s, want %s", payload.Reason, ReasonCollisionResolution)
	}
}

// TestReschedulePlacesGhostSlot verifies rescheduling an unscheduled
// recommendation writes its first slot and records an empty from_time.
func TestReschedulePlacesGhostSlot(t *testing.T) {
	now := dayClock(t, "08:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "", 45)

	anchor, err := svc.Reschedule(context.Background(), 1, testDate, models.RescheduleOption{Type: models.RescheduleCustom, Time: "11:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateScheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateScheduled)
	}
	payload := store.lastRecord(t).Payload.(ReschedulePayload)
	if payload.FromTime != "" || payload.ToTime != "11:00" {
		t.Errorf("payload = %+v, want empty from_time and to_time 11:00", payload)
	}
}

// TestRescheduleInvalidOption verifies malformed options fail without
// committing anything.
func TestRescheduleInvalidOption(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	cases := []models.RescheduleOption{
		{Type: models.RescheduleDelay, Minutes: 45},
		{Type: models.RescheduleCustom, Time: "not-a-time"},
		{Type: "postpone"},
	}
	for _, option := range cases {
		if _, err := svc.Reschedule(context.Background(), 1, testDate, option); !IsInvalidOption(err) {
			t.Errorf("option %+v: expected invalid-option, got %v", option, err)
		}
	}
	if len(store.records) != 0 {
		t.Errorf("expected no committed transitions, got %d", len(store.records))
	}
}

// TestRescheduleRejectsMidnightCrossing verifies a target slot that would
// run past midnight is rejected before anything is written, and the day
// stays fully operable afterwards.
func TestRescheduleRejectsMidnightCrossing(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	_, err := svc.Reschedule(context.Background(), 1, testDate,
		models.RescheduleOption{Type: models.RescheduleSpecificTime, Time: "23:30"})
	if !IsInvalidSlot(err) {
		t.Fatalf("expected invalid-slot, got %v", err)
	}
	if len(store.records) != 0 {
		t.Errorf("expected no committed transitions, got %d", len(store.records))
	}

	// The slot is untouched and later transitions still work.
	anchor, err := svc.Resolve(context.Background(), 1, testDate)
	if err != nil {
		t.Fatalf("resolve after rejected reschedule: %v", err)
	}
	if got := anchor.RecommendedWorkout.ScheduledTime.String(); got != "09:00" {
		t.Errorf("scheduled time = %s, want 09:00", got)
	}
	if _, err := svc.Cancel(context.Background(), 1, testDate); err != nil {
		t.Errorf("cancel after rejected reschedule: %v", err)
	}
}

// TestRescheduleDelayPastMidnightFails verifies a delay issued late in the
// evening cannot wrap the slot to the start of the same day.
func TestRescheduleDelayPastMidnightFails(t *testing.T) {
	now := dayClock(t, "23:50:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "22:00", 45)

	_, err := svc.Reschedule(context.Background(), 1, testDate,
		models.RescheduleOption{Type: models.RescheduleDelay, Minutes: 15})
	if !IsInvalidSlot(err) {
		t.Errorf("expected invalid-slot, got %v", err)
	}
}

// TestRescheduleFromCompletedFails verifies reschedule is rejected once the
// workout has reached a terminal state.
func TestRescheduleFromCompletedFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	w := seedRecommendation(t, store, "09:00", 45)
	w.Status = models.StatusCompleted
	store.put(w)

	_, err := svc.Reschedule(context.Background(), 1, testDate, models.RescheduleOption{Type: models.RescheduleDelay, Minutes: 15})
	if !IsInvalidTransition(err) {
		t.Errorf("expected invalid-transition, got %v", err)
	}
}

// TestShortenRemovesCollision verifies shortening a 45-minute slot to 30
// clears an overlap near the slot's tail and the next resolution yields S1.
func TestShortenRemovesCollision(t *testing.T) {
	now := dayClock(t, "08:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)
	seedExternal(t, store, "School pickup", "09:40", "10:15", models.CollisionHard)

	// Sanity: the 45-minute slot currently collides.
	before, err := svc.Resolve(context.Background(), 1, testDate)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if before.State != models.StateCollision {
		t.Fatalf("precondition state = %s, want %s", before.State, models.StateCollision)
	}

	anchor, err := svc.Shorten(context.Background(), 1, testDate, models.ShortenOption(30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateScheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateScheduled)
	}

	payload := store.lastRecord(t).Payload.(ShortenPayload)
	if payload.OldDuration != 45 || payload.NewDuration != 30 {
		t.Errorf("payload = %+v, want 45 -> 30", payload)
	}
}

// TestShortenInvalidValue verifies arbitrary durations are rejected.
func TestShortenInvalidValue(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	if _, err := svc.Shorten(context.Background(), 1, testDate, models.ShortenOption(20)); !IsInvalidOption(err) {
		t.Errorf("expected invalid-option, got %v", err)
	}
}

// TestShortenFromInProgressFails verifies shorten is only legal from
// S1/S2/S4.
func TestShortenFromInProgressFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	if _, err := svc.Start(context.Background(), 1, testDate, SourceDecisionAnchor); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Shorten(context.Background(), 1, testDate, models.ShortenOption(30)); !IsInvalidTransition(err) {
		t.Errorf("expected invalid-transition, got %v", err)
	}
}

// TestCompleteComputesActualDuration verifies complete from S5 records the
// floor of the elapsed minutes and lands in S6.
func TestCompleteComputesActualDuration(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	if _, err := svc.Start(context.Background(), 1, testDate, SourceDecisionAnchor); err != nil {
		t.Fatalf("start: %v", err)
	}

	now = dayClock(t, "09:46:30")
	anchor, err := svc.Complete(context.Background(), 1, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateCompleted {
		t.Errorf("state = %s, want %s", anchor.State, models.StateCompleted)
	}

	payload := store.lastRecord(t).Payload.(CompletePayload)
	if payload.DurationActual != 46 {
		t.Errorf("duration_actual = %d, want 46 (floor of 46.5)", payload.DurationActual)
	}
	if !payload.Recommended || !payload.Planned {
		t.Errorf("payload = %+v, want recommended and planned", payload)
	}
}

// TestCompleteOutsideInProgressFails verifies complete from any state other
// than S5 is an invalid transition.
func TestCompleteOutsideInProgressFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	if _, err := svc.Complete(context.Background(), 1, testDate); !IsInvalidTransition(err) {
		t.Errorf("complete from S1: expected invalid-transition, got %v", err)
	}
}

// TestCancelLandsNoRecommendation verifies cancel removes the active
// recommendation and the next resolution yields S3 when no fallback exists.
func TestCancelLandsNoRecommendation(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	anchor, err := svc.Cancel(context.Background(), 1, testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateNoRecommendation {
		t.Errorf("state = %s, want %s", anchor.State, models.StateNoRecommendation)
	}

	// Nothing left to cancel.
	if _, err := svc.Cancel(context.Background(), 1, testDate); !IsNotFound(err) {
		t.Errorf("second cancel: expected not-found, got %v", err)
	}
}

// TestCancelFromCompletedFails verifies S6 is terminal for cancel.
func TestCancelFromCompletedFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	w := seedRecommendation(t, store, "09:00", 45)
	w.Status = models.StatusCompleted
	store.put(w)

	if _, err := svc.Cancel(context.Background(), 1, testDate); !IsInvalidTransition(err) {
		t.Errorf("expected invalid-transition, got %v", err)
	}
}

// TestSelectWorkout verifies a user-chosen workout becomes the active
// recommendation from S3 and resolves as a ghost slot.
func TestSelectWorkout(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, _ := testService(t, &now)

	chosen := &models.Workout{
		ID:       uuid.New(),
		Name:     "Threshold Intervals",
		Category: models.CategoryPhysical,
		Duration: 15,
	}
	anchor, err := svc.SelectWorkout(context.Background(), 1, testDate, chosen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateUnscheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateUnscheduled)
	}
	if anchor.RecommendedWorkout == nil || anchor.RecommendedWorkout.Name != "Threshold Intervals" {
		t.Errorf("recommended workout = %+v, want the selected one", anchor.RecommendedWorkout)
	}
}

// TestSelectWorkoutReplacesGhostSlot verifies selecting from S2 demotes the
// previous suggestion so at most one workout stays recommended.
func TestSelectWorkoutReplacesGhostSlot(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	old := seedRecommendation(t, store, "", 45)

	chosen := &models.Workout{ID: uuid.New(), Name: "Bunker Play", Category: models.CategoryPlay, Duration: 30}
	if _, err := svc.SelectWorkout(context.Background(), 1, testDate, chosen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	recommended := 0
	store.mu.Lock()
	for _, w := range store.workouts {
		if w.IsRecommended {
			recommended++
		}
	}
	demoted := store.workouts[old.ID]
	store.mu.Unlock()

	if recommended != 1 {
		t.Errorf("recommended workouts = %d, want exactly 1", recommended)
	}
	if demoted.IsRecommended {
		t.Error("previous recommendation was not demoted")
	}
}

// TestSelectWorkoutFailureKeepsPreviousRecommendation verifies a failed
// replace leaves the old ghost-slot suggestion recommended: demotion and
// promotion land together or not at all.
func TestSelectWorkoutFailureKeepsPreviousRecommendation(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	old := seedRecommendation(t, store, "", 45)

	chosen := &models.Workout{ID: uuid.New(), Name: "Bunker Play", Category: models.CategoryPlay, Duration: 30}
	store.saveErr = map[uuid.UUID]error{chosen.ID: errors.New("db down")}

	if _, err := svc.SelectWorkout(context.Background(), 1, testDate, chosen); err == nil {
		t.Fatal("expected error from failed replace")
	}

	rec, err := store.Recommendation(context.Background(), 1, testDate)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.ID != old.ID {
		t.Errorf("recommendation = %+v, want previous workout still recommended", rec)
	}
	if len(store.records) != 0 {
		t.Errorf("expected no committed transitions, got %d", len(store.records))
	}
}

// TestSelectWorkoutFromScheduledFails verifies select is only legal from
// S2/S3.
func TestSelectWorkoutFromScheduledFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	chosen := &models.Workout{ID: uuid.New(), Name: "Bunker Play", Category: models.CategoryPlay, Duration: 30}
	if _, err := svc.SelectWorkout(context.Background(), 1, testDate, chosen); !IsInvalidTransition(err) {
		t.Errorf("expected invalid-transition, got %v", err)
	}
}

// TestSelectWorkoutWhileAnotherInProgressFails pins down the edge case of
// selecting while a different, non-recommended workout is already running:
// the select is rejected rather than stacking a second active session.
func TestSelectWorkoutWhileAnotherInProgressFails(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	st := ct(t, "08:00")
	started := dayClock(t, "08:00:00")
	store.put(models.Workout{
		ID:            uuid.New(),
		UserID:        1,
		Name:          "Morning Run",
		Category:      models.CategoryPhysical,
		Duration:      30,
		ScheduledDate: testDate,
		ScheduledTime: &st,
		Status:        models.StatusInProgress,
		StartedAt:     &started,
	})

	chosen := &models.Workout{ID: uuid.New(), Name: "Bunker Play", Category: models.CategoryPlay, Duration: 30}
	if _, err := svc.SelectWorkout(context.Background(), 1, testDate, chosen); !IsInvalidTransition(err) {
		t.Errorf("expected invalid-transition, got %v", err)
	}
}

// TestConcurrentStartsSerialize verifies the per-(user, day) single-writer
// discipline: many racing starts commit exactly once, the rest observe the
// already-started state.
func TestConcurrentStartsSerialize(t *testing.T) {
	now := dayClock(t, "09:00:00")
	svc, store := testService(t, &now)
	seedRecommendation(t, store, "09:00", 45)

	const racers = 8
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Start(context.Background(), 1, testDate, SourceTimeline)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case IsInvalidTransition(err):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("successful starts = %d, want exactly 1", succeeded)
	}
	if rejected != racers-1 {
		t.Errorf("rejected starts = %d, want %d", rejected, racers-1)
	}

	starts := 0
	store.mu.Lock()
	for _, rec := range store.records {
		if rec.Action == ActionStart {
			starts++
		}
	}
	store.mu.Unlock()
	if starts != 1 {
		t.Errorf("recorded start transitions = %d, want 1", starts)
	}
}
