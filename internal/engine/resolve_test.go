package engine

import (
	"testing"
	"time"

	"github.com/claude/dayplan/internal/models"
	"github.com/google/uuid"
)

func recommendation(t *testing.T, start string, duration int) *models.Workout {
	t.Helper()
	w := &models.Workout{
		ID:            uuid.New(),
		UserID:        1,
		Name:          "Putting Precision",
		Category:      models.CategoryTechnique,
		Duration:      duration,
		ScheduledDate: "2026-09-01",
		Status:        models.StatusScheduled,
		IsRecommended: true,
	}
	if start != "" {
		st := ct(t, start)
		w.ScheduledTime = &st
	}
	return w
}

// checkInvariants asserts the per-state data validity rules: the collision
// descriptor is present iff S4, the elapsed counter iff S5.
func checkInvariants(t *testing.T, anchor models.DecisionAnchorData) {
	t.Helper()
	if (anchor.Collision != nil) != (anchor.State == models.StateCollision) {
		t.Errorf("state %s: collision descriptor presence mismatch", anchor.State)
	}
	if (anchor.ElapsedSeconds != nil) != (anchor.State == models.StateInProgress) {
		t.Errorf("state %s: elapsed counter presence mismatch", anchor.State)
	}
}

// TestResolveNoRecommendation verifies a nil candidate resolves to
// S3_NO_RECOMMENDATION.
func TestResolveNoRecommendation(t *testing.T) {
	anchor, err := Resolve(nil, nil, "Putting precision", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateNoRecommendation {
		t.Errorf("state = %s, want %s", anchor.State, models.StateNoRecommendation)
	}
	if anchor.WeeklyFocus != "Putting precision" {
		t.Errorf("weekly focus = %q, want %q", anchor.WeeklyFocus, "Putting precision")
	}
	checkInvariants(t, anchor)
}

// TestResolveInProgressBeatsCollision verifies the priority chain: a workout
// that is in progress and technically overlapping a hard event resolves to
// S5_IN_PROGRESS, never S4_COLLISION.
func TestResolveInProgressBeatsCollision(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 10, 0, 0, time.UTC)
	started := now.Add(-10 * time.Minute)

	rec := recommendation(t, "09:00", 45)
	rec.Status = models.StatusInProgress
	rec.StartedAt = &started

	events := []models.CalendarEvent{
		external(t, "Coach meeting", "09:00", "10:00", models.CollisionHard),
	}

	anchor, err := Resolve(rec, events, "", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateInProgress {
		t.Errorf("state = %s, want %s", anchor.State, models.StateInProgress)
	}
	if anchor.ElapsedSeconds == nil || *anchor.ElapsedSeconds != 600 {
		t.Errorf("elapsed = %v, want 600", anchor.ElapsedSeconds)
	}
	if anchor.Badge != models.BadgeInProgress {
		t.Errorf("badge = %q, want %q", anchor.Badge, models.BadgeInProgress)
	}
	checkInvariants(t, anchor)
}

// TestResolveCompleted verifies a completed workout resolves to S6.
func TestResolveCompleted(t *testing.T) {
	rec := recommendation(t, "09:00", 45)
	rec.Status = models.StatusCompleted

	anchor, err := Resolve(rec, nil, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateCompleted {
		t.Errorf("state = %s, want %s", anchor.State, models.StateCompleted)
	}
	checkInvariants(t, anchor)
}

// TestResolveUnscheduled verifies a recommendation without a slot resolves to
// the ghost-slot state S2.
func TestResolveUnscheduled(t *testing.T) {
	anchor, err := Resolve(recommendation(t, "", 45), nil, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateUnscheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateUnscheduled)
	}
	checkInvariants(t, anchor)
}

// TestResolveCollision verifies an overlapping pre-classified event resolves
// to S4 with the collision descriptor attached.
func TestResolveCollision(t *testing.T) {
	rec := recommendation(t, "09:30", 60)
	events := []models.CalendarEvent{
		{Workout: rec}, // the recommendation's own calendar entry
		external(t, "Coach meeting", "09:00", "10:00", models.CollisionHard),
	}

	anchor, err := Resolve(rec, events, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateCollision {
		t.Errorf("state = %s, want %s", anchor.State, models.StateCollision)
	}
	if anchor.Collision == nil || anchor.Collision.ConflictingEvent.Title() != "Coach meeting" {
		t.Errorf("collision = %+v, want conflict with coach meeting", anchor.Collision)
	}
	checkInvariants(t, anchor)
}

// TestResolveOwnEntryExcluded verifies the recommendation never collides with
// its own calendar entry.
func TestResolveOwnEntryExcluded(t *testing.T) {
	rec := recommendation(t, "09:00", 45)
	events := []models.CalendarEvent{{Workout: rec}}

	anchor, err := Resolve(rec, events, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateScheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateScheduled)
	}
	checkInvariants(t, anchor)
}

// TestResolveScheduled verifies a clean slot resolves to S1 with the
// recommended badge.
func TestResolveScheduled(t *testing.T) {
	anchor, err := Resolve(recommendation(t, "09:00", 45), []models.CalendarEvent{
		external(t, "Lunch", "12:00", "13:00", models.CollisionSoft),
	}, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateScheduled {
		t.Errorf("state = %s, want %s", anchor.State, models.StateScheduled)
	}
	if anchor.Badge != models.BadgeRecommended {
		t.Errorf("badge = %q, want %q", anchor.Badge, models.BadgeRecommended)
	}
	checkInvariants(t, anchor)
}

// TestResolveCancelledRecommendation verifies a cancelled workout is treated
// as no recommendation at all.
func TestResolveCancelledRecommendation(t *testing.T) {
	rec := recommendation(t, "09:00", 45)
	rec.Status = models.StatusCancelled

	anchor, err := Resolve(rec, nil, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if anchor.State != models.StateNoRecommendation {
		t.Errorf("state = %s, want %s", anchor.State, models.StateNoRecommendation)
	}
	checkInvariants(t, anchor)
}
