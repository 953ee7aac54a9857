package engine

import (
	"time"

	"github.com/claude/dayplan/internal/models"
)

// Resolve derives the single active day state from the recommendation, the
// day's schedule, and the wall clock. Deterministic and side-effect free.
//
// The checks form a strict priority chain, first match wins:
//
//  1. no recommendation            -> S3_NO_RECOMMENDATION
//  2. status in_progress           -> S5_IN_PROGRESS (collision irrelevant once started)
//  3. status completed             -> S6_COMPLETED
//  4. no scheduled time            -> S2_UNSCHEDULED (ghost slot)
//  5. slot overlaps another event  -> S4_COLLISION
//  6. otherwise                    -> S1_SCHEDULED
//
// The recommendation's own calendar entry is excluded before collision
// detection so it cannot conflict with itself.
func Resolve(rec *models.Workout, events []models.CalendarEvent, focusTitle string, now time.Time) (models.DecisionAnchorData, error) {
	anchor := models.DecisionAnchorData{
		WeeklyFocus: focusTitle,
		State:       models.StateNoRecommendation,
	}

	if rec == nil || rec.Status == models.StatusCancelled {
		return anchor, nil
	}

	anchor.RecommendedWorkout = rec
	anchor.Badge = models.WorkoutBadge(rec)

	switch rec.Status {
	case models.StatusInProgress:
		anchor.State = models.StateInProgress
		elapsed := 0
		if rec.StartedAt != nil {
			elapsed = int(now.Sub(*rec.StartedAt).Seconds())
		}
		anchor.ElapsedSeconds = &elapsed
		return anchor, nil
	case models.StatusCompleted:
		anchor.State = models.StateCompleted
		return anchor, nil
	}

	if !rec.Planned() {
		anchor.State = models.StateUnscheduled
		return anchor, nil
	}

	slot := Slot{Time: *rec.ScheduledTime, Duration: rec.Duration}
	collision, err := Classify(slot, withoutWorkout(events, rec))
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	if collision != nil {
		anchor.State = models.StateCollision
		anchor.Collision = collision
		return anchor, nil
	}

	anchor.State = models.StateScheduled
	return anchor, nil
}

// withoutWorkout filters out the calendar entry backed by the given workout.
func withoutWorkout(events []models.CalendarEvent, w *models.Workout) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if ev.Workout != nil && ev.Workout.ID == w.ID {
			continue
		}
		out = append(out, ev)
	}
	return out
}
