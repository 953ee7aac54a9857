package engine

import (
	"github.com/claude/dayplan/internal/models"
)

// Slot is a candidate placement wholly within one calendar day.
type Slot struct {
	Time     models.ClockTime
	Duration int // minutes
}

// End returns the exclusive end of the slot.
func (s Slot) End() models.ClockTime {
	return s.Time.Add(s.Duration)
}

// Classify detects whether the slot overlaps an existing event and returns
// the most severe conflict, or nil when the slot is free. Pure function of
// its inputs.
//
// Two intervals overlap when they share an open sub-interval; touching
// endpoints do not collide. External events keep the hard/soft classification
// assigned at ingestion. Already-placed workouts count as hard conflicts.
// All-day events and unscheduled workouts carry no slot and never conflict.
//
// Tie-break: a hard conflict always outranks a soft one; among equal
// severity, the earliest-starting event wins.
func Classify(slot Slot, events []models.CalendarEvent) (*models.CollisionResult, error) {
	if slot.Duration <= 0 {
		return nil, errInvalidSlot("slot duration must be positive, got %d", slot.Duration)
	}
	if !slot.Time.Valid() || int(slot.End()) > models.MinutesPerDay {
		return nil, errInvalidSlot("slot %s+%dmin crosses midnight", slot.Time, slot.Duration)
	}

	var best *models.CollisionResult
	var bestStart models.ClockTime

	for _, ev := range events {
		start, ok := ev.Start()
		if !ok {
			continue
		}
		end, _ := ev.End()
		if start >= slot.End() || end <= slot.Time {
			continue
		}

		severity := models.CollisionHard
		if ev.External != nil {
			severity = ev.External.Collision
		}

		if best == nil || outranks(severity, start, best.Type, bestStart) {
			best = &models.CollisionResult{Type: severity, ConflictingEvent: ev}
			bestStart = start
		}
	}

	return best, nil
}

// outranks reports whether a conflict (severity, start) beats the current
// best. Severity first, then earliest start.
func outranks(severity models.CollisionType, start models.ClockTime, bestSeverity models.CollisionType, bestStart models.ClockTime) bool {
	if severity != bestSeverity {
		return severity == models.CollisionHard
	}
	return start < bestStart
}
