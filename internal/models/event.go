package models

import (
	"sort"

	"github.com/google/uuid"
)

// CollisionType classifies how severe an overlap with an event is.
// External events carry their classification from ingestion; this package
// never re-derives it.
type CollisionType string

const (
	// CollisionHard marks events the user cannot casually override (meetings,
	// lessons, school blocks).
	CollisionHard CollisionType = "hard"
	// CollisionSoft marks overridable events (reminders, free slots).
	CollisionSoft CollisionType = "soft"
)

// ExternalEvent is an imported calendar entry. Read-only to the engine.
type ExternalEvent struct {
	ID        uuid.UUID     `json:"id"`
	UserID    int           `json:"user_id"`
	Title     string        `json:"title"`
	Date      string        `json:"date"` // YYYY-MM-DD
	StartTime ClockTime     `json:"start_time"`
	EndTime   ClockTime     `json:"end_time"`
	AllDay    bool          `json:"all_day"`
	Collision CollisionType `json:"collision_type"`
	Source    string        `json:"source,omitempty"`
}

// CalendarEvent wraps exactly one of {Workout, ExternalEvent}.
type CalendarEvent struct {
	Workout  *Workout       `json:"workout,omitempty"`
	External *ExternalEvent `json:"external,omitempty"`
}

// Title returns the display title of whichever variant is set.
func (e CalendarEvent) Title() string {
	if e.Workout != nil {
		return e.Workout.Name
	}
	if e.External != nil {
		return e.External.Title
	}
	return ""
}

// Start returns the event's start time and whether it has one. All-day
// external events and unscheduled workouts have no start.
func (e CalendarEvent) Start() (ClockTime, bool) {
	if e.Workout != nil && e.Workout.ScheduledTime != nil {
		return *e.Workout.ScheduledTime, true
	}
	if e.External != nil && !e.External.AllDay {
		return e.External.StartTime, true
	}
	return 0, false
}

// End returns the event's end time and whether it has one.
func (e CalendarEvent) End() (ClockTime, bool) {
	if e.Workout != nil && e.Workout.ScheduledTime != nil {
		return e.Workout.EndTime(), true
	}
	if e.External != nil && !e.External.AllDay {
		return e.External.EndTime, true
	}
	return 0, false
}

// SortEvents orders a day schedule by start time. Events without a slot
// (all-day entries, unscheduled workouts) sort first, keeping their relative
// order stable.
func SortEvents(events []CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		si, iok := events[i].Start()
		sj, jok := events[j].Start()
		if iok != jok {
			return !iok
		}
		return si < sj
	})
}

// CollisionResult describes the most severe conflict found for a slot.
type CollisionResult struct {
	Type             CollisionType `json:"type"`
	ConflictingEvent CalendarEvent `json:"conflicting_event"`
}
