package models

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a trainable unit. The set is closed; it mirrors the
// training taxonomy of the upstream coaching platform.
type Category string

const (
	CategoryTechnique   Category = "technique"
	CategorySwing       Category = "swing"
	CategoryPlay        Category = "play"
	CategoryCompetition Category = "competition"
	CategoryPhysical    Category = "physical"
	CategoryMental      Category = "mental"
)

// KnownCategory reports whether c is one of the closed category set.
func KnownCategory(c Category) bool {
	switch c {
	case CategoryTechnique, CategorySwing, CategoryPlay,
		CategoryCompetition, CategoryPhysical, CategoryMental:
		return true
	}
	return false
}

// WorkoutStatus is the lifecycle state of a workout.
type WorkoutStatus string

const (
	StatusScheduled  WorkoutStatus = "scheduled"
	StatusInProgress WorkoutStatus = "in_progress"
	StatusCompleted  WorkoutStatus = "completed"
	StatusCancelled  WorkoutStatus = "cancelled"
)

// Workout is a trainable unit placed (or suggested) on a day's schedule.
// It is mutated only through engine transitions.
type Workout struct {
	ID            uuid.UUID     `json:"id"`
	UserID        int           `json:"user_id"`
	Name          string        `json:"name"`
	Category      Category      `json:"category"`
	Duration      int           `json:"duration_min"`
	ScheduledDate string        `json:"scheduled_date,omitempty"` // YYYY-MM-DD
	ScheduledTime *ClockTime    `json:"scheduled_time,omitempty"`
	Status        WorkoutStatus `json:"status"`
	IsRecommended bool          `json:"is_recommended"`
	Location      string        `json:"location,omitempty"`
	Description   string        `json:"description,omitempty"`
	StartedAt     *time.Time    `json:"started_at,omitempty"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// Planned reports whether the workout has a confirmed slot on the day.
func (w *Workout) Planned() bool {
	return w.ScheduledTime != nil
}

// EndTime returns the slot end, valid only when the workout is planned.
func (w *Workout) EndTime() ClockTime {
	if w.ScheduledTime == nil {
		return 0
	}
	return w.ScheduledTime.Add(w.Duration)
}
