package engine

import (
	"context"
	"time"

	"github.com/claude/dayplan/internal/models"
	"github.com/google/uuid"
)

// RecommendationProvider supplies at most one candidate workout for a
// (user, day). A nil workout with nil error means no recommendation.
type RecommendationProvider interface {
	Recommendation(ctx context.Context, userID int, date string) (*models.Workout, error)
}

// CalendarProvider supplies the day's schedule: internal workouts plus
// imported external events, each external event pre-tagged hard or soft.
type CalendarProvider interface {
	DayEvents(ctx context.Context, userID int, date string) ([]models.CalendarEvent, error)
}

// FocusProvider supplies the week's training emphasis for the given day.
// Display context only.
type FocusProvider interface {
	WeeklyFocus(ctx context.Context, userID int, date string) (*models.WeeklyFocus, error)
}

// TransitionSink receives every committed schedule mutation together with
// its instrumentation record. The engine defines what is sent, not how it
// is stored or transmitted.
type TransitionSink interface {
	SaveWorkout(ctx context.Context, w *models.Workout) error

	// ReplaceRecommendation demotes previous (may be nil) and saves next as
	// one atomic write: on error neither workout has changed.
	ReplaceRecommendation(ctx context.Context, previous, next *models.Workout) error

	RecordTransition(ctx context.Context, rec TransitionRecord) error
}

// Action names a committed transition.
type Action string

const (
	ActionStart      Action = "start"
	ActionReschedule Action = "reschedule"
	ActionShorten    Action = "shorten"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionSelect     Action = "select"
)

// StartSource identifies which surface triggered a start.
type StartSource string

const (
	SourceDecisionAnchor StartSource = "decision_anchor"
	SourceTimeline       StartSource = "timeline"
	SourceDetailPanel    StartSource = "detail_panel"
)

// RescheduleReason distinguishes user-driven moves from collision fixes.
type RescheduleReason string

const (
	ReasonUserInitiated       RescheduleReason = "user_initiated"
	ReasonCollisionResolution RescheduleReason = "collision_resolution"
)

// TransitionRecord is one committed transition, carrying enough data to
// reconstruct the action without re-deriving it.
type TransitionRecord struct {
	UserID     int
	Date       string
	WorkoutID  uuid.UUID
	Action     Action
	OccurredAt time.Time
	Payload    any
}

// StartPayload instruments a start transition.
type StartPayload struct {
	Source           StartSource `json:"source"`
	Recommended      bool        `json:"recommended"`
	Planned          bool        `json:"planned"`
	DurationSelected int         `json:"duration_selected"`
}

// ReschedulePayload instruments a reschedule. FromTime is empty when the
// workout had no slot before the move (ghost slot placement).
type ReschedulePayload struct {
	FromTime string           `json:"from_time,omitempty"`
	ToTime   string           `json:"to_time"`
	Reason   RescheduleReason `json:"reason"`
}

// ShortenPayload instruments a shorten.
type ShortenPayload struct {
	OldDuration int `json:"old_duration"`
	NewDuration int `json:"new_duration"`
}

// CompletePayload instruments a completion. DurationActual is whole minutes
// between start and completion, rounded down.
type CompletePayload struct {
	DurationActual int  `json:"duration_actual"`
	Recommended    bool `json:"recommended"`
	Planned        bool `json:"planned"`
}

// CancelPayload instruments a cancellation.
type CancelPayload struct {
	Recommended bool `json:"recommended"`
	Planned     bool `json:"planned"`
}

// SelectPayload instruments a user-chosen workout selection.
type SelectPayload struct {
	WorkoutID uuid.UUID       `json:"workout_id"`
	Category  models.Category `json:"category"`
	Duration  int             `json:"duration_selected"`
}
