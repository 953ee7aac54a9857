package models

// DayViewState is the resolved execution state of a (user, day). Exactly one
// state is active per resolution.
type DayViewState string

const (
	StateDefault          DayViewState = "S0_DEFAULT"
	StateScheduled        DayViewState = "S1_SCHEDULED"
	StateUnscheduled      DayViewState = "S2_UNSCHEDULED"
	StateNoRecommendation DayViewState = "S3_NO_RECOMMENDATION"
	StateCollision        DayViewState = "S4_COLLISION"
	StateInProgress       DayViewState = "S5_IN_PROGRESS"
	StateCompleted        DayViewState = "S6_COMPLETED"
)

// Badge is the single semantic label carried by a resolved day. When several
// labels could apply, the highest-ranked one wins.
type Badge string

const (
	BadgeInProgress  Badge = "in_progress"
	BadgeRecommended Badge = "recommended"
	BadgeCompleted   Badge = "completed"
	BadgePlanned     Badge = "planned"
	BadgeSuggested   Badge = "suggested"
	BadgeNone        Badge = ""
)

// badgeRank encodes the display precedence as a total order:
// in_progress > recommended > completed > planned > suggested.
var badgeRank = map[Badge]int{
	BadgeInProgress:  5,
	BadgeRecommended: 4,
	BadgeCompleted:   3,
	BadgePlanned:     2,
	BadgeSuggested:   1,
	BadgeNone:        0,
}

// HighestBadge returns the highest-precedence badge among candidates.
func HighestBadge(candidates ...Badge) Badge {
	best := BadgeNone
	for _, b := range candidates {
		if badgeRank[b] > badgeRank[best] {
			best = b
		}
	}
	return best
}

// WorkoutBadge derives the applicable badges for a workout and collapses
// them to the authoritative one.
func WorkoutBadge(w *Workout) Badge {
	if w == nil {
		return BadgeNone
	}
	var candidates []Badge
	switch w.Status {
	case StatusInProgress:
		candidates = append(candidates, BadgeInProgress)
	case StatusCompleted:
		candidates = append(candidates, BadgeCompleted)
	}
	if w.IsRecommended {
		candidates = append(candidates, BadgeRecommended)
		if !w.Planned() {
			candidates = append(candidates, BadgeSuggested)
		}
	}
	if w.Planned() {
		candidates = append(candidates, BadgePlanned)
	}
	return HighestBadge(candidates...)
}

// WeeklyFocus summarizes the week's training emphasis. Display context only;
// it never feeds decision logic.
type WeeklyFocus struct {
	Title            string   `json:"title"`
	Category         Category `json:"category"`
	TargetMinutes    int      `json:"target_minutes"`
	CompletedMinutes int      `json:"completed_minutes"`
}

// DecisionAnchorData is the engine's resolved output for one (user, day).
// Collision is non-nil exactly when State is S4_COLLISION; ElapsedSeconds is
// non-nil exactly when State is S5_IN_PROGRESS.
type DecisionAnchorData struct {
	WeeklyFocus        string           `json:"weekly_focus"`
	RecommendedWorkout *Workout         `json:"recommended_workout,omitempty"`
	State              DayViewState     `json:"state"`
	Badge              Badge            `json:"badge,omitempty"`
	Collision          *CollisionResult `json:"collision,omitempty"`
	ElapsedSeconds     *int             `json:"elapsed_seconds,omitempty"`
}
