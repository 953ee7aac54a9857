package ingest

import "github.com/claude/dayplan/internal/models"

// SeverityOverrides maps a calendar source to a fixed collision severity,
// taking precedence over the free/busy flag. Used for sources whose busy
// flag is unreliable (some sync jobs mark everything busy).
type SeverityOverrides map[string]models.CollisionType

// Classify assigns the collision severity an event will carry from ingestion
// on: busy events block the slot (hard), free or tentative ones are
// advisory (soft).
func Classify(e FeedEvent, source string, overrides SeverityOverrides) models.CollisionType {
	if severity, ok := overrides[source]; ok {
		return severity
	}
	if e.Busy {
		return models.CollisionHard
	}
	return models.CollisionSoft
}
