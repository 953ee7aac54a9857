package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/dayplan/internal/engine"
	"github.com/google/uuid"
)

// Compile-time checks: *DB satisfies everything the engine consumes.
var (
	_ engine.RecommendationProvider = (*DB)(nil)
	_ engine.CalendarProvider       = (*DB)(nil)
	_ engine.FocusProvider          = (*DB)(nil)
	_ engine.TransitionSink         = (*DB)(nil)
)

// RecordTransition appends one committed transition to the instrumentation
// log. The action payload is stored as JSONB.
func (db *DB) RecordTransition(ctx context.Context, rec engine.TransitionRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", rec.Action, err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO transition_events (user_id, day, workout_id, action, occurred_at, payload)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.UserID, rec.Date, rec.WorkoutID, rec.Action, rec.OccurredAt, payload)
	if err != nil {
		return fmt.Errorf("recording %s transition: %w", rec.Action, err)
	}
	return nil
}

// StoredTransition is one row of the instrumentation log.
type StoredTransition struct {
	ID         int64           `json:"id"`
	UserID     int             `json:"user_id"`
	Day        string          `json:"day"`
	WorkoutID  uuid.UUID       `json:"workout_id"`
	Action     string          `json:"action"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// TransitionsOn retrieves the day's transition log in commit order.
func (db *DB) TransitionsOn(ctx context.Context, userID int, date string) ([]StoredTransition, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, day, workout_id, action, occurred_at, payload
		 FROM transition_events
		 WHERE user_id = $1 AND day = $2
		 ORDER BY id ASC`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var result []StoredTransition
	for rows.Next() {
		var (
			t   StoredTransition
			day time.Time
		)
		if err := rows.Scan(&t.ID, &t.UserID, &day, &t.WorkoutID, &t.Action, &t.OccurredAt, &t.Payload); err != nil {
			return nil, fmt.Errorf("scanning transition: %w", err)
		}
		t.Day = day.Format("2006-01-02")
		result = append(result, t)
	}
	return result, rows.Err()
}
