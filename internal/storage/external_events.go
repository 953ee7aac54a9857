package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/dayplan/internal/models"
)

// UpsertExternalEvents batch-upserts imported calendar events. Event IDs are
// deterministic per (source, external id), so re-ingesting a feed updates in
// place. Returns the number of rows written.
func (db *DB) UpsertExternalEvents(ctx context.Context, events []models.ExternalEvent) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}

	query := `INSERT INTO external_events (id, user_id, title, event_date, start_min, end_min, all_day, collision, source) VALUES `
	args := make([]any, 0, len(events)*9)
	valueStrings := make([]string, 0, len(events))

	for i, e := range events {
		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args, e.ID, e.UserID, e.Title, e.Date, int(e.StartTime), int(e.EndTime),
			e.AllDay, e.Collision, e.Source)
	}

	query += strings.Join(valueStrings, ",") + ` ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title, event_date = EXCLUDED.event_date,
		start_min = EXCLUDED.start_min, end_min = EXCLUDED.end_min,
		all_day = EXCLUDED.all_day, collision = EXCLUDED.collision,
		updated_at = NOW()`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting external events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExternalEventsOn retrieves imported events on a day, ordered by start time.
func (db *DB) ExternalEventsOn(ctx context.Context, userID int, date string) ([]models.ExternalEvent, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, title, event_date, start_min, end_min, all_day, collision, source
		 FROM external_events
		 WHERE user_id = $1 AND event_date = $2
		 ORDER BY all_day DESC, start_min ASC`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying external events: %w", err)
	}
	defer rows.Close()

	var result []models.ExternalEvent
	for rows.Next() {
		var (
			e          models.ExternalEvent
			date       time.Time
			start, end int
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &date, &start, &end,
			&e.AllDay, &e.Collision, &e.Source); err != nil {
			return nil, fmt.Errorf("scanning external event: %w", err)
		}
		e.Date = date.Format("2006-01-02")
		e.StartTime = models.ClockTime(start)
		e.EndTime = models.ClockTime(end)
		result = append(result, e)
	}
	return result, rows.Err()
}
