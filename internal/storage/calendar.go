package storage

import (
	"context"

	"github.com/claude/dayplan/internal/models"
)

// DayEvents returns the day's full schedule: scheduled workouts plus imported
// external events, ordered by start time with slotless entries first.
func (db *DB) DayEvents(ctx context.Context, userID int, date string) ([]models.CalendarEvent, error) {
	workouts, err := db.WorkoutsOn(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	externals, err := db.ExternalEventsOn(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	events := make([]models.CalendarEvent, 0, len(workouts)+len(externals))
	for i := range workouts {
		events = append(events, models.CalendarEvent{Workout: &workouts[i]})
	}
	for i := range externals {
		events = append(events, models.CalendarEvent{External: &externals[i]})
	}
	models.SortEvents(events)
	return events, nil
}
