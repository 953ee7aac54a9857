package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/dayplan/internal/models"
	"github.com/jackc/pgx/v5"
)

// WeeklyFocus returns the training focus for the ISO week containing date,
// or nil when none is set. CompletedMinutes aggregates completed workouts in
// the focus category over that week.
func (db *DB) WeeklyFocus(ctx context.Context, userID int, date string) (*models.WeeklyFocus, error) {
	var f models.WeeklyFocus
	err := db.Pool.QueryRow(ctx, `
		SELECT f.title, f.category, f.target_minutes,
		       COALESCE((
		         SELECT SUM(w.duration_min) FROM workouts w
		         WHERE w.user_id = f.user_id
		           AND w.category = f.category
		           AND w.status = 'completed'
		           AND w.scheduled_date >= f.week_start
		           AND w.scheduled_date < f.week_start + 7
		       ), 0)
		FROM weekly_focus f
		WHERE f.user_id = $1
		  AND f.week_start = date_trunc('week', $2::date)::date
	`, userID, date).Scan(&f.Title, &f.Category, &f.TargetMinutes, &f.CompletedMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying weekly focus: %w", err)
	}
	return &f, nil
}

// SetWeeklyFocus upserts the focus for the week containing date.
func (db *DB) SetWeeklyFocus(ctx context.Context, userID int, date string, f models.WeeklyFocus) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO weekly_focus (user_id, week_start, title, category, target_minutes)
		VALUES ($1, date_trunc('week', $2::date)::date, $3, $4, $5)
		ON CONFLICT (user_id, week_start) DO UPDATE SET
			title = $3, category = $4, target_minutes = $5, updated_at = NOW()
	`, userID, date, f.Title, f.Category, f.TargetMinutes)
	if err != nil {
		return fmt.Errorf("saving weekly focus: %w", err)
	}
	return nil
}
