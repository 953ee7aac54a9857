package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/dayplan/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const workoutColumns = `id, user_id, name, category, duration_min, scheduled_date,
	 scheduled_time_min, status, is_recommended, location, description,
	 started_at, completed_at`

// execer is the write surface shared by *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SaveWorkout inserts or updates a workout row. Transitions call this for
// every committed mutation, so the write is a full upsert.
func (db *DB) SaveWorkout(ctx context.Context, w *models.Workout) error {
	return saveWorkout(ctx, db.Pool, w)
}

func saveWorkout(ctx context.Context, q execer, w *models.Workout) error {
	_, err := q.Exec(ctx,
		`INSERT INTO workouts (id, user_id, name, category, duration_min, scheduled_date,
		 scheduled_time_min, status, is_recommended, location, description, started_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		 ON CONFLICT (id) DO UPDATE SET
		   name = $3, category = $4, duration_min = $5, scheduled_date = $6,
		   scheduled_time_min = $7, status = $8, is_recommended = $9,
		   location = $10, description = $11, started_at = $12, completed_at = $13,
		   updated_at = NOW()`,
		w.ID, w.UserID, w.Name, w.Category, w.Duration, nullDate(w.ScheduledDate),
		clockToMinutes(w.ScheduledTime), w.Status, w.IsRecommended,
		w.Location, w.Description, w.StartedAt, w.CompletedAt)
	if err != nil {
		return fmt.Errorf("saving workout: %w", err)
	}
	return nil
}

// ReplaceRecommendation swaps the day's active recommendation in one
// transaction: the previous workout (when present) is demoted and the next
// one saved as recommended. The writes roll back as a unit, so a failure
// leaves the previous recommendation untouched and the partial unique index
// on live recommendations never sees both rows.
func (db *DB) ReplaceRecommendation(ctx context.Context, previous, next *models.Workout) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning recommendation replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if previous != nil {
		_, err := tx.Exec(ctx,
			`UPDATE workouts SET is_recommended = FALSE, updated_at = NOW() WHERE id = $1`,
			previous.ID)
		if err != nil {
			return fmt.Errorf("demoting previous recommendation: %w", err)
		}
	}
	if err := saveWorkout(ctx, tx, next); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing recommendation replace: %w", err)
	}
	return nil
}

// Recommendation returns the day's active recommendation: the single
// recommended, non-cancelled workout, or nil when none exists.
func (db *DB) Recommendation(ctx context.Context, userID int, date string) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE user_id = $1 AND scheduled_date = $2
		   AND is_recommended AND status <> 'cancelled'`,
		userID, date)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying recommendation: %w", err)
	}
	return w, nil
}

// WorkoutsOn retrieves all non-cancelled workouts scheduled on a day.
func (db *DB) WorkoutsOn(ctx context.Context, userID int, date string) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE user_id = $1 AND scheduled_date = $2 AND status <> 'cancelled'
		 ORDER BY scheduled_time_min NULLS FIRST, name`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// GetWorkout retrieves a single workout by ID, scoped to a user. Returns nil
// when no row matches.
func (db *DB) GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.Workout, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+`
		 FROM workouts
		 WHERE id = $1 AND user_id = $2`,
		workoutID, userID)

	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout: %w", err)
	}
	return w, nil
}

func scanWorkout(row pgx.Row) (*models.Workout, error) {
	var (
		w         models.Workout
		date      *time.Time
		startMins *int
	)
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Category, &w.Duration, &date,
		&startMins, &w.Status, &w.IsRecommended, &w.Location, &w.Description,
		&w.StartedAt, &w.CompletedAt)
	if err != nil {
		return nil, err
	}
	if date != nil {
		w.ScheduledDate = date.Format("2006-01-02")
	}
	w.ScheduledTime = minutesToClock(startMins)
	return &w, nil
}

// nullDate maps an empty date string to SQL NULL.
func nullDate(date string) *string {
	if date == "" {
		return nil
	}
	return &date
}

func clockToMinutes(t *models.ClockTime) *int {
	if t == nil {
		return nil
	}
	m := int(*t)
	return &m
}

func minutesToClock(m *int) *models.ClockTime {
	if m == nil {
		return nil
	}
	t := models.ClockTime(*m)
	return &t
}
