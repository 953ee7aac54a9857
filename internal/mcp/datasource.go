package mcp

import (
	"context"

	"github.com/claude/dayplan/internal/engine"
	"github.com/claude/dayplan/internal/models"
	"github.com/claude/dayplan/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the decision engine for MCP tools. Local (direct
// engine + DB) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	Resolve(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error)
	DayEvents(ctx context.Context, userID int, date string) ([]models.CalendarEvent, error)
	Focus(ctx context.Context, userID int, date string) (*models.WeeklyFocus, error)
	Start(ctx context.Context, userID int, date string, source engine.StartSource) (models.DecisionAnchorData, error)
	Reschedule(ctx context.Context, userID int, date string, option models.RescheduleOption) (models.DecisionAnchorData, error)
	Shorten(ctx context.Context, userID int, date string, option models.ShortenOption) (models.DecisionAnchorData, error)
	Complete(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error)
	Cancel(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error)
	Select(ctx context.Context, userID int, date string, workoutID uuid.UUID) (models.DecisionAnchorData, error)
}

// Local implements DataSource against the in-process engine and database.
type Local struct {
	*engine.Service
	db *storage.DB
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource over a local engine service and its store.
func NewLocal(svc *engine.Service, db *storage.DB) *Local {
	return &Local{Service: svc, db: db}
}

// Select looks the workout up in the store and promotes it through the
// engine.
func (l *Local) Select(ctx context.Context, userID int, date string, workoutID uuid.UUID) (models.DecisionAnchorData, error) {
	w, err := l.db.GetWorkout(ctx, workoutID, userID)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	if w == nil {
		return models.DecisionAnchorData{}, &engine.Error{Code: engine.CodeNotFound, Message: "workout " + workoutID.String() + " not found"}
	}
	return l.SelectWorkout(ctx, userID, date, w)
}
