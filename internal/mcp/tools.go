package mcp

import (
	"context"
	"time"

	"github.com/claude/dayplan/internal/engine"
	"github.com/claude/dayplan/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// dateOrToday validates a YYYY-MM-DD argument, defaulting to today.
func dateOrToday(s string) (string, error) {
	if s == "" {
		return time.Now().Format("2006-01-02"), nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", err
	}
	return s, nil
}

// --- Tool definitions ---

var toolGetDayDecision = mcp.NewTool("get_day_decision",
	mcp.WithDescription("Resolve the day's training decision: the recommended workout, its state (scheduled, unscheduled, in progress, collision, completed or none), badge, any conflicting calendar event, and the weekly focus."),
	mcp.WithString("date", mcp.Description("Day to resolve (YYYY-MM-DD). Defaults to today.")),
)

var toolGetDayEvents = mcp.NewTool("get_day_events",
	mcp.WithDescription("List the day's full schedule: scheduled workouts plus imported calendar events, ordered by start time."),
	mcp.WithString("date", mcp.Description("Day to list (YYYY-MM-DD). Defaults to today.")),
)

var toolGetWeeklyFocus = mcp.NewTool("get_weekly_focus",
	mcp.WithDescription("Get the training focus for the week containing a date, with target and completed minutes."),
	mcp.WithString("date", mcp.Description("Any day inside the week (YYYY-MM-DD). Defaults to today.")),
)

var toolStartWorkout = mcp.NewTool("start_workout",
	mcp.WithDescription("Start the day's recommended workout. Fails if the workout is already running, completed, or blocked by a hard calendar conflict."),
	mcp.WithString("date", mcp.Description("Day of the workout (YYYY-MM-DD). Defaults to today.")),
)

var toolRescheduleWorkout = mcp.NewTool("reschedule_workout",
	mcp.WithDescription("Move the recommended workout's time slot. Either delay it by 15, 30 or 60 minutes from now, or give an explicit HH:MM time."),
	mcp.WithString("date", mcp.Description("Day of the workout (YYYY-MM-DD). Defaults to today.")),
	mcp.WithNumber("delay_minutes", mcp.Description("Delay from now in minutes: 15, 30 or 60."), mcp.Enum("15", "30", "60")),
	mcp.WithString("time", mcp.Description("Explicit new start time (HH:MM). Ignored when delay_minutes is given.")),
)

var toolShortenWorkout = mcp.NewTool("shorten_workout",
	mcp.WithDescription("Set the recommended workout's duration to 45, 30 or 15 minutes. Shortening can clear a calendar conflict."),
	mcp.WithString("date", mcp.Description("Day of the workout (YYYY-MM-DD). Defaults to today.")),
	mcp.WithNumber("duration", mcp.Required(), mcp.Description("New duration in minutes: 45, 30 or 15."), mcp.Enum("45", "30", "15")),
)

var toolCompleteWorkout = mcp.NewTool("complete_workout",
	mcp.WithDescription("Finish the in-progress workout, recording its actual duration."),
	mcp.WithString("date", mcp.Description("Day of the workout (YYYY-MM-DD). Defaults to today.")),
)

var toolCancelWorkout = mcp.NewTool("cancel_workout",
	mcp.WithDescription("Cancel the day's recommended workout. The day resolves to no recommendation unless a fallback exists."),
	mcp.WithString("date", mcp.Description("Day of the workout (YYYY-MM-DD). Defaults to today.")),
)

var toolSelectWorkout = mcp.NewTool("select_workout",
	mcp.WithDescription("Pick a stored workout as the day's recommendation. Only valid when the day has no scheduled recommendation."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("UUID of the workout to promote.")),
	mcp.WithString("date", mcp.Description("Target day (YYYY-MM-DD). Defaults to today.")),
)

// --- Tool handlers ---

// anchorResult renders a resolved anchor, or maps an engine failure to a
// tool error the model can act on.
func (h *handlers) anchorResult(tool string, anchor models.DecisionAnchorData, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if code := engine.CodeOf(err); code != "" {
			return mcp.NewToolResultError(err.Error()), nil
		}
		h.log.Error("mcp "+tool, "error", err)
		return mcp.NewToolResultError(tool + " failed: " + err.Error()), nil
	}
	return mcp.NewToolResultJSON(anchor)
}

func (h *handlers) getDayDecision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	anchor, err := h.ds.Resolve(ctx, UserIDFromContext(ctx), date)
	return h.anchorResult("get_day_decision", anchor, err)
}

func (h *handlers) getDayEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	events, err := h.ds.DayEvents(ctx, UserIDFromContext(ctx), date)
	if err != nil {
		h.log.Error("mcp get_day_events", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return mcp.NewToolResultJSON(events)
}

func (h *handlers) getWeeklyFocus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	focus, err := h.ds.Focus(ctx, UserIDFromContext(ctx), date)
	if err != nil {
		h.log.Error("mcp get_weekly_focus", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if focus == nil {
		return mcp.NewToolResultText("no focus set for this week"), nil
	}
	return mcp.NewToolResultJSON(focus)
}

func (h *handlers) startWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	anchor, err := h.ds.Start(ctx, UserIDFromContext(ctx), date, engine.SourceDetailPanel)
	return h.anchorResult("start_workout", anchor, err)
}

func (h *handlers) rescheduleWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}

	var option models.RescheduleOption
	if delay := req.GetInt("delay_minutes", 0); delay > 0 {
		option = models.RescheduleOption{Type: models.RescheduleDelay, Minutes: delay}
	} else if at := req.GetString("time", ""); at != "" {
		option = models.RescheduleOption{Type: models.RescheduleSpecificTime, Time: at}
	} else {
		return mcp.NewToolResultError("either delay_minutes or time is required"), nil
	}

	anchor, err := h.ds.Reschedule(ctx, UserIDFromContext(ctx), date, option)
	return h.anchorResult("reschedule_workout", anchor, err)
}

func (h *handlers) shortenWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	duration, err := req.RequireInt("duration")
	if err != nil {
		return mcp.NewToolResultError("duration parameter is required"), nil
	}
	anchor, err := h.ds.Shorten(ctx, UserIDFromContext(ctx), date, models.ShortenOption(duration))
	return h.anchorResult("shorten_workout", anchor, err)
}

func (h *handlers) completeWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	anchor, err := h.ds.Complete(ctx, UserIDFromContext(ctx), date)
	return h.anchorResult("complete_workout", anchor, err)
}

func (h *handlers) cancelWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	anchor, err := h.ds.Cancel(ctx, UserIDFromContext(ctx), date)
	return h.anchorResult("cancel_workout", anchor, err)
}

func (h *handlers) selectWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := dateOrToday(req.GetString("date", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD"), nil
	}
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("workout_id must be a UUID"), nil
	}
	anchor, err := h.ds.Select(ctx, UserIDFromContext(ctx), date, workoutID)
	return h.anchorResult("select_workout", anchor, err)
}
