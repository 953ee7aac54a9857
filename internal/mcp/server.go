package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("dayplan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("dayplan training decision server. Resolve a day's training recommendation, inspect the schedule, and drive the workout through start, reschedule, shorten, complete, cancel and select. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetDayDecision, Handler: h.getDayDecision},
		server.ServerTool{Tool: toolGetDayEvents, Handler: h.getDayEvents},
		server.ServerTool{Tool: toolGetWeeklyFocus, Handler: h.getWeeklyFocus},
		server.ServerTool{Tool: toolStartWorkout, Handler: h.startWorkout},
		server.ServerTool{Tool: toolRescheduleWorkout, Handler: h.rescheduleWorkout},
		server.ServerTool{Tool: toolShortenWorkout, Handler: h.shortenWorkout},
		server.ServerTool{Tool: toolCompleteWorkout, Handler: h.completeWorkout},
		server.ServerTool{Tool: toolCancelWorkout, Handler: h.cancelWorkout},
		server.ServerTool{Tool: toolSelectWorkout, Handler: h.selectWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resToday, Handler: h.today},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resToday = mcp.NewResource(
	"dayplan://today",
	"Today",
	mcp.WithResourceDescription("Today's resolved decision anchor plus the full day schedule"),
	mcp.WithMIMEType("application/json"),
)
