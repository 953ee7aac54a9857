package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/dayplan/internal/engine"
	"github.com/claude/dayplan/internal/ingest"
	"github.com/claude/dayplan/internal/models"
	"github.com/claude/dayplan/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"tailscale.com/client/tailscale"
)

// Store is the direct storage surface the handlers use alongside the engine:
// workout lookup for select, the transition log, and focus writes.
type Store interface {
	GetWorkout(ctx context.Context, workoutID uuid.UUID, userID int) (*models.Workout, error)
	TransitionsOn(ctx context.Context, userID int, date string) ([]storage.StoredTransition, error)
	SetWeeklyFocus(ctx context.Context, userID int, date string, f models.WeeklyFocus) error
}

// FeedIngester accepts parsed calendar feeds.
type FeedIngester interface {
	Ingest(ctx context.Context, feed *ingest.Feed, userID int, fallbackSource string) (*ingest.Result, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *engine.Service
	store  Store
	feeds  FeedIngester
	log    *slog.Logger
	apiKey string
	router chi.Router
	lc     *tailscale.LocalClient
}

// New creates a new Server with all routes configured.
func New(svc *engine.Service, store Store, feeds FeedIngester, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		store:  store,
		feeds:  feeds,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution to the tailnet. Safe to call
// after New; the identity middleware reads the client per-request.
func (s *Server) SetTailscale(lc *tailscale.LocalClient) {
	s.lc = lc
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Ingest endpoint (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/calendar", s.handleIngestCalendar)
	})

	// Day decision endpoints (no auth — tsnet handles access)
	s.router.Route("/api/v1/day/{date}", func(r chi.Router) {
		r.Get("/anchor", s.handleAnchor)
		r.Get("/events", s.handleDayEvents)
		r.Get("/transitions", s.handleTransitions)
		r.Post("/workout/start", s.handleStart)
		r.Post("/workout/reschedule", s.handleReschedule)
		r.Post("/workout/shorten", s.handleShorten)
		r.Post("/workout/complete", s.handleComplete)
		r.Post("/workout/cancel", s.handleCancel)
		r.Post("/workout/select", s.handleSelect)
	})

	s.router.Get("/api/v1/focus", s.handleFocus)
	s.router.Post("/api/v1/focus", s.handleSetFocus)
	s.router.Get("/api/v1/me", s.handleMe)
}
