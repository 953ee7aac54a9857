package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/dayplan/internal/engine"
	"github.com/claude/dayplan/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleAnchor(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	anchor, err := s.svc.Resolve(r.Context(), userIDFromContext(r), date)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

func (s *Server) handleDayEvents(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	events, err := s.svc.DayEvents(r.Context(), userIDFromContext(r), date)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	log, err := s.store.TransitionsOn(r.Context(), userIDFromContext(r), date)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

type startRequest struct {
	UserID int    `json:"user_id"`
	Source string `json:"source"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	var req startRequest
	if !decodeBody(w, r, &req) {
		return
	}
	source := engine.StartSource(req.Source)
	if source == "" {
		source = engine.SourceDecisionAnchor
	}
	anchor, err := s.svc.Start(r.Context(), s.effectiveUser(r, req.UserID), date, source)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

type rescheduleRequest struct {
	UserID  int    `json:"user_id"`
	Type    string `json:"type"`
	Minutes int    `json:"minutes,omitempty"`
	Time    string `json:"time,omitempty"`
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	var req rescheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	option := models.RescheduleOption{
		Type:    models.RescheduleKind(req.Type),
		Minutes: req.Minutes,
		Time:    req.Time,
	}
	anchor, err := s.svc.Reschedule(r.Context(), s.effectiveUser(r, req.UserID), date, option)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

type shortenRequest struct {
	UserID   int `json:"user_id"`
	Duration int `json:"duration"`
}

func (s *Server) handleShorten(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	var req shortenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	anchor, err := s.svc.Shorten(r.Context(), s.effectiveUser(r, req.UserID), date, models.ShortenOption(req.Duration))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

type userRequest struct {
	UserID int `json:"user_id"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	anchor, err := s.svc.Complete(r.Context(), s.effectiveUser(r, req.UserID), date)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	anchor, err := s.svc.Cancel(r.Context(), s.effectiveUser(r, req.UserID), date)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

type selectRequest struct {
	UserID    int    `json:"user_id"`
	WorkoutID string `json:"workout_id"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	date, ok := mustDate(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	workoutID, err := uuid.Parse(req.WorkoutID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout_id"})
		return
	}
	uid := s.effectiveUser(r, req.UserID)
	workout, err := s.store.GetWorkout(r.Context(), workoutID, uid)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if workout == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found", "code": "not_found"})
		return
	}
	anchor, err := s.svc.SelectWorkout(r.Context(), uid, date, workout)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, anchor)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("week")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week date, want YYYY-MM-DD"})
		return
	}
	focus, err := s.svc.Focus(r.Context(), userIDFromContext(r), date)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if focus == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no focus set for week", "code": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, focus)
}

type setFocusRequest struct {
	UserID        int    `json:"user_id"`
	Date          string `json:"date"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	TargetMinutes int    `json:"target_minutes"`
}

func (s *Server) handleSetFocus(w http.ResponseWriter, r *http.Request) {
	var req setFocusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
		return
	}
	if req.Title == "" || !models.KnownCategory(models.Category(req.Category)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and a known category are required"})
		return
	}
	focus := models.WeeklyFocus{
		Title:         req.Title,
		Category:      models.Category(req.Category),
		TargetMinutes: req.TargetMinutes,
	}
	if err := s.store.SetWeeklyFocus(r.Context(), s.effectiveUser(r, req.UserID), req.Date, focus); err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, focus)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

// effectiveUser prefers an explicit user_id in the request body, then the
// query/identity resolution.
func (s *Server) effectiveUser(r *http.Request, bodyUserID int) int {
	if bodyUserID > 0 {
		return bodyUserID
	}
	return userIDFromContext(r)
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	code := engine.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case engine.CodeInvalidTransition:
		status = http.StatusConflict
	case engine.CodeInvalidOption, engine.CodeInvalidSlot:
		status = http.StatusBadRequest
	case engine.CodeNotFound:
		status = http.StatusNotFound
	default:
		s.log.Error("internal error", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": string(code)})
}

func mustDate(w http.ResponseWriter, r *http.Request) (string, bool) {
	date := chi.URLParam(r, "date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD"})
		return "", false
	}
	return date, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
