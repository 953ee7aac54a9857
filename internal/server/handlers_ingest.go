package server

import (
	"io"
	"net/http"

	"github.com/claude/dayplan/internal/ingest"
)

func (s *Server) handleIngestCalendar(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	feed, err := ingest.ParseFeed(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.feeds.Ingest(r.Context(), feed, userIDFromContext(r), "api")
	if err != nil {
		s.log.Error("calendar ingest error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
