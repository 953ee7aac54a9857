package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/dayplan/internal/models"
	"github.com/claude/dayplan/internal/storage"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	EventsReceived int      `json:"events_received"`
	EventsWritten  int64    `json:"events_written"`
	EventsRejected int      `json:"events_rejected"`
	RejectedTitles []string `json:"rejected_titles,omitempty"`
	Message        string   `json:"message,omitempty"`
}

// Provider ingests external calendar feeds into the database.
type Provider struct {
	db        *storage.DB
	log       *slog.Logger
	overrides SeverityOverrides
}

// NewProvider creates a calendar feed ingest provider. overrides may be nil.
func NewProvider(db *storage.DB, log *slog.Logger, overrides SeverityOverrides) *Provider {
	return &Provider{db: db, log: log, overrides: overrides}
}

// Ingest converts a parsed feed into external events and upserts them for the
// given user. Rows that fail validation are skipped and reported, not fatal.
func (p *Provider) Ingest(ctx context.Context, feed *Feed, userID int, fallbackSource string) (*Result, error) {
	result := &Result{}

	events := make([]models.ExternalEvent, 0, len(feed.Events))
	for _, row := range feed.Events {
		result.EventsReceived++
		if err := row.Validate(); err != nil {
			p.log.Warn("skipping feed row", "title", row.Title, "error", err)
			result.EventsRejected++
			result.RejectedTitles = append(result.RejectedTitles, row.Title)
			continue
		}
		events = append(events, ConvertEvent(row, feed.Source, fallbackSource, userID, p.overrides))
	}

	written, err := p.db.UpsertExternalEvents(ctx, events)
	if err != nil {
		return result, fmt.Errorf("writing events: %w", err)
	}
	result.EventsWritten = written

	if result.EventsRejected > 0 {
		result.Message = fmt.Sprintf("%d of %d events were rejected; accepted events are stored.",
			result.EventsRejected, result.EventsReceived)
	}
	return result, nil
}

// ConvertEvent maps one validated feed row to the stored event shape,
// classifying its collision severity at ingestion time.
func ConvertEvent(e FeedEvent, feedSource, fallbackSource string, userID int, overrides SeverityOverrides) models.ExternalEvent {
	source := e.sourceOf(feedSource, fallbackSource)
	ev := models.ExternalEvent{
		ID:        e.EventID(source),
		UserID:    userID,
		Title:     e.Title,
		Date:      e.Date,
		AllDay:    e.AllDay,
		Collision: Classify(e, source, overrides),
		Source:    source,
	}
	if e.AllDay {
		ev.EndTime = models.ClockTime(models.MinutesPerDay)
		return ev
	}
	// Validated above; parse cannot fail here.
	ev.StartTime, _ = models.ParseClockTime(e.Start)
	ev.EndTime, _ = models.ParseClockTime(e.End)
	return ev
}
