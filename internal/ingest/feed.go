package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/dayplan/internal/models"
	"github.com/google/uuid"
)

// eventNamespace seeds deterministic event IDs so re-ingesting the same feed
// updates rows in place instead of duplicating them.
var eventNamespace = uuid.MustParse("b9c1f1a0-5f6e-4d6b-9a3e-7c2d8e4f0a11")

// Feed is one exported calendar feed: a flat list of events, typically a sync
// job's JSON dump of a single calendar.
type Feed struct {
	Source string      `json:"source,omitempty"`
	Events []FeedEvent `json:"events"`
}

// FeedEvent is one row of a calendar export. Start and End are day-local
// HH:MM and may be empty for all-day events. Busy mirrors the upstream
// calendar's free/busy flag.
type FeedEvent struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	AllDay bool   `json:"all_day,omitempty"`
	Busy   bool   `json:"busy"`
	Source string `json:"source,omitempty"`
}

// ParseFeed decodes a feed document without validating its rows; bad rows
// are reported per-event during conversion.
func ParseFeed(data []byte) (*Feed, error) {
	var feed Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return &feed, nil
}

// Validate checks one feed row for the fields conversion needs.
func (e FeedEvent) Validate() error {
	if e.Title == "" {
		return fmt.Errorf("missing title")
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return fmt.Errorf("bad date %q", e.Date)
	}
	if e.AllDay {
		return nil
	}
	start, err := models.ParseClockTime(e.Start)
	if err != nil {
		return fmt.Errorf("bad start %q", e.Start)
	}
	end, err := models.ParseClockTime(e.End)
	if err != nil {
		return fmt.Errorf("bad end %q", e.End)
	}
	if end <= start {
		return fmt.Errorf("end %s not after start %s", e.End, e.Start)
	}
	return nil
}

// EventID derives the stable identity for a feed row: the upstream ID when
// the export carries one, otherwise a content hash of the row's slot.
func (e FeedEvent) EventID(source string) uuid.UUID {
	key := e.ID
	if key == "" {
		key = fmt.Sprintf("%s|%s|%s|%s", e.Title, e.Date, e.Start, e.End)
	}
	return uuid.NewSHA1(eventNamespace, []byte(source+"/"+key))
}

// sourceOf resolves a row's source: the row's own tag, then the feed-level
// tag, then the fallback supplied by the caller.
func (e FeedEvent) sourceOf(feedSource, fallback string) string {
	switch {
	case e.Source != "":
		return e.Source
	case feedSource != "":
		return feedSource
	default:
		return fallback
	}
}
