package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/dayplan/internal/ingest"
)

// Stats tracks import progress across a run.
type Stats struct {
	FilesTotal     int
	FilesImported  int
	FilesSkipped   int
	FilesErrored   int
	EventsReceived int
	EventsWritten  int64
	EventsRejected int
}

// Importer walks a directory of exported calendar feed files (*.json) and
// ingests the ones not yet recorded in the state database.
type Importer struct {
	provider *ingest.Provider
	state    *StateDB
	dir      string
	userID   int
	dryRun   bool
	log      *slog.Logger
	stats    Stats
}

// New creates an Importer. In dry-run mode the provider is never called and
// may be nil.
func New(provider *ingest.Provider, state *StateDB, dir string, userID int, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{
		provider: provider,
		state:    state,
		dir:      dir,
		userID:   userID,
		dryRun:   dryRun,
		log:      log,
	}
}

// Run executes the import pipeline. Per-file failures are counted and logged;
// only directory-level failures abort the run.
func (im *Importer) Run(ctx context.Context) (*Stats, error) {
	err := filepath.WalkDir(im.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		im.stats.FilesTotal++
		if err := im.importFile(ctx, path); err != nil {
			im.stats.FilesErrored++
			im.log.Error("import failed", "file", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return &im.stats, fmt.Errorf("walking %s: %w", im.dir, err)
	}
	return &im.stats, nil
}

func (im *Importer) importFile(ctx context.Context, path string) error {
	relPath, err := filepath.Rel(im.dir, path)
	if err != nil {
		relPath = path
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	done, err := im.state.IsImported(relPath, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if done {
		im.stats.FilesSkipped++
		im.log.Debug("already imported", "file", relPath)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	feed, err := ingest.ParseFeed(data)
	if err != nil {
		return err
	}

	if im.dryRun {
		im.stats.FilesImported++
		im.stats.EventsReceived += len(feed.Events)
		im.log.Info("would import", "file", relPath, "events", len(feed.Events))
		return nil
	}

	// The file's base name doubles as the fallback source tag.
	source := strings.TrimSuffix(filepath.Base(path), ".json")
	result, err := im.provider.Ingest(ctx, feed, im.userID, source)
	if err != nil {
		return err
	}

	if err := im.state.MarkImported(relPath, info.Size(), hash); err != nil {
		return fmt.Errorf("recording state: %w", err)
	}

	im.stats.FilesImported++
	im.stats.EventsReceived += result.EventsReceived
	im.stats.EventsWritten += result.EventsWritten
	im.stats.EventsRejected += result.EventsRejected
	im.log.Info("imported", "file", relPath,
		"received", result.EventsReceived, "written", result.EventsWritten, "rejected", result.EventsRejected)
	return nil
}
