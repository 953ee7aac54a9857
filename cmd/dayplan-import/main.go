package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/dayplan/internal/config"
	"github.com/claude/dayplan/internal/importer"
	"github.com/claude/dayplan/internal/ingest"
	"github.com/claude/dayplan/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	feedDir := flag.String("path", "", "path to directory of calendar feed JSON files (required)")
	userID := flag.Int("user", 1, "user ID to attach imported events to")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	stateDir := flag.String("state-dir", "", "directory for import state database (default ~/.dayplan)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("dayplan-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *feedDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: dayplan-import -config config.yaml -path /path/to/feeds [-user N] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Verify the feed directory exists
	info, err := os.Stat(*feedDir)
	if err != nil || !info.IsDir() {
		log.Error("feed path does not exist or is not a directory", "path", *feedDir)
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".dayplan")
	}
	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
	}

	// Connect database (nil provider in dry-run mode)
	var provider *ingest.Provider
	if !*dryRun {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		dsn := cfg.Database.DSN()

		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		provider = ingest.NewProvider(db, log, nil)
	}

	// Run import
	imp := importer.New(provider, state, *feedDir, *userID, *dryRun, log)
	stats, err := imp.Run(ctx)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	if stats == nil {
		return
	}
	log.Info("import stats",
		"files_total", stats.FilesTotal,
		"files_imported", stats.FilesImported,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"events_received", stats.EventsReceived,
		"events_written", stats.EventsWritten,
		"events_rejected", stats.EventsRejected,
	)
}
