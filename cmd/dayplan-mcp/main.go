package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/claude/dayplan/internal/config"
	"github.com/claude/dayplan/internal/engine"
	"github.com/claude/dayplan/internal/mcp"
	"github.com/claude/dayplan/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "DayPlan server URL for remote mode (e.g. https://dayplan.tail1234.ts.net)")
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("dayplan-mcp", Version)
		return
	}

	// Logs go to stderr: stdout carries the MCP protocol stream.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource

	if *serverURL != "" {
		// Remote mode: tools proxy to a running DayPlan server over REST.
		ds = mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"))
		log.Info("MCP remote mode", "server", *serverURL)
	} else {
		// Local mode: connect straight to the database.
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		svc := engine.New(db, db, db, db, log)
		ds = mcp.NewLocal(svc, db)
		log.Info("MCP local mode", "database", cfg.Database.Host)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
