// Package main is the entry point for the bloglist server.
//
// The main package is kept minimal. Its job is to:
// 1. Read configuration (defaults, optional .env file, environment)
// 2. Create the logger
// 3. Build the server and start it
//
// All actual logic lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/bloglist/internal/config"
	"github.com/sakif/bloglist/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// BLOGLIST_CONFIG points at a config file; by default a .env next to the
	// binary is used when present. Environment variables always win.
	configPath := os.Getenv("BLOGLIST_CONFIG")
	if configPath == "" {
		configPath = ".env"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Text handler on stdout at the configured level. SetDefault makes the
	// package-level slog functions (used by the response helpers) share it.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll is a no-op when the directory exists (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
