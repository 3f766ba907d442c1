// Package main implements the entry point for the deckgen API server,
// which enriches presentation strawmen with generated slide content
// through a configurable generation backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/slatefield/deckgen-api/internal/config"
	"github.com/slatefield/deckgen-api/internal/platform/logger"
)

func main() {
	var (
		configPath string
		migrateCmd string
	)
	flag.StringVar(&configPath, "config", "",
		"path to a YAML config file (optional, environment variables take precedence)")
	flag.StringVar(&migrateCmd, "migrate", "",
		"run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(configPath, migrateCmd); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// run holds the fallible part of startup so main stays a thin exit-code
// wrapper. It loads configuration, sets up logging, and either executes a
// migration command or initializes and runs the application.
func run(configPath, migrateCmd string) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"provider", cfg.Generation.Provider,
		"deck_enabled", cfg.Deck.Enabled,
		"database_configured", cfg.Database.URL != "")

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd)
	}

	ctx := context.Background()

	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		if db != nil {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database connection", "error", closeErr)
			}
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// loadAppConfig loads configuration from the environment, optionally merged
// over a YAML file.
func loadAppConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}
