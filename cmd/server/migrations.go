package main

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/slatefield/deckgen-api/internal/config"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// migrationTableName is the table goose uses to track applied migrations.
const migrationTableName = "schema_migrations"

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct{}

// Printf forwards goose messages to slog.Info.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf forwards goose error messages to slog.Error. Unlike the standard
// Fatalf behavior it does NOT call os.Exit; the error is returned to main,
// which owns the exit.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// isValidMigrationCommand reports whether the command is one runMigrations
// supports. Migrations ship embedded in the binary, so there is no create
// command here; new migrations are added to cmd/server/migrations.
func isValidMigrationCommand(command string) bool {
	switch command {
	case "up", "down", "status", "version":
		return true
	default:
		return false
	}
}

// runMigrations executes the requested migration command against the
// configured database using the migration files embedded in the binary.
func runMigrations(cfg *config.Config, command string) error {
	if !isValidMigrationCommand(command) {
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, status, or version)",
			command,
		)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf(
			"database URL is required for migrations: set DECKGEN_DATABASE_URL or database.url",
		)
	}

	log := slog.Default().With("component", "migrations", "command", command)
	startTime := time.Now()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database connection", "error", closeErr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	goose.SetLogger(&slogGooseLogger{})
	goose.SetTableName(migrationTableName)
	goose.SetBaseFS(embeddedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	log.Info("executing migration command")

	switch command {
	case "up":
		err = goose.Up(db, "migrations")
	case "down":
		err = goose.Down(db, "migrations")
	case "status":
		err = goose.Status(db, "migrations")
	case "version":
		err = goose.Version(db, "migrations")
	}
	if err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	log.Info("migration command completed",
		"duration_ms", time.Since(startTime).Milliseconds())
	return nil
}
