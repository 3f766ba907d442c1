package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/platform/logger"
	"github.com/slatefield/deckgen-api/internal/store"
)

// runInterruptedMessage is stored on runs that were still in flight when
// the process restarted.
const runInterruptedMessage = "run interrupted by service restart"

// PostgresRunStore implements the store.RunStore interface using a
// PostgreSQL database as the storage backend.
type PostgresRunStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRunStore creates a new PostgreSQL implementation of the
// RunStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is
// nil, a default logger is used.
func NewPostgresRunStore(db store.DBTX, logger *slog.Logger) *PostgresRunStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRunStore{
		db:     db,
		logger: logger.With(slog.String("component", "run_store")),
	}
}

// Ensure PostgresRunStore implements store.RunStore interface
var _ store.RunStore = (*PostgresRunStore)(nil)

// Create implements store.RunStore.Create
// It saves a new run record, handling record validation.
// Returns store.ErrDuplicate if a run with the same ID already exists.
func (s *PostgresRunStore) Create(ctx context.Context, run *store.RunRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := run.Validate(); err != nil {
		log.Warn("run validation failed during create",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		return err
	}

	query := `
		INSERT INTO generation_runs
			(id, status, total_slides, successful_slides, failed_slides,
			 content_generated, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		run.ID,
		run.Status,
		run.TotalSlides,
		run.SuccessfulSlides,
		run.FailedSlides,
		run.ContentGenerated,
		run.ErrorMessage,
		run.CreatedAt,
		run.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate run ID during create",
				slog.String("run_id", run.ID.String()))
			return fmt.Errorf("%w: run with ID %s", store.ErrDuplicate, run.ID)
		}

		log.Error("failed to create run",
			slog.String("error", err.Error()),
			slog.String("run_id", run.ID.String()))
		return MapError(err)
	}

	log.Debug("run created",
		slog.String("run_id", run.ID.String()),
		slog.String("status", string(run.Status)))
	return nil
}

// GetByID implements store.RunStore.GetByID
// Returns store.ErrRunNotFound if the run does not exist.
func (s *PostgresRunStore) GetByID(ctx context.Context, id uuid.UUID) (*store.RunRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, status, total_slides, successful_slides, failed_slides,
		       content_generated, error_message, created_at, updated_at
		FROM generation_runs
		WHERE id = $1
	`

	var run store.RunRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.Status,
		&run.TotalSlides,
		&run.SuccessfulSlides,
		&run.FailedSlides,
		&run.ContentGenerated,
		&run.ErrorMessage,
		&run.CreatedAt,
		&run.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("run not found", slog.String("run_id", id.String()))
			return nil, store.ErrRunNotFound
		}

		log.Error("failed to get run",
			slog.String("error", err.Error()),
			slog.String("run_id", id.String()))
		return nil, MapError(err)
	}

	return &run, nil
}

// UpdateStatus implements store.RunStore.UpdateStatus
// The error message is persisted only for failed transitions.
func (s *PostgresRunStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status store.RunStatus,
	errorMessage string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !store.IsValidRunStatus(status) {
		return fmt.Errorf("%w: %s", store.ErrInvalidRunStatus, status)
	}

	if status != store.RunStatusFailed {
		errorMessage = ""
	}

	query := `
		UPDATE generation_runs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, status, errorMessage, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update run status",
			slog.String("error", err.Error()),
			slog.String("run_id", id.String()),
			slog.String("status", string(status)))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrRunNotFound
	}

	log.Debug("run status updated",
		slog.String("run_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// RecordResult implements store.RunStore.RecordResult
// It folds the stage result counters into the run and marks it completed.
func (s *PostgresRunStore) RecordResult(
	ctx context.Context,
	id uuid.UUID,
	result *domain.StageResult,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE generation_runs
		SET status = $1, total_slides = $2, successful_slides = $3,
		    failed_slides = $4, content_generated = $5, error_message = '',
		    updated_at = $6
		WHERE id = $7
	`
	res, err := s.db.ExecContext(
		ctx,
		query,
		store.RunStatusCompleted,
		result.TotalSlides,
		result.SuccessfulSlides,
		result.FailedSlides,
		result.ContentGenerated,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to record run result",
			slog.String("error", err.Error()),
			slog.String("run_id", id.String()))
		return MapError(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrRunNotFound
	}

	log.Info("run result recorded",
		slog.String("run_id", id.String()),
		slog.Int("total_slides", result.TotalSlides),
		slog.Int("successful_slides", result.SuccessfulSlides),
		slog.Int("failed_slides", result.FailedSlides),
		slog.Bool("content_generated", result.ContentGenerated))
	return nil
}

// MarkInterruptedRuns implements store.RunStore.MarkInterruptedRuns
// It transitions every pending or running run to failed, returning the
// number of runs affected.
func (s *PostgresRunStore) MarkInterruptedRuns(ctx context.Context) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE generation_runs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE status IN ($4, $5)
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		store.RunStatusFailed,
		runInterruptedMessage,
		time.Now().UTC(),
		store.RunStatusPending,
		store.RunStatusRunning,
	)
	if err != nil {
		log.Error("failed to mark interrupted runs",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows > 0 {
		log.Warn("marked interrupted runs as failed", slog.Int64("count", rows))
	}
	return rows, nil
}

// WithTx implements store.RunStore.WithTx
// It returns a store bound to the given transaction, preserving the logger.
func (s *PostgresRunStore) WithTx(tx *sql.Tx) store.RunStore {
	return &PostgresRunStore{
		db:     tx,
		logger: s.logger,
	}
}
