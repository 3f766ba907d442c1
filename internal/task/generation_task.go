package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// Common errors
var (
	ErrNilExecutor     = errors.New("stage executor cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyRunID      = errors.New("run ID cannot be empty")
	ErrNilPresentation = errors.New("presentation cannot be nil")
)

// StageExecutor runs the generation stage for a run. Implemented by the
// presentation service; defined here so the task layer does not import it.
type StageExecutor interface {
	// ExecuteRun drives the stage for the given run and records the
	// outcome on the run record.
	ExecuteRun(ctx context.Context, runID uuid.UUID, presentation *domain.Presentation) error
}

// generationRunPayload represents the serialized data stored in the task
type generationRunPayload struct {
	RunID          uuid.UUID `json:"run_id"`
	PresentationID uuid.UUID `json:"presentation_id"`
	SlideCount     int       `json:"slide_count"`
}

// GenerationTask implements the Task interface for executing one
// content-generation stage run in the background.
type GenerationTask struct {
	id           uuid.UUID
	runID        uuid.UUID
	presentation *domain.Presentation
	executor     StageExecutor
	logger       *slog.Logger
	status       TaskStatus
}

// NewGenerationTask creates a task that will execute the stage for the
// given run when a worker picks it up.
func NewGenerationTask(
	runID uuid.UUID,
	presentation *domain.Presentation,
	executor StageExecutor,
	logger *slog.Logger,
) (*GenerationTask, error) {
	if executor == nil {
		return nil, ErrNilExecutor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if runID == uuid.Nil {
		return nil, ErrEmptyRunID
	}
	if presentation == nil {
		return nil, ErrNilPresentation
	}

	return &GenerationTask{
		id:           uuid.New(),
		runID:        runID,
		presentation: presentation,
		executor:     executor,
		logger:       logger.With("task_type", TaskTypeGenerationRun, "run_id", runID),
		status:       TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *GenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *GenerationTask) Type() string {
	return TaskTypeGenerationRun
}

// Payload returns the task data as a byte slice
func (t *GenerationTask) Payload() []byte {
	payload := generationRunPayload{
		RunID:          t.runID,
		PresentationID: t.presentation.ID,
		SlideCount:     t.presentation.SlideCount(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *GenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the generation stage for the task's run. Run record
// transitions are handled by the executor; the task tracks its own
// status for observability.
func (t *GenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting generation run task",
		"slide_count", t.presentation.SlideCount())

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	if err := t.executor.ExecuteRun(ctx, t.runID, t.presentation); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("generation run failed", "error", err)
		return fmt.Errorf("generation run failed: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("generation run task completed")
	return nil
}
