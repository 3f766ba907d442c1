package task

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// GenerationTaskFactory creates GenerationTask instances bound to the
// stage executor.
type GenerationTaskFactory struct {
	executor StageExecutor
	logger   *slog.Logger
}

// NewGenerationTaskFactory creates a new factory for generation run tasks
func NewGenerationTaskFactory(executor StageExecutor, logger *slog.Logger) *GenerationTaskFactory {
	return &GenerationTaskFactory{
		executor: executor,
		logger:   logger.With("component", "generation_task_factory"),
	}
}

// CreateTask creates a new GenerationTask for the specified run
func (f *GenerationTaskFactory) CreateTask(
	runID uuid.UUID,
	presentation *domain.Presentation,
) (Task, error) {
	task, err := NewGenerationTask(runID, presentation, f.executor, f.logger)
	if err != nil {
		return nil, err
	}
	return task, nil
}
