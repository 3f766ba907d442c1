package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/events"
)

// taskFactory creates tasks for a run. Satisfied by GenerationTaskFactory.
type taskFactory interface {
	CreateTask(runID uuid.UUID, presentation *domain.Presentation) (Task, error)
}

// taskSubmitter enqueues tasks for processing. Satisfied by TaskRunner.
type taskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns stage-requested events into generation tasks and submits them
// to the runner, reconstructing the presentation from the event payload.
type TaskFactoryEventHandler struct {
	factory taskFactory
	runner  taskSubmitter
	logger  *slog.Logger
}

// NewTaskFactoryEventHandler creates an event handler that uses the given
// factory to create tasks and submits them to the provided runner.
func NewTaskFactoryEventHandler(
	factory taskFactory,
	runner taskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_factory_event_handler"),
	}
}

// stageRequestPayload mirrors the JSON payload emitted by the
// presentation service. Each side owns its copy of the shape; the JSON
// encoding is the contract between them.
type stageRequestPayload struct {
	RunID  string `json:"run_id"`
	Title  string `json:"title"`
	Footer string `json:"footer"`
	Slides []struct {
		Type     string `json:"type"`
		Variant  string `json:"variant"`
		Layout   string `json:"layout"`
		Guidance string `json:"guidance"`
		Notes    string `json:"notes"`
	} `json:"slides"`
}

// HandleEvent processes stage-requested events by rebuilding the
// presentation, creating a generation task, and submitting it to the
// runner. Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.StageRequestedEvent,
) error {
	if event.Type != TaskTypeGenerationRun {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload stageRequestPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	runID, err := uuid.Parse(payload.RunID)
	if err != nil {
		h.logger.Error("invalid run ID",
			"error", err,
			"run_id", payload.RunID,
			"event_id", event.ID)
		return fmt.Errorf("invalid run ID: %w", err)
	}

	slides := make([]*domain.Slide, 0, len(payload.Slides))
	for _, s := range payload.Slides {
		slides = append(slides, domain.NewSlide(
			domain.SlideType(s.Type),
			s.Variant,
			s.Layout,
			s.Guidance,
			s.Notes,
		))
	}

	presentation, err := domain.NewPresentation(payload.Title, payload.Footer, slides)
	if err != nil {
		h.logger.Error("event payload is not a valid presentation",
			"error", err,
			"run_id", runID,
			"event_id", event.ID)
		return fmt.Errorf("invalid presentation payload: %w", err)
	}

	task, err := h.factory.CreateTask(runID, presentation)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"run_id", runID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"run_id", runID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("generation task submitted",
		"task_id", task.ID(),
		"run_id", runID,
		"event_id", event.ID,
		"slide_count", len(slides))
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
