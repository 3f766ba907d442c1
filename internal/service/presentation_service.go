package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/events"
	"github.com/slatefield/deckgen-api/internal/store"
	"github.com/slatefield/deckgen-api/internal/task"
)

// StageRunner drives the generation stage over a presentation. Satisfied
// by generation.Stage.
type StageRunner interface {
	Run(ctx context.Context, p *domain.Presentation) (domain.StageResult, error)
}

// PresentationService provides presentation generation operations.
type PresentationService interface {
	// RunStage executes the generation stage synchronously and returns
	// the aggregated result.
	RunStage(ctx context.Context, p *domain.Presentation) (domain.StageResult, error)

	// StartRun accepts a presentation for asynchronous generation. It
	// creates a pending run record and emits an event for the task layer;
	// the returned record carries the run ID callers poll with.
	StartRun(ctx context.Context, p *domain.Presentation) (*store.RunRecord, error)

	// ExecuteRun drives the stage for a previously started run and
	// records the outcome on the run record. Called by the task layer.
	ExecuteRun(ctx context.Context, runID uuid.UUID, p *domain.Presentation) error

	// GetRun retrieves the current state of a run.
	// Returns ErrRunNotFound if the run does not exist.
	GetRun(ctx context.Context, id uuid.UUID) (*store.RunRecord, error)

	// RunArtifacts returns the enriched presentation and stage result of
	// a completed run, if they are still held in memory.
	RunArtifacts(id uuid.UUID) (*domain.Presentation, domain.StageResult, bool)
}

// stageRequestSlide is one slide descriptor in the emitted event payload.
type stageRequestSlide struct {
	Type     string `json:"type"`
	Variant  string `json:"variant"`
	Layout   string `json:"layout"`
	Guidance string `json:"guidance"`
	Notes    string `json:"notes"`
}

// stageRequestPayload is the event payload describing a requested run.
// The task layer owns its own copy of this shape; the JSON encoding is
// the contract between the two.
type stageRequestPayload struct {
	RunID  string              `json:"run_id"`
	Title  string              `json:"title"`
	Footer string              `json:"footer"`
	Slides []stageRequestSlide `json:"slides"`
}

// presentationServiceImpl implements the PresentationService interface
type presentationServiceImpl struct {
	stage        StageRunner
	runStore     store.RunStore
	eventEmitter events.EventEmitter
	registry     *resultRegistry
	logger       *slog.Logger
}

// NewPresentationService creates a new PresentationService.
// It returns an error if any of the required dependencies are nil.
func NewPresentationService(
	stage StageRunner,
	runStore store.RunStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (PresentationService, error) {
	if stage == nil {
		return nil, &PresentationServiceError{
			Operation: "create_service",
			Message:   "stage cannot be nil",
		}
	}
	if runStore == nil {
		return nil, &PresentationServiceError{
			Operation: "create_service",
			Message:   "runStore cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &PresentationServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &presentationServiceImpl{
		stage:        stage,
		runStore:     runStore,
		eventEmitter: eventEmitter,
		registry:     newResultRegistry(defaultRegistryCapacity),
		logger:       logger.With("component", "presentation_service"),
	}, nil
}

// RunStage executes the generation stage synchronously.
func (s *presentationServiceImpl) RunStage(
	ctx context.Context,
	p *domain.Presentation,
) (domain.StageResult, error) {
	result, err := s.stage.Run(ctx, p)
	if err != nil {
		s.logger.Error("synchronous stage run failed", "error", err)
		return domain.StageResult{}, NewPresentationServiceError(
			"run_stage", "stage execution failed", err)
	}

	s.logger.Info("synchronous stage run completed",
		"presentation_id", result.PresentationID,
		"total_slides", result.TotalSlides,
		"successful_slides", result.SuccessfulSlides,
		"content_generated", result.ContentGenerated)
	return result, nil
}

// StartRun creates a pending run record and emits a stage-requested
// event for the task layer to pick up.
func (s *presentationServiceImpl) StartRun(
	ctx context.Context,
	p *domain.Presentation,
) (*store.RunRecord, error) {
	run := store.NewRunRecord()
	run.TotalSlides = p.SlideCount()

	if err := s.runStore.Create(ctx, run); err != nil {
		s.logger.Error("failed to create run record",
			"error", err,
			"run_id", run.ID)
		return nil, NewPresentationServiceError("start_run", "failed to create run record", err)
	}

	event, err := events.NewStageRequestedEvent(task.TaskTypeGenerationRun, s.buildPayload(run.ID, p))
	if err != nil {
		s.failRun(ctx, run.ID, "failed to create generation event")
		s.logger.Error("failed to create stage event",
			"error", err,
			"run_id", run.ID)
		return nil, NewPresentationServiceError("start_run", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		// The run can never execute if the event was not accepted, so
		// surface that on the record instead of leaving it pending.
		s.failRun(ctx, run.ID, "failed to queue generation run")
		s.logger.Error("failed to emit stage event",
			"error", err,
			"run_id", run.ID,
			"event_id", event.ID)
		return nil, NewPresentationServiceError("start_run", "failed to emit event", err)
	}

	s.logger.Info("generation run accepted",
		"run_id", run.ID,
		"event_id", event.ID,
		"slide_count", p.SlideCount())
	return run, nil
}

// ExecuteRun drives the stage for a started run. The final status write
// uses a context detached from cancellation so a shutdown mid-run still
// leaves the record in a terminal state when the store allows it.
func (s *presentationServiceImpl) ExecuteRun(
	ctx context.Context,
	runID uuid.UUID,
	p *domain.Presentation,
) error {
	if err := s.runStore.UpdateStatus(ctx, runID, store.RunStatusRunning, ""); err != nil {
		s.logger.Error("failed to mark run as running",
			"error", err,
			"run_id", runID)
		return NewPresentationServiceError("execute_run", "failed to mark run as running", err)
	}

	result, err := s.stage.Run(ctx, p)
	writeCtx := context.WithoutCancel(ctx)

	if err != nil {
		if updateErr := s.runStore.UpdateStatus(
			writeCtx, runID, store.RunStatusFailed, err.Error(),
		); updateErr != nil {
			s.logger.Error("failed to mark run as failed",
				"error", updateErr,
				"run_id", runID)
		}
		s.logger.Error("generation run failed",
			"error", err,
			"run_id", runID)
		return NewPresentationServiceError("execute_run", "stage execution failed", err)
	}

	s.registry.put(runID, runArtifact{presentation: p, result: result})

	if err := s.runStore.RecordResult(writeCtx, runID, &result); err != nil {
		s.logger.Error("failed to record run result",
			"error", err,
			"run_id", runID)
		return NewPresentationServiceError("execute_run", "failed to record result", err)
	}

	s.logger.Info("generation run completed",
		"run_id", runID,
		"total_slides", result.TotalSlides,
		"successful_slides", result.SuccessfulSlides,
		"failed_slides", result.FailedSlides,
		"content_generated", result.ContentGenerated)
	return nil
}

// GetRun retrieves a run record by ID.
func (s *presentationServiceImpl) GetRun(
	ctx context.Context,
	id uuid.UUID,
) (*store.RunRecord, error) {
	run, err := s.runStore.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("failed to retrieve run",
			"error", err,
			"run_id", id)
		return nil, NewPresentationServiceError("get_run", "failed to retrieve run", err)
	}
	return run, nil
}

// RunArtifacts returns the in-memory artifacts of a completed run.
func (s *presentationServiceImpl) RunArtifacts(
	id uuid.UUID,
) (*domain.Presentation, domain.StageResult, bool) {
	artifact, ok := s.registry.get(id)
	if !ok {
		return nil, domain.StageResult{}, false
	}
	return artifact.presentation, artifact.result, true
}

// buildPayload serializes a presentation into the event payload shape.
func (s *presentationServiceImpl) buildPayload(
	runID uuid.UUID,
	p *domain.Presentation,
) stageRequestPayload {
	slides := make([]stageRequestSlide, 0, len(p.Slides))
	for _, slide := range p.Slides {
		slides = append(slides, stageRequestSlide{
			Type:     string(slide.Type),
			Variant:  slide.Variant,
			Layout:   slide.LayoutID,
			Guidance: slide.Guidance,
			Notes:    slide.Notes,
		})
	}
	return stageRequestPayload{
		RunID:  runID.String(),
		Title:  p.Title,
		Footer: p.Footer,
		Slides: slides,
	}
}

// failRun marks a run as failed, logging rather than propagating the
// store error since the caller is already on an error path.
func (s *presentationServiceImpl) failRun(ctx context.Context, runID uuid.UUID, message string) {
	if err := s.runStore.UpdateStatus(ctx, runID, store.RunStatusFailed, message); err != nil {
		s.logger.Error("failed to mark run as failed",
			"error", err,
			"run_id", runID)
	}
}

// Ensure the service satisfies the task layer's executor contract.
var _ task.StageExecutor = (PresentationService)(nil)
