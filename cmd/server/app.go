package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/slatefield/deckgen-api/internal/config"
	"github.com/slatefield/deckgen-api/internal/events"
	"github.com/slatefield/deckgen-api/internal/generation"
	"github.com/slatefield/deckgen-api/internal/platform/gemini"
	"github.com/slatefield/deckgen-api/internal/platform/openai"
	"github.com/slatefield/deckgen-api/internal/platform/postgres"
	"github.com/slatefield/deckgen-api/internal/platform/slidesvc"
	"github.com/slatefield/deckgen-api/internal/service"
	"github.com/slatefield/deckgen-api/internal/store"
	"github.com/slatefield/deckgen-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	runStore store.RunStore

	// Service interfaces
	generationClient    generation.Client
	stage               *generation.Stage
	presentationService service.PresentationService

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// the database connection that must be established before application
// initialization. The database handle may be nil, in which case run state is
// held in memory and lost on restart.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize the run store
	if db != nil {
		app.runStore = postgres.NewPostgresRunStore(db, logger)
	} else {
		app.runStore = store.NewMemoryRunStore()
		logger.Info("no database configured, run state is held in memory")
	}

	// Create the generation backend client
	var err error
	app.generationClient, err = setupGenerationClient(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation client: %w", err)
	}
	logger.Info("generation client initialized", "provider", cfg.Generation.Provider)

	// Initialize the stage orchestrator
	app.stage, err = generation.NewStage(app.generationClient, generation.StageConfig{
		APIVersion:    cfg.Generation.APIVersion,
		MaxConcurrent: cfg.Generation.MaxConcurrent,
		StageTimeout:  cfg.Generation.StageTimeout(),
		SuccessPolicy: generation.SuccessPolicy(cfg.Generation.SuccessPolicy),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation stage: %w", err)
	}

	// Initialize event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)

	// Initialize presentation service
	app.presentationService, err = service.NewPresentationService(
		app.stage,
		app.runStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation service: %w", err)
	}

	// Initialize task runner
	app.taskRunner, err = setupTaskRunner(app)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	// Create and register the task factory event handler so accepted runs
	// become queued generation tasks.
	taskFactory := task.NewGenerationTaskFactory(app.presentationService, logger)
	taskFactoryHandler := task.NewTaskFactoryEventHandler(taskFactory, app.taskRunner, logger)

	if emitter, ok := app.eventEmitter.(*events.InMemoryEventEmitter); ok {
		emitter.RegisterHandler(taskFactoryHandler)
	} else {
		return nil, fmt.Errorf("unexpected event emitter type, cannot register task handler")
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupGenerationClient builds the backend selected by the provider setting.
// Provider-specific key requirements are enforced by the client constructors.
func setupGenerationClient(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (generation.Client, error) {
	gen := cfg.Generation
	switch gen.Provider {
	case "slidesvc":
		return slidesvc.NewClient(slidesvc.Config{
			BaseURL:        gen.BaseURL,
			RequestTimeout: gen.RequestTimeout(),
			MaxRetries:     gen.MaxRetries,
			RetryDelay:     gen.RetryDelay(),
			SigningKey:     gen.SigningKey,
		}, logger)
	case "gemini":
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:     gen.GeminiAPIKey,
			Model:      gen.GeminiModel,
			MaxRetries: gen.MaxRetries,
			RetryDelay: gen.RetryDelay(),
		}, logger)
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:     gen.OpenAIAPIKey,
			Model:      gen.OpenAIModel,
			BaseURL:    gen.OpenAIBaseURL,
			MaxRetries: gen.MaxRetries,
			RetryDelay: gen.RetryDelay(),
		}, logger)
	default:
		return nil, fmt.Errorf("unknown generation provider: %s", gen.Provider)
	}
}

// setupTaskRunner initializes and starts the background task processor.
// Start marks runs left pending or running by a previous process as failed
// before workers begin, since their queued tasks did not survive.
func setupTaskRunner(app *application) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(app.runStore, task.TaskRunnerConfig{
		QueueSize:   app.config.Task.QueueSize,
		WorkerCount: app.config.Task.WorkerCount,
	}, app.logger)

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop task runner
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
