package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slatefield/deckgen-api/internal/api"
	apiMiddleware "github.com/slatefield/deckgen-api/internal/api/middleware"
	"github.com/slatefield/deckgen-api/internal/deck"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	presentationHandler := api.NewPresentationHandler(app.presentationService, app.logger)

	// Deck rendering endpoints stay registered but answer 404 when the
	// corresponding renderer is disabled by configuration.
	var assembler *deck.Assembler
	var preview *deck.PreviewRenderer
	if app.config.Deck.Enabled {
		assembler = deck.NewAssembler(app.logger)
	}
	if app.config.Deck.PreviewEnabled {
		preview = deck.NewPreviewRenderer(app.logger)
	}
	runHandler := api.NewRunHandler(app.presentationService, assembler, preview, app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Synchronous generation: run the whole stage within the request
		r.Post("/presentations/generate", presentationHandler.GeneratePresentation)

		// Asynchronous generation: accept a run, poll it, fetch renderings
		r.Post("/presentations", presentationHandler.StartGeneration)
		r.Get("/runs/{id}", runHandler.GetRun)
		r.Get("/runs/{id}/deck.xml", runHandler.GetDeckXML)
		r.Get("/runs/{id}/preview", runHandler.GetPreview)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
