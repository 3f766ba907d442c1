package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/slatefield/deckgen-api/internal/api/shared"
	"github.com/slatefield/deckgen-api/internal/deck"
	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/platform/logger"
	"github.com/slatefield/deckgen-api/internal/service"
	"github.com/slatefield/deckgen-api/internal/store"
)

// RunHandler serves the state and rendered artifacts of generation runs.
// The deck and preview renderers are optional: a nil renderer means the
// corresponding endpoint is disabled and responds 404.
type RunHandler struct {
	service   service.PresentationService
	assembler *deck.Assembler
	preview   *deck.PreviewRenderer
	logger    *slog.Logger
}

// NewRunHandler creates a new RunHandler. A nil logger falls back to the
// default logger.
func NewRunHandler(
	svc service.PresentationService,
	assembler *deck.Assembler,
	preview *deck.PreviewRenderer,
	log *slog.Logger,
) *RunHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RunHandler{
		service:   svc,
		assembler: assembler,
		preview:   preview,
		logger:    log.With(slog.String("component", "run_handler")),
	}
}

// GetRun handles GET /api/runs/{id}: run state and counters, plus per-slide
// outcomes once the run completed and its artifacts are still held.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := h.service.GetRun(r.Context(), runID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	response := runToResponse(run)
	if run.Status == store.RunStatusCompleted {
		if _, result, ok := h.service.RunArtifacts(runID); ok {
			outcomes := make([]SlideOutcomeResponse, 0, len(result.Outcomes))
			for _, o := range result.Outcomes {
				outcomes = append(outcomes, outcomeToResponse(o))
			}
			response.Outcomes = outcomes
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// GetDeckXML handles GET /api/runs/{id}/deck.xml: the enriched presentation
// rendered as deck markup. Responds 404 when deck rendering is disabled,
// when the run does not exist, or when no artifacts are held for it.
func (h *RunHandler) GetDeckXML(w http.ResponseWriter, r *http.Request) {
	if h.assembler == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Deck rendering is not enabled")
		return
	}

	p, ok := h.loadArtifacts(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.assembler.Assemble(&buf, p); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to render deck", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Error("failed to write deck response", slog.String("error", err.Error()))
	}
}

// GetPreview handles GET /api/runs/{id}/preview: a standalone HTML page of
// the enriched presentation. Responds 404 when previews are disabled, when
// the run does not exist, or when no artifacts are held for it.
func (h *RunHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	if h.preview == nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Preview rendering is not enabled")
		return
	}

	p, ok := h.loadArtifacts(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.preview.Render(&buf, p); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to render preview", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Error("failed to write preview response", slog.String("error", err.Error()))
	}
}

// loadArtifacts resolves the run ID and fetches the enriched presentation
// held for a completed run. On failure it writes the error response and
// reports false.
func (h *RunHandler) loadArtifacts(w http.ResponseWriter, r *http.Request) (*domain.Presentation, bool) {
	runID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid run ID")
		return nil, false
	}

	if _, err := h.service.GetRun(r.Context(), runID); err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}

	presentation, _, held := h.service.RunArtifacts(runID)
	if !held {
		shared.RespondWithError(w, r, http.StatusNotFound, "No rendered content is held for this run")
		return nil, false
	}
	return presentation, true
}
