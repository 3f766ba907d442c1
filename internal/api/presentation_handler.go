package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/slatefield/deckgen-api/internal/api/shared"
	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/platform/logger"
	"github.com/slatefield/deckgen-api/internal/service"
)

// PresentationHandler handles presentation generation requests.
type PresentationHandler struct {
	service   service.PresentationService
	validator *validator.Validate
	logger    *slog.Logger
}

// NewPresentationHandler creates a new PresentationHandler. A nil logger
// falls back to the default logger.
func NewPresentationHandler(svc service.PresentationService, log *slog.Logger) *PresentationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PresentationHandler{
		service:   svc,
		validator: validator.New(),
		logger:    log.With(slog.String("component", "presentation_handler")),
	}
}

// GeneratePresentation handles POST /api/presentations/generate: it runs the
// whole generation stage synchronously and returns the aggregated result.
func (h *PresentationHandler) GeneratePresentation(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := h.decodePresentation(w, r)
	if !ok {
		return
	}

	result, err := h.service.RunStage(r.Context(), p)
	if err != nil {
		log.Error("synchronous generation run failed",
			slog.String("presentation_id", p.ID.String()),
			slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stageResultToResponse(result))
}

// StartGeneration handles POST /api/presentations: it registers an
// asynchronous run and responds immediately with the run ID to poll.
func (h *PresentationHandler) StartGeneration(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := h.decodePresentation(w, r)
	if !ok {
		return
	}

	run, err := h.service.StartRun(r.Context(), p)
	if err != nil {
		log.Error("failed to start generation run",
			slog.String("presentation_id", p.ID.String()),
			slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "Failed to start generation run")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, runToResponse(run))
}

// decodePresentation reads, validates, and converts the strawman document.
// On failure it writes the error response and reports false.
func (h *PresentationHandler) decodePresentation(
	w http.ResponseWriter,
	r *http.Request,
) (*domain.Presentation, bool) {
	var req GeneratePresentationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return nil, false
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return nil, false
	}

	slides := make([]*domain.Slide, 0, len(req.Slides))
	for _, s := range req.Slides {
		slides = append(slides, domain.NewSlide(
			domain.SlideType(s.Type), s.Variant, s.Layout, s.Guidance, s.Notes))
	}

	p, err := domain.NewPresentation(req.Title, req.Footer, slides)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return p, true
}
