package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/platform/logger"
)

// Default stage settings applied when the config leaves them zero.
const (
	DefaultStageTimeout  = 5 * time.Minute
	DefaultMaxConcurrent = 1
)

// StageConfig holds the orchestration settings for content-generation runs.
type StageConfig struct {
	// APIVersion is the generation service protocol version used for routing.
	APIVersion string
	// MaxConcurrent bounds how many slides generate at once. 1 means
	// sequential.
	MaxConcurrent int
	// StageTimeout bounds a whole run. Slides not finished when it expires
	// are recorded as timed out; the run still aggregates.
	StageTimeout time.Duration
	// SuccessPolicy selects how content_generated is computed.
	SuccessPolicy SuccessPolicy
}

// Stage orchestrates one content-generation run over a presentation: entry
// check, then per slide validate, transform, route, generate and validate the
// response, then aggregate. Slides never share mutable state during a run;
// the aggregator is the single writer at the end.
type Stage struct {
	client     Client
	router     *Router
	aggregator *Aggregator
	config     StageConfig
	logger     *slog.Logger
}

// NewStage creates a stage orchestrator. The client is required; config gaps
// fall back to defaults.
func NewStage(client Client, config StageConfig, log *slog.Logger) (*Stage, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: generation client is required", ErrInvalidConfig)
	}
	if config.APIVersion == "" {
		return nil, fmt.Errorf("%w: API version is required", ErrInvalidConfig)
	}
	if config.MaxConcurrent < 0 {
		return nil, fmt.Errorf("%w: max concurrent must not be negative", ErrInvalidConfig)
	}
	if config.MaxConcurrent == 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	if config.StageTimeout <= 0 {
		config.StageTimeout = DefaultStageTimeout
	}
	if log == nil {
		log = slog.Default()
	}

	router, err := NewRouter(config.APIVersion)
	if err != nil {
		return nil, err
	}

	aggregator, err := NewAggregator(config.SuccessPolicy, log)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported success policy %q", ErrInvalidConfig, config.SuccessPolicy)
	}

	return &Stage{
		client:     client,
		router:     router,
		aggregator: aggregator,
		config:     config,
		logger:     log.With("component", "generation_stage"),
	}, nil
}

// Run executes the content-generation stage for the presentation. It returns
// an error only when the presentation itself is malformed (the entry check);
// every per-slide failure is recorded as an outcome in the returned result.
func (s *Stage) Run(ctx context.Context, p *domain.Presentation) (domain.StageResult, error) {
	startedAt := time.Now().UTC()
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Step 1: Entry check. The only condition that fails a whole run.
	if p == nil {
		return domain.StageResult{}, fmt.Errorf("%w: presentation is nil", ErrMalformedPresentation)
	}
	if err := p.Validate(); err != nil {
		return domain.StageResult{}, fmt.Errorf("%w: %v", ErrMalformedPresentation, err)
	}

	log.Info("starting content generation run",
		"presentation_id", p.ID,
		"slide_count", p.SlideCount(),
		"max_concurrent", s.config.MaxConcurrent)

	runCtx, cancel := context.WithTimeout(ctx, s.config.StageTimeout)
	defer cancel()

	// Step 2: Generate each slide. Outcomes are written by slide position so
	// original order survives any completion order.
	outcomes := make([]domain.SlideOutcome, len(p.Slides))
	if s.config.MaxConcurrent > 1 {
		g, gctx := errgroup.WithContext(runCtx)
		g.SetLimit(s.config.MaxConcurrent)
		for i, slide := range p.Slides {
			i, slide := i, slide
			g.Go(func() error {
				outcomes[i] = s.generateSlide(gctx, p, slide, i)
				// Per-slide failures are outcomes, never group errors.
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, slide := range p.Slides {
			outcomes[i] = s.generateSlide(runCtx, p, slide, i)
		}
	}

	// Step 3: Aggregate. Always runs, whatever happened above.
	result := s.aggregator.Aggregate(p, outcomes, startedAt)

	log.Info("content generation run finished",
		"presentation_id", p.ID,
		"total_slides", result.TotalSlides,
		"successful_slides", result.SuccessfulSlides,
		"failed_slides", result.FailedSlides,
		"content_generated", result.ContentGenerated,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// generateSlide runs the per-slide pipeline and converts every failure mode,
// panics included, into a SlideOutcome at this boundary.
func (s *Stage) generateSlide(
	ctx context.Context,
	p *domain.Presentation,
	slide *domain.Slide,
	index int,
) (outcome domain.SlideOutcome) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		"slide_index", index,
		"slide_id", slide.ID,
		"slide_type", slide.Type)

	defer func() {
		if r := recover(); r != nil {
			log.Error("slide generation panicked", "panic", r)
			outcome = domain.NewFailureOutcome(slide, index,
				domain.FailureReasonInternal, fmt.Sprintf("panic during generation: %v", r))
		}
	}()

	// Slides dispatched after the run deadline are reported as timed out
	// without calling the service.
	if err := ctx.Err(); err != nil {
		log.Warn("slide skipped, run deadline reached")
		return domain.NewFailureOutcome(slide, index,
			domain.FailureReasonTimeout, "run deadline reached before slide was generated")
	}

	if err := ValidateDescriptor(slide); err != nil {
		log.Warn("slide descriptor rejected", "error", err)
		return s.failureOutcome(slide, index, err)
	}

	req, err := Transform(p, slide)
	if err != nil {
		log.Warn("slide transformation failed", "error", err)
		return s.failureOutcome(slide, index, err)
	}

	routed := s.router.Route(req)
	log.Debug("slide routed",
		"endpoint", routed.Endpoint,
		"strategy", routed.Strategy)

	resp, err := s.client.Generate(ctx, routed)
	if err != nil {
		log.Warn("slide generation failed",
			"endpoint", routed.Endpoint,
			"error", err)
		return s.failureOutcome(slide, index, err)
	}

	if err := validateResponse(resp); err != nil {
		log.Warn("slide response rejected", "error", err)
		return s.failureOutcome(slide, index, err)
	}

	log.Debug("slide content generated", "title_chars", utf8.RuneCountInString(resp.Title))
	return domain.NewSuccessOutcome(slide, index, resp.Title, resp.Subtitle, resp.BodyHTML)
}

// failureOutcome builds a categorized failure outcome from a per-slide error.
func (s *Stage) failureOutcome(slide *domain.Slide, index int, err error) domain.SlideOutcome {
	return domain.NewFailureOutcome(slide, index, FailureReasonForError(err), err.Error())
}

// validateResponse checks a backend response before its content is accepted:
// a title must be present and the character ceilings must hold. Over-limit
// content is a failure, never truncated.
func validateResponse(resp *GenerationResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}
	if strings.TrimSpace(resp.Title) == "" {
		return fmt.Errorf("%w: response has no title", ErrInvalidResponse)
	}
	if n := utf8.RuneCountInString(resp.Title); n > domain.MaxGeneratedTitleChars {
		return fmt.Errorf("%w: title is %d characters, ceiling is %d",
			ErrContentTooLong, n, domain.MaxGeneratedTitleChars)
	}
	if n := utf8.RuneCountInString(resp.Subtitle); n > domain.MaxGeneratedSubtitleChars {
		return fmt.Errorf("%w: subtitle is %d characters, ceiling is %d",
			ErrContentTooLong, n, domain.MaxGeneratedSubtitleChars)
	}
	return nil
}
