package generation

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/platform/logger"
)

// mockClient is a function-field generation client for stage tests.
type mockClient struct {
	GenerateFn func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error)
	calls      atomic.Int64
}

func (m *mockClient) Generate(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
	m.calls.Add(1)
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return &GenerationResponse{Title: "Generated Title", Subtitle: "Generated subtitle", BodyHTML: "<div>body</div>"}, nil
}

func newTestStage(t *testing.T, client Client, config StageConfig) *Stage {
	t.Helper()
	if config.APIVersion == "" {
		config.APIVersion = "v1"
	}
	log, _ := logger.NewTestLogger()
	stage, err := NewStage(client, config, log)
	require.NoError(t, err)
	return stage
}

func slidesForScenario() []*domain.Slide {
	return []*domain.Slide{
		domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-TITLE-01", "open with the quarter's theme", ""),
		domain.NewSlide(domain.SlideTypeMatrix2x2, VariantContent, "L-MATRIX-04", "strengths vs risks", ""),
		domain.NewSlide(domain.SlideTypeClosing, VariantHero, "L-CLOSE-01", "thank the audience", ""),
	}
}

func TestNewStage(t *testing.T) {
	t.Parallel()

	log, _ := logger.NewTestLogger()

	t.Run("requires a client", func(t *testing.T) {
		t.Parallel()
		_, err := NewStage(nil, StageConfig{APIVersion: "v1"}, log)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("requires an API version", func(t *testing.T) {
		t.Parallel()
		_, err := NewStage(&mockClient{}, StageConfig{}, log)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects negative concurrency", func(t *testing.T) {
		t.Parallel()
		_, err := NewStage(&mockClient{}, StageConfig{APIVersion: "v1", MaxConcurrent: -2}, log)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects unsupported success policy", func(t *testing.T) {
		t.Parallel()
		_, err := NewStage(&mockClient{}, StageConfig{APIVersion: "v1", SuccessPolicy: "plurality"}, log)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		stage, err := NewStage(&mockClient{}, StageConfig{APIVersion: "v1"}, log)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxConcurrent, stage.config.MaxConcurrent)
		assert.Equal(t, DefaultStageTimeout, stage.config.StageTimeout)
	})
}

func TestStageRunAllSlidesSucceed(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
			return &GenerationResponse{
				Title:    "Title for " + req.Request.SlideType,
				Subtitle: "Subtitle",
				BodyHTML: "<div>" + req.Request.SlideType + "</div>",
			}, nil
		},
	}
	stage := newTestStage(t, client, StageConfig{})

	slides := slidesForScenario()
	p, err := domain.NewPresentation("Q3 Platform Review", "ACME · Q3", slides)
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalSlides)
	assert.Equal(t, 3, result.SuccessfulSlides)
	assert.Equal(t, 0, result.FailedSlides)
	assert.True(t, result.ContentGenerated)
	assert.True(t, result.AllSucceeded())
	assert.EqualValues(t, 3, client.calls.Load())

	for i, slide := range p.Slides {
		assert.True(t, slide.HasGeneratedContent(), "slide %d enriched", i)
		assert.False(t, slide.Failed)
	}
}

func TestStageRunRoutesByFamily(t *testing.T) {
	t.Parallel()

	var endpoints []string
	client := &mockClient{
		GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
			endpoints = append(endpoints, req.Endpoint)
			return &GenerationResponse{Title: "T", BodyHTML: "<div></div>"}, nil
		},
	}
	stage := newTestStage(t, client, StageConfig{})

	p, err := domain.NewPresentation("Deck", "", slidesForScenario())
	require.NoError(t, err)

	_, err = stage.Run(context.Background(), p)
	require.NoError(t, err)

	// title_slide (hero), matrix_2x2 (content), closing_slide (hero), in order.
	require.Len(t, endpoints, 3)
	assert.Equal(t, "/v1/slides/hero", endpoints[0])
	assert.Equal(t, "/v1/slides/block", endpoints[1])
	assert.Equal(t, "/v1/slides/hero", endpoints[2])
}

func TestStageRunIsolatesSlideFailures(t *testing.T) {
	t.Parallel()

	// The second slide fails with a service error; its neighbors must not
	// notice.
	client := &mockClient{
		GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
			if req.Request.SlideType == string(domain.SlideTypeMatrix2x2) {
				return nil, fmt.Errorf("%w: status 500", ErrServiceError)
			}
			return &GenerationResponse{Title: "T", BodyHTML: "<div></div>"}, nil
		},
	}
	stage := newTestStage(t, client, StageConfig{})

	p, err := domain.NewPresentation("Deck", "", slidesForScenario())
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), p)
	require.NoError(t, err, "slide failures never fail the run")

	assert.Equal(t, 2, result.SuccessfulSlides)
	assert.Equal(t, 1, result.FailedSlides)
	assert.True(t, result.ContentGenerated, "any-success policy")

	require.Len(t, result.Outcomes, 3)
	assert.True(t, result.Outcomes[0].Success)
	assert.False(t, result.Outcomes[1].Success)
	assert.Equal(t, domain.FailureReasonServiceError, result.Outcomes[1].FailureReason)
	assert.True(t, result.Outcomes[2].Success)

	assert.True(t, p.Slides[1].Failed)
	assert.False(t, p.Slides[0].Failed)
	assert.False(t, p.Slides[2].Failed)
}

func TestStageRunTimeoutOnOneSlide(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
			if req.Request.SlideType == string(domain.SlideTypeMatrix2x2) {
				return nil, fmt.Errorf("%w after 30s", ErrTimeout)
			}
			return &GenerationResponse{Title: "T", BodyHTML: "<div></div>"}, nil
		},
	}
	stage := newTestStage(t, client, StageConfig{})

	p, err := domain.NewPresentation("Deck", "", slidesForScenario())
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessfulSlides)
	assert.Equal(t, 1, result.FailedSlides)
	assert.Equal(t, domain.FailureReasonTimeout, result.Outcomes[1].FailureReason)
	assert.True(t, result.Outcomes[0].Success)
	assert.True(t, result.Outcomes[2].Success)
}

func TestStageRunDescriptorFailures(t *testing.T) {
	t.Parallel()

	client := &mockClient{}
	stage := newTestStage(t, client, StageConfig{})

	slides := []*domain.Slide{
		domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-TITLE-01", "fine", ""),
		// Missing guidance: rejected by descriptor validation.
		domain.NewSlide(domain.SlideTypeAgenda, VariantContent, "L-AGENDA-01", "", ""),
		// Unknown variant: rejected by transformation.
		domain.NewSlide(domain.SlideTypeQuote, "vaporwave", "L-QUOTE-01", "a quote", ""),
	}
	p, err := domain.NewPresentation("Deck", "", slides)
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessfulSlides)
	assert.Equal(t, domain.FailureReasonMissingField, result.Outcomes[1].FailureReason)
	assert.Equal(t, domain.FailureReasonUnknownVariant, result.Outcomes[2].FailureReason)
	assert.EqualValues(t, 1, client.calls.Load(), "rejected slides must not reach the service")
}

func TestStageRunContentCeilings(t *testing.T) {
	t.Parallel()

	t.Run("over-limit title", func(t *testing.T) {
		t.Parallel()
		client := &mockClient{
			GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
				return &GenerationResponse{
					Title:    strings.Repeat("x", domain.MaxGeneratedTitleChars+1),
					BodyHTML: "<div></div>",
				}, nil
			},
		}
		stage := newTestStage(t, client, StageConfig{})

		slide := domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-TITLE-01", "g", "")
		p, err := domain.NewPresentation("Deck", "", []*domain.Slide{slide})
		require.NoError(t, err)

		result, err := stage.Run(context.Background(), p)
		require.NoError(t, err)

		require.Len(t, result.Outcomes, 1)
		assert.Equal(t, domain.FailureReasonContentTooLong, result.Outcomes[0].FailureReason)
		assert.Empty(t, slide.Title, "over-limit content is rejected, not truncated")
		assert.False(t, result.ContentGenerated)
	})

	t.Run("over-limit subtitle", func(t *testing.T) {
		t.Parallel()
		client := &mockClient{
			GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
				return &GenerationResponse{
					Title:    "Fine",
					Subtitle: strings.Repeat("y", domain.MaxGeneratedSubtitleChars+1),
					BodyHTML: "<div></div>",
				}, nil
			},
		}
		stage := newTestStage(t, client, StageConfig{})

		slide := domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-TITLE-01", "g", "")
		p, err := domain.NewPresentation("Deck", "", []*domain.Slide{slide})
		require.NoError(t, err)

		result, err := stage.Run(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, domain.FailureReasonContentTooLong, result.Outcomes[0].FailureReason)
	})

	t.Run("empty title is an invalid response", func(t *testing.T) {
		t.Parallel()
		client := &mockClient{
			GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
				return &GenerationResponse{Title: "  ", BodyHTML: "<div></div>"}, nil
			},
		}
		stage := newTestStage(t, client, StageConfig{})

		slide := domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-TITLE-01", "g", "")
		p, err := domain.NewPresentation("Deck", "", []*domain.Slide{slide})
		require.NoError(t, err)

		result, err := stage.Run(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, domain.FailureReasonInvalidResponse, result.Outcomes[0].FailureReason)
	})
}

func TestStageRunMalformedEntry(t *testing.T) {
	t.Parallel()

	stage := newTestStage(t, &mockClient{}, StageConfig{})

	t.Run("nil presentation", func(t *testing.T) {
		t.Parallel()
		_, err := stage.Run(context.Background(), nil)
		assert.ErrorIs(t, err, ErrMalformedPresentation)
	})

	t.Run("presentation without slides", func(t *testing.T) {
		t.Parallel()
		p := &domain.Presentation{Title: "Deck"}
		_, err := stage.Run(context.Background(), p)
		assert.ErrorIs(t, err, ErrMalformedPresentation)
	})

	t.Run("presentation without title", func(t *testing.T) {
		t.Parallel()
		p := &domain.Presentation{
			Slides: []*domain.Slide{domain.NewSlide(domain.SlideTypeTitle, VariantHero, "L-1", "g", "")},
		}
		_, err := stage.Run(context.Background(), p)
		assert.ErrorIs(t, err, ErrMalformedPresentation)
	})
}

func TestStageRunIsDeterministicForStubbedBackend(t *testing.T) {
	t.Parallel()

	newClient := func() *mockClient {
		return &mockClient{
			GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
				if req.Request.Variant == VariantContent {
					return nil, fmt.Errorf("%w: status 503", ErrServiceUnavailable)
				}
				return &GenerationResponse{Title: "Stable Title", BodyHTML: "<div>stable</div>"}, nil
			},
		}
	}

	runOnce := func() domain.StageResult {
		stage := newTestStage(t, newClient(), StageConfig{})
		p, err := domain.NewPresentation("Deck", "", slidesForScenario())
		require.NoError(t, err)
		result, err := stage.Run(context.Background(), p)
		require.NoError(t, err)
		return result
	}

	first := runOnce()
	second := runOnce()

	assert.Equal(t, first.TotalSlides, second.TotalSlides)
	assert.Equal(t, first.SuccessfulSlides, second.SuccessfulSlides)
	assert.Equal(t, first.FailedSlides, second.FailedSlides)
	assert.Equal(t, first.ContentGenerated, second.ContentGenerated)
	for i := range first.Outcomes {
		assert.Equal(t, first.Outcomes[i].Success, second.Outcomes[i].Success)
		assert.Equal(t, first.Outcomes[i].FailureReason, second.Outcomes[i].FailureReason)
		assert.Equal(t, first.Outcomes[i].Title, second.Outcomes[i].Title)
	}
}

func TestStageRunParallelPreservesOrder(t *testing.T) {
	t.Parallel()

	// Later slides finish first; outcomes must still line up with slide
	// positions.
	client := &mockClient{
		GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
			digit := int(req.Request.LayoutID[len(req.Request.LayoutID)-1] - '0')
			delay := time.Duration(7-digit) * 5 * time.Millisecond
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &GenerationResponse{Title: "Title " + req.Request.LayoutID, BodyHTML: "<div></div>"}, nil
		},
	}
	stage := newTestStage(t, client, StageConfig{MaxConcurrent: 4})

	slides := make([]*domain.Slide, 8)
	for i := range slides {
		slides[i] = domain.NewSlide(domain.SlideTypeContentBasic, VariantContent,
			fmt.Sprintf("L-%d", i), "guidance", "")
	}
	p, err := domain.NewPresentation("Deck", "", slides)
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 8)
	for i, outcome := range result.Outcomes {
		assert.Equal(t, i, outcome.SlideIndex)
		assert.Equal(t, slides[i].ID, outcome.SlideID)
		assert.Equal(t, fmt.Sprintf("Title L-%d", i), outcome.Title)
	}
}

func TestStageRunDeadlineStillAggregates(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
			select {
			case <-time.After(5 * time.Second):
				return &GenerationResponse{Title: "Too late", BodyHTML: "<div></div>"}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	stage := newTestStage(t, client, StageConfig{StageTimeout: 50 * time.Millisecond})

	p, err := domain.NewPresentation("Deck", "", slidesForScenario())
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), p)
	require.NoError(t, err, "an expired deadline still yields an aggregated result")

	assert.Equal(t, 3, result.TotalSlides)
	assert.Equal(t, 3, result.FailedSlides)
	assert.False(t, result.ContentGenerated)
	for _, outcome := range result.Outcomes {
		assert.Equal(t, domain.FailureReasonTimeout, outcome.FailureReason)
	}
}

func TestStageRunRecoversSlidePanic(t *testing.T) {
	t.Parallel()

	client := &mockClient{
		GenerateFn: func(ctx context.Context, req RoutedRequest) (*GenerationResponse, error) {
			if req.Request.SlideType == string(domain.SlideTypeMatrix2x2) {
				panic("backend driver blew up")
			}
			return &GenerationResponse{Title: "T", BodyHTML: "<div></div>"}, nil
		},
	}
	stage := newTestStage(t, client, StageConfig{})

	p, err := domain.NewPresentation("Deck", "", slidesForScenario())
	require.NoError(t, err)

	result, err := stage.Run(context.Background(), p)
	require.NoError(t, err, "a panic stays inside its slide boundary")

	assert.Equal(t, 2, result.SuccessfulSlides)
	assert.Equal(t, domain.FailureReasonInternal, result.Outcomes[1].FailureReason)
	assert.Contains(t, result.Outcomes[1].FailureMessage, "panic")
}

func TestFailureReasonForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want domain.FailureReason
	}{
		{"missing field", fmt.Errorf("%w: guidance", ErrMissingField), domain.FailureReasonMissingField},
		{"unknown variant", fmt.Errorf("%w: %q", ErrUnknownVariant, "x"), domain.FailureReasonUnknownVariant},
		{"service unavailable", ErrServiceUnavailable, domain.FailureReasonServiceUnavailable},
		{"service error", ErrServiceError, domain.FailureReasonServiceError},
		{"invalid response", ErrInvalidResponse, domain.FailureReasonInvalidResponse},
		{"content too long", ErrContentTooLong, domain.FailureReasonContentTooLong},
		{"timeout", ErrTimeout, domain.FailureReasonTimeout},
		{"context deadline", context.DeadlineExceeded, domain.FailureReasonTimeout},
		{"context canceled", context.Canceled, domain.FailureReasonTimeout},
		{"anything else", fmt.Errorf("mystery"), domain.FailureReasonServiceError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, FailureReasonForError(tc.err))
		})
	}
}
