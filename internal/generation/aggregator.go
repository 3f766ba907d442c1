package generation

import (
	"errors"
	"log/slog"
	"time"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// SuccessPolicy decides how the presentation-level content_generated flag is
// computed from per-slide outcomes.
type SuccessPolicy string

// Supported success policies.
const (
	// SuccessPolicyAny reports content generated when at least one slide
	// succeeded. This is the default.
	SuccessPolicyAny SuccessPolicy = "any"
	// SuccessPolicyAll reports content generated only when every slide
	// succeeded.
	SuccessPolicyAll SuccessPolicy = "all"
)

// IsValidSuccessPolicy checks if the given policy is supported.
func IsValidSuccessPolicy(policy SuccessPolicy) bool {
	switch policy {
	case SuccessPolicyAny, SuccessPolicyAll:
		return true
	default:
		return false
	}
}

// Aggregator folds per-slide outcomes into the stage result and writes them
// back onto the presentation. It is the single writer of slide state in a run.
type Aggregator struct {
	policy SuccessPolicy
	logger *slog.Logger
}

// NewAggregator creates an aggregator with the given success policy. An empty
// policy defaults to SuccessPolicyAny.
func NewAggregator(policy SuccessPolicy, logger *slog.Logger) (*Aggregator, error) {
	if policy == "" {
		policy = SuccessPolicyAny
	}
	if !IsValidSuccessPolicy(policy) {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{policy: policy, logger: logger.With("component", "aggregator")}, nil
}

// Aggregate applies outcomes to the presentation's slides in their original
// order and produces the immutable stage result. Successful outcomes write
// generated content onto their slide; failures flag the slide and keep its
// placeholder content. Outcomes are expected to be indexed by slide position.
func (a *Aggregator) Aggregate(
	p *domain.Presentation,
	outcomes []domain.SlideOutcome,
	startedAt time.Time,
) domain.StageResult {
	applied := make([]domain.SlideOutcome, len(outcomes))
	copy(applied, outcomes)

	for i, outcome := range applied {
		if i >= len(p.Slides) {
			break
		}
		slide := p.Slides[i]

		if !outcome.Success {
			if err := slide.MarkFailed(outcome.FailureReason); err != nil {
				a.logger.Warn("unrecognized failure reason on outcome, recording as internal",
					"slide_index", i,
					"reason", outcome.FailureReason)
				_ = slide.MarkFailed(domain.FailureReasonInternal)
				applied[i].FailureReason = domain.FailureReasonInternal
			}
			continue
		}

		// A write rejected here means the backend returned content the
		// per-slide validation should have caught; downgrade to a failure
		// rather than dropping the run.
		if err := slide.SetGeneratedContent(outcome.Title, outcome.Subtitle, outcome.BodyHTML); err != nil {
			a.logger.Warn("generated content rejected at aggregation",
				"slide_index", i,
				"error", err)
			reason := rejectionReason(err)
			applied[i] = domain.NewFailureOutcome(slide, i, reason, err.Error())
			_ = slide.MarkFailed(reason)
		}
	}

	return domain.NewStageResult(
		p.ID,
		applied,
		a.contentGenerated(applied),
		startedAt,
		time.Since(startedAt),
	)
}

// rejectionReason categorizes a SetGeneratedContent error.
func rejectionReason(err error) domain.FailureReason {
	switch {
	case errors.Is(err, domain.ErrGeneratedTitleTooLong),
		errors.Is(err, domain.ErrGeneratedSubtitleTooLong):
		return domain.FailureReasonContentTooLong
	case errors.Is(err, domain.ErrGeneratedTitleEmpty):
		return domain.FailureReasonInvalidResponse
	default:
		return domain.FailureReasonInternal
	}
}

// contentGenerated computes the presentation-level flag under the configured
// policy.
func (a *Aggregator) contentGenerated(outcomes []domain.SlideOutcome) bool {
	successful := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			successful++
		}
	}

	switch a.policy {
	case SuccessPolicyAll:
		return successful == len(outcomes) && len(outcomes) > 0
	default:
		return successful > 0
	}
}
