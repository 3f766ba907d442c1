package domain

import (
	"time"

	"github.com/google/uuid"
)

// FailureReason categorizes why a single slide failed to generate.
type FailureReason string

// Possible failure reasons recorded on slide outcomes.
const (
	FailureReasonMissingField       FailureReason = "missing_required_field"
	FailureReasonUnknownVariant     FailureReason = "unknown_variant"
	FailureReasonServiceUnavailable FailureReason = "service_unavailable"
	FailureReasonServiceError       FailureReason = "service_error"
	FailureReasonInvalidResponse    FailureReason = "invalid_response"
	FailureReasonContentTooLong     FailureReason = "content_too_long"
	FailureReasonTimeout            FailureReason = "timeout"
	FailureReasonInternal           FailureReason = "internal_error"
)

// IsValidFailureReason checks if the given reason is a defined FailureReason.
func IsValidFailureReason(reason FailureReason) bool {
	switch reason {
	case FailureReasonMissingField, FailureReasonUnknownVariant,
		FailureReasonServiceUnavailable, FailureReasonServiceError,
		FailureReasonInvalidResponse, FailureReasonContentTooLong,
		FailureReasonTimeout, FailureReasonInternal:
		return true
	default:
		return false
	}
}

// SlideOutcome records the result of generating one slide: either the
// generated content or a categorized failure. Outcomes are value types owned
// by the stage run that produced them.
type SlideOutcome struct {
	SlideID    uuid.UUID `json:"slide_id"`
	SlideIndex int       `json:"slide_index"`
	SlideType  SlideType `json:"slide_type"`
	Success    bool      `json:"success"`

	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	BodyHTML string `json:"body_html,omitempty"`

	FailureReason  FailureReason `json:"failure_reason,omitempty"`
	FailureMessage string        `json:"failure_message,omitempty"`
}

// NewSuccessOutcome builds the outcome for a successfully generated slide.
func NewSuccessOutcome(slide *Slide, index int, title, subtitle, bodyHTML string) SlideOutcome {
	return SlideOutcome{
		SlideID:    slide.ID,
		SlideIndex: index,
		SlideType:  slide.Type,
		Success:    true,
		Title:      title,
		Subtitle:   subtitle,
		BodyHTML:   bodyHTML,
	}
}

// NewFailureOutcome builds the outcome for a slide whose generation failed.
// The message is operator-facing detail; the reason is the stable category.
func NewFailureOutcome(slide *Slide, index int, reason FailureReason, message string) SlideOutcome {
	return SlideOutcome{
		SlideID:        slide.ID,
		SlideIndex:     index,
		SlideType:      slide.Type,
		Success:        false,
		FailureReason:  reason,
		FailureMessage: message,
	}
}

// StageResult is the aggregated result of one content-generation run over a
// presentation. It is immutable after creation.
type StageResult struct {
	PresentationID   uuid.UUID      `json:"presentation_id"`
	TotalSlides      int            `json:"total_slides"`
	SuccessfulSlides int            `json:"successful_slides"`
	FailedSlides     int            `json:"failed_slides"`
	ContentGenerated bool           `json:"content_generated"`
	Outcomes         []SlideOutcome `json:"outcomes"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration"`
}

// NewStageResult folds per-slide outcomes into the presentation-level result.
// Counts are derived from the outcomes so they always sum to the total; the
// content-generated flag is policy-dependent and supplied by the caller.
func NewStageResult(
	presentationID uuid.UUID,
	outcomes []SlideOutcome,
	contentGenerated bool,
	startedAt time.Time,
	duration time.Duration,
) StageResult {
	successful := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			successful++
		}
	}

	return StageResult{
		PresentationID:   presentationID,
		TotalSlides:      len(outcomes),
		SuccessfulSlides: successful,
		FailedSlides:     len(outcomes) - successful,
		ContentGenerated: contentGenerated,
		Outcomes:         outcomes,
		StartedAt:        startedAt,
		Duration:         duration,
	}
}

// AllSucceeded reports whether every slide in the run generated successfully.
func (r StageResult) AllSucceeded() bool {
	return r.FailedSlides == 0 && r.TotalSlides > 0
}

// AnySucceeded reports whether at least one slide generated successfully.
func (r StageResult) AnySucceeded() bool {
	return r.SuccessfulSlides > 0
}
