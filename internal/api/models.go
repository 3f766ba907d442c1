package api

import (
	"time"

	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/store"
)

// SlideDescriptorRequest is one slide entry in the strawman document.
type SlideDescriptorRequest struct {
	Type     string `json:"type"     validate:"required"`
	Variant  string `json:"variant"`
	Layout   string `json:"layout"`
	Guidance string `json:"guidance"`
	Notes    string `json:"notes"`
}

// GeneratePresentationRequest is the strawman document accepted by both the
// synchronous and asynchronous generation endpoints. Descriptor completeness
// beyond basic shape is checked per slide during the run, not here.
type GeneratePresentationRequest struct {
	Title  string                   `json:"title"  validate:"required,min=1"`
	Footer string                   `json:"footer"`
	Slides []SlideDescriptorRequest `json:"slides" validate:"required,min=1,dive"`
}

// SlideOutcomeResponse is the per-slide outcome of a stage run.
type SlideOutcomeResponse struct {
	SlideID        string `json:"slide_id"`
	SlideIndex     int    `json:"slide_index"`
	SlideType      string `json:"slide_type"`
	Success        bool   `json:"success"`
	Title          string `json:"title,omitempty"`
	Subtitle       string `json:"subtitle,omitempty"`
	BodyHTML       string `json:"body_html,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
}

// StageResultResponse is the aggregated result of a stage run.
type StageResultResponse struct {
	PresentationID   string                 `json:"presentation_id"`
	TotalSlides      int                    `json:"total_slides"`
	SuccessfulSlides int                    `json:"successful_slides"`
	FailedSlides     int                    `json:"failed_slides"`
	ContentGenerated bool                   `json:"content_generated"`
	Outcomes         []SlideOutcomeResponse `json:"outcomes"`
	StartedAt        time.Time              `json:"started_at"`
	DurationMillis   int64                  `json:"duration_ms"`
}

// RunResponse is the state of an asynchronous generation run. Outcomes are
// present once the run completed and its artifacts are still held.
type RunResponse struct {
	RunID            string                 `json:"run_id"`
	Status           string                 `json:"status"`
	TotalSlides      int                    `json:"total_slides"`
	SuccessfulSlides int                    `json:"successful_slides"`
	FailedSlides     int                    `json:"failed_slides"`
	ContentGenerated bool                   `json:"content_generated"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	Outcomes         []SlideOutcomeResponse `json:"outcomes,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func outcomeToResponse(o domain.SlideOutcome) SlideOutcomeResponse {
	return SlideOutcomeResponse{
		SlideID:        o.SlideID.String(),
		SlideIndex:     o.SlideIndex,
		SlideType:      string(o.SlideType),
		Success:        o.Success,
		Title:          o.Title,
		Subtitle:       o.Subtitle,
		BodyHTML:       o.BodyHTML,
		FailureReason:  string(o.FailureReason),
		FailureMessage: o.FailureMessage,
	}
}

func stageResultToResponse(result domain.StageResult) StageResultResponse {
	outcomes := make([]SlideOutcomeResponse, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		outcomes = append(outcomes, outcomeToResponse(o))
	}
	return StageResultResponse{
		PresentationID:   result.PresentationID.String(),
		TotalSlides:      result.TotalSlides,
		SuccessfulSlides: result.SuccessfulSlides,
		FailedSlides:     result.FailedSlides,
		ContentGenerated: result.ContentGenerated,
		Outcomes:         outcomes,
		StartedAt:        result.StartedAt,
		DurationMillis:   result.Duration.Milliseconds(),
	}
}

func runToResponse(run *store.RunRecord) RunResponse {
	return RunResponse{
		RunID:            run.ID.String(),
		Status:           string(run.Status),
		TotalSlides:      run.TotalSlides,
		SuccessfulSlides: run.SuccessfulSlides,
		FailedSlides:     run.FailedSlides,
		ContentGenerated: run.ContentGenerated,
		ErrorMessage:     run.ErrorMessage,
		CreatedAt:        run.CreatedAt,
		UpdatedAt:        run.UpdatedAt,
	}
}
