package generation

import (
	"context"
	"errors"

	"github.com/slatefield/deckgen-api/internal/domain"
)

// Common errors returned by the generation package
var (
	// ErrMalformedPresentation is returned when the entry check rejects the
	// presentation itself. This is the only error that fails a whole run.
	ErrMalformedPresentation = errors.New("malformed presentation input")

	// ErrMissingField is returned when a slide descriptor lacks a required
	// field or carries a classification outside the taxonomy
	ErrMissingField = errors.New("slide descriptor missing required field")

	// ErrUnknownVariant is returned when no request mapping exists for a
	// slide's variant. This indicates a configuration gap, not service trouble
	ErrUnknownVariant = errors.New("no request mapping for slide variant")

	// ErrServiceUnavailable is returned when the generation service cannot be
	// reached at all
	ErrServiceUnavailable = errors.New("generation service unavailable")

	// ErrServiceError is returned when the generation service responds with an
	// error status
	ErrServiceError = errors.New("generation service returned an error")

	// ErrInvalidResponse is returned when a service response cannot be parsed
	// or is missing required content
	ErrInvalidResponse = errors.New("invalid response from generation service")

	// ErrContentTooLong is returned when generated content exceeds a character
	// ceiling. Over-limit content is rejected, never truncated
	ErrContentTooLong = errors.New("generated content exceeds character ceiling")

	// ErrTimeout is returned when a generation call exceeds its deadline
	ErrTimeout = errors.New("generation request timed out")

	// ErrInvalidConfig is returned when stage or client configuration is invalid
	ErrInvalidConfig = errors.New("invalid generation configuration")
)

// FailureReasonForError maps a per-slide error to the stable outcome reason
// recorded on its SlideOutcome. Unrecognized errors are categorized as service
// errors since the client boundary produces the bulk of them.
func FailureReasonForError(err error) domain.FailureReason {
	switch {
	case errors.Is(err, ErrMissingField):
		return domain.FailureReasonMissingField
	case errors.Is(err, ErrUnknownVariant):
		return domain.FailureReasonUnknownVariant
	case errors.Is(err, ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.FailureReasonTimeout
	case errors.Is(err, ErrServiceUnavailable):
		return domain.FailureReasonServiceUnavailable
	case errors.Is(err, ErrContentTooLong):
		return domain.FailureReasonContentTooLong
	case errors.Is(err, ErrInvalidResponse):
		return domain.FailureReasonInvalidResponse
	default:
		return domain.FailureReasonServiceError
	}
}
