package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/slatefield/deckgen-api/internal/api/shared"
	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/generation"
	"github.com/slatefield/deckgen-api/internal/service"
	"github.com/slatefield/deckgen-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes. This keeps
// the mapping in one place so handlers never leak internal error types to
// clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Not found
	case errors.Is(err, service.ErrRunNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Malformed strawman: the presentation-level entry check failed. The
	// document was readable but cannot be processed.
	case errors.Is(err, generation.ErrMalformedPresentation),
		errors.Is(err, domain.ErrEmptyPresentationTitle),
		errors.Is(err, domain.ErrNoSlides),
		errors.Is(err, domain.ErrFooterTooLong):
		return http.StatusUnprocessableEntity

	// Bad request
	case errors.As(err, &validationErrs),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Conflict
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the error.
// Internal detail stays in the logs.
func GetSafeErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, service.ErrRunNotFound):
		return "Run not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, generation.ErrMalformedPresentation):
		return "Malformed presentation document"

	case errors.Is(err, domain.ErrEmptyPresentationTitle):
		return "Presentation title cannot be empty"

	case errors.Is(err, domain.ErrNoSlides):
		return "Presentation must contain at least one slide"

	case errors.Is(err, domain.ErrFooterTooLong):
		return fmt.Sprintf("Footer exceeds %d characters", domain.MaxFooterChars)

	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for an internal error: the mapped
// status code plus either the given default message or, when the default is
// empty, the safe message derived from the error itself.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := defaultMsg
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError reduces a struct validation error to a
// user-friendly message naming the offending field without echoing input.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly fragments.
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
