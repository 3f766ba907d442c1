package service

import (
	"errors"
	"fmt"

	"github.com/slatefield/deckgen-api/internal/store"
)

// Common sentinel errors for the presentation service
var (
	// ErrRunNotFound indicates that the requested run does not exist
	ErrRunNotFound = errors.New("run not found")
)

// PresentationServiceError wraps errors from the presentation service
// with context about the failed operation.
type PresentationServiceError struct {
	// Operation is the operation that failed (e.g., "start_run", "execute_run")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for PresentationServiceError.
func (e *PresentationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("presentation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("presentation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PresentationServiceError) Unwrap() error {
	return e.Err
}

// NewPresentationServiceError creates a new PresentationServiceError.
// Known sentinel errors are returned directly without wrapping so that
// callers can match them with errors.Is.
func NewPresentationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrRunNotFound) {
		return ErrRunNotFound
	}

	// Store-level not-found maps to the service-level sentinel.
	if errors.Is(err, store.ErrRunNotFound) {
		return ErrRunNotFound
	}

	return &PresentationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
