package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidSlideType is returned when a slide classification is not part
	// of the known taxonomy.
	ErrInvalidSlideType = errors.New("invalid slide type")

	// ErrInvalidFailureReason is returned when a failure reason is not one of
	// the defined outcome reasons.
	ErrInvalidFailureReason = errors.New("invalid failure reason")
)
