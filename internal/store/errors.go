package store

import (
	"errors"
	"fmt"
)

// Common errors returned by store implementations. These provide a
// consistent error contract regardless of the underlying storage
// technology, so callers can react to outcomes without inspecting
// driver-specific error types.
var (
	// ErrNotFound indicates that a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates that an insert would violate a uniqueness
	// constraint, such as creating two runs with the same ID.
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidEntity indicates that a record failed a storage-level
	// constraint, such as a check or not-null violation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed indicates that an update affected no rows.
	ErrUpdateFailed = errors.New("update failed")
)

// Entity-specific variants wrap the common sentinels so that callers can
// match either the broad category or the exact entity.
var (
	// ErrRunNotFound indicates that no run record exists for the given ID.
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// IsNotFoundError reports whether err indicates a missing record,
// including entity-specific variants like ErrRunNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err indicates a uniqueness violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError provides additional context about a storage failure while
// preserving the underlying error for errors.Is / errors.As checks.
type StoreError struct {
	// Entity is the type of record involved, e.g. "run".
	Entity string

	// Operation is the storage operation that failed, e.g. "create".
	Operation string

	// Message is a human-readable description of the failure.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Entity, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Entity, e.Operation, e.Message)
}

// Unwrap returns the underlying error so wrapped sentinels stay matchable.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError with the given context.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
