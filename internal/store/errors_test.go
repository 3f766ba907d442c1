package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrNotFound",
			err:      fmt.Errorf("failed to load: %w", ErrNotFound),
			expected: true,
		},
		{
			name:     "ErrRunNotFound",
			err:      ErrRunNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrRunNotFound",
			err:      fmt.Errorf("lookup: %w", ErrRunNotFound),
			expected: true,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFoundError(tc.err); got != tc.expected {
				t.Errorf("IsNotFoundError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: true,
		},
		{
			name:     "wrapped ErrDuplicate",
			err:      fmt.Errorf("create run: %w", ErrDuplicate),
			expected: true,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDuplicateError(tc.err); got != tc.expected {
				t.Errorf("IsDuplicateError(%v) = %v, want %v", tc.err, got, tc.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Run("formats with underlying error", func(t *testing.T) {
		err := NewStoreError("run", "create", "insert failed", ErrDuplicate)
		want := "run create: insert failed: record already exists"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("formats without underlying error", func(t *testing.T) {
		err := NewStoreError("run", "get", "bad ID", nil)
		want := "run get: bad ID"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("unwraps to the underlying sentinel", func(t *testing.T) {
		err := NewStoreError("run", "get", "missing", ErrRunNotFound)
		if !errors.Is(err, ErrRunNotFound) {
			t.Error("expected errors.Is to match ErrRunNotFound through StoreError")
		}
		if !errors.Is(err, ErrNotFound) {
			t.Error("expected errors.Is to match ErrNotFound through StoreError")
		}
	})
}
