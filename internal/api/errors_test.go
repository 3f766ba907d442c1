package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatefield/deckgen-api/internal/domain"
	"github.com/slatefield/deckgen-api/internal/generation"
	"github.com/slatefield/deckgen-api/internal/service"
	"github.com/slatefield/deckgen-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"run not found", service.ErrRunNotFound, http.StatusNotFound},
		{"store run not found", store.ErrRunNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", service.ErrRunNotFound), http.StatusNotFound},
		{"malformed presentation", generation.ErrMalformedPresentation, http.StatusUnprocessableEntity},
		{"empty title", domain.ErrEmptyPresentationTitle, http.StatusUnprocessableEntity},
		{"no slides", domain.ErrNoSlides, http.StatusUnprocessableEntity},
		{"footer too long", domain.ErrFooterTooLong, http.StatusUnprocessableEntity},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"duplicate", store.ErrDuplicate, http.StatusConflict},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"run not found", service.ErrRunNotFound, "Run not found"},
		{"store not found", store.ErrNotFound, "Resource not found"},
		{"malformed", generation.ErrMalformedPresentation, "Malformed presentation document"},
		{"footer", domain.ErrFooterTooLong, "Footer exceeds 20 characters"},
		{"internal detail hidden", errors.New("pq: connection refused on 10.0.0.3"), "An unexpected error occurred"},
		{"nil", nil, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	t.Run("derives_message_from_error", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/runs/x", nil)

		HandleAPIError(rr, req, service.ErrRunNotFound, "")

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var errResp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
		assert.Equal(t, "Run not found", errResp["error"])
	})

	t.Run("default_message_wins", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/presentations", nil)

		HandleAPIError(rr, req, errors.New("secret detail"), "Failed to start generation run")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var errResp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
		assert.Equal(t, "Failed to start generation run", errResp["error"])
		assert.NotContains(t, rr.Body.String(), "secret detail")
	})
}
