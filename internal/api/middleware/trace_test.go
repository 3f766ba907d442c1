package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatefield/deckgen-api/internal/api/shared"
	"github.com/slatefield/deckgen-api/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	var seenTraceID string
	var loggerAttached bool

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		_, loggerAttached = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/runs/abc", nil)
	TraceMiddleware(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Len(t, seenTraceID, 32)
	assert.True(t, loggerAttached)
}
