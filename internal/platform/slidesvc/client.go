// Package slidesvc implements the generation.Client interface against the
// dedicated slide content-generation service's versioned HTTP API.
package slidesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slatefield/deckgen-api/internal/generation"
)

// Defaults applied when the config leaves the corresponding field zero.
const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRetries     = 2
	DefaultRetryDelay     = 2 * time.Second
)

// maxErrorBodyBytes bounds how much of an error response body is kept for
// error messages.
const maxErrorBodyBytes = 512

// Config holds the settings for the slide service client.
type Config struct {
	// BaseURL is the root of the generation service, without a trailing
	// version segment; routed endpoints already carry the version.
	BaseURL string
	// RequestTimeout bounds a single attempt.
	RequestTimeout time.Duration
	// MaxRetries is the number of additional attempts after the first.
	// Retries happen only for transient failures.
	MaxRetries int
	// RetryDelay is the base backoff delay between attempts.
	RetryDelay time.Duration
	// SigningKey, when set, enables outbound request signing: each request
	// carries a short-lived bearer token minted with this key.
	SigningKey string
}

// Client calls the slide generation service over HTTP. It keeps no state
// between calls beyond the underlying connection pool.
type Client struct {
	config     Config
	httpClient *http.Client
	signer     *requestSigner
	logger     *slog.Logger
}

// NewClient creates a slide service client. The base URL is required and must
// parse; other config gaps fall back to defaults.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: slide service base URL is required", generation.ErrInvalidConfig)
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %v", generation.ErrInvalidConfig, err)
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries must not be negative", generation.ErrInvalidConfig)
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	var signer *requestSigner
	if config.SigningKey != "" {
		signer = newRequestSigner(config.SigningKey)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{},
		signer:     signer,
		logger:     logger.With("component", "slidesvc_client"),
	}, nil
}

// Generate implements generation.Client. It posts the routed request to its
// endpoint with a bounded per-attempt timeout and retries transient failures
// with exponential backoff and jitter. Errors are translated into the
// generation package's sentinel errors.
func (c *Client) Generate(ctx context.Context, req generation.RoutedRequest) (*generation.GenerationResponse, error) {
	payload, err := json.Marshal(req.Request)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", generation.ErrInvalidConfig, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.logger.Debug("retrying slide generation call",
				"endpoint", req.Endpoint,
				"attempt", attempt,
				"delay_ms", delay.Milliseconds())
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: while waiting to retry: %v", generation.ErrTimeout, ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, retryable, err := c.doRequest(ctx, req.Endpoint, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		// Parent context gone means there's no point in another attempt.
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("retries exhausted: %w", lastErr)
}

// doRequest performs one attempt. The boolean reports whether the failure is
// transient and worth retrying.
func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte) (*generation.GenerationResponse, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	requestURL := strings.TrimSuffix(c.config.BaseURL, "/") + endpoint
	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("%w: building request: %v", generation.ErrInvalidConfig, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	if c.signer != nil {
		token, err := c.signer.token()
		if err != nil {
			return nil, false, fmt.Errorf("%w: signing request: %v", generation.ErrInvalidConfig, err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Deadline on the attempt (not the caller) is a timeout; anything
		// else at the transport level means the service is unreachable.
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return nil, ctx.Err() == nil, fmt.Errorf("%w: request exceeded %s", generation.ErrTimeout, c.config.RequestTimeout)
		}
		if ctx.Err() != nil {
			return nil, false, fmt.Errorf("%w: %v", generation.ErrTimeout, ctx.Err())
		}
		return nil, true, fmt.Errorf("%w: %v", generation.ErrServiceUnavailable, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	switch {
	case httpResp.StatusCode >= 200 && httpResp.StatusCode < 300:
		var genResp generation.GenerationResponse
		if err := json.NewDecoder(io.LimitReader(httpResp.Body, 1<<20)).Decode(&genResp); err != nil {
			return nil, false, fmt.Errorf("%w: decoding body: %v", generation.ErrInvalidResponse, err)
		}
		return &genResp, false, nil

	case httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500:
		// Transient service trouble: worth another attempt.
		return nil, true, fmt.Errorf("%w: status %d: %s",
			generation.ErrServiceError, httpResp.StatusCode, errorBodySnippet(httpResp.Body))

	default:
		// 4xx is permanent: the request itself is the problem.
		return nil, false, fmt.Errorf("%w: status %d: %s",
			generation.ErrServiceError, httpResp.StatusCode, errorBodySnippet(httpResp.Body))
	}
}

// backoffDelay computes the exponential backoff with jitter for the given
// attempt (attempt >= 1).
func (c *Client) backoffDelay(attempt int) time.Duration {
	backoff := float64(c.config.RetryDelay) * math.Pow(2, float64(attempt-1))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// errorBodySnippet reads a bounded, trimmed slice of an error response body
// for inclusion in error messages.
func errorBodySnippet(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return "(no body)"
	}
	return strings.TrimSpace(string(raw))
}
