// Package gemini implements the generation.Client interface using Google's
// Gemini API as the generation backend.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/slatefield/deckgen-api/internal/generation"
)

// Defaults applied when the config leaves the corresponding field zero.
const (
	DefaultModel      = "gemini-2.0-flash"
	DefaultMaxRetries = 2
	DefaultRetryDelay = 2 * time.Second
)

// Config holds the settings for the Gemini-backed generation client.
type Config struct {
	// APIKey authenticates against the Gemini API. Required.
	APIKey string
	// Model is the Gemini model name.
	Model string
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// RetryDelay is the base backoff delay between attempts.
	RetryDelay time.Duration
}

// Client generates slide content through the Gemini API. Prompts are built
// per routed strategy and responses are required to be a single JSON object.
type Client struct {
	client *genai.Client
	config Config
	logger *slog.Logger
}

// NewClient creates a Gemini-backed generation client.
//
// Parameters:
//   - ctx: Context for client initialization
//   - config: API key, model and retry settings
//   - logger: A structured logger for operation logging
//
// Returns a properly initialized Client or an error if initialization fails.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", generation.ErrInvalidConfig)
	}
	if config.Model == "" {
		config.Model = DefaultModel
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

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{
		client: client,
		config: config,
		logger: logger.With("component", "gemini_client"),
	}, nil
}

// Generate implements generation.Client. The routed strategy selects the
// prompt shape; transient API failures are retried with exponential backoff
// and jitter.
func (c *Client) Generate(ctx context.Context, req generation.RoutedRequest) (*generation.GenerationResponse, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.logger.Debug("retrying Gemini call",
				"strategy", req.Strategy,
				"attempt", attempt,
				"delay_ms", delay.Milliseconds())
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: while waiting to retry: %v", generation.ErrTimeout, ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, retryable, err := c.callModel(ctx, prompt)
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

// callModel performs one Gemini request and parses the JSON payload out of
// the model's reply. The boolean reports whether the failure is transient and
// worth retrying.
func (c *Client) callModel(ctx context.Context, prompt string) (*generation.GenerationResponse, bool, error) {
	result, err := c.client.Models.GenerateContent(ctx,
		c.config.Model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		terr, transient := classifyAPIError(err)
		return nil, transient, terr
	}

	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return nil, false, fmt.Errorf("%w: content blocked by safety filters", generation.ErrServiceError)
	}

	text := result.Text()
	if text == "" {
		return nil, false, fmt.Errorf("%w: model returned no text", generation.ErrInvalidResponse)
	}

	parsed, err := parseResponse(text)
	return parsed, false, err
}

// backoffDelay computes the exponential backoff with jitter for the given
// attempt (attempt >= 1).
func (c *Client) backoffDelay(attempt int) time.Duration {
	backoff := float64(c.config.RetryDelay) * math.Pow(2, float64(attempt-1))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// classifyAPIError maps a Gemini failure onto the generation sentinels. The
// boolean reports whether the failure is transient and worth retrying: 429 and
// 5xx statuses are, other API errors are permanent, and anything below the
// API (no status at all) means the service is unreachable.
func classifyAPIError(err error) (error, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", generation.ErrTimeout, err), false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		transient := apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
		return fmt.Errorf("%w: status %d: %s", generation.ErrServiceError, apiErr.Code, apiErr.Message), transient
	}

	return fmt.Errorf("%w: %v", generation.ErrServiceUnavailable, err), true
}
