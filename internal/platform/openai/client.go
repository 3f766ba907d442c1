// Package openai implements the generation.Client interface using the
// OpenAI chat completions API as the generation backend.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/slatefield/deckgen-api/internal/generation"
)

// Defaults applied when the config leaves the corresponding field zero.
const (
	DefaultModel      = "gpt-4o-mini"
	DefaultMaxRetries = 2
	DefaultRetryDelay = 2 * time.Second
)

// systemPrompt frames every completion: the model writes slide copy and
// answers in strict JSON.
const systemPrompt = `You write presentation slide copy. You are given one slide request as JSON. ` +
	`Respond with exactly one JSON object of the form {"title": "...", "subtitle": "...", "html": "..."} and nothing else. ` +
	`The title must be at most 50 characters and the subtitle at most 90 characters. ` +
	`For element-based requests leave html empty; for block-based requests html is a self-contained fragment for the layout.`

// Config holds the settings for the OpenAI-backed generation client.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string
	// Model is the chat model name.
	Model string
	// BaseURL overrides the API endpoint, for OpenAI-compatible gateways.
	BaseURL string
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// RetryDelay is the base backoff delay between attempts.
	RetryDelay time.Duration
}

// Client generates slide content through the chat completions API.
type Client struct {
	client openai.Client
	config Config
	logger *slog.Logger
}

// NewClient creates an OpenAI-backed generation client.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", generation.ErrInvalidConfig)
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

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		config: config,
		logger: logger.With("component", "openai_client"),
	}, nil
}

// Generate implements generation.Client. The routed request is handed to the
// model verbatim as JSON; transient API failures are retried with exponential
// backoff and jitter.
func (c *Client) Generate(ctx context.Context, req generation.RoutedRequest) (*generation.GenerationResponse, error) {
	userPrompt, err := userMessage(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.logger.Debug("retrying OpenAI call",
				"strategy", req.Strategy,
				"attempt", attempt,
				"delay_ms", delay.Milliseconds())
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: while waiting to retry: %v", generation.ErrTimeout, ctx.Err())
			case <-time.After(delay):
			}
		}

		resp, retryable, err := c.complete(ctx, userPrompt)
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

// complete performs one chat completion and parses the reply. The boolean
// reports whether the failure is transient and worth retrying.
func (c *Client) complete(ctx context.Context, userPrompt string) (*generation.GenerationResponse, bool, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		terr, transient := classifyAPIError(err)
		return nil, transient, terr
	}
	if len(resp.Choices) == 0 {
		return nil, false, fmt.Errorf("%w: completion returned no choices", generation.ErrInvalidResponse)
	}

	parsed, err := parseResponse(resp.Choices[0].Message.Content)
	return parsed, false, err
}

// userMessage renders the routed request as the model's input.
func userMessage(req generation.RoutedRequest) (string, error) {
	payload, err := json.Marshal(req.Request)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", generation.ErrInvalidConfig, err)
	}
	return fmt.Sprintf("Generation strategy: %s\nSlide request:\n%s", req.Strategy, payload), nil
}

// parseResponse extracts the JSON object from a completion, stripping a
// markdown fence if the model added one.
func parseResponse(content string) (*generation.GenerationResponse, error) {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	var resp generation.GenerationResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: completion is not valid JSON: %v", generation.ErrInvalidResponse, err)
	}
	return &resp, nil
}

// backoffDelay computes the exponential backoff with jitter for the given
// attempt (attempt >= 1).
func (c *Client) backoffDelay(attempt int) time.Duration {
	backoff := float64(c.config.RetryDelay) * math.Pow(2, float64(attempt-1))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// classifyAPIError maps an SDK failure onto the generation sentinels. The
// boolean reports whether the failure is transient and worth retrying: 429 and
// 5xx statuses are, other API errors are permanent, and anything below the
// API (no status at all) means the service is unreachable.
func classifyAPIError(err error) (error, bool) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", generation.ErrTimeout, err), false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		transient := apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
		return fmt.Errorf("%w: status %d: %s", generation.ErrServiceError, apiErr.StatusCode, apiErr.Message), transient
	}

	return fmt.Errorf("%w: %v", generation.ErrServiceUnavailable, err), true
}
