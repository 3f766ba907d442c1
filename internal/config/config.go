package config

import "time"

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Deck       DeckConfig       `mapstructure:"deck"`
	Task       TaskConfig       `mapstructure:"task"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// GenerationConfig configures the generation stage and the provider client
// behind it. Provider-specific requirements (API keys, base URLs) are
// enforced by each platform constructor, not here.
type GenerationConfig struct {
	Provider   string `mapstructure:"provider"    validate:"required,oneof=slidesvc gemini openai"`
	BaseURL    string `mapstructure:"base_url"    validate:"omitempty,url"`
	APIVersion string `mapstructure:"api_version" validate:"required"`

	// SigningKey, when set, enables outbound request signing for the slide
	// service client.
	SigningKey string `mapstructure:"signing_key"`

	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url" validate:"omitempty,url"`

	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	MaxRetries            int `mapstructure:"max_retries"             validate:"gte=0"`
	RetryDelaySeconds     int `mapstructure:"retry_delay_seconds"     validate:"gt=0"`
	StageTimeoutSeconds   int `mapstructure:"stage_timeout_seconds"   validate:"gt=0"`
	MaxConcurrent         int `mapstructure:"max_concurrent"          validate:"gte=1"`

	SuccessPolicy string `mapstructure:"success_policy" validate:"required,oneof=any all"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (c GenerationConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RetryDelay returns the base backoff delay as a duration.
func (c GenerationConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// StageTimeout returns the whole-run deadline as a duration.
func (c GenerationConfig) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// DeckConfig gates the optional downstream renderers.
type DeckConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PreviewEnabled bool `mapstructure:"preview_enabled"`
}

// TaskConfig sizes the background task runner.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
}

// DatabaseConfig contains the run store settings. An empty URL selects the
// in-memory run store.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}
