package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config.yaml in the working
// directory and from DECKGEN_-prefixed environment variables, with
// environment variables taking precedence. Returns a validated Config.
func Load() (*Config, error) {
	return loadWithFile("")
}

// LoadFromFile is Load with an explicit config file path instead of the
// working-directory lookup. Used by tests and tooling.
func LoadFromFile(configPath string) (*Config, error) {
	return loadWithFile(configPath)
}

func loadWithFile(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing working-directory config file is fine; anything else,
		// including an unreadable explicit file, is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("DECKGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so keys
	// without defaults need explicit bindings.
	for _, key := range []string{
		"generation.base_url",
		"generation.signing_key",
		"generation.gemini_api_key",
		"generation.gemini_model",
		"generation.openai_api_key",
		"generation.openai_model",
		"generation.openai_base_url",
		"database.url",
	} {
		envVar := "DECKGEN_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("generation.provider", "slidesvc")
	v.SetDefault("generation.api_version", "v1")
	v.SetDefault("generation.request_timeout_seconds", 30)
	v.SetDefault("generation.max_retries", 2)
	v.SetDefault("generation.retry_delay_seconds", 2)
	v.SetDefault("generation.stage_timeout_seconds", 300)
	v.SetDefault("generation.max_concurrent", 1)
	v.SetDefault("generation.success_policy", "any")

	v.SetDefault("deck.enabled", false)
	v.SetDefault("deck.preview_enabled", false)

	v.SetDefault("task.queue_size", 64)
	v.SetDefault("task.worker_count", 2)
}
