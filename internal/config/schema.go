package config

import (
	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/model"
	"github.com/jackzampolin/novelai/internal/narrate"
	"github.com/jackzampolin/novelai/internal/segment"
)

// Config holds novelai configuration.
// Stored at: {home}/config.yaml
type Config struct {
	API   APIConfig   `mapstructure:"api" yaml:"api" json:"api"`
	Voice VoiceConfig `mapstructure:"voice" yaml:"voice" json:"voice"`
	Text  TextConfig  `mapstructure:"text" yaml:"text" json:"text"`
}

// APIConfig configures the HTTP client.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	AccessToken    string `mapstructure:"access_token" yaml:"access_token" json:"access_token"` // supports ${ENV_VAR} syntax
	UserAgent      string `mapstructure:"user_agent" yaml:"user_agent" json:"user_agent"`       // empty: versioned default
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"`
}

// VoiceConfig configures narration.
type VoiceConfig struct {
	Seed    string  `mapstructure:"seed" yaml:"seed" json:"seed"`
	Voice   float64 `mapstructure:"voice" yaml:"voice" json:"voice"` // -1 uses seed
	Opus    bool    `mapstructure:"opus" yaml:"opus" json:"opus"`
	Version string  `mapstructure:"version" yaml:"version" json:"version"`

	// Policy is "keep" or "drop"; see segment.ParsePolicy.
	Policy  string `mapstructure:"policy" yaml:"policy" json:"policy"`
	Ceiling int    `mapstructure:"ceiling" yaml:"ceiling" json:"ceiling"`

	MaxRetries        int     `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"` // 0 disables retries
	RetryDelaySeconds float64 `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds" json:"retry_delay_seconds"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
}

// TextConfig configures text generation.
type TextConfig struct {
	Model string `mapstructure:"model" yaml:"model" json:"model"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        api.DefaultBaseURL,
			AccessToken:    "${NOVELAI_ACCESS_TOKEN}",
			TimeoutSeconds: int(api.DefaultTimeout.Seconds()),
		},
		Voice: VoiceConfig{
			Seed:              narrate.DefaultSeed,
			Voice:             -1,
			Version:           api.VoiceVersionV2,
			Policy:            segment.KeepDelimiters.String(),
			Ceiling:           segment.MaxVoiceInputLength,
			MaxRetries:        narrate.DefaultMaxRetries,
			RetryDelaySeconds: narrate.DefaultRetryDelay.Seconds(),
			RequestsPerMinute: narrate.DefaultRequestsPerMinute,
		},
		Text: TextConfig{
			Model: string(model.DefaultTextModel),
		},
	}
}
