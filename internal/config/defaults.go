package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoDefault is returned when no default value exists for a config key.
var ErrNoDefault = errors.New("no default exists")

// Entry is one documented configuration key.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns every configuration key with its default value,
// sorted by key. The manager registers each one with viper so that
// NOVELAI_* environment variables can override it.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	entries := []Entry{
		// API
		{Key: "api.base_url", Value: d.API.BaseURL, Description: "NovelAI API base URL"},
		{Key: "api.access_token", Value: d.API.AccessToken, Description: "Bearer token (supports ${ENV_VAR} syntax)"},
		{Key: "api.user_agent", Value: d.API.UserAgent, Description: "User-Agent header; empty uses the versioned default"},
		{Key: "api.timeout_seconds", Value: d.API.TimeoutSeconds, Description: "Per-request timeout in seconds"},

		// Voice
		{Key: "voice.seed", Value: d.Voice.Seed, Description: "Voice seed or preset name"},
		{Key: "voice.voice", Value: d.Voice.Voice, Description: "Preset voice index, -1 to use the seed"},
		{Key: "voice.opus", Value: d.Voice.Opus, Description: "Request opus (webm) instead of mp3"},
		{Key: "voice.version", Value: d.Voice.Version, Description: "Voice engine version (v1 or v2)"},
		{Key: "voice.policy", Value: d.Voice.Policy, Description: "Boundary handling when segmenting (keep or drop)"},
		{Key: "voice.ceiling", Value: d.Voice.Ceiling, Description: "Segment length ceiling in bytes"},
		{Key: "voice.max_retries", Value: d.Voice.MaxRetries, Description: "Retries per segment on 429, 5xx and transport errors"},
		{Key: "voice.retry_delay_seconds", Value: d.Voice.RetryDelaySeconds, Description: "Base backoff between retries"},
		{Key: "voice.requests_per_minute", Value: d.Voice.RequestsPerMinute, Description: "Voice request rate limit"},

		// Text
		{Key: "text.model", Value: d.Text.Model, Description: "Default text generation model"},
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// GetDefault returns the default entry for a config key.
func GetDefault(key string) (Entry, error) {
	for _, entry := range DefaultEntries() {
		if entry.Key == key {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w for key %q", ErrNoDefault, key)
}
