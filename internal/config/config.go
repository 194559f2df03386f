// Package config loads novelai settings from config.yaml, NOVELAI_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/model"
	"github.com/jackzampolin/novelai/internal/narrate"
	"github.com/jackzampolin/novelai/internal/segment"
)

// EnvPrefix prefixes every environment override, e.g. NOVELAI_VOICE_SEED.
const EnvPrefix = "NOVELAI"

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v      *viper.Viper
	logger *slog.Logger

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config. An
// empty cfgFile searches for config.yaml in the working directory and in
// $HOME/.novelai; a missing file is not an error.
func NewManager(cfgFile string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cm := &Manager{
		v:      viper.New(),
		logger: logger,
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	for _, entry := range DefaultEntries() {
		cm.v.SetDefault(entry.Key, entry.Value)
	}

	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("config")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.novelai")
	}

	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the loaded config file, or "" when running on
// defaults and environment only.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig reloads the configuration whenever the config file changes.
// An invalid edit is logged and the previous configuration stays active.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			cm.logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		cm.logger.Info("config reloaded", "file", e.Name)
		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRefPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// Validate checks the values that the client and narrator cannot default.
func (c *Config) Validate() error {
	if _, err := segment.ParsePolicy(c.Voice.Policy); err != nil {
		return fmt.Errorf("voice.policy: %w", err)
	}
	if c.Voice.Ceiling < 0 || c.Voice.Ceiling > segment.MaxVoiceInputLength {
		return fmt.Errorf("voice.ceiling must be at most %d (0 for the default), got %d", segment.MaxVoiceInputLength, c.Voice.Ceiling)
	}
	switch c.Voice.Version {
	case "", api.VoiceVersionV1, api.VoiceVersionV2:
	default:
		return fmt.Errorf("voice.version must be %s or %s, got %q", api.VoiceVersionV1, api.VoiceVersionV2, c.Voice.Version)
	}
	if c.Voice.MaxRetries < 0 {
		return fmt.Errorf("voice.max_retries must not be negative, got %d", c.Voice.MaxRetries)
	}
	if c.Text.Model != "" {
		if _, err := model.ParseTextModel(c.Text.Model); err != nil {
			return fmt.Errorf("text.model: %w", err)
		}
	}
	return nil
}

// ToClientConfig converts the API section to an api.Config, resolving
// ${ENV_VAR} references in the access token.
func (c *Config) ToClientConfig(logger *slog.Logger) api.Config {
	return api.Config{
		BaseURL:     c.API.BaseURL,
		AccessToken: ResolveEnvVars(c.API.AccessToken),
		UserAgent:   c.API.UserAgent,
		Timeout:     time.Duration(c.API.TimeoutSeconds) * time.Second,
		Logger:      logger,
	}
}

// ToNarrateConfig converts the voice section to a narrate.Config with a
// segmenter built from the policy and ceiling.
func (c *Config) ToNarrateConfig(logger *slog.Logger) (narrate.Config, error) {
	policy, err := segment.ParsePolicy(c.Voice.Policy)
	if err != nil {
		return narrate.Config{}, err
	}
	opts := []segment.Option{segment.WithPolicy(policy)}
	if c.Voice.Ceiling > 0 {
		opts = append(opts, segment.WithCeiling(c.Voice.Ceiling))
	}
	seg, err := segment.New(opts...)
	if err != nil {
		return narrate.Config{}, fmt.Errorf("failed to build segmenter: %w", err)
	}

	maxRetries := c.Voice.MaxRetries
	if maxRetries == 0 {
		// narrate treats zero as "use the default".
		maxRetries = -1
	}

	return narrate.Config{
		Seed:              c.Voice.Seed,
		Voice:             c.Voice.Voice,
		Opus:              c.Voice.Opus,
		Version:           c.Voice.Version,
		MaxRetries:        maxRetries,
		RetryDelay:        time.Duration(c.Voice.RetryDelaySeconds * float64(time.Second)),
		RequestsPerMinute: c.Voice.RequestsPerMinute,
		Segmenter:         seg,
		Logger:            logger,
	}, nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# NovelAI client configuration
# The access token uses ${ENV_VAR} syntax to reference an environment variable.
# Set it in your shell: export NOVELAI_ACCESS_TOKEN=xxx
# Any key can also be overridden directly, e.g. NOVELAI_VOICE_SEED=Ligeia

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
