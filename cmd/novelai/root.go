package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/config"
	"github.com/jackzampolin/novelai/internal/home"
	"github.com/jackzampolin/novelai/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
	envFile      string
	metricsFile  string

	// metricsRegistry collects client metrics when --metrics-file is set.
	metricsRegistry *prometheus.Registry
)

var rootCmd = &cobra.Command{
	Use:   "novelai",
	Short: "Command line client for the NovelAI API",
	Long: `novelai talks to the NovelAI HTTP API.

It can:
  - Split long text into voice-sized segments
  - Narrate text of any length with the voice endpoint
  - Run text generation with the preset sampling parameters

Settings come from ~/.novelai/config.yaml (see "novelai config init") and
NOVELAI_* environment variables.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.novelai/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "novelai home directory (default: ~/.novelai)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or text",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "warn", "log level: debug, info, warn or error",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", "", "load environment variables from this file (default: ~/.novelai/.env if present)",
	)
	rootCmd.PersistentFlags().StringVar(
		&metricsFile, "metrics-file", "", "write Prometheus client metrics to this file on exit",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, err := api.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		api.SetOutputFormat(format)

		logger, err := newLogger(cmd.ErrOrStderr(), logLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		if metricsFile != "" {
			metricsRegistry = prometheus.NewRegistry()
		}
		return nil
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(configCmd)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func loadHome() (*home.Dir, error) {
	return home.New(homeDir)
}

// loadConfig reads the configuration.
func loadConfig() (*config.Config, *home.Dir, error) {
	mgr, h, err := loadManager()
	if err != nil {
		return nil, nil, err
	}
	return mgr.Get(), h, nil
}

// loadManager builds the config manager. Without --config, a config.yaml in
// the --home directory takes precedence over the default search path.
func loadManager() (*config.Manager, *home.Dir, error) {
	h, err := loadHome()
	if err != nil {
		return nil, nil, err
	}

	if err := loadEnv(h); err != nil {
		return nil, nil, err
	}

	path := cfgFile
	if path == "" && homeDir != "" && h.ConfigExists() {
		path = h.ConfigPath()
	}

	mgr, err := config.NewManager(path, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	if used := mgr.ConfigFileUsed(); used != "" {
		slog.Debug("loaded config", "file", used)
	}
	return mgr, h, nil
}

// loadEnv loads --env-file, or the home directory's .env when it exists.
// Variables already set in the environment win.
func loadEnv(h *home.Dir) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
		return nil
	}
	if _, err := os.Stat(h.EnvPath()); err != nil {
		return nil
	}
	if err := godotenv.Load(h.EnvPath()); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", h.EnvPath(), err)
	}
	return nil
}

// flushMetrics writes collected metrics to --metrics-file.
func flushMetrics() error {
	if metricsRegistry == nil || metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(metricsFile, metricsRegistry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// newClient builds an API client from cfg and warns when no token is set.
func newClient(cfg *config.Config) *api.Client {
	clientCfg := cfg.ToClientConfig(slog.Default())
	if metricsRegistry != nil {
		clientCfg.Metrics = api.NewMetrics(metricsRegistry)
	}
	if clientCfg.AccessToken == "" {
		slog.Warn("no access token configured; set NOVELAI_ACCESS_TOKEN or api.access_token")
	}
	return api.NewClient(clientCfg)
}

// readInput returns the text to process: the positional argument, the
// contents of --file ("-" for stdin), or stdin when neither is given.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) > 0 && file != "":
		return "", fmt.Errorf("pass text as an argument or with --file, not both")
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

// output renders data to the command's stdout in the --output format.
func output(cmd *cobra.Command, data any) error {
	return api.OutputTo(cmd.OutOrStdout(), api.GetOutputFormat(), data)
}
