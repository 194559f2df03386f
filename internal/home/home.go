package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the novelai home directory.
	DefaultDirName = ".novelai"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// EnvFileName holds environment variables loaded before the config,
	// typically NOVELAI_ACCESS_TOKEN.
	EnvFileName = ".env"

	audioDirName = "audio"
)

// Dir represents the novelai home directory:
//
//	~/.novelai/
//	  config.yaml
//	  .env
//	  audio/
//	    <run-id>/
//	      narration.mp3
//	      segment_0000.mp3
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.novelai).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnvPath returns the path to the env file.
func (d *Dir) EnvPath() string {
	return filepath.Join(d.path, EnvFileName)
}

// EnsureExists creates the home directory and its audio directory.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.AudioDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// AudioDir returns the directory for generated audio files.
func (d *Dir) AudioDir() string {
	return filepath.Join(d.path, audioDirName)
}

// NarrationDir returns the directory holding one narration run.
func (d *Dir) NarrationDir(runID string) string {
	return filepath.Join(d.AudioDir(), runID)
}

// NarrationPath returns the path for a run's concatenated audio.
func (d *Dir) NarrationPath(runID, format string) string {
	return filepath.Join(d.NarrationDir(runID), "narration."+format)
}

// SegmentAudioPath returns the path for one segment of a run.
func (d *Dir) SegmentAudioPath(runID string, segmentIdx int, format string) string {
	return filepath.Join(
		d.NarrationDir(runID),
		fmt.Sprintf("segment_%04d.%s", segmentIdx, format),
	)
}

// EnsureNarrationDir creates the directory for a narration run.
func (d *Dir) EnsureNarrationDir(runID string) error {
	return os.MkdirAll(d.NarrationDir(runID), 0o755)
}
