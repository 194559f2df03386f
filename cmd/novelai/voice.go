package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/novelai/internal/config"
	"github.com/jackzampolin/novelai/internal/home"
	"github.com/jackzampolin/novelai/internal/narrate"
)

var (
	voiceFile    string
	voiceOut     string
	voiceSplit   bool
	voiceDryRun  bool
	voiceSeed    string
	voiceIndex   float64
	voiceOpus    bool
	voiceVersion string
)

type voiceReport struct {
	RunID    string                 `json:"run_id" yaml:"run_id"`
	Format   string                 `json:"format" yaml:"format"`
	Output   string                 `json:"output,omitempty" yaml:"output,omitempty"`
	Bytes    int                    `json:"bytes" yaml:"bytes"`
	Segments []narrate.SegmentAudio `json:"segments" yaml:"segments"`
	Files    []string               `json:"files,omitempty" yaml:"files,omitempty"`
}

var voiceCmd = &cobra.Command{
	Use:   "voice [text]",
	Short: "Narrate text with the voice endpoint",
	Long: `Narrate text of any length.

The text is split into voice-sized segments (see "novelai segment"), each
segment is synthesized in order, and the audio is concatenated. Failed
segments are retried on rate limits, server errors and network errors.

Audio is written to --out, or to ~/.novelai/audio/<run-id>/narration.<ext>.
With --split every segment is also written to its own file.

Examples:
  novelai voice "Hello there."
  novelai voice --file chapter.txt --out chapter.mp3
  novelai voice --seed Ligeia --opus --split < story.txt
  novelai voice --dry-run --file chapter.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text, err := readInput(cmd, args, voiceFile)
		if err != nil {
			return err
		}

		mgr, h, err := loadManager()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		// Flags override the config file
		flags := cmd.Flags()
		if flags.Changed("seed") {
			cfg.Voice.Seed = voiceSeed
		}
		if flags.Changed("voice") {
			cfg.Voice.Voice = voiceIndex
		}
		if flags.Changed("opus") {
			cfg.Voice.Opus = voiceOpus
		}
		if flags.Changed("engine") {
			cfg.Voice.Version = voiceVersion
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		narrateCfg, err := cfg.ToNarrateConfig(slog.Default())
		if err != nil {
			return err
		}
		n := narrate.New(newClient(cfg), narrateCfg)

		if voiceDryRun {
			return output(cmd, voiceReport{Segments: n.Segments(text)})
		}

		watchVoiceConfig(mgr, n)

		result, err := n.Narrate(ctx, text)
		if err != nil {
			return err
		}

		report, err := writeNarration(h, result)
		if err != nil {
			return err
		}
		return output(cmd, report)
	},
}

// watchVoiceConfig retunes the narration's rate and retries when the config
// file is edited during a run. It reports whether a file is being watched.
func watchVoiceConfig(mgr *config.Manager, n *narrate.Narrator) bool {
	if mgr.ConfigFileUsed() == "" {
		return false
	}
	mgr.OnChange(func(cfg *config.Config) {
		narrateCfg, err := cfg.ToNarrateConfig(slog.Default())
		if err != nil {
			slog.Warn("ignoring config change", "error", err)
			return
		}
		n.Retune(narrateCfg)
	})
	mgr.WatchConfig()
	return true
}

// writeNarration stores the concatenated audio and, with --split, each
// segment. Paths default to the run's directory in the home dir.
func writeNarration(h *home.Dir, result *narrate.Result) (*voiceReport, error) {
	runID := result.RunID.String()
	audio := result.Audio()

	if voiceOut == "" || voiceSplit {
		if err := h.EnsureNarrationDir(runID); err != nil {
			return nil, fmt.Errorf("failed to create narration directory: %w", err)
		}
	}

	out := voiceOut
	if out == "" {
		out = h.NarrationPath(runID, result.Format)
	} else if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", out, err)
	}
	if err := writeFile(out, audio); err != nil {
		return nil, err
	}

	report := &voiceReport{
		RunID:    runID,
		Format:   result.Format,
		Output:   out,
		Bytes:    len(audio),
		Segments: result.Segments,
	}

	if voiceSplit {
		for _, seg := range result.Segments {
			path := h.SegmentAudioPath(runID, seg.Index, result.Format)
			if err := writeFile(path, seg.Audio); err != nil {
				return nil, err
			}
			report.Files = append(report.Files, path)
		}
	}
	return report, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	voiceCmd.Flags().StringVarP(&voiceFile, "file", "f", "", "read text from file (- for stdin)")
	voiceCmd.Flags().StringVar(&voiceOut, "out", "", "write concatenated audio to this path")
	voiceCmd.Flags().BoolVar(&voiceSplit, "split", false, "also write every segment to its own file")
	voiceCmd.Flags().BoolVar(&voiceDryRun, "dry-run", false, "show the segments that would be sent and exit")
	voiceCmd.Flags().StringVar(&voiceSeed, "seed", "", "voice seed or preset name (overrides voice.seed)")
	voiceCmd.Flags().Float64Var(&voiceIndex, "voice", -1, "preset voice index, -1 to use the seed (overrides voice.voice)")
	voiceCmd.Flags().BoolVar(&voiceOpus, "opus", false, "request opus (webm) instead of mp3 (overrides voice.opus)")
	voiceCmd.Flags().StringVar(&voiceVersion, "engine", "", "voice engine version v1 or v2 (overrides voice.version)")
}
