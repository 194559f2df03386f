package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/segment"
)

var (
	segmentFile    string
	segmentPolicy  string
	segmentCeiling int
)

// segmentInfo is one row of the segment command's structured output.
type segmentInfo struct {
	Index int    `json:"index" yaml:"index"`
	Bytes int    `json:"bytes" yaml:"bytes"`
	Text  string `json:"text" yaml:"text"`
}

type segmentReport struct {
	Policy   string        `json:"policy" yaml:"policy"`
	Ceiling  int           `json:"ceiling" yaml:"ceiling"`
	Count    int           `json:"count" yaml:"count"`
	Segments []segmentInfo `json:"segments" yaml:"segments"`
}

var segmentCmd = &cobra.Command{
	Use:   "segment [text]",
	Short: "Split text into voice-sized segments",
	Long: `Split text the way the voice command does before synthesis.

Text is read from the argument, from --file, or from stdin. Nothing is sent
to the API.

Examples:
  novelai segment --file chapter.txt
  novelai segment --policy drop --ceiling 200 < notes.txt
  novelai segment -o text "A short line stays whole."`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd, args, segmentFile)
		if err != nil {
			return err
		}

		policy, err := segment.ParsePolicy(segmentPolicy)
		if err != nil {
			return err
		}
		s, err := segment.New(segment.WithPolicy(policy), segment.WithCeiling(segmentCeiling))
		if err != nil {
			return err
		}

		segments := s.Split(text)
		if api.GetOutputFormat() == api.OutputFormatText {
			return output(cmd, segments)
		}

		report := segmentReport{
			Policy:   s.Policy().String(),
			Ceiling:  s.Ceiling(),
			Count:    len(segments),
			Segments: make([]segmentInfo, len(segments)),
		}
		for i, seg := range segments {
			report.Segments[i] = segmentInfo{Index: i, Bytes: len(seg), Text: seg}
		}
		return output(cmd, report)
	},
}

func init() {
	segmentCmd.Flags().StringVarP(&segmentFile, "file", "f", "", "read text from file (- for stdin)")
	segmentCmd.Flags().StringVar(&segmentPolicy, "policy", segment.KeepDelimiters.String(), "boundary handling: keep or drop")
	segmentCmd.Flags().IntVar(&segmentCeiling, "ceiling", segment.MaxVoiceInputLength, "segment length ceiling in bytes")
}
