package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/model"
)

var (
	generateFile        string
	generateRequest     string
	generateModel       string
	generateMaxLength   uint32
	generateMinLength   uint32
	generateTemperature float64
)

type generateReport struct {
	Model  model.TextModel `json:"model" yaml:"model"`
	Input  string          `json:"input" yaml:"input"`
	Output string          `json:"output" yaml:"output"`
}

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate a text completion",
	Long: `Generate a text completion.

By default the prompt is sent with the configured model and the preset
sampling parameters. --request sends a complete request document instead;
it is checked against the request schema before anything is sent.

Examples:
  novelai generate "The lighthouse keeper"
  novelai generate --model clio-v1 --max-length 120 --file prompt.txt
  novelai generate --request request.json -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		var req model.GenerateRequest
		if generateRequest != "" {
			if len(args) > 0 || generateFile != "" {
				return fmt.Errorf("--request cannot be combined with a prompt")
			}
			data, err := os.ReadFile(generateRequest)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", generateRequest, err)
			}
			req, err = model.DecodeGenerateRequest(data)
			if err != nil {
				return err
			}
		} else {
			prompt, err := readInput(cmd, args, generateFile)
			if err != nil {
				return err
			}
			req, err = buildGenerateRequest(cmd, prompt, cfg.Text.Model)
			if err != nil {
				return err
			}
		}

		resp, err := newClient(cfg).GenerateText(ctx, req)
		if err != nil {
			return err
		}

		if api.GetOutputFormat() == api.OutputFormatText {
			return output(cmd, resp.Output)
		}
		return output(cmd, generateReport{Model: req.Model, Input: req.Input, Output: resp.Output})
	},
}

// buildGenerateRequest applies the model and parameter flags on top of the
// preset request.
func buildGenerateRequest(cmd *cobra.Command, prompt, configModel string) (model.GenerateRequest, error) {
	req := model.NewGenerateRequest(prompt)

	name := configModel
	if cmd.Flags().Changed("model") {
		name = generateModel
	}
	if name != "" {
		m, err := model.ParseTextModel(name)
		if err != nil {
			return req, err
		}
		req.Model = m
	}

	flags := cmd.Flags()
	if flags.Changed("max-length") {
		req.Parameters.MaxLength = generateMaxLength
	}
	if flags.Changed("min-length") {
		req.Parameters.MinLength = generateMinLength
	}
	if flags.Changed("temperature") {
		req.Parameters.Temperature = model.Float(generateTemperature)
	}
	if req.Parameters.MinLength > req.Parameters.MaxLength {
		return req, fmt.Errorf("--min-length %d exceeds --max-length %d", req.Parameters.MinLength, req.Parameters.MaxLength)
	}
	return req, nil
}

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "read the prompt from file (- for stdin)")
	generateCmd.Flags().StringVar(&generateRequest, "request", "", "send a complete JSON request document")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "text model (overrides text.model)")
	generateCmd.Flags().Uint32Var(&generateMaxLength, "max-length", 0, "maximum tokens to generate")
	generateCmd.Flags().Uint32Var(&generateMinLength, "min-length", 0, "minimum tokens to generate")
	generateCmd.Flags().Float64Var(&generateTemperature, "temperature", 0, "sampling temperature")
}
