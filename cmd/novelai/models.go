package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/model"
)

type modelsReport struct {
	Text         []model.TextModel  `json:"text" yaml:"text"`
	Image        []model.ImageModel `json:"image" yaml:"image"`
	DefaultText  model.TextModel    `json:"default_text" yaml:"default_text"`
	DefaultImage model.ImageModel   `json:"default_image" yaml:"default_image"`
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known text and image models",
	RunE: func(cmd *cobra.Command, args []string) error {
		if api.GetOutputFormat() == api.OutputFormatText {
			var names []string
			for _, m := range model.TextModels() {
				names = append(names, string(m))
			}
			for _, m := range model.ImageModels() {
				names = append(names, string(m))
			}
			return output(cmd, names)
		}

		return output(cmd, modelsReport{
			Text:         model.TextModels(),
			Image:        model.ImageModels(),
			DefaultText:  model.DefaultTextModel,
			DefaultImage: model.DefaultImageModel,
		})
	},
}
