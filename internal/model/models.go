// Package model holds the request and response types of the NovelAI API:
// text generation parameters, their presets, and the model enumerations.
package model

import (
	"encoding/json"
	"fmt"
)

// TextModel identifies a text generation model by its wire name.
type TextModel string

const (
	TextModel2Period7B       TextModel = "2.7B"
	TextModel6Bv4            TextModel = "6B-v4"
	TextModelEuterpeV2       TextModel = "euterpe-v2"
	TextModelGenjiPython6b   TextModel = "genji-python-6b"
	TextModelGenjiJp6b       TextModel = "genji-jp-6b"
	TextModelGenjiJp6bV2     TextModel = "genji-jp-6b-v2"
	TextModelKrakeV2         TextModel = "krake-v2"
	TextModelHypebot         TextModel = "hypebot"
	TextModelInfillmodel     TextModel = "infillmodel"
	TextModelCassandra       TextModel = "cassandra"
	TextModelSigurd2Period9b TextModel = "sigurd-2.9b-v1"
	TextModelBlue            TextModel = "blue"
	TextModelRed             TextModel = "red"
	TextModelGreen           TextModel = "green"
	TextModelPurple          TextModel = "purple"
	TextModelClioV1          TextModel = "clio-v1"
	TextModelKayraV1         TextModel = "kayra-v1"

	// DefaultTextModel is used when a request does not name a model.
	DefaultTextModel = TextModelKayraV1
)

var textModels = [...]TextModel{
	TextModel2Period7B,
	TextModel6Bv4,
	TextModelEuterpeV2,
	TextModelGenjiPython6b,
	TextModelGenjiJp6b,
	TextModelGenjiJp6bV2,
	TextModelKrakeV2,
	TextModelHypebot,
	TextModelInfillmodel,
	TextModelCassandra,
	TextModelSigurd2Period9b,
	TextModelBlue,
	TextModelRed,
	TextModelGreen,
	TextModelPurple,
	TextModelClioV1,
	TextModelKayraV1,
}

// TextModels returns every known text model in declaration order.
func TextModels() []TextModel {
	out := make([]TextModel, len(textModels))
	copy(out, textModels[:])
	return out
}

// Valid reports whether m is a known text model.
func (m TextModel) Valid() bool {
	for _, known := range textModels {
		if m == known {
			return true
		}
	}
	return false
}

// ParseTextModel returns the text model with the given wire name.
func ParseTextModel(s string) (TextModel, error) {
	m := TextModel(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown text model %q", s)
	}
	return m, nil
}

// UnmarshalJSON rejects unknown model names.
func (m *TextModel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("text model must be a string: %w", err)
	}
	parsed, err := ParseTextModel(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ImageModel identifies an image generation model by its wire name.
type ImageModel string

const (
	ImageModelNaiDiffusion             ImageModel = "nai-diffusion"
	ImageModelSafeDiffusion            ImageModel = "safe-diffusion"
	ImageModelNaiDiffusionFurry        ImageModel = "nai-diffusion-furry"
	ImageModelCustom                   ImageModel = "custom"
	ImageModelNaiDiffusionInpainting   ImageModel = "nai-diffusion-inpainting"
	ImageModelNaiDiffusion3Inpainting  ImageModel = "nai-diffusion-3-inpainting"
	ImageModelSafeDiffusionInpainting  ImageModel = "safe-diffusion-inpainting"
	ImageModelFurryDiffusionInpainting ImageModel = "furry-diffusion-inpainting"
	ImageModelKandinskyVanilla         ImageModel = "kandinsky-vanilla"
	ImageModelNaiDiffusion2            ImageModel = "nai-diffusion-2"
	ImageModelNaiDiffusion3            ImageModel = "nai-diffusion-3"

	// DefaultImageModel is the newest general purpose image model.
	DefaultImageModel = ImageModelNaiDiffusion3
)

var imageModels = [...]ImageModel{
	ImageModelNaiDiffusion,
	ImageModelSafeDiffusion,
	ImageModelNaiDiffusionFurry,
	ImageModelCustom,
	ImageModelNaiDiffusionInpainting,
	ImageModelNaiDiffusion3Inpainting,
	ImageModelSafeDiffusionInpainting,
	ImageModelFurryDiffusionInpainting,
	ImageModelKandinskyVanilla,
	ImageModelNaiDiffusion2,
	ImageModelNaiDiffusion3,
}

// ImageModels returns every known image model in declaration order.
func ImageModels() []ImageModel {
	out := make([]ImageModel, len(imageModels))
	copy(out, imageModels[:])
	return out
}

// Valid reports whether m is a known image model.
func (m ImageModel) Valid() bool {
	for _, known := range imageModels {
		if m == known {
			return true
		}
	}
	return false
}

// ParseImageModel returns the image model with the given wire name.
func ParseImageModel(s string) (ImageModel, error) {
	m := ImageModel(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown image model %q", s)
	}
	return m, nil
}

// UnmarshalJSON rejects unknown model names.
func (m *ImageModel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("image model must be a string: %w", err)
	}
	parsed, err := ParseImageModel(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
