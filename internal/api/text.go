package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jackzampolin/novelai/internal/model"
)

// GenerateTextResponse is the result of a text generation call.
type GenerateTextResponse struct {
	Output string `json:"output"`
}

// GenerateText runs a text completion. A request without a model uses
// model.DefaultTextModel.
func (c *Client) GenerateText(ctx context.Context, req model.GenerateRequest) (*GenerateTextResponse, error) {
	if req.Model == "" {
		req.Model = model.DefaultTextModel
	}

	body, err := c.do(ctx, "generate-text", http.MethodPost, "/ai/generate", nil, req)
	if err != nil {
		return nil, err
	}

	var result GenerateTextResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &RequestError{
			Op:         "generate-text",
			StatusCode: http.StatusOK,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return &result, nil
}
