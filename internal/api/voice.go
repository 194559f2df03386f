package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Voice engine versions accepted by the generate-voice endpoint.
const (
	VoiceVersionV1 = "v1"
	VoiceVersionV2 = "v2"
)

// VoiceRequest describes one voice generation call. Text must fit the
// endpoint's input limit; see the segment package for splitting longer text.
type VoiceRequest struct {
	Text    string
	Seed    string  // voice seed or preset name
	Voice   float64 // preset voice index, -1 to use Seed
	Opus    bool    // request opus instead of mp3
	Version string  // "v1" or "v2"
}

// Format returns the audio container the request will produce.
func (r VoiceRequest) Format() string {
	if r.Opus {
		return "webm"
	}
	return "mp3"
}

func (r VoiceRequest) query() url.Values {
	q := url.Values{}
	q.Set("text", r.Text)
	q.Set("seed", r.Seed)
	q.Set("voice", strconv.FormatFloat(r.Voice, 'f', -1, 64))
	q.Set("opus", strconv.FormatBool(r.Opus))
	q.Set("version", r.Version)
	return q
}

// GenerateVoice synthesizes speech for req.Text and returns the raw audio.
func (c *Client) GenerateVoice(ctx context.Context, req VoiceRequest) ([]byte, error) {
	return c.do(ctx, "generate-voice", http.MethodGet, "/ai/generate-voice", req.query(), nil)
}
