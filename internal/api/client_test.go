package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/novelai/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL:     server.URL,
		AccessToken: "test-token",
		UserAgent:   "novelai-test/1.0",
	})
}

func TestGenerateVoiceSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/ai/generate-voice" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "novelai-test/1.0" {
			t.Errorf("unexpected user agent: %q", got)
		}

		q := r.URL.Query()
		want := map[string]string{
			"text":    "Hello, world & friends?",
			"seed":    "Aini",
			"voice":   "-1",
			"opus":    "false",
			"version": "v2",
		}
		for key, value := range want {
			if got := q.Get(key); got != value {
				t.Errorf("expected %s=%q, got %q", key, value, got)
			}
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	audio, err := client.GenerateVoice(context.Background(), VoiceRequest{
		Text:    "Hello, world & friends?",
		Seed:    "Aini",
		Voice:   -1,
		Version: VoiceVersionV2,
	})
	if err != nil {
		t.Fatalf("GenerateVoice() error = %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("unexpected audio: %q", audio)
	}
}

func TestGenerateVoiceErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"statusCode":429,"message":"Too many concurrent requests"}`))
	})

	_, err := client.GenerateVoice(context.Background(), VoiceRequest{Text: "hi", Seed: "Aini"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}

	reqErr, ok := AsRequestError(err)
	if !ok {
		t.Fatalf("expected *RequestError, got %T", err)
	}
	if reqErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", reqErr.StatusCode)
	}
	if reqErr.RetryAfter != 7*time.Second {
		t.Fatalf("expected retry after 7s, got %v", reqErr.RetryAfter)
	}
	if reqErr.Body != "Too many concurrent requests" {
		t.Fatalf("unexpected body: %q", reqErr.Body)
	}
	if !reqErr.Temporary() {
		t.Fatal("expected 429 to be temporary")
	}
	if !strings.Contains(err.Error(), "request failed (generate-voice): status 429") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateVoiceTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url})
	_, err := client.GenerateVoice(context.Background(), VoiceRequest{Text: "hi"})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	reqErr, _ := AsRequestError(err)
	if reqErr.StatusCode != 0 || !reqErr.Temporary() {
		t.Fatalf("expected temporary transport error, got %+v", reqErr)
	}
}

func TestGenerateVoiceCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateVoice(ctx, VoiceRequest{Text: "hi"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	reqErr, _ := AsRequestError(err)
	if reqErr.Temporary() {
		t.Fatal("canceled request should not be temporary")
	}
}

func TestGenerateTextSuccess(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ai/generate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %q", ct)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("unmarshal body: %v", err)
		}
		_, _ = w.Write([]byte(`{"output":" and they lived happily."}`))
	})

	req := model.NewGenerateRequest("Once upon a time")
	req.Model = ""
	resp, err := client.GenerateText(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if resp.Output != " and they lived happily." {
		t.Fatalf("unexpected output: %q", resp.Output)
	}
	if payload["model"] != "kayra-v1" {
		t.Fatalf("expected default model, got %v", payload["model"])
	}
	params, ok := payload["parameters"].(map[string]any)
	if !ok {
		t.Fatal("expected parameters object")
	}
	if params["max_length"] != float64(2048) {
		t.Fatalf("unexpected max_length: %v", params["max_length"])
	}
}

func TestGenerateTextDecodeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.GenerateText(context.Background(), model.NewGenerateRequest("x"))
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	reqErr, _ := AsRequestError(err)
	if reqErr.Temporary() {
		t.Fatal("decode failure should not be temporary")
	}
}

func TestGenerateTextServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 2000)))
	})

	_, err := client.GenerateText(context.Background(), model.NewGenerateRequest("x"))
	reqErr, ok := AsRequestError(err)
	if !ok {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if !reqErr.Temporary() {
		t.Fatal("expected 502 to be temporary")
	}
	if len(reqErr.Body) > maxErrorBody+3 {
		t.Fatalf("expected truncated body, got %d bytes", len(reqErr.Body))
	}
}

func TestSetupRequestHeaders(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantAuth  string
		wantAgent string
	}{
		{
			name:      "defaults without token",
			cfg:       Config{},
			wantAuth:  "",
			wantAgent: DefaultUserAgent(),
		},
		{
			name:      "token and custom agent",
			cfg:       Config{AccessToken: "abc", UserAgent: "custom"},
			wantAuth:  "Bearer abc",
			wantAgent: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(tt.cfg)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Del("User-Agent")
			c.setupRequest(req)
			if got := req.Header.Get("Authorization"); got != tt.wantAuth {
				t.Fatalf("expected auth %q, got %q", tt.wantAuth, got)
			}
			if got := req.Header.Get("User-Agent"); got != tt.wantAgent {
				t.Fatalf("expected user agent %q, got %q", tt.wantAgent, got)
			}
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://example.com/"})
	if c.BaseURL() != "https://example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", c.BaseURL())
	}
	if NewClient(Config{}).BaseURL() != DefaultBaseURL {
		t.Fatal("expected default base URL")
	}
	if !strings.HasPrefix(DefaultUserAgent(), "NovelAI-API-Client/") || !strings.HasSuffix(DefaultUserAgent(), "/go") {
		t.Fatalf("unexpected default user agent %q", DefaultUserAgent())
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "empty", input: "", want: 0},
		{name: "seconds", input: "3", want: 3 * time.Second},
		{name: "negative", input: "-2", want: 0},
		{name: "garbage", input: "soon", want: 0},
		{name: "past date", input: "Wed, 21 Oct 2015 07:28:00 GMT", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.input); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOutputTo(t *testing.T) {
	data := map[string]any{"segments": 2}

	var buf bytes.Buffer
	if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if !strings.Contains(buf.String(), `"segments": 2`) {
		t.Fatalf("unexpected json output: %s", buf.String())
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
		t.Fatalf("yaml output: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "segments: 2" {
		t.Fatalf("unexpected yaml output: %s", buf.String())
	}

	buf.Reset()
	if err := OutputTo(&buf, OutputFormatText, []string{"a", "b"}); err != nil {
		t.Fatalf("text output: %v", err)
	}
	if buf.String() != "a\nb\n" {
		t.Fatalf("unexpected text output: %q", buf.String())
	}

	if err := OutputTo(&buf, OutputFormat("xml"), data); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": OutputFormatYAML, "JSON": OutputFormatJSON, "text": OutputFormatText} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseOutputFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseOutputFormat("toml"); err == nil {
		t.Fatal("expected error for toml")
	}
}
