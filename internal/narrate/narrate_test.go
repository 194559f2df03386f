package narrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/segment"
)

// fakeGenerator replays scripted failures and then echoes the text back as audio.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []api.VoiceRequest
	failures map[string][]error // keyed by segment text, consumed in order
}

func (f *fakeGenerator) GenerateVoice(ctx context.Context, req api.VoiceRequest) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &api.RequestError{Op: "generate-voice", Err: err}
	}
	f.requests = append(f.requests, req)
	if errs := f.failures[req.Text]; len(errs) > 0 {
		f.failures[req.Text] = errs[1:]
		return nil, errs[0]
	}
	return []byte("<" + req.Text + ">"), nil
}

func (f *fakeGenerator) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.Text
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSegmenter(t *testing.T) *segment.Segmenter {
	t.Helper()
	s, err := segment.New(segment.WithCeiling(10))
	if err != nil {
		t.Fatalf("segment.New() error = %v", err)
	}
	return s
}

func newTestNarrator(t *testing.T, gen VoiceGenerator, maxRetries int) *Narrator {
	t.Helper()
	return New(gen, Config{
		Seed:              "Ligeia",
		Voice:             -1,
		MaxRetries:        maxRetries,
		RetryDelay:        time.Millisecond,
		RequestsPerMinute: 60000,
		Segmenter:         testSegmenter(t),
		Logger:            quietLogger(),
	})
}

func statusErr(code int) error {
	return &api.RequestError{Op: "generate-voice", StatusCode: code}
}

func TestNarrate_InOrder(t *testing.T) {
	gen := &fakeGenerator{}
	n := newTestNarrator(t, gen, 1)

	// Ceiling 10 splits this into "aaaa,bbbb" and ",cccc".
	res, err := n.Narrate(context.Background(), "aaaa,bbbb,cccc")
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}

	want := []string{"aaaa,bbbb", ",cccc"}
	if got := gen.texts(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("requests = %q, want %q", got, want)
	}
	if got := string(res.Audio()); got != "<aaaa,bbbb><,cccc>" {
		t.Fatalf("Audio() = %q", got)
	}
	if res.Format != "mp3" {
		t.Fatalf("Format = %q, want mp3", res.Format)
	}
	for i, seg := range res.Segments {
		if seg.Index != i || seg.Attempts != 1 {
			t.Fatalf("segment %d = %+v", i, seg)
		}
	}
	for _, req := range gen.requests {
		if req.Seed != "Ligeia" || req.Voice != -1 || req.Version != api.VoiceVersionV2 {
			t.Fatalf("unexpected request settings: %+v", req)
		}
	}
}

func TestNarrate_SkipsWhitespaceSegments(t *testing.T) {
	gen := &fakeGenerator{}
	n := newTestNarrator(t, gen, 0)

	// The paragraph break forms its own whitespace-only segment.
	res, err := n.Narrate(context.Background(), "aaaaaaaaa\n\n         bbbb")
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	for _, text := range gen.texts() {
		if strings.TrimSpace(text) == "" {
			t.Fatalf("whitespace segment was sent: %q", text)
		}
	}
	if len(res.Segments) != len(gen.texts()) {
		t.Fatalf("got %d segments for %d requests", len(res.Segments), len(gen.texts()))
	}
}

func TestNarrate_EmptyInput(t *testing.T) {
	gen := &fakeGenerator{}
	n := newTestNarrator(t, gen, 0)

	res, err := n.Narrate(context.Background(), "")
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if len(res.Segments) != 0 || len(gen.texts()) != 0 {
		t.Fatalf("expected no work, got %d segments", len(res.Segments))
	}
}

func TestNarrate_Retries(t *testing.T) {
	tests := []struct {
		name         string
		failures     []error
		maxRetries   int
		wantErr      bool
		wantAttempts int
	}{
		{
			name:         "retries 429 then succeeds",
			failures:     []error{statusErr(http.StatusTooManyRequests)},
			maxRetries:   2,
			wantAttempts: 2,
		},
		{
			name:         "retries 5xx then succeeds",
			failures:     []error{statusErr(http.StatusBadGateway), statusErr(http.StatusInternalServerError)},
			maxRetries:   2,
			wantAttempts: 3,
		},
		{
			name:         "retries transport errors",
			failures:     []error{&api.RequestError{Op: "generate-voice", Err: errors.New("connection reset")}},
			maxRetries:   1,
			wantAttempts: 2,
		},
		{
			name:         "does not retry 4xx",
			failures:     []error{statusErr(http.StatusUnauthorized)},
			maxRetries:   3,
			wantErr:      true,
			wantAttempts: 1,
		},
		{
			name:         "gives up after retries",
			failures:     []error{statusErr(503), statusErr(503), statusErr(503)},
			maxRetries:   2,
			wantErr:      true,
			wantAttempts: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{failures: map[string][]error{"hello": tt.failures}}
			n := newTestNarrator(t, gen, tt.maxRetries)

			res, err := n.Narrate(context.Background(), "hello")
			if got := len(gen.texts()); got != tt.wantAttempts {
				t.Fatalf("attempts = %d, want %d", got, tt.wantAttempts)
			}
			if tt.wantErr {
				var segErr *SegmentError
				if !errors.As(err, &segErr) {
					t.Fatalf("expected *SegmentError, got %v", err)
				}
				if segErr.Index != 0 {
					t.Fatalf("failed index = %d, want 0", segErr.Index)
				}
				if !errors.Is(err, api.ErrRequestFailed) {
					t.Fatalf("expected ErrRequestFailed in chain, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Narrate() error = %v", err)
			}
			if res.Segments[0].Attempts != tt.wantAttempts {
				t.Fatalf("recorded attempts = %d, want %d", res.Segments[0].Attempts, tt.wantAttempts)
			}
		})
	}
}

func TestNarrate_StopsAtFailingSegment(t *testing.T) {
	gen := &fakeGenerator{failures: map[string][]error{",cccc": {statusErr(http.StatusBadRequest)}}}
	n := newTestNarrator(t, gen, 2)

	_, err := n.Narrate(context.Background(), "aaaa,bbbb,cccc")
	var segErr *SegmentError
	if !errors.As(err, &segErr) || segErr.Index != 1 {
		t.Fatalf("expected failure at segment 1, got %v", err)
	}
}

func TestNarrate_429DrainsLimiter(t *testing.T) {
	gen := &fakeGenerator{failures: map[string][]error{"hello": {statusErr(http.StatusTooManyRequests)}}}
	n := newTestNarrator(t, gen, 1)

	if _, err := n.Narrate(context.Background(), "hello"); err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if n.Limiter().Status().Last429Time.IsZero() {
		t.Fatal("expected 429 to be recorded on the limiter")
	}
}

func TestNarrate_Retune(t *testing.T) {
	failures := []error{statusErr(503), statusErr(503)}
	gen := &fakeGenerator{failures: map[string][]error{"hello": failures}}
	n := newTestNarrator(t, gen, -1)

	if _, err := n.Narrate(context.Background(), "hello"); err == nil {
		t.Fatal("expected failure with retries disabled")
	}

	n.Retune(Config{MaxRetries: 2, RetryDelay: time.Millisecond, RequestsPerMinute: 30000})
	if got := n.Limiter().Status().TokensLimit; got != 30000 {
		t.Fatalf("TokensLimit = %d, want 30000", got)
	}

	res, err := n.Narrate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Narrate() after Retune error = %v", err)
	}
	if res.Segments[0].Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", res.Segments[0].Attempts)
	}
	gen.mu.Lock()
	last := gen.requests[len(gen.requests)-1]
	gen.mu.Unlock()
	if last.Seed != "Ligeia" {
		t.Fatalf("seed = %q, voice settings should survive Retune", last.Seed)
	}
}

func TestNarrate_Canceled(t *testing.T) {
	gen := &fakeGenerator{}
	n := newTestNarrator(t, gen, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.Narrate(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(gen.texts()) != 0 {
		t.Fatal("no request should be sent after cancellation")
	}
}

func TestNarrate_NoGenerator(t *testing.T) {
	n := New(nil, Config{Logger: quietLogger()})
	if _, err := n.Narrate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without a generator")
	}
}

func TestNew_Defaults(t *testing.T) {
	n := New(&fakeGenerator{}, Config{Opus: true})
	if n.cfg.Seed != DefaultSeed || n.cfg.Version != api.VoiceVersionV2 {
		t.Fatalf("unexpected defaults: %+v", n.cfg)
	}
	if n.cfg.MaxRetries != DefaultMaxRetries || n.cfg.RetryDelay != DefaultRetryDelay {
		t.Fatalf("unexpected retry defaults: %+v", n.cfg)
	}
	if n.request("x").Format() != "webm" {
		t.Fatal("opus narration should produce webm")
	}
	if New(&fakeGenerator{}, Config{MaxRetries: -1}).cfg.MaxRetries != 0 {
		t.Fatal("negative MaxRetries should disable retries")
	}
}

func TestSegments_UsesVoiceSegmenterByDefault(t *testing.T) {
	n := New(&fakeGenerator{}, Config{Logger: quietLogger()})
	text := strings.Repeat("word ", 300)
	segs := n.Segments(text)
	if len(segs) < 2 {
		t.Fatalf("expected %d-byte text to be split, got %d segments", len(text), len(segs))
	}
	for _, s := range segs {
		if len(s.Text) >= segment.MaxVoiceInputLength {
			t.Fatalf("segment of %d bytes exceeds the voice limit", len(s.Text))
		}
	}
}
