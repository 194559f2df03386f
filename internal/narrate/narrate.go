// Package narrate turns text of any length into speech by splitting it into
// voice-sized segments and synthesizing them one after another.
package narrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/jackzampolin/novelai/internal/api"
	"github.com/jackzampolin/novelai/internal/segment"
)

const (
	DefaultSeed       = "Aini"
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// VoiceGenerator synthesizes a single segment. *api.Client satisfies it.
type VoiceGenerator interface {
	GenerateVoice(ctx context.Context, req api.VoiceRequest) ([]byte, error)
}

// Config holds narration settings.
type Config struct {
	Seed    string  // default: DefaultSeed
	Voice   float64 // -1 to use Seed
	Opus    bool
	Version string // default: api.VoiceVersionV2

	MaxRetries        int           // retries per segment after the first attempt; default: DefaultMaxRetries
	RetryDelay        time.Duration // base backoff delay; default: DefaultRetryDelay
	RequestsPerMinute int           // default: DefaultRequestsPerMinute

	Segmenter *segment.Segmenter // default: the voice segmenter
	Logger    *slog.Logger
}

// Narrator drives segment-by-segment voice generation.
type Narrator struct {
	gen VoiceGenerator

	mu  sync.RWMutex // guards the retry settings in cfg
	cfg Config

	segmenter *segment.Segmenter
	limiter   *RateLimiter
	logger    *slog.Logger
}

// SegmentAudio is the synthesized audio for one segment.
type SegmentAudio struct {
	Index    int    `json:"index" yaml:"index"` // position in the segmenter output
	Text     string `json:"text" yaml:"text"`
	Audio    []byte `json:"-" yaml:"-"`
	Attempts int    `json:"attempts,omitempty" yaml:"attempts,omitempty"`
}

// Result is a completed narration.
type Result struct {
	RunID    uuid.UUID      `json:"run_id"`
	Format   string         `json:"format"`
	Segments []SegmentAudio `json:"segments"`
}

// Audio concatenates the segment audio in order.
func (r *Result) Audio() []byte {
	var buf bytes.Buffer
	for _, s := range r.Segments {
		buf.Write(s.Audio)
	}
	return buf.Bytes()
}

// SegmentError reports the segment whose generation failed.
type SegmentError struct {
	Index int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Index, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// New creates a Narrator around gen.
func New(gen VoiceGenerator, cfg Config) *Narrator {
	if cfg.Seed == "" {
		cfg.Seed = DefaultSeed
	}
	if cfg.Version == "" {
		cfg.Version = api.VoiceVersionV2
	}
	cfg.MaxRetries, cfg.RetryDelay = retryDefaults(cfg.MaxRetries, cfg.RetryDelay)
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Narrator{
		gen:       gen,
		cfg:       cfg,
		segmenter: cfg.Segmenter,
		limiter:   NewRateLimiter(cfg.RequestsPerMinute),
		logger:    cfg.Logger,
	}
}

func retryDefaults(maxRetries int, delay time.Duration) (int, time.Duration) {
	if maxRetries < 0 {
		maxRetries = 0
	} else if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return maxRetries, delay
}

// Retune applies the retry and rate settings of cfg to a narrator that may be
// running. The rate applies at once, retry settings from the next segment on.
// Voice settings stay fixed for the narrator's lifetime.
func (n *Narrator) Retune(cfg Config) {
	maxRetries, delay := retryDefaults(cfg.MaxRetries, cfg.RetryDelay)

	n.mu.Lock()
	n.cfg.MaxRetries = maxRetries
	n.cfg.RetryDelay = delay
	n.cfg.RequestsPerMinute = cfg.RequestsPerMinute
	n.mu.Unlock()

	n.limiter.SetRate(cfg.RequestsPerMinute)
	n.logger.Info("narration retuned",
		"max_retries", maxRetries,
		"retry_delay", delay,
		"requests_per_minute", n.limiter.Status().TokensLimit)
}

func (n *Narrator) retryPolicy() (int, time.Duration) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg.MaxRetries, n.cfg.RetryDelay
}

// Limiter exposes the narrator's rate limiter.
func (n *Narrator) Limiter() *RateLimiter {
	return n.limiter
}

// Segments returns the pieces Narrate would synthesize, with whitespace-only
// segments already removed. Indexes match SegmentAudio.Index.
func (n *Narrator) Segments(text string) []SegmentAudio {
	var pieces []string
	if n.segmenter != nil {
		pieces = n.segmenter.Split(text)
	} else {
		pieces = segment.ForVoice(text)
	}

	out := make([]SegmentAudio, 0, len(pieces))
	for i, p := range pieces {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, SegmentAudio{Index: i, Text: p})
	}
	return out
}

// Narrate synthesizes text. Segments are generated in order and the first
// segment that still fails after its retries aborts the run.
func (n *Narrator) Narrate(ctx context.Context, text string) (*Result, error) {
	if n.gen == nil {
		return nil, errors.New("narrate: no voice generator configured")
	}

	result := &Result{
		RunID:  uuid.New(),
		Format: n.request("").Format(),
	}
	logger := n.logger.With("run_id", result.RunID.String())

	segments := n.Segments(text)
	logger.Info("narration started", "segments", len(segments), "bytes", len(text))

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		audio, attempts, err := n.generate(ctx, logger, seg)
		if err != nil {
			logger.Error("segment failed", "index", seg.Index, "attempts", attempts, "error", err)
			return nil, &SegmentError{Index: seg.Index, Err: err}
		}

		seg.Audio = audio
		seg.Attempts = attempts
		result.Segments = append(result.Segments, seg)
		logger.Debug("segment done", "index", seg.Index, "attempts", attempts, "audio_bytes", len(audio))
	}

	logger.Info("narration finished", "segments", len(result.Segments))
	return result, nil
}

func (n *Narrator) generate(ctx context.Context, logger *slog.Logger, seg SegmentAudio) ([]byte, int, error) {
	req := n.request(seg.Text)
	maxRetries, delay := n.retryPolicy()
	attempts := 0

	audio, err := retry.DoWithData(
		func() ([]byte, error) {
			if err := n.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			attempts++

			data, err := n.gen.GenerateVoice(ctx, req)
			if err != nil {
				if reqErr, ok := api.AsRequestError(err); ok && reqErr.StatusCode == http.StatusTooManyRequests {
					n.limiter.Record429(reqErr.RetryAfter)
				}
				return nil, err
			}
			return data, nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(maxRetries)+1),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			logger.Warn("retrying segment", "index", seg.Index, "attempt", attempt+1, "error", err)
		}),
	)
	return audio, attempts, err
}

func (n *Narrator) request(text string) api.VoiceRequest {
	return api.VoiceRequest{
		Text:    text,
		Seed:    n.cfg.Seed,
		Voice:   n.cfg.Voice,
		Opus:    n.cfg.Opus,
		Version: n.cfg.Version,
	}
}

// retryable reports whether a failed attempt is worth repeating.
func retryable(err error) bool {
	reqErr, ok := api.AsRequestError(err)
	return ok && reqErr.Temporary()
}
