// Package segment splits long text into pieces that fit the voice generation
// endpoint's per-request input limit.
//
// Text is cut at natural speech pauses (commas, sentence endings, line breaks,
// ellipses), pieces that are still too long are word-wrapped, and the result
// is greedily merged back into as few segments as the limit allows.
package segment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxVoiceInputLength is the largest input, in bytes, the voice endpoint
// accepts per call.
const MaxVoiceInputLength = 1000

// Policy controls what happens to matched boundary text during the coarse split.
type Policy int

const (
	// KeepDelimiters retains every matched boundary as its own piece, so
	// joining the output reproduces the input exactly.
	KeepDelimiters Policy = iota

	// DropDelimiters consumes matched boundaries. The output no longer
	// contains the punctuation or line breaks that were split on.
	DropDelimiters
)

// String returns the flag spelling of the policy.
func (p Policy) String() string {
	switch p {
	case KeepDelimiters:
		return "keep"
	case DropDelimiters:
		return "drop"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses "keep" or "drop".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return KeepDelimiters, nil
	case "drop":
		return DropDelimiters, nil
	default:
		return 0, fmt.Errorf("unknown delimiter policy %q (expected keep or drop)", s)
	}
}

// defaultBoundaries are regular expressions for points where speech
// naturally pauses. They are joined into a single alternation, so at any
// position the first listed pattern that matches wins.
var defaultBoundaries = [...]string{
	`,`,
	`\. `,
	`\."`,
	`,"`,
	`\? `,
	`\?"`,
	`! `,
	`!"`,
	`\n\n`,
	`\n`,
	`\.\.\.`,
	`…`,
}

// DefaultBoundaries returns a copy of the natural boundary patterns.
func DefaultBoundaries() []string {
	out := make([]string, len(defaultBoundaries))
	copy(out, defaultBoundaries[:])
	return out
}

// Segmenter splits text for voice generation. It holds no mutable state
// and is safe for concurrent use.
type Segmenter struct {
	ceiling  int
	policy   Policy
	boundary *regexp.Regexp
}

type options struct {
	ceiling    int
	policy     Policy
	boundaries []string
}

// Option configures a Segmenter.
type Option func(*options)

// WithCeiling sets the length limit in bytes.
func WithCeiling(n int) Option {
	return func(o *options) {
		o.ceiling = n
	}
}

// WithPolicy sets the delimiter policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithBoundaries replaces the natural boundary patterns.
func WithBoundaries(patterns ...string) Option {
	return func(o *options) {
		o.boundaries = patterns
	}
}

// New creates a Segmenter. Without options it behaves like ForVoice.
func New(opts ...Option) (*Segmenter, error) {
	o := options{
		ceiling:    MaxVoiceInputLength,
		policy:     KeepDelimiters,
		boundaries: DefaultBoundaries(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.ceiling <= 0 {
		return nil, fmt.Errorf("ceiling must be positive, got %d", o.ceiling)
	}
	if o.policy != KeepDelimiters && o.policy != DropDelimiters {
		return nil, fmt.Errorf("unknown delimiter policy %d", int(o.policy))
	}
	if len(o.boundaries) == 0 {
		return nil, errors.New("at least one boundary pattern is required")
	}

	alternatives := make([]string, 0, len(o.boundaries))
	for _, p := range o.boundaries {
		if p == "" {
			return nil, errors.New("boundary patterns must not be empty")
		}
		alternatives = append(alternatives, "(?:"+p+")")
	}
	re, err := regexp.Compile(strings.Join(alternatives, "|"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile boundary patterns: %w", err)
	}
	if re.MatchString("") {
		return nil, errors.New("boundary patterns must not match the empty string")
	}

	return &Segmenter{
		ceiling:  o.ceiling,
		policy:   o.policy,
		boundary: re,
	}, nil
}

var voiceSegmenter = mustNew()

func mustNew() *Segmenter {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// ForVoice splits text into segments the voice endpoint accepts, using the
// default boundaries, a 1000 byte ceiling and KeepDelimiters.
func ForVoice(text string) []string {
	return voiceSegmenter.Split(text)
}

// Ceiling returns the configured length limit in bytes.
func (s *Segmenter) Ceiling() int {
	return s.ceiling
}

// Policy returns the configured delimiter policy.
func (s *Segmenter) Policy() Policy {
	return s.policy
}

// Split returns text as an ordered, non-empty list of segments.
//
// Text no longer than the ceiling is returned unchanged as the only segment.
// Otherwise every segment is shorter than the ceiling, except a segment made
// of a single word that alone reaches it.
func (s *Segmenter) Split(text string) []string {
	if len(text) <= s.ceiling {
		return []string{text}
	}

	var pieces []string
	for _, piece := range s.coarse(text) {
		if len(piece) < s.ceiling {
			pieces = append(pieces, piece)
			continue
		}
		pieces = append(pieces, Wrap(piece, s.ceiling)...)
	}

	return merge(pieces, s.ceiling)
}

// coarse cuts text at every boundary match, leftmost first.
func (s *Segmenter) coarse(text string) []string {
	matches := s.boundary.FindAllStringIndex(text, -1)
	pieces := make([]string, 0, 2*len(matches)+1)

	last := 0
	for _, m := range matches {
		if m[0] > last {
			pieces = append(pieces, text[last:m[0]])
		}
		if s.policy == KeepDelimiters {
			pieces = append(pieces, text[m[0]:m[1]])
		}
		last = m[1]
	}
	if last < len(text) {
		pieces = append(pieces, text[last:])
	}

	return pieces
}

// merge greedily concatenates consecutive pieces while the running segment
// stays below ceiling.
func merge(pieces []string, ceiling int) []string {
	if len(pieces) == 0 {
		// Only reachable when DropDelimiters consumed the whole input.
		return []string{""}
	}

	out := make([]string, 0, len(pieces))
	var cur strings.Builder
	cur.WriteString(pieces[0])
	for _, p := range pieces[1:] {
		if cur.Len()+len(p) < ceiling {
			cur.WriteString(p)
			continue
		}
		out = append(out, cur.String())
		cur.Reset()
		cur.WriteString(p)
	}
	return append(out, cur.String())
}
