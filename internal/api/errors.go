package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrRequestFailed matches every error returned by Client operations.
var ErrRequestFailed = errors.New("request failed")

// maxErrorBody bounds how much of a failed response body is kept on the error.
const maxErrorBody = 512

// RequestError is the only error kind returned by the Client. It wraps
// transport failures, non-2xx responses and undecodable response bodies.
type RequestError struct {
	Op         string        // "generate-voice", "generate-text"
	StatusCode int           // 0 when no response was received
	Body       string        // truncated response body for non-2xx responses
	RetryAfter time.Duration // parsed Retry-After header, if any
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	b.WriteString("request failed")
	if e.Op != "" {
		b.WriteString(" (" + e.Op + ")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
		if e.Body != "" {
			b.WriteString(": " + e.Body)
		}
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRequestFailed) true for every RequestError.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}

// Temporary reports whether repeating the request may succeed: transport
// failures other than cancellation, 429 and 5xx responses.
func (e *RequestError) Temporary() bool {
	switch {
	case e.StatusCode == 0:
		return e.Err != nil && !errors.Is(e.Err, context.Canceled)
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	default:
		return e.StatusCode >= 500
	}
}

// AsRequestError unwraps err into a *RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// parseRetryAfter accepts either delay-seconds or an HTTP date.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxErrorBody {
		return s
	}
	// Back up to a rune boundary.
	cut := maxErrorBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
