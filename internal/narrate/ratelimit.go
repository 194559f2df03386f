package narrate

import (
	"context"
	"sync"
	"time"
)

// DefaultRequestsPerMinute is used when a limiter is built with a
// non-positive rate.
const DefaultRequestsPerMinute = 20

// RateLimiter is a token bucket gating calls to the voice endpoint. A 429
// empties the bucket and, when the server sent Retry-After, holds every
// waiter until that moment has passed.
type RateLimiter struct {
	mu sync.Mutex

	perMinute   int
	tokens      float64
	lastRefill  time.Time
	pausedUntil time.Time

	consumed int64
	waited   time.Duration
	last429  time.Time
}

// RateLimiterStatus is a snapshot of a RateLimiter.
type RateLimiterStatus struct {
	TokensAvailable int           `json:"tokens_available"`
	TokensLimit     int           `json:"tokens_limit"`
	TimeUntilToken  time.Duration `json:"time_until_token"`
	TotalConsumed   int64         `json:"total_consumed"`
	TotalWaited     time.Duration `json:"total_waited"`
	Last429Time     time.Time     `json:"last_429_time,omitempty"`
}

// NewRateLimiter creates a limiter that starts with a full bucket.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	return &RateLimiter{
		perMinute:  requestsPerMinute,
		tokens:     float64(requestsPerMinute),
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		r.refill(now)
		wait := r.untilNext(now)
		if wait == 0 {
			r.tokens--
			r.consumed++
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			r.mu.Lock()
			r.waited += wait
			r.mu.Unlock()
		}
	}
}

// TryConsume takes a token if one is available right now.
func (r *RateLimiter) TryConsume() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.refill(now)
	if r.untilNext(now) > 0 {
		return false
	}
	r.tokens--
	r.consumed++
	return true
}

// Record429 drains the bucket after a rate-limit response.
func (r *RateLimiter) Record429(retryAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.refill(now)
	r.last429 = now
	r.tokens = 0
	if retryAfter > 0 {
		if until := now.Add(retryAfter); until.After(r.pausedUntil) {
			r.pausedUntil = until
		}
	}
}

// SetRate changes the refill rate and bucket size. Tokens above the new
// size are discarded.
func (r *RateLimiter) SetRate(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill(time.Now())
	r.perMinute = requestsPerMinute
	if limit := float64(requestsPerMinute); r.tokens > limit {
		r.tokens = limit
	}
}

// Status returns the current limiter state.
func (r *RateLimiter) Status() RateLimiterStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.refill(now)
	return RateLimiterStatus{
		TokensAvailable: int(r.tokens),
		TokensLimit:     r.perMinute,
		TimeUntilToken:  r.untilNext(now),
		TotalConsumed:   r.consumed,
		TotalWaited:     r.waited,
		Last429Time:     r.last429,
	}
}

// refill must be called with the lock held.
func (r *RateLimiter) refill(now time.Time) {
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.perSecond()
	if limit := float64(r.perMinute); r.tokens > limit {
		r.tokens = limit
	}
}

// untilNext must be called with the lock held.
func (r *RateLimiter) untilNext(now time.Time) time.Duration {
	if now.Before(r.pausedUntil) {
		return r.pausedUntil.Sub(now)
	}
	if r.tokens >= 1 {
		return 0
	}
	wait := time.Duration((1 - r.tokens) / r.perSecond() * float64(time.Second))
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait
}

func (r *RateLimiter) perSecond() float64 {
	return float64(r.perMinute) / 60
}
