package google

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Backoff windows after a 429. DefaultRetryAfter applies when the response
// has no Retry-After; MaxRetryAfter caps the window a server may request.
// One limiter is shared by every Workspace client.
const (
	DefaultRetryAfter = 5 * time.Second
	MaxRetryAfter     = 60 * time.Second
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// Burst is the maximum burst size.
	Burst int
}

// RateLimiter is a token bucket with a backoff window set by 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiterWithConfig creates a rate limiter with the given configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		now:     time.Now,
	}
}

// Wait blocks until a request may be sent, honouring any backoff window.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if wait := r.retryUntil().Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	switch {
	case retryAfter <= 0:
		retryAfter = DefaultRetryAfter
	case retryAfter > MaxRetryAfter:
		retryAfter = MaxRetryAfter
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := r.now().Add(retryAfter); until.After(r.retryAt) {
		r.retryAt = until
	}
}

func (r *RateLimiter) retryUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}

// RateLimitedTransport is an http.RoundTripper that waits on a RateLimiter
// before each request. It does not retry; a 429 only delays later requests.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *RateLimiter
}

// NewRateLimitedTransport wraps base with limiter.
func NewRateLimitedTransport(base http.RoundTripper, limiter *RateLimiter) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RateLimitedTransport{Base: base, Limiter: limiter}
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests && t.Limiter != nil {
		t.Limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
	}

	return resp, nil
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
