package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-3", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseRetryAfter(tt.in), tt.in)
	}
}

func TestRateLimiter_Backoff(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, Burst: 10})
	r.now = func() time.Time { return now }

	assert.True(t, r.retryUntil().IsZero())

	r.RecordRateLimitError(0)
	assert.Equal(t, now.Add(DefaultRetryAfter), r.retryUntil())

	// A shorter window never shrinks an existing one.
	r.RecordRateLimitError(time.Second)
	assert.Equal(t, now.Add(DefaultRetryAfter), r.retryUntil())

	r.RecordRateLimitError(10 * time.Second)
	assert.Equal(t, now.Add(10*time.Second), r.retryUntil())
}

func TestRateLimiter_BackoffIsCapped(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, Burst: 10})
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(time.Hour)
	assert.Equal(t, now.Add(MaxRetryAfter), r.retryUntil())
}

func TestRateLimiter_WaitAfterDefaultBackoff(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, Burst: 10})
	r.now = func() time.Time { return now }
	r.RecordRateLimitError(0)

	// Once the window has passed requests flow again.
	now = now.Add(DefaultRetryAfter)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Wait(ctx))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, Burst: 1})
	r.RecordRateLimitError(MaxRetryAfter)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestRateLimitedTransport_RecordsTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	limiter := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, Burst: 10})
	client := &http.Client{Transport: NewRateLimitedTransport(srv.Client().Transport, limiter)}

	before := time.Now()
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "429 must not be retried")
	assert.True(t, limiter.retryUntil().After(before.Add(29*time.Second)))
}

func TestRateLimitedTransport_PassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	limiter := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, Burst: 10})
	client := &http.Client{Transport: NewRateLimitedTransport(nil, limiter)}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, limiter.retryUntil().IsZero())
}
