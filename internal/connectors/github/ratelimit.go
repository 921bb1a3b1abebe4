package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/coursemate-cli/internal/logger"
)

// AnonymousRateLimit is GitHub's hourly quota without a token.
const AnonymousRateLimit = 60

// ProactiveRate spaces requests at about 4300 an hour, under the 5000 an
// authenticated client gets.
const ProactiveRate = 1.2

// Quota headers sent with every API response.
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRateReset     = "X-RateLimit-Reset" // Unix seconds
)

// reserve is the most requests kept back before the quota window resets.
// Small quotas keep back a tenth instead.
const reserve = 100

// RateLimiter spaces API calls with a token bucket and, once the quota
// GitHub reports runs low, holds requests until the window resets.
type RateLimiter struct {
	bucket *rate.Limiter

	mu        sync.Mutex
	limit     int
	remaining int
	reset     time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests. Until a
// response reports otherwise the quota is the anonymous one.
func NewRateLimiter(perSecond float64) *RateLimiter {
	return &RateLimiter{
		bucket:    rate.NewLimiter(rate.Limit(perSecond), 1),
		limit:     AnonymousRateLimit,
		remaining: AnonymousRateLimit,
	}
}

// Wait blocks until the next request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	low := r.remaining < min(reserve, r.limit/10)
	reset := r.reset
	r.mu.Unlock()

	pause := time.Until(reset)
	if !low || pause <= 0 {
		return nil
	}
	logger.Warn("GitHub quota nearly used, pausing until %s", reset.Format(time.Kitchen))
	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UpdateFromResponse records the quota headers of resp. Missing or
// malformed headers leave the previous values.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}
	h := resp.Header

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, err := strconv.Atoi(h.Get(HeaderRateLimit)); err == nil {
		r.limit = v
	}
	if v, err := strconv.Atoi(h.Get(HeaderRateRemaining)); err == nil {
		r.remaining = v
	}
	if v, err := strconv.ParseInt(h.Get(HeaderRateReset), 10, 64); err == nil {
		r.reset = time.Unix(v, 0)
	}
}

// Remaining returns the requests left in the current window.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Limit returns the quota of the current window.
func (r *RateLimiter) Limit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limit
}

// ResetTime returns when the current window ends.
func (r *RateLimiter) ResetTime() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reset
}
