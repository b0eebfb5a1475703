package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostThrottle enforces per-host politeness. Every host starts at the
// configured baseline delay; a robots.txt Crawl-delay can only raise the
// effective delay, never lower it below the baseline.
//
// The throttle is exported so the auxiliary discoverers can share the
// crawl's limiter: probes against a host are spaced by the same delay as
// ordinary page fetches instead of forming a second, unthrottled stream.
type HostThrottle struct {
	mu       sync.Mutex
	baseline time.Duration
	limiters map[string]*rate.Limiter
	delays   map[string]time.Duration
}

// NewHostThrottle creates a throttle with the given baseline delay per
// host. A baseline of zero or less disables spacing.
func NewHostThrottle(baseline time.Duration) *HostThrottle {
	return &HostThrottle{
		baseline: baseline,
		limiters: make(map[string]*rate.Limiter),
		delays:   make(map[string]time.Duration),
	}
}

// Wait blocks until the host's limiter grants a slot or the context is
// cancelled.
func (h *HostThrottle) Wait(ctx context.Context, host string) error {
	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = h.newLimiter(h.baseline)
		h.limiters[host] = limiter
		h.delays[host] = h.baseline
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}

// RaiseDelay increases the host's delay to d when d exceeds the current
// effective delay. Tokens already granted are unaffected.
func (h *HostThrottle) RaiseDelay(host string, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if d <= h.baseline || d <= h.delays[host] {
		return
	}
	h.delays[host] = d
	h.limiters[host] = h.newLimiter(d)
}

// effectiveDelay returns the host's current delay, for logging.
func (h *HostThrottle) effectiveDelay(host string) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if d, ok := h.delays[host]; ok {
		return d
	}
	return h.baseline
}

func (h *HostThrottle) newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	// Burst of 1: requests to one host are strictly spaced, which is the
	// point of a politeness delay.
	return rate.NewLimiter(rate.Every(delay), 1)
}
