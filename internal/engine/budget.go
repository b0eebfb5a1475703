package engine

import "sync"

// RequestBudget is the run-wide request allowance. The frontier draws
// from it for every accepted crawl target and the auxiliary probers draw
// from it for every probe, so crawling and probing combined can never
// exceed the configured page limit.
type RequestBudget struct {
	mu        sync.Mutex
	remaining int
	unlimited bool
}

// NewRequestBudget creates a budget of n requests. A value of zero or
// less means unlimited.
func NewRequestBudget(n int) *RequestBudget {
	if n <= 0 {
		return &RequestBudget{unlimited: true}
	}
	return &RequestBudget{remaining: n}
}

// Take consumes one request from the budget. It returns false when the
// budget is exhausted; the request must not be issued.
func (b *RequestBudget) Take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.unlimited {
		return true
	}
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// Remaining returns the unconsumed allowance, -1 when unlimited.
func (b *RequestBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.unlimited {
		return -1
	}
	return b.remaining
}
