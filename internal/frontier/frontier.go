package frontier

import (
	"context"
	"sync"

	"github.com/webrecon/webrecon/internal/model"
)

// Frontier is the shared crawl queue. Workers pull targets with Next,
// report completion with TaskDone, and feed newly discovered URLs back
// through Offer. All state transitions happen inside one mutex; waiting
// workers are woken by a broadcast channel, never by polling.
type Frontier struct {
	mu sync.Mutex

	// pending holds accepted targets in FIFO order, giving the crawl
	// breadth-first shape: everything at depth n is handed out before
	// anything discovered at depth n+1.
	pending []model.CrawlTarget

	// seen covers every URL ever accepted, whether still pending,
	// in flight, or completed. Membership is permanent.
	seen map[string]bool

	// inflight counts targets handed out but not yet TaskDone'd.
	inflight int

	// accepted counts every target ever accepted.
	accepted int

	// drained latches once pending is empty and nothing is in flight.
	drained bool

	// wake is closed to broadcast a state change to blocked Next calls,
	// then immediately replaced.
	wake chan struct{}

	maxDepth int
	budget   Budget
}

// Budget grants request allowances. Take returns false once the
// allowance is exhausted; the frontier rejects further targets.
type Budget interface {
	Take() bool
}

// pageBudget is a plain counter Budget for frontiers that do not share
// their allowance with anything else.
type pageBudget struct {
	mu        sync.Mutex
	remaining int
	unlimited bool
}

func (b *pageBudget) Take() bool {
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

// New creates a frontier with the given depth and page budgets.
// A maxPages of zero or less means unlimited.
func New(maxDepth, maxPages int) *Frontier {
	return NewWithBudget(maxDepth, &pageBudget{remaining: maxPages, unlimited: maxPages <= 0})
}

// NewWithBudget creates a frontier drawing page allowances from budget.
// Sharing one budget between the frontier and other request sources
// keeps their combined request count under a single limit.
func NewWithBudget(maxDepth int, budget Budget) *Frontier {
	return &Frontier{
		seen:     make(map[string]bool),
		wake:     make(chan struct{}),
		maxDepth: maxDepth,
		budget:   budget,
	}
}

// Offer submits a target for crawling. It returns false when the target
// is rejected: already seen, beyond the depth budget, over the page
// budget, or offered after the frontier drained. Enforcing the budgets
// here keeps the pending queue free of work that would be discarded at
// dequeue time.
func (f *Frontier) Offer(target model.CrawlTarget) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.drained {
		return false
	}
	if target.Depth > f.maxDepth {
		return false
	}
	if f.seen[target.URL] {
		return false
	}
	// The budget draw comes last: a duplicate or over-depth offer must
	// not consume allowance.
	if !f.budget.Take() {
		return false
	}

	f.seen[target.URL] = true
	f.pending = append(f.pending, target)
	f.accepted++
	f.broadcast()
	return true
}

// Next returns the next target to fetch. It blocks until a target is
// available, the frontier drains (ErrDrained), or the context is
// cancelled. The returned target counts as in flight until TaskDone.
func (f *Frontier) Next(ctx context.Context) (model.CrawlTarget, error) {
	f.mu.Lock()
	for {
		if len(f.pending) > 0 {
			target := f.pending[0]
			f.pending = f.pending[1:]
			f.inflight++
			f.mu.Unlock()
			return target, nil
		}
		if f.inflight == 0 {
			f.drained = true
			f.broadcast()
			f.mu.Unlock()
			return model.CrawlTarget{}, ErrDrained
		}

		// Queue empty but peers are still working and may feed more
		// URLs back. Block until something changes.
		wake := f.wake
		f.mu.Unlock()
		select {
		case <-ctx.Done():
			return model.CrawlTarget{}, ctx.Err()
		case <-wake:
		}
		f.mu.Lock()
	}
}

// TaskDone reports that a target returned by Next has been fully
// processed, including any Offer calls it produced.
func (f *Frontier) TaskDone() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inflight--
	// The last completion with an empty queue ends the crawl; blocked
	// workers need the broadcast to observe it.
	if f.inflight == 0 && len(f.pending) == 0 {
		f.broadcast()
	}
}

// Seen reports whether the URL was ever accepted.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[url]
}

// Accepted returns the number of targets accepted so far.
func (f *Frontier) Accepted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accepted
}

// Pending returns the number of targets waiting to be handed out.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// broadcast wakes every blocked Next call. Callers must hold f.mu.
func (f *Frontier) broadcast() {
	close(f.wake)
	f.wake = make(chan struct{})
}
