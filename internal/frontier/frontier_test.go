package frontier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/webrecon/webrecon/internal/model"
)

func TestFrontierOffer(t *testing.T) {
	t.Parallel()

	t.Run("accepts new targets and rejects duplicates", func(t *testing.T) {
		t.Parallel()

		f := New(3, 100)
		if !f.Offer(model.CrawlTarget{URL: "https://example.com/", Depth: 0}) {
			t.Fatal("Offer(seed) = false, want true")
		}
		if f.Offer(model.CrawlTarget{URL: "https://example.com/", Depth: 1}) {
			t.Error("Offer(duplicate) = true, want false")
		}
		if f.Accepted() != 1 {
			t.Errorf("Accepted() = %d, want 1", f.Accepted())
		}
	})

	t.Run("rejects targets beyond the depth budget", func(t *testing.T) {
		t.Parallel()

		f := New(2, 100)
		if f.Offer(model.CrawlTarget{URL: "https://example.com/deep", Depth: 3}) {
			t.Error("Offer(depth 3) = true, want false with maxDepth 2")
		}
		if !f.Offer(model.CrawlTarget{URL: "https://example.com/edge", Depth: 2}) {
			t.Error("Offer(depth 2) = false, want true at the boundary")
		}
	})

	t.Run("rejects targets over the page budget", func(t *testing.T) {
		t.Parallel()

		f := New(5, 2)
		for i := 0; i < 2; i++ {
			if !f.Offer(model.CrawlTarget{URL: fmt.Sprintf("https://example.com/%d", i)}) {
				t.Fatalf("Offer(%d) = false, want true", i)
			}
		}
		if f.Offer(model.CrawlTarget{URL: "https://example.com/over"}) {
			t.Error("Offer over budget = true, want false")
		}
	})

	t.Run("draws allowance from a shared budget", func(t *testing.T) {
		t.Parallel()

		budget := &pageBudget{remaining: 2}
		// Something else on the run consumes part of the allowance.
		budget.Take()

		f := NewWithBudget(5, budget)
		if !f.Offer(model.CrawlTarget{URL: "https://example.com/a"}) {
			t.Fatal("Offer(a) = false, want the remaining allowance granted")
		}
		if f.Offer(model.CrawlTarget{URL: "https://example.com/b"}) {
			t.Error("Offer(b) = true, want false once the shared budget drained")
		}
	})

	t.Run("duplicates never consume budget", func(t *testing.T) {
		t.Parallel()

		f := New(5, 2)
		f.Offer(model.CrawlTarget{URL: "https://example.com/a"})
		f.Offer(model.CrawlTarget{URL: "https://example.com/a"})
		if !f.Offer(model.CrawlTarget{URL: "https://example.com/b"}) {
			t.Error("Offer(b) = false, want the duplicate offer to cost nothing")
		}
	})

	t.Run("a completed URL can never be re-queued", func(t *testing.T) {
		t.Parallel()

		f := New(5, 100)
		f.Offer(model.CrawlTarget{URL: "https://example.com/a"})

		got, err := f.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		f.TaskDone()

		if f.Offer(model.CrawlTarget{URL: got.URL, Depth: 1}) {
			t.Error("Offer(completed URL) = true, want false")
		}
	})
}

func TestFrontierNext(t *testing.T) {
	t.Parallel()

	t.Run("hands out targets in FIFO order", func(t *testing.T) {
		t.Parallel()

		f := New(5, 100)
		urls := []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
		for i, u := range urls {
			f.Offer(model.CrawlTarget{URL: u, Depth: i})
		}

		for _, want := range urls {
			got, err := f.Next(context.Background())
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			if got.URL != want {
				t.Errorf("Next().URL = %q, want %q", got.URL, want)
			}
			f.TaskDone()
		}
	})

	t.Run("drains when empty and nothing in flight", func(t *testing.T) {
		t.Parallel()

		f := New(5, 100)
		f.Offer(model.CrawlTarget{URL: "https://example.com/only"})

		if _, err := f.Next(context.Background()); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		f.TaskDone()

		if _, err := f.Next(context.Background()); !errors.Is(err, ErrDrained) {
			t.Errorf("Next() error = %v, want ErrDrained", err)
		}
		if f.Offer(model.CrawlTarget{URL: "https://example.com/late"}) {
			t.Error("Offer after drain = true, want false")
		}
	})

	t.Run("blocks while peers are in flight and wakes on new work", func(t *testing.T) {
		t.Parallel()

		f := New(5, 100)
		f.Offer(model.CrawlTarget{URL: "https://example.com/first"})

		// Take the only target so the queue is empty but one task is
		// in flight.
		if _, err := f.Next(context.Background()); err != nil {
			t.Fatalf("Next() error = %v", err)
		}

		got := make(chan model.CrawlTarget, 1)
		go func() {
			target, err := f.Next(context.Background())
			if err != nil {
				return
			}
			got <- target
		}()

		// The blocked Next must not return before the in-flight task
		// feeds new work back.
		select {
		case target := <-got:
			t.Fatalf("Next() returned %q while queue was empty", target.URL)
		case <-time.After(50 * time.Millisecond):
		}

		f.Offer(model.CrawlTarget{URL: "https://example.com/second", Depth: 1})
		f.TaskDone()

		select {
		case target := <-got:
			if target.URL != "https://example.com/second" {
				t.Errorf("Next().URL = %q, want the fed-back target", target.URL)
			}
		case <-time.After(time.Second):
			t.Fatal("Next() did not wake after Offer")
		}
		f.TaskDone()
	})

	t.Run("wakes blocked workers when the last task completes", func(t *testing.T) {
		t.Parallel()

		f := New(5, 100)
		f.Offer(model.CrawlTarget{URL: "https://example.com/only"})

		if _, err := f.Next(context.Background()); err != nil {
			t.Fatalf("Next() error = %v", err)
		}

		errCh := make(chan error, 1)
		go func() {
			_, err := f.Next(context.Background())
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		f.TaskDone()

		select {
		case err := <-errCh:
			if !errors.Is(err, ErrDrained) {
				t.Errorf("Next() error = %v, want ErrDrained", err)
			}
		case <-time.After(time.Second):
			t.Fatal("blocked Next() did not observe the drain")
		}
	})

	t.Run("respects context cancellation while blocked", func(t *testing.T) {
		t.Parallel()

		f := New(5, 100)
		f.Offer(model.CrawlTarget{URL: "https://example.com/only"})
		if _, err := f.Next(context.Background()); err != nil {
			t.Fatalf("Next() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := f.Next(ctx)
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Next() error = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("blocked Next() did not observe cancellation")
		}
	})
}

func TestFrontierConcurrentWorkers(t *testing.T) {
	t.Parallel()

	// Workers race over a shared frontier; every URL must be handed out
	// exactly once regardless of interleaving.
	f := New(10, 1000)
	const seeds = 50
	for i := 0; i < seeds; i++ {
		f.Offer(model.CrawlTarget{URL: fmt.Sprintf("https://example.com/p%d", i)})
	}

	var mu sync.Mutex
	handedOut := make(map[string]int)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				target, err := f.Next(context.Background())
				if err != nil {
					return
				}
				mu.Lock()
				handedOut[target.URL]++
				mu.Unlock()
				// Each page "discovers" one child, duplicated across
				// workers to exercise dedup.
				f.Offer(model.CrawlTarget{URL: "https://example.com/child", Depth: 1})
				f.TaskDone()
			}
		}()
	}
	wg.Wait()

	if len(handedOut) != seeds+1 {
		t.Errorf("handed out %d distinct URLs, want %d", len(handedOut), seeds+1)
	}
	for url, count := range handedOut {
		if count != 1 {
			t.Errorf("%s handed out %d times, want exactly once", url, count)
		}
	}
}
