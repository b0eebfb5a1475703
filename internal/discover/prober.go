package discover

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// foundStatuses are the response codes that mean "the path exists" for
// wordlist probing. Auth walls (401, 403), wrong-method answers (405) and
// server errors (500) all confirm the path is routed; only 404-class
// answers are treated as misses.
var foundStatuses = map[int]bool{
	http.StatusOK:                  true,
	http.StatusCreated:             true,
	http.StatusMovedPermanently:    true,
	http.StatusFound:               true,
	http.StatusUnauthorized:        true,
	http.StatusForbidden:           true,
	http.StatusMethodNotAllowed:    true,
	http.StatusInternalServerError: true,
}

// probeHit is one wordlist entry the server answered for.
type probeHit struct {
	path        string
	url         string
	statusCode  int
	method      string
	contentType string
}

// Throttle spaces requests per host. The crawl engine shares its
// politeness limiter through this interface so probes obey the same
// per-host delay as ordinary page fetches.
type Throttle interface {
	Wait(ctx context.Context, host string) error
}

// Budget grants request allowances from the run-wide page limit. Probes
// draw from the same budget as the crawl; an exhausted budget stops
// probing.
type Budget interface {
	Take() bool
}

// prober issues existence probes against guessed paths. Redirects are not
// followed: a 301 is itself evidence the path exists, and following it
// would leak probes outside the target.
type prober struct {
	client      *http.Client
	userAgent   string
	concurrency int
	throttle    Throttle
	budget      Budget
}

func newProber(s *guesserSettings) *prober {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	concurrency := s.concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	client := s.client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &prober{
		client:      client,
		userAgent:   s.userAgent,
		concurrency: concurrency,
		throttle:    s.throttle,
		budget:      s.budget,
	}
}

// probeAll tests every word against the base URL with a bounded worker
// pool and returns the hits in wordlist order.
func (p *prober) probeAll(ctx context.Context, base *url.URL, words []string) []probeHit {
	hits := make([]*probeHit, len(words))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, word := range words {
		g.Go(func() error {
			if hit := p.probeOne(ctx, base, word); hit != nil {
				hits[i] = hit
			}
			return nil
		})
	}
	// Workers never return errors; misses are simply absent from hits.
	_ = g.Wait()

	var found []probeHit
	for _, hit := range hits {
		if hit != nil {
			found = append(found, *hit)
		}
	}
	return found
}

// probeOne tests one path with GET then HEAD, returning the first answer
// whose status qualifies as found. Each probed path draws one allowance
// from the shared budget; each request waits on the shared throttle.
func (p *prober) probeOne(ctx context.Context, base *url.URL, word string) *probeHit {
	target, err := base.Parse(word)
	if err != nil {
		return nil
	}
	if p.budget != nil && !p.budget.Take() {
		return nil
	}

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		if p.throttle != nil {
			if err := p.throttle.Wait(ctx, target.Host); err != nil {
				return nil
			}
		}
		req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
		if err != nil {
			return nil
		}
		if p.userAgent != "" {
			req.Header.Set("User-Agent", p.userAgent)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			continue
		}
		// Body content is never inspected; drain a little so the
		// connection can be reused, then close.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		if foundStatuses[resp.StatusCode] {
			return &probeHit{
				path:        word,
				url:         target.String(),
				statusCode:  resp.StatusCode,
				method:      method,
				contentType: mediaType(resp.Header.Get("Content-Type")),
			}
		}
	}
	return nil
}

// mediaType strips parameters from a Content-Type header value.
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}

// dedupeStrings returns the input with duplicates removed, keeping the
// first occurrence order.
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
