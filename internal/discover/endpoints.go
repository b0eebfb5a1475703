package discover

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/webrecon/webrecon/internal/model"
)

// EndpointGuesser probes the target for common API and application paths
// that the crawl itself never linked to.
type EndpointGuesser struct {
	base   *url.URL
	words  []string
	prober *prober
	logger *slog.Logger
}

// GuesserOption configures an EndpointGuesser or HiddenFileScanner prober.
type GuesserOption func(*guesserSettings)

type guesserSettings struct {
	timeout     time.Duration
	userAgent   string
	concurrency int
	throttle    Throttle
	budget      Budget
	client      *http.Client
	logger      *slog.Logger
}

// WithProbeTimeout sets the per-probe request timeout.
func WithProbeTimeout(d time.Duration) GuesserOption {
	return func(s *guesserSettings) {
		s.timeout = d
	}
}

// WithProbeUserAgent sets the User-Agent sent with probes.
func WithProbeUserAgent(ua string) GuesserOption {
	return func(s *guesserSettings) {
		s.userAgent = ua
	}
}

// WithProbeConcurrency bounds parallel probes.
func WithProbeConcurrency(n int) GuesserOption {
	return func(s *guesserSettings) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithProbeThrottle spaces probes through the given per-host throttle.
// Passing the crawl engine's throttle keeps probe traffic under the same
// politeness delay as page fetches.
func WithProbeThrottle(t Throttle) GuesserOption {
	return func(s *guesserSettings) {
		s.throttle = t
	}
}

// WithProbeBudget charges probes against the given request budget.
// Passing the crawl engine's budget keeps crawling and probing combined
// under one page limit.
func WithProbeBudget(b Budget) GuesserOption {
	return func(s *guesserSettings) {
		s.budget = b
	}
}

// WithProbeClient overrides the HTTP client used for probes. The client's
// redirect policy is replaced; probes never follow redirects.
func WithProbeClient(client *http.Client) GuesserOption {
	return func(s *guesserSettings) {
		s.client = client
	}
}

// WithProbeLogger sets a custom logger.
func WithProbeLogger(logger *slog.Logger) GuesserOption {
	return func(s *guesserSettings) {
		s.logger = logger
	}
}

func applyGuesserOptions(opts []GuesserOption) *guesserSettings {
	s := &guesserSettings{
		timeout:     10 * time.Second,
		concurrency: 10,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEndpointGuesser creates a guesser rooted at base using the given
// wordlist.
func NewEndpointGuesser(base *url.URL, words []string, opts ...GuesserOption) *EndpointGuesser {
	s := applyGuesserOptions(opts)
	return &EndpointGuesser{
		base:   base,
		words:  dedupeStrings(words),
		prober: newProber(s),
		logger: s.logger,
	}
}

// Name implements Discoverer.
func (g *EndpointGuesser) Name() string {
	return "endpoint-guessing"
}

// Do probes every wordlist entry and records the hits.
func (g *EndpointGuesser) Do(ctx context.Context, report *model.CrawlReport) error {
	hits := g.prober.probeAll(ctx, g.base, g.words)
	for _, hit := range hits {
		report.GuessedEndpoints = append(report.GuessedEndpoints, model.ProbeFinding{
			Path:        hit.path,
			URL:         hit.url,
			StatusCode:  hit.statusCode,
			Method:      hit.method,
			ContentType: hit.contentType,
		})
	}
	g.logger.Info("endpoint guessing finished",
		"base", g.base.String(),
		"tested", len(g.words),
		"found", len(hits),
	)
	return ctx.Err()
}
