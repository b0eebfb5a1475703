package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/webrecon/webrecon/internal/discover"
	"github.com/webrecon/webrecon/internal/extract"
	"github.com/webrecon/webrecon/internal/fetch"
	"github.com/webrecon/webrecon/internal/frontier"
	"github.com/webrecon/webrecon/internal/model"
	"github.com/webrecon/webrecon/internal/robots"
	"github.com/webrecon/webrecon/internal/scope"
)

// retryBackoff is how long a worker waits before the single retry of a
// transient fetch failure.
const retryBackoff = 2 * time.Second

// Scheduler coordinates the crawl: workers, politeness, robots gating,
// extraction and aggregation.
type Scheduler struct {
	fetcher    fetch.Fetcher
	normalizer *scope.Normalizer
	robots     *robots.Policy
	extractor  *extract.HTMLExtractor
	analyzer   *extract.JSAnalyzer
	limiters   *HostThrottle
	budget     *RequestBudget
	runner     *discover.Runner
	logger     *slog.Logger

	workers        int
	checkRobots    bool
	retryOnFailure bool
	jsAnalysis     bool
	backoff        time.Duration
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithWorkers sets the number of concurrent crawl workers.
func WithWorkers(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRobotsPolicy enables robots.txt checking through the given policy.
// Without it the crawl never contacts robots.txt.
func WithRobotsPolicy(p *robots.Policy) SchedulerOption {
	return func(s *Scheduler) {
		s.robots = p
		s.checkRobots = p != nil
	}
}

// WithDelay sets the baseline per-host politeness delay.
func WithDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.limiters = NewHostThrottle(d)
	}
}

// WithThrottle shares an existing per-host throttle. The auxiliary
// probers are given the same throttle so crawl and probe traffic obey
// one politeness delay per host.
func WithThrottle(t *HostThrottle) SchedulerOption {
	return func(s *Scheduler) {
		if t != nil {
			s.limiters = t
		}
	}
}

// WithBudget shares an existing request budget. The frontier draws page
// allowances from it; handing the same budget to the auxiliary probers
// keeps all requests of the run under one limit.
func WithBudget(b *RequestBudget) SchedulerOption {
	return func(s *Scheduler) {
		s.budget = b
	}
}

// WithRetry enables a single retry with backoff for transient fetch
// failures (timeouts and network errors, never HTTP statuses).
func WithRetry(retry bool) SchedulerOption {
	return func(s *Scheduler) {
		s.retryOnFailure = retry
	}
}

// WithJSAnalysis controls whether inline scripts are scanned for
// endpoints. On by default.
func WithJSAnalysis(enabled bool) SchedulerOption {
	return func(s *Scheduler) {
		s.jsAnalysis = enabled
	}
}

// WithExtractor sets the HTML extractor. A default extractor without
// CSRF tagging is used when unset.
func WithExtractor(e *extract.HTMLExtractor) SchedulerOption {
	return func(s *Scheduler) {
		s.extractor = e
	}
}

// WithDiscoverers sets the auxiliary discovery runner executed after the
// crawl drains.
func WithDiscoverers(r *discover.Runner) SchedulerOption {
	return func(s *Scheduler) {
		s.runner = r
	}
}

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler.
//
// Design decision: the fetcher and normalizer are required arguments
// rather than options because no meaningful default exists for either;
// everything else has a sensible zero configuration.
func NewScheduler(fetcher fetch.Fetcher, normalizer *scope.Normalizer, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		fetcher:    fetcher,
		normalizer: normalizer,
		analyzer:   extract.NewJSAnalyzer(),
		limiters:   NewHostThrottle(time.Second),
		workers:    5,
		jsAnalysis: true,
		backoff:    retryBackoff,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = extract.NewHTMLExtractor(nil)
	}
	return s
}

// Run crawls from seedURL until the frontier drains or ctx is cancelled,
// then runs the auxiliary discoverers. The returned report is complete
// for all work finished at return time; a cancelled run yields a partial
// report with Summary.Cancelled set, not an error.
func (s *Scheduler) Run(ctx context.Context, seedURL string) (*model.CrawlReport, error) {
	seed, err := s.normalizer.Normalize(seedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("seed URL %q: %w", seedURL, err)
	}

	policy := s.normalizer.Policy()
	budget := s.budget
	if budget == nil {
		budget = NewRequestBudget(policy.MaxPages)
	}
	front := frontier.NewWithBudget(policy.MaxDepth, budget)
	front.Offer(model.CrawlTarget{URL: seed, Depth: 0})

	agg := newAggregator(seed)

	s.logger.Info("crawl starting",
		"seed", seed,
		"workers", s.workers,
		"max_depth", policy.MaxDepth,
		"max_pages", policy.MaxPages,
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			return s.worker(gctx, front, agg)
		})
	}
	// Workers only return nil; they park errors in the report.
	_ = g.Wait()

	cancelled := ctx.Err() != nil
	if s.checkRobots {
		agg.report.Robots = s.robots.Observations()
	}

	if s.runner != nil && !cancelled {
		if err := s.runner.Execute(ctx, agg.report); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("auxiliary discovery incomplete", "error", err)
		}
		cancelled = ctx.Err() != nil
	}

	report := agg.finalize(cancelled)
	s.logger.Info("crawl finished",
		"pages", report.Summary.PagesCrawled,
		"failures", report.Summary.FetchFailures,
		"denials", report.Summary.PolicyDenials,
		"cancelled", cancelled,
	)
	return report, nil
}

// worker pulls targets until the frontier drains or the context ends.
func (s *Scheduler) worker(ctx context.Context, front *frontier.Frontier, agg *aggregator) error {
	for {
		target, err := front.Next(ctx)
		if err != nil {
			// Drained or cancelled; both end the worker quietly.
			return nil
		}
		s.processTarget(ctx, target, front, agg)
		front.TaskDone()
	}
}

// processTarget runs one URL through the full per-page state flow:
// robots gate, politeness wait, fetch, extract, re-feed.
func (s *Scheduler) processTarget(ctx context.Context, target model.CrawlTarget, front *frontier.Frontier, agg *aggregator) {
	u, err := url.Parse(target.URL)
	if err != nil {
		agg.addFailure(model.FetchFailure{URL: target.URL, Reason: "unparsable URL"})
		return
	}

	if s.checkRobots {
		decision := s.robots.Check(ctx, u)
		if decision.CrawlDelay > 0 {
			s.limiters.RaiseDelay(u.Host, decision.CrawlDelay)
		}
		if decision.MatchedRule != "" {
			agg.addDenial(model.PolicyDenial{
				URL:        target.URL,
				Rule:       decision.MatchedRule,
				Overridden: decision.Allowed,
			})
		}
		if !decision.Allowed {
			s.logger.Debug("robots.txt denied", "url", target.URL, "rule", decision.MatchedRule)
			return
		}
	}

	if err := s.limiters.Wait(ctx, u.Host); err != nil {
		return
	}

	content, err := s.fetchWithRetry(ctx, target.URL, agg)
	if err != nil {
		return
	}
	if content.StatusCode >= 400 {
		agg.addFailure(model.FetchFailure{
			URL:        target.URL,
			StatusCode: content.StatusCode,
			Reason:     fmt.Sprintf("HTTP %d", content.StatusCode),
		})
		return
	}

	rec := &model.PageRecord{
		URL:         target.URL,
		StatusCode:  content.StatusCode,
		ContentType: content.ContentType,
		Depth:       target.Depth,
		Cookies:     content.Cookies,
		Headers:     flattenHeaders(content.Headers),
		FetchedAt:   time.Now(),
	}

	if content.IsHTML() {
		s.extractPage(ctx, content, u, target, rec, front, agg)
	}

	agg.addPage(rec)
	s.logger.Debug("page crawled",
		"url", target.URL,
		"status", content.StatusCode,
		"depth", target.Depth,
		"links", len(rec.Links),
	)
}

// extractPage parses an HTML body, records what it contains, and feeds
// in-scope links back to the frontier at depth+1.
func (s *Scheduler) extractPage(ctx context.Context, content *fetch.Content, base *url.URL, target model.CrawlTarget, rec *model.PageRecord, front *frontier.Frontier, agg *aggregator) {
	page, err := s.extractor.Extract(content.Body, base)
	if err != nil {
		agg.addWarning(fmt.Sprintf("extraction failed for %s: %v", target.URL, err))
		return
	}

	rec.Title = page.Title
	rec.Forms = page.Forms
	rec.JSFiles = page.JSFiles
	rec.APIEndpoints = append(rec.APIEndpoints, page.Endpoints...)

	for _, raw := range page.Links {
		normalized, err := s.normalizer.Normalize(raw, base)
		if err != nil {
			continue
		}
		rec.Links = append(rec.Links, normalized)
		front.Offer(model.CrawlTarget{
			URL:    normalized,
			Depth:  target.Depth + 1,
			Origin: target.URL,
		})
	}

	if s.jsAnalysis {
		for _, script := range page.InlineScripts {
			result := s.analyzer.Analyze(script, base)
			rec.APIEndpoints = append(rec.APIEndpoints, result.Endpoints...)
			rec.WebSocketURLs = append(rec.WebSocketURLs, result.WebSocketURLs...)
			for _, ref := range result.JSFiles {
				if resolved, err := base.Parse(ref); err == nil {
					rec.JSFiles = append(rec.JSFiles, resolved.String())
				}
			}
		}
		s.analyzeLinkedScripts(ctx, page.JSFiles, base, rec, agg)
	}
}

// analyzeLinkedScripts fetches in-scope external scripts and scans them
// the same way as inline scripts. Each script is fetched once per run,
// through the normal fetcher behind the per-host throttle; scripts are
// not recursed into.
func (s *Scheduler) analyzeLinkedScripts(ctx context.Context, jsFiles []string, base *url.URL, rec *model.PageRecord, agg *aggregator) {
	for _, jsURL := range jsFiles {
		normalized, err := s.normalizer.Normalize(jsURL, base)
		if err != nil {
			continue
		}
		if !agg.markScriptAnalyzed(normalized) {
			continue
		}
		scriptURL, err := url.Parse(normalized)
		if err != nil {
			continue
		}

		if err := s.limiters.Wait(ctx, scriptURL.Host); err != nil {
			return
		}
		content, err := s.fetcher.Fetch(ctx, normalized)
		if err != nil || content.StatusCode >= 400 {
			s.logger.Debug("linked script not fetchable", "url", normalized, "error", err)
			continue
		}

		result := s.analyzer.Analyze(string(content.Body), scriptURL)
		rec.APIEndpoints = append(rec.APIEndpoints, result.Endpoints...)
		rec.WebSocketURLs = append(rec.WebSocketURLs, result.WebSocketURLs...)
	}
}

// fetchWithRetry fetches the URL, retrying once after a backoff for
// transport-level failures when retries are enabled. HTTP error statuses
// are not retried; the server answered.
func (s *Scheduler) fetchWithRetry(ctx context.Context, rawURL string, agg *aggregator) (*fetch.Content, error) {
	content, err := s.fetcher.Fetch(ctx, rawURL)
	if err == nil {
		return content, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	transient := errors.Is(err, fetch.ErrTimeout) || errors.Is(err, fetch.ErrNetwork)
	if !s.retryOnFailure || !transient {
		agg.addFailure(model.FetchFailure{URL: rawURL, Reason: err.Error()})
		return nil, err
	}

	s.logger.Debug("retrying after transient failure", "url", rawURL, "error", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.backoff):
	}

	content, err = s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		agg.addFailure(model.FetchFailure{URL: rawURL, Reason: err.Error(), Retried: true})
		return nil, err
	}
	return content, nil
}

// flattenHeaders keeps the first value of each response header.
func flattenHeaders(headers map[string][]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	flat := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) > 0 {
			flat[name] = values[0]
		}
	}
	return flat
}
