package engine

import (
	"sync"
	"time"

	"github.com/webrecon/webrecon/internal/model"
)

// aggregator collects worker results into one report. Workers call its
// add methods concurrently; everything else about the report is
// single-threaded before Run starts and after it returns.
type aggregator struct {
	mu     sync.Mutex
	report *model.CrawlReport

	formKeys     map[string]bool
	endpointURLs map[string]bool
	jsFiles      map[string]bool
	wsURLs       map[string]bool
	jsAnalyzed   map[string]bool
}

func newAggregator(seedURL string) *aggregator {
	return &aggregator{
		report:       model.NewCrawlReport(seedURL),
		formKeys:     make(map[string]bool),
		endpointURLs: make(map[string]bool),
		jsFiles:      make(map[string]bool),
		wsURLs:       make(map[string]bool),
		jsAnalyzed:   make(map[string]bool),
	}
}

// markScriptAnalyzed claims a script URL for analysis. It returns false
// when another worker already claimed it; shared scripts are fetched and
// scanned once per run.
func (a *aggregator) markScriptAnalyzed(url string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.jsAnalyzed[url] {
		return false
	}
	a.jsAnalyzed[url] = true
	return true
}

// addPage records one fetched page and folds its forms, endpoints,
// scripts, cookies and headers into the deduplicated report sections.
func (a *aggregator) addPage(rec *model.PageRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.report.Pages = append(a.report.Pages, rec)
	if rec.Depth > a.report.Summary.MaxDepthReached {
		a.report.Summary.MaxDepthReached = rec.Depth
	}

	for _, form := range rec.Forms {
		if key := form.Key(); !a.formKeys[key] {
			a.formKeys[key] = true
			a.report.Forms = append(a.report.Forms, form)
		}
	}
	for _, ep := range rec.APIEndpoints {
		if !a.endpointURLs[ep.URL] {
			a.endpointURLs[ep.URL] = true
			a.report.Endpoints = append(a.report.Endpoints, ep)
		}
	}
	for _, js := range rec.JSFiles {
		if !a.jsFiles[js] {
			a.jsFiles[js] = true
			a.report.JSFiles = append(a.report.JSFiles, js)
		}
	}
	for _, ws := range rec.WebSocketURLs {
		if !a.wsURLs[ws] {
			a.wsURLs[ws] = true
			a.report.WebSocketURLs = append(a.report.WebSocketURLs, ws)
		}
	}
	for name, value := range rec.Cookies {
		a.report.Cookies[name] = value
	}
	for name, value := range rec.Headers {
		a.report.Headers[name] = value
	}
}

func (a *aggregator) addFailure(f model.FetchFailure) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.Failures = append(a.report.Failures, f)
}

func (a *aggregator) addDenial(d model.PolicyDenial) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.Denials = append(a.report.Denials, d)
}

func (a *aggregator) addWarning(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.report.AddWarning(msg)
}

// finalize fills the summary counters and closes the report. Called once
// after all workers have stopped.
func (a *aggregator) finalize(cancelled bool) *model.CrawlReport {
	r := a.report
	r.Summary.PagesCrawled = len(r.Pages)
	r.Summary.FormsFound = len(r.Forms)
	r.Summary.EndpointsFound = len(r.Endpoints)
	r.Summary.JSFilesFound = len(r.JSFiles)
	r.Summary.FetchFailures = len(r.Failures)
	r.Summary.PolicyDenials = len(r.Denials)
	r.Summary.FinishedAt = time.Now()
	r.Summary.Cancelled = cancelled
	return r
}
