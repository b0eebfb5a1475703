package model

import (
	"sort"
	"strings"
	"time"
)

// FetchFailure records a page that could not be retrieved.
// Failures are local: they are recorded here and never abort the run.
type FetchFailure struct {
	// URL is the target that failed.
	URL string `json:"url"`

	// StatusCode is the HTTP status, or 0 for transport-level errors.
	StatusCode int `json:"status_code,omitempty"`

	// Reason is a human-readable description of the failure.
	Reason string `json:"reason"`

	// Retried is true when the failure persisted after the optional retry.
	Retried bool `json:"retried,omitempty"`
}

// PolicyDenial records a URL that was not fetched because robots.txt
// disallows it. When robots override is enabled the URL is fetched anyway
// and Overridden is set, preserving the audit trail.
type PolicyDenial struct {
	// URL is the denied target.
	URL string `json:"url"`

	// Rule is the robots.txt pattern that matched.
	Rule string `json:"rule,omitempty"`

	// Overridden is true when the crawl fetched the URL despite the rule.
	Overridden bool `json:"overridden,omitempty"`
}

// RobotsObservation summarizes what a host's robots.txt declared,
// independent of whether the crawl enforced it.
type RobotsObservation struct {
	// Host is the host the robots.txt belongs to.
	Host string `json:"host"`

	// Disallow and Allow are the raw path patterns observed.
	Disallow []string `json:"disallow,omitempty"`
	Allow    []string `json:"allow,omitempty"`

	// CrawlDelay is the declared delay in seconds, 0 when absent.
	CrawlDelay float64 `json:"crawl_delay,omitempty"`

	// Unreachable is true when robots.txt could not be fetched;
	// the crawl then proceeds as if the ruleset were empty.
	Unreachable bool `json:"unreachable,omitempty"`
}

// SubdomainFinding records one discovered subdomain candidate.
type SubdomainFinding struct {
	// Host is the full subdomain hostname.
	Host string `json:"host"`

	// Method is the enumeration method that produced it: "dns" candidates
	// resolved successfully before being reported, "wordlist" candidates
	// are tried over HTTP without prior resolution.
	Method string `json:"method"`

	// Resolved is true when DNS resolution succeeded.
	Resolved bool `json:"resolved"`

	// Reachable is true when an HTTP probe of the candidate answered.
	Reachable bool `json:"reachable,omitempty"`

	// StatusCode is the status of the answering probe, zero when none.
	StatusCode int `json:"status_code,omitempty"`
}

// ProbeFinding records a wordlist-driven probe hit (guessed endpoint or
// hidden file). A hit means the server answered with something other than
// 404; content is never inspected.
type ProbeFinding struct {
	// Path is the wordlist entry that was probed.
	Path string `json:"path"`

	// URL is the full probed URL.
	URL string `json:"url"`

	// StatusCode is the response status that qualified as a hit.
	StatusCode int `json:"status_code"`

	// Method is the HTTP method used for the probe.
	Method string `json:"method"`

	// ContentType is the response content type, if any.
	ContentType string `json:"content_type,omitempty"`

	// Sensitivity ranks hidden-file hits from 1 (critical: credentials,
	// VCS metadata) to 5 (informational). Zero for guessed endpoints.
	Sensitivity int `json:"sensitivity,omitempty"`
}

// CrawlSummary holds the headline counters of a run.
type CrawlSummary struct {
	SeedURL          string    `json:"seed_url"`
	PagesCrawled     int       `json:"pages_crawled"`
	FormsFound       int       `json:"forms_found"`
	EndpointsFound   int       `json:"endpoints_found"`
	JSFilesFound     int       `json:"js_files_found"`
	SubdomainsFound  int       `json:"subdomains_found"`
	HiddenFilesFound int       `json:"hidden_files_found"`
	MaxDepthReached  int       `json:"max_depth_reached"`
	FetchFailures    int       `json:"fetch_failures"`
	PolicyDenials    int       `json:"policy_denials"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`

	// Cancelled is true when the run was stopped by signal or deadline
	// before the frontier drained. The report is still complete for all
	// work finished up to that point.
	Cancelled bool `json:"cancelled,omitempty"`
}

// CrawlReport is the aggregate result of a crawl run.
//
// Design decision: a single large struct rather than per-concern result
// types, mirroring how the report is serialized: one JSON document, one
// database row set. Sub-slices are grouped on demand by the accessor
// methods rather than stored redundantly.
type CrawlReport struct {
	Summary CrawlSummary `json:"crawl_summary"`

	// Robots holds per-host robots.txt observations.
	Robots []RobotsObservation `json:"robots,omitempty"`

	// Pages are the per-page records in completion order.
	Pages []*PageRecord `json:"pages,omitempty"`

	// Forms are the deduplicated forms across all pages.
	Forms []FormSpec `json:"forms,omitempty"`

	// Endpoints are the deduplicated endpoint candidates across all sources.
	Endpoints []EndpointSpec `json:"api_endpoints,omitempty"`

	// JSFiles are all external script URLs, deduplicated.
	JSFiles []string `json:"javascript_files,omitempty"`

	// WebSocketURLs are all discovered ws/wss URLs, deduplicated.
	WebSocketURLs []string `json:"websocket_urls,omitempty"`

	// Cookies and Headers accumulate response cookies and headers
	// across every fetched page, last writer wins.
	Cookies map[string]string `json:"cookies,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// Subdomains are the subdomain enumeration findings.
	Subdomains []SubdomainFinding `json:"subdomains,omitempty"`

	// GuessedEndpoints are wordlist-probe hits from the endpoint guesser.
	GuessedEndpoints []ProbeFinding `json:"guessed_endpoints,omitempty"`

	// HiddenFiles are wordlist-probe hits from the hidden file scanner.
	HiddenFiles []ProbeFinding `json:"hidden_files,omitempty"`

	// Failures lists every fetch that did not produce a PageRecord.
	Failures []FetchFailure `json:"fetch_failures,omitempty"`

	// Denials lists robots.txt denials, including overridden ones.
	Denials []PolicyDenial `json:"policy_denials,omitempty"`

	// Warnings are non-fatal run-level notices (unreachable robots.txt,
	// unreadable wordlist, partial extraction).
	Warnings []string `json:"warnings,omitempty"`
}

// NewCrawlReport creates an empty report for the given seed URL.
func NewCrawlReport(seedURL string) *CrawlReport {
	return &CrawlReport{
		Summary: CrawlSummary{
			SeedURL:   seedURL,
			StartedAt: time.Now(),
		},
		Cookies: make(map[string]string),
		Headers: make(map[string]string),
	}
}

// FormsByMethod groups the deduplicated forms by HTTP method.
func (r *CrawlReport) FormsByMethod() map[string][]FormSpec {
	grouped := make(map[string][]FormSpec)
	for _, f := range r.Forms {
		method := f.Method
		if method == "" {
			method = "GET"
		}
		grouped[method] = append(grouped[method], f)
	}
	return grouped
}

// EndpointsByType groups endpoint candidates into the report's public
// type buckets: api, rest, versioned, and other.
func (r *CrawlReport) EndpointsByType() map[string][]EndpointSpec {
	grouped := make(map[string][]EndpointSpec)
	for _, ep := range r.Endpoints {
		grouped[endpointType(ep.URL)] = append(grouped[endpointType(ep.URL)], ep)
	}
	return grouped
}

// endpointType classifies an endpoint URL by its path shape.
func endpointType(rawURL string) string {
	switch {
	case strings.Contains(rawURL, "/api/"):
		return "api"
	case strings.Contains(rawURL, "/rest/"):
		return "rest"
	case versionedPathPattern(rawURL):
		return "versioned"
	default:
		return "other"
	}
}

// versionedPathPattern reports whether the URL contains a /v<digit> segment.
func versionedPathPattern(rawURL string) bool {
	idx := strings.Index(rawURL, "/v")
	for idx >= 0 && idx+2 < len(rawURL) {
		c := rawURL[idx+2]
		if c >= '0' && c <= '9' {
			return true
		}
		next := strings.Index(rawURL[idx+2:], "/v")
		if next < 0 {
			break
		}
		idx += 2 + next
	}
	return false
}

// SortedJSFiles returns the JS file list in deterministic order.
// Report writers use this so that repeated runs diff cleanly.
func (r *CrawlReport) SortedJSFiles() []string {
	out := make([]string, len(r.JSFiles))
	copy(out, r.JSFiles)
	sort.Strings(out)
	return out
}

// AddWarning appends a run-level warning.
func (r *CrawlReport) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
