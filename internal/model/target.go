package model

// CrawlTarget is a single URL queued for fetching.
// Targets are created at discovery time and consumed exactly once by the
// scheduler; they are never mutated after creation.
type CrawlTarget struct {
	// URL is the normalized absolute URL to fetch.
	URL string `json:"url"`

	// Depth is the link distance from the seed URL.
	// The seed itself has depth 0.
	Depth int `json:"depth"`

	// Origin is the URL of the page on which this target was discovered.
	// Empty for the seed and for targets produced by auxiliary discoverers.
	Origin string `json:"origin,omitempty"`
}

// ScopePolicy describes the boundary of a crawl run.
// It is built once from the seed URL and configuration, then shared
// read-only between the normalizer, the frontier, and the scheduler.
//
// Design decision: scope data lives in its own struct rather than on the
// scheduler so that the normalizer can validate URLs without importing
// engine state. The struct is immutable for the duration of a run.
type ScopePolicy struct {
	// BaseHost is the host (including port, if any) of the seed URL.
	BaseHost string `json:"base_host"`

	// RegistrableDomain is the effective top-level-domain-plus-one of the
	// seed host (e.g. "example.co.uk" for "app.example.co.uk"). Used for
	// subdomain scope checks when IncludeSubdomains is set.
	RegistrableDomain string `json:"registrable_domain"`

	// IncludeSubdomains widens the scope from exact-host match to any host
	// whose registrable domain equals RegistrableDomain.
	IncludeSubdomains bool `json:"include_subdomains"`

	// AllowedSchemes is the set of URL schemes that may be crawled.
	AllowedSchemes map[string]bool `json:"-"`

	// MaxDepth is the maximum link distance from the seed.
	MaxDepth int `json:"max_depth"`

	// MaxPages is the maximum number of targets the frontier will accept.
	MaxPages int `json:"max_pages"`
}

// HostInScope reports whether the given host falls inside the crawl scope.
// host carries the port when the URL has one, matching BaseHost; the
// registrable-domain comparison runs against the port-free hostname.
func (p *ScopePolicy) HostInScope(host, hostname string) bool {
	if host == "" {
		return false
	}
	if host == p.BaseHost {
		return true
	}
	if !p.IncludeSubdomains {
		return false
	}
	if hostname == p.RegistrableDomain {
		return true
	}
	return len(hostname) > len(p.RegistrableDomain) &&
		hostname[len(hostname)-len(p.RegistrableDomain):] == p.RegistrableDomain &&
		hostname[len(hostname)-len(p.RegistrableDomain)-1] == '.'
}
