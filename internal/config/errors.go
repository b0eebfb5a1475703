package config

import "errors"

// Configuration validation errors.
//
// Design decision: package-level sentinel errors rather than fmt.Errorf in
// Validate(), so callers can use errors.Is() for programmatic handling
// while the messages stay human-readable. These constitute the fatal
// misconfiguration taxonomy: any of them aborts the run before the first
// request is sent.
var (
	// ErrNoSeed is returned when no seed URL was provided.
	ErrNoSeed = errors.New("no seed URL specified")

	// ErrInvalidDepth is returned for a negative max depth.
	// Depth 0 is valid and crawls only the seed page.
	ErrInvalidDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidConcurrency is returned for a non-positive worker count.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidDelay is returned for a negative per-host delay.
	// Use 0 to disable the politeness delay entirely.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned for a negative body size cap.
	// Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidOutputFormat is returned for an unknown report format.
	ErrInvalidOutputFormat = errors.New("invalid output format: must be text, json, or markdown")

	// ErrInvalidSubdomainMethod is returned for an unknown enumeration
	// method. Valid methods are "dns" and "wordlist".
	ErrInvalidSubdomainMethod = errors.New("invalid subdomain method: must be dns or wordlist")

	// ErrInvalidSeedURL is returned when the seed URL cannot be parsed or
	// uses an unsupported scheme.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http or https URL")
)
