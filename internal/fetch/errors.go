package fetch

import "errors"

// Fetch failure classes. Both are per-URL failures: the crawl records
// them and continues.
var (
	// ErrNetwork wraps transport-level failures (refused connection,
	// DNS failure, reset).
	ErrNetwork = errors.New("network error")

	// ErrTimeout wraps fetches that exceeded their deadline, including
	// the JS-rendering wait when rendering is enabled.
	ErrTimeout = errors.New("fetch timeout")
)
