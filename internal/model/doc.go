// Package model defines the core data structures shared across webrecon.
//
// The package contains no business logic beyond simple constructors and
// accessors. All structures are designed to be serializable to JSON for
// report generation and database storage.
//
// Key types:
//   - CrawlTarget: a URL queued for fetching, with its discovery depth
//   - ScopePolicy: the immutable per-run crawl boundary
//   - PageRecord: everything extracted from one fetched page
//   - EndpointSpec: a discovered API endpoint with its provenance
//   - CrawlReport: the aggregate result of an entire run
package model
