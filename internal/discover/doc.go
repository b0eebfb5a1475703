// Package discover implements the auxiliary discovery passes that run
// after the main crawl: subdomain enumeration, endpoint guessing and
// hidden file scanning.
//
// Each discoverer implements the Discoverer interface and records its
// findings in the shared crawl report. The Runner executes discoverers
// in sequence; individual failures are recorded as report warnings and
// never abort the run.
package discover
