// Package robots implements robots.txt policy enforcement for the crawl.
//
// Rules are fetched lazily, once per host, and cached for the run. Pattern
// matching (longest match wins between conflicting Allow and Disallow
// entries, most specific user-agent group, Crawl-delay) is delegated to
// github.com/temoto/robotstxt. On top of that the package keeps its own
// observation of the raw directives, because the crawl must be able to
// report what a site declared even when the operator chose to override
// enforcement: override changes enforcement, never observation.
//
// An unreachable or malformed robots.txt is treated as an empty ruleset.
// The crawl proceeds and the condition is recorded as a warning.
package robots
