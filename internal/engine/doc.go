// Package engine orchestrates a crawl run. The Scheduler owns a pool of
// workers that pull targets from the frontier, gate them through the
// robots policy and per-host rate limiter, fetch and extract them, and
// feed discovered URLs back until the frontier drains or the context is
// cancelled.
//
// Per-URL problems never abort a run: fetch failures and policy denials
// are recorded in the report and the workers move on. Cancellation
// produces a partial report covering everything finished so far.
package engine
