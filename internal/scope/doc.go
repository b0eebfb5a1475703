// Package scope implements URL normalization and crawl-scope enforcement.
//
// Every candidate URL, whether extracted from HTML, reconstructed from
// JavaScript, or generated by a wordlist, passes through the Normalizer
// before it can reach the frontier. Normalization canonicalizes equivalent
// URL spellings to one string so that the visited set deduplicates
// reliably, and rejects anything outside the run's scope.
//
// The normalizer is a pure function over an immutable ScopePolicy; it is
// safe for concurrent use by all crawl workers without locking.
package scope
