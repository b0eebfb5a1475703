// Package log provides structured logging with automatic redaction of
// credentials, built on the standard slog package.
//
// A recon crawl handles pre-supplied session cookies and auth headers, and
// observes CSRF tokens and Set-Cookie values on every page. Crawl logs are
// routinely attached to engagement reports, so the handler masks those
// values before they reach any output, even in debug mode.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
