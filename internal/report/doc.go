// Package report renders crawl results for people and tools.
//
// Three formats are provided: a human-readable text report for terminal
// display, JSON for programmatic processing, and Markdown for sharing
// and documentation. All writers implement the same Writer interface, so
// output destinations can be combined with MultiWriter.
package report
