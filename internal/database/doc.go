// Package database provides SQLite-based storage for crawl reports.
//
// This package implements the CrawlDB, which stores:
//   - Full crawl reports as JSON for historical analysis
//   - Per-page records for cross-run URL queries
//   - Discovered forms and API endpoints in queryable columns
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
