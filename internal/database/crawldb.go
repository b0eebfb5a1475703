package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/webrecon/webrecon/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl reports.
// It manages connection pooling and provides methods for saving and
// querying report history.
//
// Design decision: We use a single database file for all targets rather
// than one file per seed URL. This allows cross-run queries (which URLs
// answered last week, which endpoints are new) and simplifies backup.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified file path.
// If CreateIfNotExists is true, the parent directory and database file are
// created. If it is false and the database doesn't exist, an error is
// returned.
func Open(dbPath string, opts Options) (*CrawlDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string format. mode=rw prevents
	// creating new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Crawl reports store complete run results as JSON plus headline counters
	CREATE TABLE IF NOT EXISTS crawl_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		pages_crawled INTEGER DEFAULT 0,
		forms_found INTEGER DEFAULT 0,
		endpoints_found INTEGER DEFAULT 0,
		hidden_files_found INTEGER DEFAULT 0,
		cancelled INTEGER DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_seed ON crawl_reports(seed_url);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON crawl_reports(timestamp);

	-- Pages store individual fetches for cross-run URL queries
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL REFERENCES crawl_reports(id),
		url TEXT NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		depth INTEGER,
		fetched_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_pages_report ON pages(report_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);

	-- Forms store discovered form surfaces with field details as JSON
	CREATE TABLE IF NOT EXISTS forms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL REFERENCES crawl_reports(id),
		action TEXT NOT NULL,
		method TEXT NOT NULL,
		fields TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_forms_report ON forms(report_id);

	-- API endpoints store discovered endpoint candidates
	CREATE TABLE IF NOT EXISTS api_endpoints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL REFERENCES crawl_reports(id),
		url TEXT NOT NULL,
		source TEXT NOT NULL,
		method_guess TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_endpoints_report ON api_endpoints(report_id);
	CREATE INDEX IF NOT EXISTS idx_endpoints_url ON api_endpoints(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a complete crawl report and its queryable sub-records
// in one transaction. It returns the new report row ID.
func (cdb *CrawlDB) SaveReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cancelled := 0
	if report.Summary.Cancelled {
		cancelled = 1
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_reports (seed_url, pages_crawled, forms_found, endpoints_found, hidden_files_found, cancelled, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		report.Summary.SeedURL,
		report.Summary.PagesCrawled,
		report.Summary.FormsFound,
		report.Summary.EndpointsFound,
		report.Summary.HiddenFilesFound,
		cancelled,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	reportID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report id: %w", err)
	}

	for _, p := range report.Pages {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO pages (report_id, url, status_code, content_type, title, depth, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			reportID, p.URL, p.StatusCode, p.ContentType, p.Title, p.Depth,
			p.FetchedAt.UTC().Format("2006-01-02 15:04:05"),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert page: %w", err)
		}
	}

	for _, f := range report.Forms {
		fieldsJSON, err := json.Marshal(f.Fields)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize form fields: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
		INSERT INTO forms (report_id, action, method, fields)
		VALUES (?, ?, ?, ?)
		`, reportID, f.Action, f.Method, string(fieldsJSON))
		if err != nil {
			return 0, fmt.Errorf("failed to insert form: %w", err)
		}
	}

	for _, ep := range report.Endpoints {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO api_endpoints (report_id, url, source, method_guess)
		VALUES (?, ?, ?, ?)
		`, reportID, ep.URL, string(ep.Source), ep.MethodGuess)
		if err != nil {
			return 0, fmt.Errorf("failed to insert endpoint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit report: %w", err)
	}

	return reportID, nil
}

// GetLatestReport retrieves the most recent report for a seed URL.
// It returns nil without error when no report exists.
func (cdb *CrawlDB) GetLatestReport(ctx context.Context, seedURL string) (*model.CrawlReport, error) {
	query := `
	SELECT report_json FROM crawl_reports
	WHERE seed_url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := cdb.db.QueryRowContext(ctx, query, seedURL).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.CrawlReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListSeedURLs returns the distinct seed URLs with stored reports.
func (cdb *CrawlDB) ListSeedURLs(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT seed_url FROM crawl_reports
	ORDER BY seed_url
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// ReportMetadata contains summary information about a stored report.
// This is used for displaying run history without loading the full report.
type ReportMetadata struct {
	// ID is the unique identifier of the report in the database.
	ID int64

	// SeedURL is the crawl's starting URL.
	SeedURL string

	// Timestamp is when the report was stored.
	Timestamp time.Time

	// PagesCrawled, FormsFound, EndpointsFound, and HiddenFilesFound are
	// the headline counters copied from the report summary.
	PagesCrawled     int
	FormsFound       int
	EndpointsFound   int
	HiddenFilesFound int

	// Cancelled is true when the run was stopped before draining.
	Cancelled bool
}

// GetReportHistory retrieves report metadata for a seed URL, newest first.
// This is more efficient than loading full reports when only headline
// counters are needed.
func (cdb *CrawlDB) GetReportHistory(ctx context.Context, seedURL string) ([]ReportMetadata, error) {
	query := `
	SELECT id, seed_url, timestamp, pages_crawled, forms_found, endpoints_found, hidden_files_found, cancelled
	FROM crawl_reports
	WHERE seed_url = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, seedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var results []ReportMetadata
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string
		var cancelled int

		err := rows.Scan(
			&meta.ID,
			&meta.SeedURL,
			&timestamp,
			&meta.PagesCrawled,
			&meta.FormsFound,
			&meta.EndpointsFound,
			&meta.HiddenFilesFound,
			&cancelled,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.Cancelled = cancelled != 0
		results = append(results, meta)
	}

	return results, rows.Err()
}

// PageSeenBefore reports whether a URL appears in any stored report.
// Useful for diffing a new run against history.
func (cdb *CrawlDB) PageSeenBefore(ctx context.Context, url string) (bool, error) {
	var count int
	err := cdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pages WHERE url = ?`, url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check page history: %w", err)
	}
	return count > 0, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
