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

	"github.com/nao1215/linkscan/internal/model"
)

// ScanDB provides SQLite-based storage for scan runs. It manages
// connection pooling and provides methods for saving and querying run
// history.
//
// Design decision: We use a single database file for all scanned sites
// rather than one file per site. This simplifies cross-site queries and
// backup/restore operations.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
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

// Open opens or creates a ScanDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "linkscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	// SQLite supports only one writer; extra connections just contend.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scan runs store complete scan reports as JSON
	CREATE TABLE IF NOT EXISTS scan_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		duration_ms INTEGER DEFAULT 0,
		report_json TEXT NOT NULL,
		summary_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_root ON scan_runs(root_url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON scan_runs(timestamp);

	-- Page rows enable cross-run history queries without parsing report JSON
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES scan_runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		status_code INTEGER,
		title TEXT,
		click_depth INTEGER,
		inbound_links INTEGER,
		outbound_links INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScanReport persists a complete scan run and its page rows.
// Returns the new run's database ID.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}
	summaryJSON, _ := json.Marshal(summary) //nolint:errcheck,errchkjson // Summary is a flat struct; Marshal won't fail

	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	result, err := tx.ExecContext(ctx,
		`INSERT INTO scan_runs (root_url, duration_ms, report_json, summary_json) VALUES (?, ?, ?, ?)`,
		report.RootURL,
		report.DurationMs,
		string(reportJSON),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, page := range report.Pages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO pages (run_id, url, status_code, title, click_depth, inbound_links, outbound_links)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID,
			page.URL,
			page.StatusCode,
			page.Title,
			page.ClickDepth,
			page.InboundLinkCount,
			page.OutboundLinkCount,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save page row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan run: %w", err)
	}
	return runID, nil
}

// GetLatestScanReport retrieves the most recent scan report for a root URL.
// Returns nil without error when no run exists.
func (sdb *ScanDB) GetLatestScanReport(ctx context.Context, rootURL string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_runs
	WHERE root_url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, rootURL).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// GetScanReportByID retrieves a scan report by its database ID.
// Returns nil without error when the ID does not exist.
func (sdb *ScanDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, `SELECT report_json FROM scan_runs WHERE id = ?`, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	return unmarshalReport(reportJSON)
}

// GetLatestTwoReports retrieves the two most recent runs for a root URL,
// newest first. Used by run comparison; fewer than two runs is not an
// error, the caller checks the slice length.
func (sdb *ScanDB) GetLatestTwoReports(ctx context.Context, rootURL string) ([]*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_runs
	WHERE root_url = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 2
	`

	rows, err := sdb.db.QueryContext(ctx, query, rootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScanReport
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		report, err := unmarshalReport(reportJSON)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// ListScannedSites returns every root URL with at least one stored run.
func (sdb *ScanDB) ListScannedSites(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `SELECT DISTINCT root_url FROM scan_runs ORDER BY root_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// ScanRunMetadata contains summary information about a stored run.
// This is used for displaying run history without loading full reports.
type ScanRunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// RootURL is the scanned crawl root.
	RootURL string

	// Timestamp is when the run was stored.
	Timestamp time.Time

	// Summary holds the run's issue counts.
	Summary *model.Summary
}

// GetScanHistory retrieves run metadata for a root URL, newest first.
// This is more efficient than loading full reports when only headline
// numbers are needed.
func (sdb *ScanDB) GetScanHistory(ctx context.Context, rootURL string) ([]ScanRunMetadata, error) {
	query := `
	SELECT id, root_url, timestamp, summary_json
	FROM scan_runs
	WHERE root_url = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, rootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanRunMetadata
	for rows.Next() {
		var meta ScanRunMetadata
		var timestamp string
		var summaryJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.RootURL, &timestamp, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		if summaryJSON.Valid && summaryJSON.String != "" {
			var summary model.Summary
			if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err == nil {
				meta.Summary = &summary
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// PageHistoryEntry is one page observation from a past run.
type PageHistoryEntry struct {
	// RunID is the run the observation belongs to.
	RunID int64

	// Timestamp is when the run was stored.
	Timestamp time.Time

	// StatusCode is the page's HTTP status in that run.
	StatusCode int

	// ClickDepth is the page's click depth in that run.
	ClickDepth int
}

// GetPageHistory returns a page's status and depth across stored runs,
// newest first. Useful for spotting pages that flip between healthy and
// broken.
func (sdb *ScanDB) GetPageHistory(ctx context.Context, pageURL string) ([]PageHistoryEntry, error) {
	query := `
	SELECT p.run_id, r.timestamp, p.status_code, p.click_depth
	FROM pages p
	JOIN scan_runs r ON r.id = p.run_id
	WHERE p.url = ?
	ORDER BY r.timestamp DESC, p.run_id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get page history: %w", err)
	}
	defer rows.Close()

	var results []PageHistoryEntry
	for rows.Next() {
		var entry PageHistoryEntry
		var timestamp string
		if err := rows.Scan(&entry.RunID, &timestamp, &entry.StatusCode, &entry.ClickDepth); err != nil {
			return nil, fmt.Errorf("failed to scan page history: %w", err)
		}
		entry.Timestamp = parseTimestamp(timestamp)
		results = append(results, entry)
	}

	return results, rows.Err()
}

// unmarshalReport decodes a stored report JSON blob.
func unmarshalReport(reportJSON string) (*model.ScanReport, error) {
	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
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
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
