package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values match the crawl engine defaults so a zero-flag run behaves
// the same as a fully spelled-out one.
const (
	// DefaultTimeout is the per-request timeout. 15 seconds is generous for
	// ordinary sites while keeping stalled servers from blocking a worker
	// for long.
	DefaultTimeout = 15 * time.Second

	// DefaultConcurrency is the number of crawl workers per site.
	// Five workers saturate most small and medium sites without looking
	// like an attack.
	DefaultConcurrency = 5

	// DefaultMaxPages is the maximum number of pages to crawl per site.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 100

	// DefaultBatchSize of 4 concurrent site scans balances throughput with
	// resource usage when scanning from a seed list spanning several domains.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "linkscan"

	// DefaultCrawlDelay is the delay between requests from one worker.
	// This is a politeness setting to avoid overwhelming target servers.
	// Can be adjusted via the --delay CLI flag; 0 disables the delay.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Config holds all configuration options for linkscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Timeout is the timeout for each HTTP request attempt.
	// This applies to individual requests, not the overall scan duration.
	Timeout time.Duration

	// Concurrency is the number of crawl workers fetching pages in parallel
	// within one site.
	Concurrency int

	// MaxPages is the maximum number of pages to crawl per site.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent site scans when processing
	// multiple domains. Higher values increase throughput but may overwhelm
	// system resources.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .linkscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config
	// file. This is populated by LoadConfigFile and used during scanning.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with the other format flags.
	JSONReport bool

	// MarkdownReport enables Markdown report output with tables, alerts,
	// and pie charts. Mutually exclusive with the other format flags.
	MarkdownReport bool

	// CSVReport enables CSV issue export. Mutually exclusive with the other
	// format flags.
	CSVReport bool

	// ExcelReport enables Excel workbook export. Mutually exclusive with
	// the other format flags.
	ExcelReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of URLs to scan. Seeds sharing a scheme and host
	// are crawled together; distinct hosts become separate scans.
	Targets []string

	// SeedFile is a path to a text or CSV file with seed URLs.
	// Loaded seeds are appended to Targets.
	SeedFile string

	// IgnoreRobots disables robots.txt checking. By default the scanner
	// refuses to crawl hosts whose robots.txt disallows it.
	IgnoreRobots bool

	// DBDir is the directory path for storing the SQLite database.
	// When set, scan results are saved to the database for historical
	// comparison. When empty, the XDG data directory is used.
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	SaveToDB bool

	// CrawlDelay is the delay between HTTP requests from one worker.
	// This is a "politeness" setting to avoid overwhelming target servers.
	// Zero disables the delay, which is useful against localhost.
	CrawlDelay time.Duration

	// UserAgent overrides the rotating User-Agent set when non-empty.
	// A descriptive User-Agent helps site operators identify scanner traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, worker
// counts). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		MaxPages:    DefaultMaxPages,
		BatchSize:   DefaultBatchSize,
		CrawlDelay:  DefaultCrawlDelay,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for linkscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/linkscan
// On macOS: ~/Library/Application Support/linkscan
// On Windows: %LOCALAPPDATA%\linkscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linkscan.
// On Linux: ~/.config/linkscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for linkscan.
// On Linux: ~/.cache/linkscan
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target or a seed file to load them from
	if len(c.Targets) == 0 && c.SeedFile == "" {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// Report format flags are mutually exclusive
	formats := 0
	for _, enabled := range []bool{c.JSONReport, c.MarkdownReport, c.CSVReport, c.ExcelReport} {
		if enabled {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
