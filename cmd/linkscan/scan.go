package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/linkscan/internal/config"
	"github.com/nao1215/linkscan/internal/crawler"
	"github.com/nao1215/linkscan/internal/database"
	"github.com/nao1215/linkscan/internal/log"
	"github.com/nao1215/linkscan/internal/model"
	"github.com/nao1215/linkscan/internal/pipeline"
	"github.com/nao1215/linkscan/internal/report"
	"github.com/nao1215/linkscan/internal/robots"
	"github.com/nao1215/linkscan/internal/seed"
	"github.com/nao1215/linkscan/internal/urlutil"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]...",
		Short: "Crawl a website and analyze its internal link structure",
		Long: `Scan crawls a website starting from the given URL, builds its internal
link graph, and analyzes it for:
- Broken links and unreachable pages
- Orphaned pages with no inbound links
- Pages buried too many clicks from the root
- Duplicate links and conflicting anchor text
- Generic anchor text ("click here", "read more")

Seeds sharing a scheme and host are crawled together as one site; distinct
hosts become separate scans.

Examples:
  # Scan a single site
  linkscan scan https://example.com

  # Scan multiple sites concurrently
  linkscan scan https://example.com https://docs.example.org

  # Load seed URLs from a text or CSV file
  linkscan scan --input seeds.txt

  # Output a Markdown report to a file
  linkscan scan --markdown -o report.md https://example.com

  # Crawl fast against a staging server
  linkscan scan --delay 0 --concurrency 10 https://staging.example.com

Configuration file (.linkscan) example:
  defaults:
    maxPages: 100
    delayMs: 1000
  sites:
    docs.example.com:
      maxPages: 500
      concurrency: 2`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request attempt")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of crawl workers per site")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Delay between requests from one worker (politeness)")
	cmd.Flags().String("user-agent", "",
		"Fixed User-Agent header (default: built-in rotating set)")
	cmd.Flags().Bool("ignore-robots", false,
		"Crawl hosts even when robots.txt disallows it")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent site scans")

	// Seed input
	cmd.Flags().StringP("input", "i", "",
		"Load seed URLs from a text or CSV file")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with other format flags)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with other format flags)")
	cmd.Flags().Bool("csv", false,
		"Output CSV issue export (mutually exclusive with other format flags)")
	cmd.Flags().Bool("excel", false,
		"Output Excel workbook (mutually exclusive with other format flags)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.IgnoreRobots, err = cmd.Flags().GetBool("ignore-robots")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.SeedFile, err = cmd.Flags().GetString("input")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.CSVReport, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.ExcelReport, err = cmd.Flags().GetBool("excel")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Verbose flag also controls report detail (linked-from lists, advice)
	cfg.Verbose = getVerboseFlag(cmd)

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Get positional arguments (seed URLs)
	cfg.Targets = args

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The logger sanitizes credentials embedded in URLs and header values.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, verbose)
}

// siteGroup is one crawl unit: all seed URLs sharing a scheme and host.
type siteGroup struct {
	// root is the first seed of the group and becomes the report root.
	root string

	// host is the bare hostname, used for site config lookup.
	host string

	// seeds are all seed URLs of the group in input order.
	seeds []string
}

// groupTargets normalizes seed URLs and groups them by scheme and host.
// Groups preserve first-seen order, and duplicate seeds are dropped.
func groupTargets(targets []string) ([]siteGroup, error) {
	groups := make([]siteGroup, 0, len(targets))
	index := make(map[string]int)
	seen := make(map[string]bool)

	for _, target := range targets {
		normalized, err := urlutil.Normalize(target)
		if err != nil {
			return nil, fmt.Errorf("invalid seed URL %q: %w", target, err)
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true

		u, err := url.Parse(normalized)
		if err != nil {
			return nil, fmt.Errorf("invalid seed URL %q: %w", target, err)
		}

		key := u.Scheme + "://" + u.Host
		if i, ok := index[key]; ok {
			groups[i].seeds = append(groups[i].seeds, normalized)
			continue
		}

		index[key] = len(groups)
		groups = append(groups, siteGroup{
			root:  normalized,
			host:  u.Hostname(),
			seeds: []string{normalized},
		})
	}

	return groups, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Load seed URLs from file and append to positional targets
	if cfg.SeedFile != "" {
		seeds, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("failed to load seed file %s: %w", cfg.SeedFile, err)
		}
		cfg.Targets = append(cfg.Targets, seeds...)
	}

	if len(cfg.Targets) == 0 {
		return config.ErrNoTarget
	}

	groups, err := groupTargets(cfg.Targets)
	if err != nil {
		return err
	}

	logger.Info("starting scan",
		"sites", len(groups),
		"seeds", len(cfg.Targets),
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ScanDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// One shared HTTP client for crawling and robots.txt fetches.
	// Per-attempt timeouts are applied by the fetcher, so the client itself
	// carries no deadline.
	client := &http.Client{}

	policy := buildRobotsPolicy(cfg, client)

	// Use batch processor for parallel scanning if multiple sites
	if len(groups) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, client, policy, db, logger, groups)
	}

	// Single site or sequential scanning
	return runSequentialScan(ctx, cfg, client, policy, db, logger, groups)
}

// buildRobotsPolicy returns the robots.txt policy for the scan.
func buildRobotsPolicy(cfg *config.Config, client *http.Client) robots.Policy {
	if cfg.IgnoreRobots {
		return robots.AllowAll{}
	}
	opts := []robots.HTTPPolicyOption{}
	if cfg.UserAgent != "" {
		opts = append(opts, robots.WithAgent(cfg.UserAgent))
	}
	return robots.NewHTTPPolicy(client, opts...)
}

// runSequentialScan scans sites one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, client *http.Client, policy robots.Policy, db *database.ScanDB, logger *slog.Logger, groups []siteGroup) error {
	for _, group := range groups {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Progress updates share the terminal with nothing else in
		// sequential mode, so a rewriting line is safe here
		progress := func(completed, total int) {
			fmt.Printf("\r  crawled %d/%d pages", completed, total)
		}

		p := createPipelineForSite(client, policy, db, logger, cfg, group, progress)

		scanReport := model.NewScanReport(group.root)

		fmt.Printf("Scanning %s...\n", group.root)
		startTime := time.Now()

		// Execute the pipeline
		err := p.Execute(ctx, scanReport)
		fmt.Println()
		if err != nil {
			logger.Error("scan failed", "target", group.root, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", group.root, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", group.root, "error", err)
		}
	}

	return nil
}

// runBatchScan scans multiple sites concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, client *http.Client, policy robots.Policy, db *database.ScanDB, logger *slog.Logger, groups []siteGroup) error {
	fmt.Printf("Starting batch scan of %d sites (concurrency: %d)...\n\n",
		len(groups), cfg.BatchSize)

	startTime := time.Now()

	// BatchProcessor targets are group roots; map back to the full group so
	// each site keeps its seed list and per-site config.
	groupByRoot := make(map[string]siteGroup, len(groups))
	targets := make([]string, 0, len(groups))
	for _, group := range groups {
		groupByRoot[group.root] = group
		targets = append(targets, group.root)
	}

	bp := pipeline.NewBatchProcessor(
		func(target string) *pipeline.Pipeline {
			// No progress line in batch mode: concurrent scans would
			// interleave on one terminal
			return createPipelineForSite(client, policy, db, logger, cfg, groupByRoot[target], nil)
		},
		pipeline.WithBatchConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if scanReport.ErrorMessage != "" {
			fmt.Printf("[%d/%d] Scan failed: %s (%s)\n", index+1, len(targets), scanReport.RootURL, scanReport.ErrorMessage)
			return
		}

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(targets), scanReport.RootURL)

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "target", scanReport.RootURL, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createPipelineForSite creates a crawl+analyze+save pipeline for one site,
// applying site-specific config overrides on top of the global config.
func createPipelineForSite(client *http.Client, policy robots.Policy, db *database.ScanDB, logger *slog.Logger, cfg *config.Config, group siteGroup, progress crawler.ProgressFunc) *pipeline.Pipeline {
	// Site-specific overrides (zero values fall back to global config)
	var site config.SiteConfig
	if cfg.SiteConfigs != nil {
		site = cfg.SiteConfigs.GetSiteConfig(group.host)
	}

	concurrency := cfg.Concurrency
	if site.Concurrency > 0 {
		concurrency = site.Concurrency
	}
	maxPages := cfg.MaxPages
	if site.MaxPages > 0 {
		maxPages = site.MaxPages
	}
	delay := cfg.CrawlDelay
	if site.DelayMs > 0 {
		delay = time.Duration(site.DelayMs) * time.Millisecond
	}
	userAgent := cfg.UserAgent
	if site.UserAgent != "" {
		userAgent = site.UserAgent
	}

	crawlOpts := []pipeline.CrawlStepOption{
		pipeline.WithCrawlSeeds(group.seeds),
		pipeline.WithCrawlConcurrency(concurrency),
		pipeline.WithCrawlMaxPages(maxPages),
		pipeline.WithCrawlDelay(delay),
		pipeline.WithCrawlTimeout(cfg.Timeout),
		pipeline.WithCrawlMaxBodySize(cfg.MaxBodySize),
		pipeline.WithCrawlRobotsPolicy(policy),
		pipeline.WithCrawlLogger(logger),
	}
	if userAgent != "" {
		crawlOpts = append(crawlOpts, pipeline.WithCrawlUserAgent(userAgent))
	}
	if progress != nil {
		crawlOpts = append(crawlOpts, pipeline.WithCrawlProgress(progress))
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(client, crawlOpts...),
		pipeline.NewAnalyzeStep(pipeline.WithAnalyzeLogger(logger)),
		pipeline.NewSaveStep(db, pipeline.WithSaveLogger(logger)),
	)

	return p
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	case cfg.CSVReport:
		writer = report.NewCSVWriter(output)
	case cfg.ExcelReport:
		writer = report.NewExcelWriter(output)
	default:
		// Human-readable report
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(scanReport)
	return err
}
