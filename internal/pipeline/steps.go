package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/linkscan/internal/analyzer"
	"github.com/nao1215/linkscan/internal/anchorscore"
	"github.com/nao1215/linkscan/internal/config"
	"github.com/nao1215/linkscan/internal/crawler"
	"github.com/nao1215/linkscan/internal/database"
	"github.com/nao1215/linkscan/internal/fetcher"
	"github.com/nao1215/linkscan/internal/graph"
	"github.com/nao1215/linkscan/internal/model"
	"github.com/nao1215/linkscan/internal/robots"
)

// CrawlStep crawls the target site and records the discovered link graph
// on the report.
//
// Design decision: Crawling is a separate step rather than part of the
// analyzer because:
// 1. It has its own configuration (budget, politeness, robots policy)
// 2. It produces raw data the analyzer only reads
// 3. It can be replaced in tests with a step that seeds a canned graph
type CrawlStep struct {
	// client is the HTTP client used for all fetches.
	client *http.Client

	// seeds are the start URLs. When empty, the report's RootURL is used.
	seeds []string

	// concurrency is the number of crawl workers.
	concurrency int

	// maxPages limits total pages to crawl.
	maxPages int

	// delay between requests from one worker for politeness.
	delay time.Duration

	// timeout is the per-request attempt timeout.
	timeout time.Duration

	// userAgent, when non-empty, replaces the rotating User-Agent set.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// policy decides whether a host may be crawled at all.
	policy robots.Policy

	// progress receives crawl progress updates.
	progress crawler.ProgressFunc

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlSeeds sets the full seed list for the crawl.
// Without this option the step crawls from the report's RootURL alone.
func WithCrawlSeeds(seeds []string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.seeds = seeds
	}
}

// WithCrawlConcurrency sets the number of crawl workers.
func WithCrawlConcurrency(n int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.concurrency = n
	}
}

// WithCrawlMaxPages sets the maximum pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlDelay sets the delay between requests from one worker.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlTimeout sets the per-request attempt timeout.
func WithCrawlTimeout(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.timeout = d
	}
}

// WithCrawlUserAgent sets a fixed User-Agent header for HTTP requests.
// A descriptive User-Agent helps site operators identify scanner traffic.
func WithCrawlUserAgent(userAgent string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.userAgent = userAgent
	}
}

// WithCrawlMaxBodySize sets the maximum response body size in bytes.
// Responses larger than this are truncated to prevent memory exhaustion.
func WithCrawlMaxBodySize(maxBodySize int64) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxBodySize = maxBodySize
	}
}

// WithCrawlRobotsPolicy sets the robots.txt policy for the crawl.
func WithCrawlRobotsPolicy(policy robots.Policy) CrawlStepOption {
	return func(s *CrawlStep) {
		s.policy = policy
	}
}

// WithCrawlProgress sets a progress callback for the crawl.
func WithCrawlProgress(fn crawler.ProgressFunc) CrawlStepOption {
	return func(s *CrawlStep) {
		s.progress = fn
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step using the given HTTP client.
//
// Default politeness settings are conservative:
//   - delay: 1 second between requests per worker (config.DefaultCrawlDelay)
//   - maxBodySize: 10MB to prevent memory exhaustion (config.DefaultMaxBodySize)
func NewCrawlStep(client *http.Client, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client:      client,
		concurrency: config.DefaultConcurrency,
		maxPages:    config.DefaultMaxPages,
		delay:       config.DefaultCrawlDelay,
		timeout:     config.DefaultTimeout,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	fetchOpts := []fetcher.Option{
		fetcher.WithAttemptTimeout(s.timeout),
		fetcher.WithMaxBodySize(s.maxBodySize),
		fetcher.WithLogger(s.logger),
	}
	if s.userAgent != "" {
		fetchOpts = append(fetchOpts, fetcher.WithUserAgents([]string{s.userAgent}))
	}
	f := fetcher.New(s.client, fetchOpts...)

	schedOpts := []crawler.Option{
		crawler.WithConcurrency(s.concurrency),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithDelay(s.delay),
		crawler.WithLogger(s.logger),
	}
	if s.policy != nil {
		schedOpts = append(schedOpts, crawler.WithRobotsPolicy(s.policy))
	}
	if s.progress != nil {
		schedOpts = append(schedOpts, crawler.WithProgress(s.progress))
	}
	scheduler := crawler.NewScheduler(f, schedOpts...)

	seeds := s.seeds
	if len(seeds) == 0 {
		seeds = []string{report.RootURL}
	}

	store := graph.NewStore()
	stats, err := scheduler.Crawl(ctx, store, seeds)
	if err != nil {
		if errors.Is(err, crawler.ErrNoValidSeeds) || errors.Is(err, crawler.ErrRobotsDisallowed) {
			return err
		}
		// Non-fatal: we may have partial results
		s.logger.Warn("crawl completed with error", "error", err)
		report.AddNote("crawl interrupted: " + err.Error())
	}

	if stats != nil {
		report.RootURL = stats.Root
		report.DurationMs = stats.Duration.Milliseconds()
		for _, note := range stats.Notes {
			report.AddNote(note)
		}
	}
	report.Pages = store.Pages()
	report.Links = store.Links()

	s.logger.Info("crawl completed",
		"pages_crawled", len(report.Pages),
		"links_found", len(report.Links),
	)

	return nil
}

// AnalyzeStep runs the analysis passes over the crawled link graph and
// attaches the resulting issues and summary to the report.
type AnalyzeStep struct {
	// scorer rates anchor text quality for generic-anchor evidence.
	scorer analyzer.Scorer

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeScorer sets the anchor text scorer.
func WithAnalyzeScorer(scorer analyzer.Scorer) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.scorer = scorer
	}
}

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		scorer: anchorscore.NewScorer(),
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.ScanReport) error {
	if len(report.Pages) == 0 {
		s.logger.Debug("skipping analysis, no pages crawled")
		return nil
	}

	// Rebuild the graph store from the report so the step depends only on
	// the shared report, not on state smuggled between steps.
	store := graph.NewStore()
	for _, page := range report.Pages {
		store.AddPage(page)
	}
	store.AddLinks(report.Links...)

	a := analyzer.New(
		analyzer.WithScorer(s.scorer),
		analyzer.WithLogger(s.logger),
	)

	issues, err := a.Analyze(ctx, store, report.RootURL)
	if err != nil {
		return err
	}

	// The store recomputed derived page fields; republish its view
	report.Pages = store.Pages()
	report.Issues = issues
	report.Summary = model.NewSummary(report)

	s.logger.Info("analysis completed",
		"issues", len(issues),
	)

	return nil
}

// SaveStep persists the completed report to the run database.
type SaveStep struct {
	// db is the run history database.
	db *database.ScanDB

	// logger for structured logging.
	logger *slog.Logger
}

// SaveStepOption configures a SaveStep.
type SaveStepOption func(*SaveStep)

// WithSaveLogger sets a custom logger for the save step.
func WithSaveLogger(logger *slog.Logger) SaveStepOption {
	return func(s *SaveStep) {
		s.logger = logger
	}
}

// NewSaveStep creates a new persistence step.
func NewSaveStep(db *database.ScanDB, opts ...SaveStepOption) *SaveStep {
	s := &SaveStep{
		db:     db,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SaveStep) Name() string {
	return "save"
}

// Do executes the save step.
func (s *SaveStep) Do(ctx context.Context, report *model.ScanReport) error {
	if s.db == nil {
		s.logger.Debug("skipping save, no database configured")
		return nil
	}

	runID, err := s.db.SaveScanReport(ctx, report)
	if err != nil {
		return err
	}

	s.logger.Info("scan run saved",
		"run_id", runID,
		"root", report.RootURL,
	)

	return nil
}
