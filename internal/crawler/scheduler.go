package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/linkscan/internal/fetcher"
	"github.com/nao1215/linkscan/internal/graph"
	"github.com/nao1215/linkscan/internal/model"
	"github.com/nao1215/linkscan/internal/robots"
	"github.com/nao1215/linkscan/internal/urlutil"
)

// Default crawl behavior. All of these can be overridden with options.
const (
	// DefaultConcurrency is the fixed worker pool size.
	DefaultConcurrency = 5

	// DefaultMaxPages is the page budget: the maximum number of URLs
	// dispatched to workers in one crawl.
	DefaultMaxPages = 100

	// DefaultDelay is the per-worker politeness delay between fetches.
	// The aggregate request rate scales with the worker count.
	DefaultDelay = 1 * time.Second
)

// Crawl-level sentinel errors.
var (
	// ErrNoValidSeeds is returned when no seed survives validation.
	ErrNoValidSeeds = errors.New("no valid seed URLs")

	// ErrRobotsDisallowed is returned when robots.txt forbids crawling the
	// domain. Callers treat it as a recoverable skip, not a failure.
	ErrRobotsDisallowed = errors.New("crawling disallowed by robots.txt")
)

// ProgressFunc receives best-effort progress notifications: how many pages
// finished and the current estimate of the total. The total can grow as new
// pages are discovered and is capped by the page budget.
type ProgressFunc func(completed, total int)

// Stats summarizes a finished crawl.
type Stats struct {
	// Root is the normalized crawl root (the first valid seed).
	Root string

	// PagesCrawled is the number of pages fetched, including failures.
	PagesCrawled int

	// LinksFound is the number of in-scope links recorded.
	LinksFound int

	// Notes records recoverable conditions such as dropped seeds.
	Notes []string

	// Duration is the wall-clock time of the crawl.
	Duration time.Duration
}

// Scheduler runs a bounded, polite, concurrent crawl of one domain.
//
// Design decision: A single coordinator goroutine owns the frontier and the
// visited set, and workers are pure fetch-and-extract functions connected by
// channels. Marking a URL visited and dispatching it is then one sequential
// step in one goroutine, which is what guarantees at most one fetch per
// normalized URL without a lock around every frontier operation.
type Scheduler struct {
	fetcher     *fetcher.Fetcher
	policy      robots.Policy
	concurrency int
	maxPages    int
	delay       time.Duration
	progress    ProgressFunc
	logger      *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithConcurrency sets the worker pool size.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxPages sets the page budget.
func WithMaxPages(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

// WithDelay sets the per-worker politeness delay.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithProgress registers a progress observer. Notifications are best-effort
// and never block the crawl; updates are dropped when the observer lags.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Scheduler) { s.progress = fn }
}

// WithRobotsPolicy sets the robots.txt policy consulted once per crawl.
func WithRobotsPolicy(policy robots.Policy) Option {
	return func(s *Scheduler) { s.policy = policy }
}

// WithLogger sets the crawl logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a Scheduler around the given fetcher.
func NewScheduler(f *fetcher.Fetcher, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:     f,
		policy:      robots.AllowAll{},
		concurrency: DefaultConcurrency,
		maxPages:    DefaultMaxPages,
		delay:       DefaultDelay,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// crawlResult is what one worker hands back to the coordinator.
type crawlResult struct {
	page       *model.Page
	links      []*model.Link
	discovered []string
}

// Crawl fetches pages starting from the seeds and fills the store with the
// resulting link graph. The first valid seed defines the crawl root and
// scope; later seeds that fail validation or fall outside the scope are
// dropped with a note. Crawl returns ErrRobotsDisallowed without fetching
// anything when the domain's robots.txt forbids crawling.
func (s *Scheduler) Crawl(ctx context.Context, store *graph.Store, seeds []string) (*Stats, error) {
	start := time.Now()

	scope, frontier, notes, err := s.prepareSeeds(seeds)
	if err != nil {
		return nil, err
	}
	stats := &Stats{Root: scope.Root(), Notes: notes}

	if allowed := s.checkRobots(ctx, scope); !allowed {
		stats.Duration = time.Since(start)
		return stats, fmt.Errorf("%s: %w", scope.Host(), ErrRobotsDisallowed)
	}

	notify, stopNotify := s.startNotifier()
	defer stopNotify()

	work := make(chan string)
	results := make(chan *crawlResult, s.concurrency)
	for i := 0; i < s.concurrency; i++ {
		go s.worker(ctx, scope, work, results)
	}

	visited := make(map[string]bool, s.maxPages)
	dispatched := 0
	completed := 0
	inflight := 0

	// nextURL pops the next unvisited frontier URL within budget, marking
	// it visited at selection time. Marking on dispatch rather than on
	// completion is what prevents a second in-flight fetch of the same URL.
	nextURL := func() string {
		for len(frontier) > 0 && dispatched < s.maxPages {
			candidate := frontier[0]
			frontier = frontier[1:]
			if visited[candidate] {
				continue
			}
			visited[candidate] = true
			dispatched++
			return candidate
		}
		return ""
	}

	next := nextURL()
	for next != "" || inflight > 0 {
		var workCh chan string
		if next != "" {
			workCh = work
		}

		select {
		case workCh <- next:
			inflight++
			next = nextURL()

		case result := <-results:
			inflight--
			completed++
			store.AddPage(result.page)
			store.AddLinks(result.links...)
			for _, d := range result.discovered {
				if !visited[d] {
					frontier = append(frontier, d)
				}
			}
			if next == "" {
				next = nextURL()
			}
			notify(completed, s.estimateTotal(dispatched, visited, frontier))

		case <-ctx.Done():
			// Stop dispatching but keep draining in-flight work so no
			// worker blocks on a dead results channel.
			next = ""
			frontier = nil
			for inflight > 0 {
				result := <-results
				inflight--
				store.AddPage(result.page)
				store.AddLinks(result.links...)
			}
			close(work)
			stats.PagesCrawled = store.PageCount()
			stats.LinksFound = store.LinkCount()
			stats.Duration = time.Since(start)
			return stats, ctx.Err()
		}
	}
	close(work)

	stats.PagesCrawled = store.PageCount()
	stats.LinksFound = store.LinkCount()
	stats.Duration = time.Since(start)
	s.logger.Info("crawl finished",
		"root", scope.Root(),
		"pages", stats.PagesCrawled,
		"links", stats.LinksFound,
		"duration", stats.Duration)
	return stats, nil
}

// prepareSeeds validates, normalizes and deduplicates the seed list. The
// first valid seed becomes the crawl root and defines the scope.
func (s *Scheduler) prepareSeeds(seeds []string) (*urlutil.Scope, []string, []string, error) {
	var scope *urlutil.Scope
	var frontier []string
	var notes []string
	seen := make(map[string]bool, len(seeds))

	for _, seed := range seeds {
		normalized, err := urlutil.Normalize(seed)
		if err != nil {
			notes = append(notes, fmt.Sprintf("dropped invalid seed %q: %v", seed, err))
			continue
		}
		if scope == nil {
			sc, err := urlutil.NewScope(normalized)
			if err != nil {
				notes = append(notes, fmt.Sprintf("dropped invalid seed %q: %v", seed, err))
				continue
			}
			scope = sc
		}
		if !scope.IsInternal(normalized) {
			notes = append(notes, fmt.Sprintf("dropped out-of-scope seed %q", seed))
			continue
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		frontier = append(frontier, normalized)
	}

	if scope == nil || len(frontier) == 0 {
		return nil, nil, nil, ErrNoValidSeeds
	}
	return scope, frontier, notes, nil
}

// checkRobots consults the robots policy once for the crawl domain.
// Policy errors count as allowed so an unreachable robots.txt never blocks
// a crawl.
func (s *Scheduler) checkRobots(ctx context.Context, scope *urlutil.Scope) bool {
	allowed, err := s.policy.Allowed(ctx, scope.Scheme(), scope.Host())
	if err != nil {
		s.logger.Warn("robots.txt check failed, assuming allowed",
			"host", scope.Host(), "error", err)
		return true
	}
	return allowed
}

// worker fetches and extracts pages until the work channel closes. Each
// worker carries its own politeness limiter, so the first fetch is immediate
// and subsequent fetches are spaced by the configured delay.
func (s *Scheduler) worker(ctx context.Context, scope *urlutil.Scope, work <-chan string, results chan<- *crawlResult) {
	limiter := rate.NewLimiter(rate.Every(s.delay), 1)
	for url := range work {
		if s.delay > 0 {
			if err := limiter.Wait(ctx); err != nil {
				results <- &crawlResult{page: &model.Page{
					URL:        url,
					StatusCode: model.StatusUnreachable,
					FetchError: err.Error(),
					ClickDepth: model.DepthUnreachable,
				}}
				continue
			}
		}
		results <- s.crawlPage(ctx, scope, url)
	}
}

// crawlPage performs one unit of work: fetch the URL and extract its links.
// A terminal fetch failure degrades to a Page with StatusUnreachable; an
// HTTP error response is recorded as data with no links.
func (s *Scheduler) crawlPage(ctx context.Context, scope *urlutil.Scope, url string) *crawlResult {
	page := &model.Page{URL: url, ClickDepth: model.DepthUnreachable}

	result, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		page.StatusCode = model.StatusUnreachable
		page.FetchError = err.Error()
		s.logger.Debug("page unreachable", "url", url, "error", err)
		return &crawlResult{page: page}
	}

	page.StatusCode = result.StatusCode
	page.ResponseTimeMs = result.ResponseTime.Milliseconds()
	if !page.Fetched() {
		return &crawlResult{page: page}
	}

	extractor, err := NewExtractor(result.URL, scope)
	if err != nil {
		s.logger.Debug("skip extraction", "url", url, "error", err)
		return &crawlResult{page: page}
	}
	extracted, err := extractor.Extract(bytes.NewReader(result.Body))
	if err != nil {
		s.logger.Debug("skip extraction", "url", url, "error", err)
		return &crawlResult{page: page}
	}

	page.Title = extracted.Title

	// The page's graph identity is the dispatched URL, so links keep it as
	// their source even when redirects moved the final URL.
	discovered := make([]string, 0, len(extracted.Links))
	seen := make(map[string]bool, len(extracted.Links))
	for _, link := range extracted.Links {
		link.SourceURL = url
		if !seen[link.DestinationURL] {
			seen[link.DestinationURL] = true
			discovered = append(discovered, link.DestinationURL)
		}
	}

	return &crawlResult{page: page, links: extracted.Links, discovered: discovered}
}

// startNotifier returns a non-blocking notify function backed by a buffered
// channel and a drain goroutine. A slow observer loses updates instead of
// stalling the coordinator.
func (s *Scheduler) startNotifier() (func(completed, total int), func()) {
	if s.progress == nil {
		return func(int, int) {}, func() {}
	}

	type update struct{ completed, total int }
	updates := make(chan update, 64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range updates {
			s.progress(u.completed, u.total)
		}
	}()

	notify := func(completed, total int) {
		select {
		case updates <- update{completed: completed, total: total}:
		default:
		}
	}
	stop := func() {
		close(updates)
		<-done
	}
	return notify, stop
}

// estimateTotal guesses the final page count for progress display: pages
// already dispatched plus distinct queued URLs, capped by the budget.
func (s *Scheduler) estimateTotal(dispatched int, visited map[string]bool, frontier []string) int {
	distinct := make(map[string]bool, len(frontier))
	for _, url := range frontier {
		if !visited[url] {
			distinct[url] = true
		}
	}
	total := dispatched + len(distinct)
	if total > s.maxPages {
		total = s.maxPages
	}
	return total
}
