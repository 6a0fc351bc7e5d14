package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Default fetch behavior. All of these can be overridden with options.
const (
	// DefaultMaxAttempts is the total number of fetch attempts per URL,
	// including the first one.
	DefaultMaxAttempts = 3

	// DefaultAttemptTimeout bounds a single fetch attempt.
	DefaultAttemptTimeout = 15 * time.Second

	// DefaultBackoffBase is the wait before the first retry. The wait
	// doubles on each subsequent retry.
	DefaultBackoffBase = 1 * time.Second

	// DefaultMaxBackoff caps the doubling backoff wait.
	DefaultMaxBackoff = 30 * time.Second

	// DefaultMaxBodySize caps how many bytes of a response body are read.
	DefaultMaxBodySize = 10 << 20 // 10 MiB
)

// DefaultUserAgents is the rotation pool used when no custom pool is set.
// The pool is cycled by attempt number so retries present a different agent.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Result is the outcome of a fetch that produced a server response.
// An HTTP error status is a valid Result, not a Go error.
type Result struct {
	// URL is the final URL after following redirects, as reported by the
	// transport. It may differ from the requested URL.
	URL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Body holds up to maxBodySize bytes of the response body.
	Body []byte

	// ResponseTime is the wall-clock duration of the final attempt.
	ResponseTime time.Duration

	// Attempts is how many attempts were made, including the final one.
	Attempts int
}

// Fetcher retrieves pages with retry, backoff and user-agent rotation.
//
// Design decision: The HTTP client is injected rather than constructed
// internally. The fetcher holds no process-global state, so tests supply an
// httptest client and callers control transport concerns such as redirect
// policy and connection pooling in one place.
type Fetcher struct {
	client         *http.Client
	maxAttempts    int
	attemptTimeout time.Duration
	backoffBase    time.Duration
	maxBackoff     time.Duration
	maxBodySize    int64
	userAgents     []string
	headers        map[string]string
	logger         *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMaxAttempts sets the total attempt budget per URL.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithAttemptTimeout sets the timeout for a single attempt.
func WithAttemptTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.attemptTimeout = d
		}
	}
}

// WithBackoff sets the initial retry wait and its cap.
func WithBackoff(base, maxWait time.Duration) Option {
	return func(f *Fetcher) {
		if base > 0 {
			f.backoffBase = base
		}
		if maxWait > 0 {
			f.maxBackoff = maxWait
		}
	}
}

// WithMaxBodySize caps how many bytes of each response body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithUserAgents replaces the user-agent rotation pool.
func WithUserAgents(agents []string) Option {
	return func(f *Fetcher) {
		if len(agents) > 0 {
			f.userAgents = agents
		}
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithLogger sets the logger for per-attempt debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a Fetcher using the given HTTP client.
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:         client,
		maxAttempts:    DefaultMaxAttempts,
		attemptTimeout: DefaultAttemptTimeout,
		backoffBase:    DefaultBackoffBase,
		maxBackoff:     DefaultMaxBackoff,
		maxBodySize:    DefaultMaxBodySize,
		userAgents:     DefaultUserAgents,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves one URL. Retryable conditions are network errors and the
// 429/403 statuses; everything else returns immediately. When the attempt
// budget runs out on a retryable status the last response is still returned
// as data. When it runs out on network errors the last error is returned and
// the caller records the page as unreachable.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	var lastErr error
	var lastResult *Result

	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := f.waitBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		result, err := f.do(ctx, rawURL, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			lastResult = nil
			f.logger.Debug("fetch attempt failed",
				"url", rawURL, "attempt", attempt+1, "error", err)
			continue
		}

		if !retryableStatus(result.StatusCode) {
			return result, nil
		}
		lastErr = nil
		lastResult = result
		f.logger.Debug("retryable status",
			"url", rawURL, "attempt", attempt+1, "status", result.StatusCode)
	}

	// A server that kept answering 429/403 still produced data.
	if lastResult != nil {
		return lastResult, nil
	}
	return nil, fmt.Errorf("fetch %s: all %d attempts failed: %w", rawURL, f.maxAttempts, lastErr)
}

// do performs a single attempt with its own timeout.
func (f *Fetcher) do(ctx context.Context, rawURL string, attempt int) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgents[attempt%len(f.userAgents)])
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read side already consumed

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Result{
		URL:          finalURL,
		StatusCode:   resp.StatusCode,
		Body:         body,
		ResponseTime: time.Since(start),
		Attempts:     attempt + 1,
	}, nil
}

// waitBackoff sleeps for the doubling backoff of the given attempt, honoring
// context cancellation.
func (f *Fetcher) waitBackoff(ctx context.Context, attempt int) error {
	wait := f.backoffBase << (attempt - 1)
	if wait > f.maxBackoff {
		wait = f.maxBackoff
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryableStatus reports whether a status is worth another attempt.
// 429 signals rate limiting; 403 is often user-agent filtering that a
// different agent in the rotation can pass.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusForbidden
}
