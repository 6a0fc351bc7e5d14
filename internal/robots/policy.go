package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Default policy behavior.
const (
	// DefaultAgent is the user-agent token matched against robots.txt groups.
	DefaultAgent = "linkscan"

	// DefaultCacheTTL is how long a per-host verdict is reused.
	DefaultCacheTTL = 1 * time.Hour

	// maxRobotsSize caps how much of a robots.txt is read.
	maxRobotsSize = 512 << 10 // 512 KiB
)

// Policy decides whether a whole domain may be crawled. The crawl scheduler
// consults it once per crawl, before dispatching anything.
type Policy interface {
	// Allowed reports whether the crawler may visit the given host.
	// Implementations should treat their own failures as permission and
	// surface the error for logging.
	Allowed(ctx context.Context, scheme, host string) (bool, error)
}

// AllowAll is a Policy that permits every domain. Used when robots.txt
// checking is disabled and in tests.
type AllowAll struct{}

// Allowed always reports true.
func (AllowAll) Allowed(context.Context, string, string) (bool, error) {
	return true, nil
}

// HTTPPolicy fetches and evaluates robots.txt over HTTP, caching the
// per-host verdict. Safe for concurrent use.
//
// Design decision: The verdict is the root path's verdict for our agent.
// Path-level rules inside an allowed domain are deliberately not evaluated
// per URL; the crawl either happens or it does not, and a domain that
// disallows "/" is skipped as a whole.
type HTTPPolicy struct {
	client *http.Client
	agent  string
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]verdict
}

type verdict struct {
	allowed bool
	expires time.Time
}

// HTTPPolicyOption configures an HTTPPolicy.
type HTTPPolicyOption func(*HTTPPolicy)

// WithAgent sets the user-agent token matched against robots.txt groups.
func WithAgent(agent string) HTTPPolicyOption {
	return func(p *HTTPPolicy) {
		if agent != "" {
			p.agent = agent
		}
	}
}

// WithCacheTTL sets how long per-host verdicts are cached.
func WithCacheTTL(ttl time.Duration) HTTPPolicyOption {
	return func(p *HTTPPolicy) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// NewHTTPPolicy creates a robots.txt policy using the given HTTP client.
func NewHTTPPolicy(client *http.Client, opts ...HTTPPolicyOption) *HTTPPolicy {
	p := &HTTPPolicy{
		client: client,
		agent:  DefaultAgent,
		ttl:    DefaultCacheTTL,
		cache:  make(map[string]verdict),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Allowed fetches the host's robots.txt and reports whether the root path
// is crawlable for our agent. Fetch failures report true with the error
// attached so callers can log them; such failures are not cached.
func (p *HTTPPolicy) Allowed(ctx context.Context, scheme, host string) (bool, error) {
	p.mu.Lock()
	if v, ok := p.cache[host]; ok && time.Now().Before(v.expires) {
		p.mu.Unlock()
		return v.allowed, nil
	}
	p.mu.Unlock()

	allowed, err := p.fetchVerdict(ctx, scheme, host)
	if err != nil {
		return true, fmt.Errorf("robots.txt for %s: %w", host, err)
	}

	p.mu.Lock()
	p.cache[host] = verdict{allowed: allowed, expires: time.Now().Add(p.ttl)}
	p.mu.Unlock()
	return allowed, nil
}

// fetchVerdict retrieves and evaluates robots.txt for one host.
func (p *HTTPPolicy) fetchVerdict(ctx context.Context, scheme, host string) (bool, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return true, err
	}
	req.Header.Set("User-Agent", p.agent)

	resp, err := p.client.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close() //nolint:errcheck // Read side already consumed

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return true, err
	}

	// FromStatusAndBytes applies the standard status conventions: 4xx means
	// everything is allowed, 5xx means everything is disallowed.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return true, err
	}
	return data.TestAgent("/", p.agent), nil
}
