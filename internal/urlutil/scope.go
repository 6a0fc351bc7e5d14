package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Scope restricts a crawl to a single domain. It is captured once from the
// crawl root and consulted for every discovered link.
//
// Design decision: Hosts must match exactly. "www.example.com" and
// "example.com" are different hosts, and subdomains are never folded into
// their parent. Treating host aliases as equivalent would require per-site
// knowledge the crawler does not have, and silently merging them corrupts
// inbound-link counts for both hosts.
type Scope struct {
	scheme string
	host   string
	root   string
}

// NewScope builds a Scope from the raw crawl root URL. The root is
// normalized so the stored host matches normalized link destinations.
func NewScope(rawRoot string) (*Scope, error) {
	root, err := Normalize(rawRoot)
	if err != nil {
		return nil, fmt.Errorf("build crawl scope: %w", err)
	}
	u, err := url.Parse(root)
	if err != nil {
		return nil, fmt.Errorf("build crawl scope: %w", err)
	}
	return &Scope{scheme: u.Scheme, host: u.Host, root: root}, nil
}

// IsInternal reports whether a normalized URL belongs to the crawl domain.
// Only the host is compared; scheme differences do not exclude a URL.
func (s *Scope) IsInternal(normalized string) bool {
	u, err := url.Parse(normalized)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, s.host)
}

// Root returns the normalized crawl root URL.
func (s *Scope) Root() string { return s.root }

// Host returns the exact host the scope matches against.
func (s *Scope) Host() string { return s.host }

// Scheme returns the scheme of the crawl root.
func (s *Scope) Scheme() string { return s.scheme }
