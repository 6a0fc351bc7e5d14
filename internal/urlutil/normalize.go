package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotAbsolute is returned when a URL lacks a scheme or host after
// resolution. Such URLs cannot identify a page and must be discarded.
var ErrNotAbsolute = errors.New("URL is not absolute")

// Normalize converts a raw absolute URL into its canonical form:
//   - scheme and host are lowercased
//   - the fragment is removed
//   - unnecessary percent-escapes are decoded and the path is re-encoded
//     canonically
//   - an empty path becomes "/"
//   - trailing slashes are stripped unless the path is the domain root
//
// Normalize is pure and idempotent: applying it to its own output returns
// the same string. It returns an error only for malformed input; callers
// discard the link in that case.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("normalize %q: %w", raw, ErrNotAbsolute)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	// Dropping RawPath forces net/url to re-encode the decoded path
	// canonically, collapsing unnecessary escapes like %7E.
	u.RawPath = ""

	if u.Path == "" {
		u.Path = "/"
	}
	for len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return u.String(), nil
}

// ResolveReference resolves href against the page URL base and normalizes
// the result. Relative, scheme-relative and absolute hrefs are all accepted.
func ResolveReference(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	return Normalize(base.ResolveReference(ref).String())
}

// nonCrawlableSchemes lists href prefixes that can never yield a fetchable
// page. They are rejected before normalization is attempted.
var nonCrawlableSchemes = []string{
	"mailto:",
	"tel:",
	"javascript:",
	"data:",
}

// CrawlableScheme reports whether a raw href is worth resolving at all.
// Empty hrefs, bare fragments and non-HTTP schemes such as mailto: or
// javascript: are filtered out here.
func CrawlableScheme(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	lower := strings.ToLower(href)
	for _, scheme := range nonCrawlableSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}
