package model

// Depth and status sentinel values used across the crawl and analysis layers.
const (
	// DepthUnreachable marks a crawled page that the breadth-first search
	// could not reach from the crawl root. Such pages are usually orphans.
	DepthUnreachable = -1

	// StatusUnreachable marks a page whose fetch failed at the network level
	// after all retry attempts. It is distinct from every real HTTP status.
	StatusUnreachable = 0
)

// Page represents a single crawled page identified by its normalized URL.
//
// InboundLinkCount, OutboundLinkCount and ClickDepth are derived from the
// link graph after the crawl completes; they are zero until recomputed.
type Page struct {
	// URL is the normalized URL of the page. It is the page's identity:
	// the crawl guarantees at most one Page per normalized URL.
	URL string `json:"url"`

	// Title is the content of the page's <title> element, if any.
	Title string `json:"title,omitempty"`

	// StatusCode is the final HTTP status of the fetch, or StatusUnreachable
	// when the fetch failed at the network level after all retries.
	StatusCode int `json:"status_code"`

	// ResponseTimeMs is the wall-clock duration of the final fetch attempt
	// in milliseconds.
	ResponseTimeMs int64 `json:"response_time_ms"`

	// FetchError holds a short description of the terminal fetch failure
	// when StatusCode is StatusUnreachable.
	FetchError string `json:"fetch_error,omitempty"`

	// InboundLinkCount is the number of links in the graph whose destination
	// is this page, counting duplicates.
	InboundLinkCount int `json:"inbound_link_count"`

	// OutboundLinkCount is the number of links in the graph whose source
	// is this page, counting duplicates.
	OutboundLinkCount int `json:"outbound_link_count"`

	// ClickDepth is the minimum number of clicks from the crawl root to this
	// page. The root has depth 0. DepthUnreachable means no path exists.
	ClickDepth int `json:"click_depth"`
}

// IsBroken reports whether the page is a broken link target: it either
// returned an HTTP error status or could not be fetched at all.
func (p *Page) IsBroken() bool {
	return p.StatusCode == StatusUnreachable || p.StatusCode >= 400
}

// Fetched reports whether the page body was successfully retrieved.
func (p *Page) Fetched() bool {
	return p.StatusCode >= 200 && p.StatusCode < 400
}
