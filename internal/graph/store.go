package graph

import (
	"sync"

	"github.com/nao1215/linkscan/internal/model"
)

// Store accumulates the link graph while crawl workers run concurrently.
// Pages are keyed by normalized URL with insertion order preserved; links
// are append-only edges. All methods are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	pages map[string]*model.Page
	order []string
	links []*model.Link
}

// NewStore creates an empty link graph store.
func NewStore() *Store {
	return &Store{
		pages: make(map[string]*model.Page),
	}
}

// AddPage records a crawled page. The first page registered for a URL wins;
// the scheduler's visited set makes duplicates impossible in practice, so a
// second registration is silently ignored rather than treated as an error.
func (s *Store) AddPage(page *model.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[page.URL]; ok {
		return
	}
	s.pages[page.URL] = page
	s.order = append(s.order, page.URL)
}

// AddLinks appends discovered links to the graph.
func (s *Store) AddLinks(links ...*model.Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append(s.links, links...)
}

// Page returns the page for a normalized URL, or nil if it was not crawled.
func (s *Store) Page(url string) *model.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages[url]
}

// Pages returns the crawled pages in insertion order. The slice is a copy;
// the pointed-to pages are shared.
func (s *Store) Pages() []*model.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Page, 0, len(s.order))
	for _, url := range s.order {
		out = append(out, s.pages[url])
	}
	return out
}

// Links returns a copy of the link slice in discovery order.
func (s *Store) Links() []*model.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Link, len(s.links))
	copy(out, s.links)
	return out
}

// PageCount returns the number of crawled pages.
func (s *Store) PageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// LinkCount returns the number of recorded links.
func (s *Store) LinkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.links)
}

// RecomputeLinkCounts recalculates every page's inbound and outbound link
// counts from the edge set. Duplicate links count individually. Links whose
// endpoint was never crawled (a broken destination beyond the page budget,
// for example) contribute only to the endpoints that exist.
//
// Must run after the crawl finishes and before any analysis pass reads the
// derived counts.
func (s *Store) RecomputeLinkCounts() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, page := range s.pages {
		page.InboundLinkCount = 0
		page.OutboundLinkCount = 0
	}
	for _, link := range s.links {
		if src, ok := s.pages[link.SourceURL]; ok {
			src.OutboundLinkCount++
		}
		if dst, ok := s.pages[link.DestinationURL]; ok {
			dst.InboundLinkCount++
		}
	}
}

// AssignClickDepths computes each page's minimum click distance from the
// crawl root with a breadth-first search over the edge set. The root gets
// depth 0; pages with no path from the root get model.DepthUnreachable.
//
// Must run after the crawl finishes and before any analysis pass reads
// ClickDepth.
func (s *Store) AssignClickDepths(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	adjacency := make(map[string][]string, len(s.pages))
	for _, link := range s.links {
		adjacency[link.SourceURL] = append(adjacency[link.SourceURL], link.DestinationURL)
	}

	for _, page := range s.pages {
		page.ClickDepth = model.DepthUnreachable
	}

	rootPage, ok := s.pages[root]
	if !ok {
		return
	}
	rootPage.ClickDepth = 0

	queue := []string{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		depth := s.pages[current].ClickDepth

		for _, next := range adjacency[current] {
			page, ok := s.pages[next]
			if !ok || page.ClickDepth != model.DepthUnreachable {
				continue
			}
			page.ClickDepth = depth + 1
			queue = append(queue, next)
		}
	}
}
