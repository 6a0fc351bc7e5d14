// Package graph holds the in-memory link graph built during a crawl:
// pages keyed by normalized URL and the directed links between them.
// The store is safe for concurrent writers; the derived-field algorithms
// (link counts, click depths) run after the crawl has finished.
package graph
