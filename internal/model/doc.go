// Package model defines the core data structures shared across the crawl and
// analysis layers: crawled pages, link-graph edges, severity levels, detected
// issues, and the scan report that aggregates them for writers and storage.
package model
