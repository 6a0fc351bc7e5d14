// Package pipeline orchestrates a scan as an ordered sequence of steps:
// crawl the site, analyze the link graph, persist the run. Each step reads
// and extends the shared ScanReport, which is the only state passed
// between steps.
//
// BatchProcessor runs one pipeline per target site with bounded
// concurrency, for seed lists spanning several domains.
package pipeline
