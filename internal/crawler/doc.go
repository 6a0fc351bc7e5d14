// Package crawler implements the crawl engine: a concurrent, polite,
// budget-bounded traversal of one domain that builds the link graph.
//
// # Architecture
//
// The package is designed around the Scheduler type. A single coordinator
// goroutine owns the frontier and the visited set; a fixed pool of workers
// performs fetch-and-extract units of work and reports discoveries back over
// channels. The Extractor turns fetched HTML into link-graph edges.
//
// Design decision: We implement our own scheduler rather than using a
// third-party crawling framework because:
//  1. Visited-set semantics (mark on dispatch, at most one fetch per
//     normalized URL) are the core correctness property and must be ours
//  2. The page budget is counted at dispatch time, which frameworks
//     generally do not expose
//  3. Politeness is per worker so the aggregate rate scales predictably
//     with concurrency
//
// # Components
//
//   - Scheduler: coordinator plus worker pool, frontier and visited set
//   - Extractor: HTML parser producing titles and in-scope links
//
// # Politeness
//
// The crawler respects the domain's robots.txt verdict, spaces requests per
// worker with a rate limiter, and never exceeds the page budget.
//
// # Usage
//
//	sched := crawler.NewScheduler(f, crawler.WithMaxPages(200))
//	stats, err := sched.Crawl(ctx, store, []string{"https://example.com/"})
package crawler
