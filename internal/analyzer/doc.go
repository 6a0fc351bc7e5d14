// Package analyzer runs the link-graph analysis passes. Each pass inspects
// an immutable snapshot of the crawled graph and emits severity-tagged
// issues; the coordinator prepares the graph's derived fields, runs the
// passes in order and aggregates their output into one sorted collection.
package analyzer
