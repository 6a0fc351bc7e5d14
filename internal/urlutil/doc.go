// Package urlutil provides URL normalization and domain-scope filtering for
// the crawler. Normalization gives every page a single canonical identity;
// the scope filter decides which discovered links belong to the crawl.
package urlutil
