// Package fetcher retrieves pages over HTTP with bounded retries,
// exponential backoff and user-agent rotation. It distinguishes server
// responses, which are data even when they are errors, from network
// failures, which are terminal after the retry budget is spent.
package fetcher
