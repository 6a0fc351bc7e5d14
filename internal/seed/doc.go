// Package seed reads crawl seed lists from user-supplied files: plain text
// with one URL per line, or CSV with a URL column. Parsing is permissive;
// strict URL validation happens later in the crawl scheduler, which drops
// bad seeds with a note instead of failing the run.
package seed
