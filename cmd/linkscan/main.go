// Package main provides the entry point for the linkscan CLI.
//
// linkscan crawls a website, builds its internal link graph, and reports
// structural issues such as broken links, orphaned pages, and weak anchor
// text.
//
// Usage:
//
//	linkscan scan <url>
//	linkscan scan --input seeds.txt
//
// See --help for all available options.
package main

// main is the entry point for linkscan.
func main() {
	Execute()
}
