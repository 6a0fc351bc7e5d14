// Package report renders scan reports in the supported output formats:
// plain text for terminals, JSON for tool integration, Markdown for
// documentation and sharing, CSV for spreadsheets, and Excel workbooks
// for offline triage.
//
// All writers implement the same Writer interface, and MultiWriter fans
// one report out to several destinations, such as terminal plus file.
package report
