package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/linkscan/internal/config"
	"github.com/nao1215/linkscan/internal/database"
	"github.com/nao1215/linkscan/internal/model"
	"github.com/nao1215/linkscan/internal/urlutil"
	"github.com/spf13/cobra"
)

// Constants for health trend direction and summary messages.
const (
	trendWorsened   = "worsened"
	trendImproved   = "improved"
	trendUnchanged  = "unchanged"
	noIssuesMessage = "No issues"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [url]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- New issues that appeared since the last scan
- Resolved issues that are no longer present
- Changes in severity counts and pages crawled

The comparison requires at least two scans in the database for the specified
site. Use 'linkscan scan' to perform scans and save results.

Examples:
  # Compare latest two scans for a site
  linkscan compare https://example.com

  # List all scan history for a site
  linkscan compare --list https://example.com

  # Compare with a specific historical scan by ID
  linkscan compare --with-scan-id 5 https://example.com

  # Compare scans since a specific date
  linkscan compare --since "2026-01-01" https://example.com

  # Show how one page changed across scans
  linkscan compare --page https://example.com/docs/ https://example.com

  # Output comparison in JSON format
  linkscan compare --json https://example.com

  # List all scanned sites in the database
  linkscan compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all scanned sites in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Page-level history
	cmd.Flags().String("page", "",
		"Show status and depth history of a single page URL across scans")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Handle --list-sites flag first (requires database but no site URL)
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	pageURL, err := cmd.Flags().GetString("page")
	if err != nil {
		return err
	}

	// Validate arguments before opening database (unless --list-sites or
	// --page, which do not need a site argument)
	var rootURL string
	if !listSites && pageURL == "" {
		if len(args) == 0 {
			return errors.New("site URL is required (use --list-sites to see available sites)")
		}

		rootURL, err = urlutil.Normalize(args[0])
		if err != nil {
			return fmt.Errorf("invalid site URL: %w", err)
		}
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list-sites flag
	if listSites {
		return listScannedSites(ctx, db)
	}

	// Handle --page flag
	if pageURL != "" {
		normalized, err := urlutil.Normalize(pageURL)
		if err != nil {
			return fmt.Errorf("invalid page URL: %w", err)
		}
		return listPageHistory(ctx, db, normalized)
	}

	// Handle --list flag
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listScanHistory(ctx, db, rootURL)
	}

	// Get output format flags
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	// Get comparison target flags
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	// Perform comparison
	return runComparison(ctx, db, rootURL, withScanID, sinceDate, jsonOutput, markdownOutput)
}

// listScannedSites lists all sites that have scan records in the database.
func listScannedSites(ctx context.Context, db *database.ScanDB) error {
	sites, err := db.ListScannedSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No scanned sites found in the database.")
		fmt.Println("\nUse 'linkscan scan <url>' to scan a site.")
		return nil
	}

	fmt.Printf("Scanned sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Printf("  • %s\n", site)
	}
	fmt.Println("\nUse 'linkscan compare --list <url>' to see scan history for a site.")

	return nil
}

// listScanHistory lists all scan records for a specific site.
func listScanHistory(ctx context.Context, db *database.ScanDB, rootURL string) error {
	history, err := db.GetScanHistory(ctx, rootURL)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		fmt.Printf("No scan history found for %s\n", rootURL)
		fmt.Println("\nUse 'linkscan scan' to scan this site.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", rootURL, len(history))
	fmt.Printf("  %-6s  %-20s  %-7s  %s\n", "ID", "Date", "Pages", "Issue Summary")
	fmt.Println("  " + strings.Repeat("-", 60))

	for _, meta := range history {
		pages := "-"
		if meta.Summary != nil {
			pages = strconv.Itoa(meta.Summary.PagesCrawled)
		}
		fmt.Printf("  %-6d  %-20s  %-7s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			pages,
			formatIssueSummary(meta.Summary),
		)
	}

	fmt.Println("\nUse 'linkscan compare <url>' to compare the latest two scans.")
	fmt.Println("Use 'linkscan compare --with-scan-id <id> <url>' to compare with a specific scan.")

	return nil
}

// listPageHistory shows one page's status code and click depth across runs.
func listPageHistory(ctx context.Context, db *database.ScanDB, pageURL string) error {
	entries, err := db.GetPageHistory(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("failed to get page history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No history found for %s\n", pageURL)
		return nil
	}

	fmt.Printf("Page history for %s (%d observations):\n\n", pageURL, len(entries))
	fmt.Printf("  %-6s  %-20s  %-12s  %s\n", "Run", "Date", "Status", "Click Depth")
	fmt.Println("  " + strings.Repeat("-", 55))

	for _, entry := range entries {
		status := "unreachable"
		if entry.StatusCode != model.StatusUnreachable {
			status = fmt.Sprintf("HTTP %d", entry.StatusCode)
		}
		depth := strconv.Itoa(entry.ClickDepth)
		if entry.ClickDepth == model.DepthUnreachable {
			depth = "unreachable"
		}
		fmt.Printf("  %-6d  %-20s  %-12s  %s\n",
			entry.RunID,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			status,
			depth,
		)
	}

	return nil
}

// formatIssueSummary formats a run summary into a compact string.
func formatIssueSummary(summary *model.Summary) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if summary.CriticalCount > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", summary.CriticalCount))
	}
	if summary.HighCount > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", summary.HighCount))
	}
	if summary.MediumCount > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", summary.MediumCount))
	}
	if summary.LowCount > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", summary.LowCount))
	}

	if len(parts) == 0 {
		return noIssuesMessage
	}
	return strings.Join(parts, " ")
}

// runComparison performs the actual comparison between scan runs.
func runComparison(ctx context.Context, db *database.ScanDB, rootURL string, withScanID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	var currentReport, previousReport *model.ScanReport

	switch {
	case withScanID > 0:
		var err error
		currentReport, err = db.GetLatestScanReport(ctx, rootURL)
		if err != nil {
			return fmt.Errorf("failed to get latest scan: %w", err)
		}
		if currentReport == nil {
			return fmt.Errorf("no scan history found for %s", rootURL)
		}

		previousReport, err = db.GetScanReportByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same site
		if previousReport.RootURL != rootURL {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.RootURL, rootURL)
		}

	case sinceDate != "":
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		history, err := db.GetScanHistory(ctx, rootURL)
		if err != nil {
			return fmt.Errorf("failed to get scan history: %w", err)
		}
		if len(history) == 0 {
			return fmt.Errorf("no scan history found for %s", rootURL)
		}

		// History is newest first; iterate in reverse to find the oldest
		// run at or after the date
		var baseline *database.ScanRunMetadata
		for i := len(history) - 1; i >= 0; i-- {
			meta := history[i]
			if meta.Timestamp.After(parsedDate) || meta.Timestamp.Equal(parsedDate) {
				baseline = &meta
				break
			}
		}
		if baseline == nil {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		if baseline.ID == history[0].ID {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}

		currentReport, err = db.GetScanReportByID(ctx, history[0].ID)
		if err != nil {
			return fmt.Errorf("failed to get latest scan: %w", err)
		}
		previousReport, err = db.GetScanReportByID(ctx, baseline.ID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", baseline.ID, err)
		}

	default:
		reports, err := db.GetLatestTwoReports(ctx, rootURL)
		if err != nil {
			return fmt.Errorf("failed to get scan history: %w", err)
		}
		if len(reports) == 0 {
			return fmt.Errorf("no scan history found for %s", rootURL)
		}
		if len(reports) < 2 {
			return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
		}
		currentReport = reports[0]
		previousReport = reports[1]
	}

	// Generate comparison result
	comparison := compareReports(previousReport, currentReport)

	// Output the result
	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan runs.
type ComparisonResult struct {
	// RootURL is the scanned crawl root.
	RootURL string `json:"root_url"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// NewIssues contains issues that are new in the current scan.
	NewIssues []*model.Issue `json:"new_issues,omitempty"`

	// ResolvedIssues contains issues present in the previous scan but not
	// in the current one.
	ResolvedIssues []*model.Issue `json:"resolved_issues,omitempty"`

	// UnchangedCount is the number of issues that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// HealthChange describes the overall change in link health.
	HealthChange HealthChange `json:"health_change"`
}

// ScanMetadata contains metadata about a scan for comparison display.
type ScanMetadata struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// PagesCrawled is the number of pages crawled in this scan.
	PagesCrawled int `json:"pages_crawled"`

	// TotalIssues is the total number of issues in this scan.
	TotalIssues int `json:"total_issues"`

	// CriticalCount is the number of critical issues.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity issues.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity issues.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity issues.
	LowCount int `json:"low_count"`
}

// HealthChange describes the change in link health between scans.
type HealthChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical issue count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity issue count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity issue count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity issue count.
	LowDelta int `json:"low_delta"`

	// PagesDelta is the change in pages crawled.
	PagesDelta int `json:"pages_delta"`
}

// compareReports compares two scan runs and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		RootURL:      current.RootURL,
		PreviousScan: scanMetadata(previous),
		CurrentScan:  scanMetadata(current),
	}

	// Build issue maps for comparison
	previousIssues := make(map[string]*model.Issue)
	currentIssues := make(map[string]*model.Issue)

	for _, issue := range previous.Issues {
		previousIssues[issueKey(issue)] = issue
	}
	for _, issue := range current.Issues {
		currentIssues[issueKey(issue)] = issue
	}

	// Find new issues (in current but not in previous)
	for key, issue := range currentIssues {
		if _, exists := previousIssues[key]; !exists {
			result.NewIssues = append(result.NewIssues, issue)
		}
	}

	// Find resolved issues (in previous but not in current)
	for key, issue := range previousIssues {
		if _, exists := currentIssues[key]; !exists {
			result.ResolvedIssues = append(result.ResolvedIssues, issue)
		} else {
			result.UnchangedCount++
		}
	}

	model.SortIssues(result.NewIssues)
	model.SortIssues(result.ResolvedIssues)

	result.HealthChange = calculateHealthChange(result.PreviousScan, result.CurrentScan)

	return result
}

// scanMetadata extracts comparison metadata from a stored report.
func scanMetadata(report *model.ScanReport) ScanMetadata {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report)
	}
	return ScanMetadata{
		DateScanned:   report.DateScanned,
		PagesCrawled:  summary.PagesCrawled,
		TotalIssues:   summary.TotalIssues,
		CriticalCount: summary.CriticalCount,
		HighCount:     summary.HighCount,
		MediumCount:   summary.MediumCount,
		LowCount:      summary.LowCount,
	}
}

// issueKey generates a unique key for an issue for comparison purposes.
func issueKey(issue *model.Issue) string {
	return string(issue.Kind) + "|" + issue.PageURL + "|" + issue.DestinationURL
}

// calculateHealthChange calculates the change in link health between two scans.
func calculateHealthChange(previous, current ScanMetadata) HealthChange {
	change := HealthChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		PagesDelta:    current.PagesCrawled - previous.PagesCrawled,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5

	if currentScore < previousScore {
		change.Direction = trendImproved
	} else if currentScore > previousScore {
		change.Direction = trendWorsened
	} else {
		change.Direction = trendUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.RootURL)

	// Health trend summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Link Health:** %s\n\n", formatTrend(result.HealthChange.Direction))

	// Scan metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"))
	fmt.Printf("| Pages | %d | %d | %s |\n",
		result.PreviousScan.PagesCrawled,
		result.CurrentScan.PagesCrawled,
		formatDelta(result.HealthChange.PagesDelta))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousScan.CriticalCount,
		result.CurrentScan.CriticalCount,
		formatDelta(result.HealthChange.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousScan.HighCount,
		result.CurrentScan.HighCount,
		formatDelta(result.HealthChange.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousScan.MediumCount,
		result.CurrentScan.MediumCount,
		formatDelta(result.HealthChange.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousScan.LowCount,
		result.CurrentScan.LowCount,
		formatDelta(result.HealthChange.LowDelta))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.TotalIssues,
		result.CurrentScan.TotalIssues,
		formatDelta(result.CurrentScan.TotalIssues-result.PreviousScan.TotalIssues))

	// New issues
	if len(result.NewIssues) > 0 {
		fmt.Printf("\n## New Issues (%d)\n\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Printf("- **[%s]** %s: %s\n", issue.SeverityText, issue.Title, issue.PageURL)
			if issue.DestinationURL != "" {
				fmt.Printf("  - Destination: `%s`\n", issue.DestinationURL)
			}
		}
	}

	// Resolved issues
	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\n## Resolved Issues (%d)\n\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", issue.SeverityText, issue.Title, issue.PageURL)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d issues unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.RootURL)
	fmt.Println(strings.Repeat("=", 60))

	// Health trend summary
	fmt.Printf("\nLink Health: %s\n", formatTrend(result.HealthChange.Direction))

	// Scan dates
	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nIssue Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.CriticalCount, result.CurrentScan.CriticalCount,
		formatDelta(result.HealthChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousScan.HighCount, result.CurrentScan.HighCount,
		formatDelta(result.HealthChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousScan.MediumCount, result.CurrentScan.MediumCount,
		formatDelta(result.HealthChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousScan.LowCount, result.CurrentScan.LowCount,
		formatDelta(result.HealthChange.LowDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.TotalIssues, result.CurrentScan.TotalIssues,
		formatDelta(result.CurrentScan.TotalIssues-result.PreviousScan.TotalIssues))

	fmt.Printf("\nPages crawled: %d -> %d (%s)\n",
		result.PreviousScan.PagesCrawled, result.CurrentScan.PagesCrawled,
		formatDelta(result.HealthChange.PagesDelta))

	// New issues
	if len(result.NewIssues) > 0 {
		fmt.Printf("\nNew Issues (%d):\n", len(result.NewIssues))
		for _, issue := range result.NewIssues {
			fmt.Printf("  [+] [%s] %s: %s\n", issue.SeverityText, issue.Title, issue.PageURL)
			if issue.DestinationURL != "" {
				fmt.Printf("      Destination: %s\n", issue.DestinationURL)
			}
		}
	}

	// Resolved issues
	if len(result.ResolvedIssues) > 0 {
		fmt.Printf("\nResolved Issues (%d):\n", len(result.ResolvedIssues))
		for _, issue := range result.ResolvedIssues {
			fmt.Printf("  [-] [%s] %s: %s\n", issue.SeverityText, issue.Title, issue.PageURL)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d issues\n", result.UnchangedCount)
	}

	return nil
}

// formatTrend formats the health trend direction for display.
func formatTrend(direction string) string {
	switch direction {
	case trendImproved:
		return "IMPROVED (fewer weighted issues)"
	case trendWorsened:
		return "WORSENED (more weighted issues)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
