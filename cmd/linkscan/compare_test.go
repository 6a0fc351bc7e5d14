package main

import (
	"testing"
	"time"

	"github.com/nao1215/linkscan/internal/model"
)

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	if cmd.Use != "compare [url]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	// Verify flags exist with their short options
	flagsWithShort := map[string]string{
		"list":         "l",
		"list-sites":   "L",
		"with-scan-id": "i",
		"since":        "s",
		"json":         "j",
		"markdown":     "m",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}

	// page flag has no shorthand
	if cmd.Flags().Lookup("page") == nil {
		t.Error("expected page flag to exist")
	}

	// Verify db-dir flag does NOT exist (uses XDG directory)
	if cmd.Flags().Lookup("db-dir") != nil {
		t.Error("db-dir flag should not exist")
	}
}

// comparisonReport builds a stored-style report for comparison tests.
func comparisonReport(root string, date time.Time, issues ...*model.Issue) *model.ScanReport {
	report := model.NewScanReport(root)
	report.DateScanned = date
	report.Pages = []*model.Page{
		{URL: root, StatusCode: 200},
	}
	report.Issues = issues
	report.Summary = model.NewSummary(report)
	return report
}

func brokenLinkIssue(page, dest string) *model.Issue {
	issue := model.NewIssue(model.IssueBrokenLink, model.SeverityCritical)
	issue.PageURL = page
	issue.DestinationURL = dest
	return issue
}

func genericAnchorIssue(page, dest string) *model.Issue {
	issue := model.NewIssue(model.IssueGenericAnchor, model.SeverityLow)
	issue.PageURL = page
	issue.DestinationURL = dest
	return issue
}

// TestCompareReports tests new/resolved/unchanged issue classification.
func TestCompareReports(t *testing.T) {
	t.Parallel()

	root := "https://example.com/"
	previousDate := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	currentDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	shared := genericAnchorIssue(root, "https://example.com/docs/")
	resolved := brokenLinkIssue(root, "https://example.com/old/")
	introduced := brokenLinkIssue(root, "https://example.com/new/")

	previous := comparisonReport(root, previousDate, shared, resolved)
	current := comparisonReport(root, currentDate, shared, introduced)

	result := compareReports(previous, current)

	if result.RootURL != root {
		t.Errorf("RootURL = %q, want %q", result.RootURL, root)
	}
	if len(result.NewIssues) != 1 || result.NewIssues[0].DestinationURL != "https://example.com/new/" {
		t.Errorf("NewIssues = %+v", result.NewIssues)
	}
	if len(result.ResolvedIssues) != 1 || result.ResolvedIssues[0].DestinationURL != "https://example.com/old/" {
		t.Errorf("ResolvedIssues = %+v", result.ResolvedIssues)
	}
	if result.UnchangedCount != 1 {
		t.Errorf("UnchangedCount = %d, want 1", result.UnchangedCount)
	}
	if result.PreviousScan.DateScanned != previousDate {
		t.Errorf("PreviousScan.DateScanned = %v", result.PreviousScan.DateScanned)
	}
	if result.CurrentScan.CriticalCount != 1 {
		t.Errorf("CurrentScan.CriticalCount = %d, want 1", result.CurrentScan.CriticalCount)
	}
}

// TestCompareReportsComputesSummary tests that a stored report without a
// summary still yields metadata.
func TestCompareReportsComputesSummary(t *testing.T) {
	t.Parallel()

	root := "https://example.com/"
	previous := comparisonReport(root, time.Now(), brokenLinkIssue(root, "https://example.com/a/"))
	previous.Summary = nil
	current := comparisonReport(root, time.Now())

	result := compareReports(previous, current)

	if result.PreviousScan.CriticalCount != 1 {
		t.Errorf("PreviousScan.CriticalCount = %d, want 1", result.PreviousScan.CriticalCount)
	}
	if result.HealthChange.Direction != trendImproved {
		t.Errorf("Direction = %q, want %q", result.HealthChange.Direction, trendImproved)
	}
}

// TestCalculateHealthChange tests trend direction and deltas.
func TestCalculateHealthChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		previous  ScanMetadata
		current   ScanMetadata
		direction string
	}{
		{
			name:      "worsened when critical issues appear",
			previous:  ScanMetadata{},
			current:   ScanMetadata{CriticalCount: 1},
			direction: trendWorsened,
		},
		{
			name:      "improved when high issues fixed",
			previous:  ScanMetadata{HighCount: 3},
			current:   ScanMetadata{HighCount: 1},
			direction: trendImproved,
		},
		{
			name:      "unchanged for identical counts",
			previous:  ScanMetadata{MediumCount: 2, LowCount: 5},
			current:   ScanMetadata{MediumCount: 2, LowCount: 5},
			direction: trendUnchanged,
		},
		{
			name:      "critical outweighs many low fixes",
			previous:  ScanMetadata{LowCount: 10},
			current:   ScanMetadata{CriticalCount: 1},
			direction: trendWorsened,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			change := calculateHealthChange(tt.previous, tt.current)
			if change.Direction != tt.direction {
				t.Errorf("Direction = %q, want %q", change.Direction, tt.direction)
			}
		})
	}

	t.Run("deltas", func(t *testing.T) {
		t.Parallel()
		change := calculateHealthChange(
			ScanMetadata{CriticalCount: 2, LowCount: 1, PagesCrawled: 10},
			ScanMetadata{CriticalCount: 1, LowCount: 4, PagesCrawled: 12},
		)
		if change.CriticalDelta != -1 {
			t.Errorf("CriticalDelta = %d, want -1", change.CriticalDelta)
		}
		if change.LowDelta != 3 {
			t.Errorf("LowDelta = %d, want 3", change.LowDelta)
		}
		if change.PagesDelta != 2 {
			t.Errorf("PagesDelta = %d, want 2", change.PagesDelta)
		}
	})
}

// TestIssueKey tests the comparison key for issues.
func TestIssueKey(t *testing.T) {
	t.Parallel()

	a := brokenLinkIssue("https://example.com/", "https://example.com/a/")
	b := brokenLinkIssue("https://example.com/", "https://example.com/b/")
	if issueKey(a) == issueKey(b) {
		t.Error("expected distinct keys for different destinations")
	}

	same := brokenLinkIssue("https://example.com/", "https://example.com/a/")
	if issueKey(a) != issueKey(same) {
		t.Error("expected equal keys for identical issues")
	}
}

// TestFormatDelta tests signed delta formatting.
func TestFormatDelta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		delta int
		want  string
	}{
		{delta: 3, want: "+3"},
		{delta: -2, want: "-2"},
		{delta: 0, want: "0"},
	}
	for _, tt := range tests {
		if got := formatDelta(tt.delta); got != tt.want {
			t.Errorf("formatDelta(%d) = %q, want %q", tt.delta, got, tt.want)
		}
	}
}

// TestFormatIssueSummary tests compact summary formatting.
func TestFormatIssueSummary(t *testing.T) {
	t.Parallel()

	t.Run("nil summary", func(t *testing.T) {
		t.Parallel()
		if got := formatIssueSummary(nil); got != "N/A" {
			t.Errorf("got %q, want N/A", got)
		}
	})

	t.Run("no issues", func(t *testing.T) {
		t.Parallel()
		if got := formatIssueSummary(&model.Summary{}); got != noIssuesMessage {
			t.Errorf("got %q, want %q", got, noIssuesMessage)
		}
	})

	t.Run("mixed severities", func(t *testing.T) {
		t.Parallel()
		summary := &model.Summary{CriticalCount: 1, MediumCount: 3}
		if got := formatIssueSummary(summary); got != "C:1 M:3" {
			t.Errorf("got %q, want 'C:1 M:3'", got)
		}
	})
}

// TestFormatTrend tests the trend labels.
func TestFormatTrend(t *testing.T) {
	t.Parallel()

	if got := formatTrend(trendImproved); got != "IMPROVED (fewer weighted issues)" {
		t.Errorf("got %q", got)
	}
	if got := formatTrend(trendWorsened); got != "WORSENED (more weighted issues)" {
		t.Errorf("got %q", got)
	}
	if got := formatTrend("anything"); got != "UNCHANGED" {
		t.Errorf("got %q", got)
	}
}
