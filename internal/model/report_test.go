package model

import (
	"errors"
	"testing"
)

func TestPageIsBroken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "ok", status: 200, want: false},
		{name: "redirect", status: 301, want: false},
		{name: "not found", status: 404, want: true},
		{name: "server error", status: 500, want: true},
		{name: "unreachable", status: StatusUnreachable, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &Page{URL: "https://example.com/", StatusCode: tt.status}
			if got := p.IsBroken(); got != tt.want {
				t.Errorf("IsBroken() with status %d = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestNewSummary(t *testing.T) {
	t.Parallel()

	report := NewScanReport("https://example.com/")
	report.Pages = []*Page{
		{URL: "https://example.com/"},
		{URL: "https://example.com/a"},
	}
	report.Links = []*Link{
		{SourceURL: "https://example.com/", DestinationURL: "https://example.com/a"},
	}
	report.Issues = []*Issue{
		{Kind: IssueBrokenLink, Severity: SeverityCritical},
		{Kind: IssueDuplicateLinks, Severity: SeverityHigh},
		{Kind: IssueDuplicateLinks, Severity: SeverityHigh},
		{Kind: IssueGenericAnchor, Severity: SeverityLow},
	}

	s := NewSummary(report)

	if s.PagesCrawled != 2 {
		t.Errorf("PagesCrawled = %d, want 2", s.PagesCrawled)
	}
	if s.LinksFound != 1 {
		t.Errorf("LinksFound = %d, want 1", s.LinksFound)
	}
	if s.TotalIssues != 4 {
		t.Errorf("TotalIssues = %d, want 4", s.TotalIssues)
	}
	if s.CriticalCount != 1 || s.HighCount != 2 || s.MediumCount != 0 || s.LowCount != 1 {
		t.Errorf("severity counts = %d/%d/%d/%d, want 1/2/0/1",
			s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount)
	}
}

func TestScanReportIssuesBySeverity(t *testing.T) {
	t.Parallel()

	report := NewScanReport("https://example.com/")
	report.Issues = []*Issue{
		{Kind: IssueBrokenLink, Severity: SeverityCritical, PageURL: "https://example.com/x"},
		{Kind: IssueGenericAnchor, Severity: SeverityLow, PageURL: "https://example.com/y"},
		{Kind: IssueOrphanedPage, Severity: SeverityCritical, PageURL: "https://example.com/z"},
	}

	critical := report.IssuesBySeverity(SeverityCritical)
	if len(critical) != 2 {
		t.Fatalf("critical issues = %d, want 2", len(critical))
	}
	if critical[0].PageURL != "https://example.com/x" {
		t.Errorf("order not preserved: first = %q", critical[0].PageURL)
	}

	if got := report.IssuesBySeverity(SeverityMedium); len(got) != 0 {
		t.Errorf("medium issues = %d, want 0", len(got))
	}
}

func TestScanReportSetError(t *testing.T) {
	t.Parallel()

	report := NewScanReport("https://example.com/")
	report.SetError(nil)
	if report.Error != nil || report.ErrorMessage != "" {
		t.Error("SetError(nil) must be a no-op")
	}

	err := errors.New("boom")
	report.SetError(err)
	if !errors.Is(report.Error, err) {
		t.Error("SetError should keep the typed error")
	}
	if report.ErrorMessage != "boom" {
		t.Errorf("ErrorMessage = %q, want %q", report.ErrorMessage, "boom")
	}
}
