package model

import "time"

// ScanReport is the complete result of one crawl-and-analyze run for a
// single domain. It is the sole interface between the engine and the
// report writers, exporters and the run database.
type ScanReport struct {
	// RootURL is the normalized crawl root (the first valid seed).
	RootURL string `json:"root_url"`

	// DateScanned is when the crawl started.
	DateScanned time.Time `json:"date_scanned"`

	// DurationMs is the total wall-clock duration of the run in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// Pages holds every crawled page in dispatch order.
	Pages []*Page `json:"pages"`

	// Links holds every in-scope link discovered during the crawl.
	Links []*Link `json:"links"`

	// Issues holds the analysis results, sorted from critical to low.
	Issues []*Issue `json:"issues"`

	// Summary aggregates issue counts. Nil until analysis runs.
	Summary *Summary `json:"summary,omitempty"`

	// Notes records recoverable conditions that did not stop the run,
	// such as a robots.txt disallow or dropped out-of-scope seeds.
	Notes []string `json:"notes,omitempty"`

	// Error is set when the run failed outright. It is not serialized;
	// ErrorMessage carries the text for persisted reports.
	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
}

// NewScanReport creates an empty report for the given crawl root.
func NewScanReport(rootURL string) *ScanReport {
	return &ScanReport{
		RootURL:     rootURL,
		DateScanned: time.Now(),
	}
}

// AddNote records a recoverable condition on the report.
func (r *ScanReport) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}

// SetError records a fatal run error in both the typed and serialized forms.
func (r *ScanReport) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}

// IssuesBySeverity returns the issues matching the given severity,
// preserving report order.
func (r *ScanReport) IssuesBySeverity(severity Severity) []*Issue {
	var out []*Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// HasIssues reports whether analysis found any issue.
func (r *ScanReport) HasIssues() bool {
	return len(r.Issues) > 0
}

// Summary aggregates a run's headline numbers for display and persistence.
type Summary struct {
	PagesCrawled  int `json:"pages_crawled"`
	LinksFound    int `json:"links_found"`
	TotalIssues   int `json:"total_issues"`
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
}

// NewSummary computes a Summary from a report's pages, links and issues.
func NewSummary(r *ScanReport) *Summary {
	s := &Summary{
		PagesCrawled: len(r.Pages),
		LinksFound:   len(r.Links),
		TotalIssues:  len(r.Issues),
	}
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		}
	}
	return s
}

// CountBySeverity returns the issue count for one severity level.
func (s *Summary) CountBySeverity(severity Severity) int {
	switch severity {
	case SeverityCritical:
		return s.CriticalCount
	case SeverityHigh:
		return s.HighCount
	case SeverityMedium:
		return s.MediumCount
	case SeverityLow:
		return s.LowCount
	default:
		return 0
	}
}
