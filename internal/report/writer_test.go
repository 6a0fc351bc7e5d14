package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/linkscan/internal/model"
	"github.com/xuri/excelize/v2"
)

// testReport builds a small analyzed report with one issue per severity.
func testReport() *model.ScanReport {
	report := model.NewScanReport("https://example.com")
	report.DateScanned = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report.DurationMs = 1234

	report.Pages = []*model.Page{
		{URL: "https://example.com", StatusCode: 200, Title: "Home", ClickDepth: 0, OutboundLinkCount: 1},
		{URL: "https://example.com/a", StatusCode: 200, Title: "A", ClickDepth: 1, InboundLinkCount: 1},
		{URL: "https://example.com/gone", StatusCode: 404, ClickDepth: 1, InboundLinkCount: 1},
	}
	report.Links = []*model.Link{
		{SourceURL: "https://example.com", DestinationURL: "https://example.com/a", AnchorText: "about", Position: model.PositionContent},
		{SourceURL: "https://example.com", DestinationURL: "https://example.com/gone", AnchorText: "old page", Position: model.PositionFooter},
	}

	broken := model.NewIssue(model.IssueBrokenLink, model.SeverityCritical)
	broken.PageURL = "https://example.com/gone"
	broken.StatusCode = 404
	broken.SourceURLs = []string{"https://example.com"}
	broken.Count = 1

	deep := model.NewIssue(model.IssueExcessiveDepth, model.SeverityHigh)
	deep.PageURL = "https://example.com/deep"
	deep.Depth = 6

	duplicate := model.NewIssue(model.IssueDuplicateLinks, model.SeverityMedium)
	duplicate.PageURL = "https://example.com"
	duplicate.DestinationURL = "https://example.com/a"
	duplicate.Count = 3

	generic := model.NewIssue(model.IssueGenericAnchor, model.SeverityLow)
	generic.PageURL = "https://example.com"
	generic.DestinationURL = "https://example.com/a"
	generic.AnchorText = "Click here"

	report.Issues = []*model.Issue{broken, deep, duplicate, generic}
	report.Summary = model.NewSummary(report)
	report.AddNote("dropped 1 out-of-scope seed")

	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	n, err := w.Write(testReport())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write returned %d bytes, buffer has %d", n, buf.Len())
	}

	output := buf.String()
	for _, want := range []string{
		"LINKSCAN REPORT",
		"https://example.com",
		"Pages Crawled:  3",
		"Links Found:    2",
		"CRITICAL: 1",
		"HIGH:     1",
		"MEDIUM:   1",
		"LOW:      1",
		"TOTAL:    4 issues",
		"Broken link destination",
		"Status: HTTP 404",
		"dropped 1 out-of-scope seed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestSimpleWriterVerbose(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf, WithVerbose(true))

	if _, err := w.Write(testReport()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "Recommendation:") {
		t.Error("verbose output missing recommendations")
	}
	if !strings.Contains(buf.String(), "Linked from: https://example.com") {
		t.Error("verbose output missing source URLs")
	}
}

func TestSimpleWriterEmptyReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewSimpleWriter(&buf)

	report := model.NewScanReport("https://example.com")
	if _, err := w.Write(report); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	if strings.Contains(buf.String(), "ISSUES") {
		t.Error("empty report should not render the issues section")
	}
	if strings.Contains(buf.String(), "NOTES") {
		t.Error("empty report should not render the notes section")
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithPrettyPrint())

	if _, err := w.Write(testReport()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	var decoded model.ScanReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RootURL != "https://example.com" {
		t.Errorf("RootURL = %q", decoded.RootURL)
	}
	if len(decoded.Issues) != 4 {
		t.Errorf("Issues = %d, want 4", len(decoded.Issues))
	}
	if decoded.Summary == nil || decoded.Summary.CriticalCount != 1 {
		t.Errorf("Summary = %+v", decoded.Summary)
	}
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFullJSONWriter(&buf, "1.2.3")

	if _, err := w.Write(testReport()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	var decoded JSONReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", decoded.Version)
	}
	if decoded.Report == nil || decoded.Report.RootURL != "https://example.com" {
		t.Errorf("Report = %+v", decoded.Report)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if _, err := w.Write(testReport()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"# Internal Link Report",
		"| Root URL |",
		"## Severity Summary",
		"```mermaid",
		"### 🔴 Critical",
		"Broken link destination",
		"[linkscan](https://github.com/nao1215/linkscan)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestMarkdownWriterNoIssues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	report := model.NewScanReport("https://example.com")
	if _, err := w.Write(report); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	if !strings.Contains(buf.String(), "No internal linking issues detected.") {
		t.Error("output missing the no-issues text")
	}
	if strings.Contains(buf.String(), "mermaid") {
		t.Error("issue-free report should not render a pie chart")
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	n, err := w.Write(testReport())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write returned %d bytes, buffer has %d", n, buf.Len())
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 5 { // header + 4 issues
		t.Fatalf("records = %d, want 5", len(records))
	}
	if records[0][0] != "kind" || records[0][1] != "severity" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != string(model.IssueBrokenLink) {
		t.Errorf("first issue kind = %q", records[1][0])
	}
	if records[1][8] != "404" {
		t.Errorf("first issue status = %q", records[1][8])
	}
}

func TestExcelWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewExcelWriter(&buf)

	n, err := w.Write(testReport())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n == 0 || n != buf.Len() {
		t.Errorf("Write returned %d bytes, buffer has %d", n, buf.Len())
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a valid workbook: %v", err)
	}
	defer f.Close() //nolint:errcheck // Read-only workbook

	for _, sheet := range []string{sheetSummary, sheetIssues, sheetPages} {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			t.Errorf("missing sheet %q (index %d, err %v)", sheet, idx, err)
		}
	}

	root, err := f.GetCellValue(sheetSummary, "B1")
	if err != nil {
		t.Fatal(err)
	}
	if root != "https://example.com" {
		t.Errorf("Summary!B1 = %q", root)
	}

	kind, err := f.GetCellValue(sheetIssues, "A2")
	if err != nil {
		t.Fatal(err)
	}
	if kind != string(model.IssueBrokenLink) {
		t.Errorf("Issues!A2 = %q", kind)
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	n, err := mw.Write(testReport())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if n != text.Len()+jsonBuf.Len() {
		t.Errorf("total = %d, want %d", n, text.Len()+jsonBuf.Len())
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("one of the writers received no output")
	}
}

// failWriter always fails, for error propagation tests.
type failWriter struct{}

func (failWriter) Write(*model.ScanReport) (int, error) {
	return 0, errors.New("sink failed")
}

func TestMultiWriterStopsOnError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := NewMultiWriter(failWriter{}, NewSimpleWriter(&buf))

	if _, err := mw.Write(testReport()); err == nil {
		t.Fatal("expected error from failing writer")
	}
	if buf.Len() != 0 {
		t.Error("writer after the failure should not run")
	}
}
