package report

import (
	"fmt"
	"io"

	"github.com/nao1215/linkscan/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the Excel export.
const (
	sheetSummary = "Summary"
	sheetIssues  = "Issues"
	sheetPages   = "Pages"
)

// ExcelWriter outputs the report as an Excel workbook with Summary,
// Issues and Pages sheets. This format is for offline triage by people
// who live in spreadsheets.
type ExcelWriter struct {
	baseWriter
}

// NewExcelWriter creates an ExcelWriter that outputs to the given writer.
func NewExcelWriter(output io.Writer) *ExcelWriter {
	return &ExcelWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write builds the workbook and writes it to the output.
func (w *ExcelWriter) Write(report *model.ScanReport) (int, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // In-memory workbook

	if err := w.writeSummarySheet(f, report); err != nil {
		return 0, fmt.Errorf("write summary sheet: %w", err)
	}
	if err := w.writeIssuesSheet(f, report); err != nil {
		return 0, fmt.Errorf("write issues sheet: %w", err)
	}
	if err := w.writePagesSheet(f, report); err != nil {
		return 0, fmt.Errorf("write pages sheet: %w", err)
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

// writeSummarySheet renames the default sheet and fills the run overview.
func (w *ExcelWriter) writeSummarySheet(f *excelize.File, report *model.ScanReport) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetSummary); err != nil {
		return err
	}

	summary := summaryOf(report)
	rows := [][]any{
		{"Root URL", report.RootURL},
		{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
		{"Duration (ms)", report.DurationMs},
		{"Pages Crawled", summary.PagesCrawled},
		{"Links Found", summary.LinksFound},
		{"Total Issues", summary.TotalIssues},
		{"Critical", summary.CriticalCount},
		{"High", summary.HighCount},
		{"Medium", summary.MediumCount},
		{"Low", summary.LowCount},
	}
	if report.ErrorMessage != "" {
		rows = append(rows, []any{"Error", report.ErrorMessage})
	}

	return writeRows(f, sheetSummary, rows)
}

// writeIssuesSheet fills one row per issue, mirroring the CSV schema.
func (w *ExcelWriter) writeIssuesSheet(f *excelize.File, report *model.ScanReport) error {
	if _, err := f.NewSheet(sheetIssues); err != nil {
		return err
	}

	rows := [][]any{toAnyRow(csvHeader)}
	for _, issue := range report.Issues {
		rows = append(rows, toAnyRow(csvRow(issue)))
	}

	return writeRows(f, sheetIssues, rows)
}

// writePagesSheet fills one row per crawled page.
func (w *ExcelWriter) writePagesSheet(f *excelize.File, report *model.ScanReport) error {
	if _, err := f.NewSheet(sheetPages); err != nil {
		return err
	}

	rows := [][]any{
		{"url", "status_code", "title", "response_time_ms", "inbound_links", "outbound_links", "click_depth"},
	}
	for _, page := range report.Pages {
		rows = append(rows, []any{
			page.URL,
			page.StatusCode,
			page.Title,
			page.ResponseTimeMs,
			page.InboundLinkCount,
			page.OutboundLinkCount,
			page.ClickDepth,
		})
	}

	return writeRows(f, sheetPages, rows)
}

// writeRows sets cell values row by row starting at A1.
func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// toAnyRow widens a string row for SetCellValue.
func toAnyRow(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
