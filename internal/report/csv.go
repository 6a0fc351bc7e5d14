package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/linkscan/internal/model"
)

// CSVWriter outputs the issue list as CSV, one row per issue.
// This format is designed for spreadsheet triage and bulk filtering.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// csvHeader is the fixed column set of the issue export.
var csvHeader = []string{
	"kind",
	"severity",
	"title",
	"page_url",
	"destination_url",
	"anchor_text",
	"count",
	"depth",
	"status_code",
	"source_urls",
	"recommendation",
}

// Write outputs the report's issues as CSV. Reports with no issues still
// get the header row so downstream tooling sees a stable schema.
func (w *CSVWriter) Write(report *model.ScanReport) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}

	for _, issue := range report.Issues {
		if err := cw.Write(csvRow(issue)); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// csvRow renders one issue into the csvHeader column order.
func csvRow(issue *model.Issue) []string {
	destination := issue.DestinationURL
	if destination == "" && len(issue.DestinationURLs) > 0 {
		destination = strings.Join(issue.DestinationURLs, " ")
	}

	return []string{
		string(issue.Kind),
		issue.SeverityText,
		issue.Title,
		issue.PageURL,
		destination,
		issue.AnchorText,
		strconv.Itoa(issue.Count),
		strconv.Itoa(issue.Depth),
		strconv.Itoa(issue.StatusCode),
		strings.Join(issue.SourceURLs, " "),
		issue.Recommendation,
	}
}

// countingWriter tracks bytes written so CSV output can report a byte
// count like the other writers.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
