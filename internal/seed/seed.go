package seed

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoSeeds is returned when a seed source yields nothing usable.
var ErrNoSeeds = errors.New("no seed URLs found")

// LoadFile reads seeds from a file, choosing the parser by extension:
// ".csv" is parsed as CSV, everything else as plain text.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided seed file path is intentional
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseCSV(f)
	}
	return ParseText(f)
}

// ParseText reads one URL per line. Blank lines and lines starting with "#"
// are skipped; duplicates are dropped with order preserved.
func ParseText(r io.Reader) ([]string, error) {
	var seeds []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			seeds = append(seeds, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seed list: %w", err)
	}
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	return seeds, nil
}

// ParseCSV reads seeds from CSV content. When the first row contains a
// header cell naming a URL column ("url", "link", ...), that column is used
// and the header row skipped. Otherwise the first column is used, and the
// first row counts as data only when it already looks like a URL.
func ParseCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read seed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoSeeds
	}

	column, skipHeader := findURLColumn(records[0])

	var seeds []string
	seen := make(map[string]bool)
	for i, record := range records {
		if i == 0 && skipHeader {
			continue
		}
		if column >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[column])
		if value == "" {
			continue
		}
		if !seen[value] {
			seen[value] = true
			seeds = append(seeds, value)
		}
	}
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	return seeds, nil
}

// findURLColumn inspects the first CSV row. A cell naming a URL column wins;
// otherwise column zero is assumed and the row is treated as a header only
// when it does not look like a URL itself.
func findURLColumn(header []string) (column int, skipHeader bool) {
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "url" || name == "urls" || name == "link" || name == "address" ||
			strings.Contains(name, "url") {
			return i, true
		}
	}
	if len(header) > 0 && !looksLikeURL(header[0]) {
		return 0, true
	}
	return 0, false
}

// looksLikeURL is the cheap header heuristic, not validation.
func looksLikeURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
