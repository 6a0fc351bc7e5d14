package model

// Severity represents how badly an internal-linking issue hurts site
// structure, crawlability, or user navigation.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityLow indicates cosmetic or minor issues.
	// Examples: generic anchor text ("click here"), pages without outbound links.
	// These reduce link equity flow but do not break navigation.
	SeverityLow Severity = iota

	// SeverityMedium indicates issues that dilute link structure quality.
	// Examples: the same anchor text reused for one destination, pages with
	// more than a hundred outbound links, pages buried four or five clicks deep.
	SeverityMedium

	// SeverityHigh indicates structural defects that confuse crawlers and users.
	// Examples: exact duplicate links on one page, identical anchor text pointing
	// at different destinations, pages buried more than five clicks deep.
	SeverityHigh

	// SeverityCritical indicates defects that make content unreachable or broken.
	// Examples: orphaned pages with no inbound links, links to pages that return
	// HTTP errors or cannot be fetched at all.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a severity name produced by String() back into a
// Severity. Unknown names map to SeverityLow. Used when reading persisted runs.
func ParseSeverity(s string) Severity {
	switch s {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	default:
		return SeverityLow
	}
}
