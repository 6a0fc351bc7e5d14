package model

import "sort"

// IssueKind identifies the category of an internal-linking issue. Each
// analysis pass emits one or more kinds.
type IssueKind string

// Issue kinds emitted by the analysis passes.
const (
	// IssueDuplicateLinks reports multiple links from one source page to the
	// same destination.
	IssueDuplicateLinks IssueKind = "duplicate_links"

	// IssueDuplicateAnchorSameDestination reports the same anchor text used
	// by multiple links that all point at one destination.
	IssueDuplicateAnchorSameDestination IssueKind = "duplicate_anchor_same_destination"

	// IssueDuplicateAnchorDifferentDestinations reports the same anchor text
	// used by links pointing at different destinations.
	IssueDuplicateAnchorDifferentDestinations IssueKind = "duplicate_anchor_different_destinations"

	// IssueGenericAnchor reports a link whose anchor text is a generic phrase
	// such as "click here".
	IssueGenericAnchor IssueKind = "generic_anchor"

	// IssueOrphanedPage reports a crawled non-root page with no inbound links.
	IssueOrphanedPage IssueKind = "orphaned_page"

	// IssueExcessiveDepth reports a page more than three clicks from the root.
	IssueExcessiveDepth IssueKind = "excessive_depth"

	// IssueExcessiveOutboundLinks reports a page with more than one hundred
	// outbound links.
	IssueExcessiveOutboundLinks IssueKind = "excessive_outbound_links"

	// IssueNoOutboundLinks reports a successfully fetched non-root page with
	// zero outbound links.
	IssueNoOutboundLinks IssueKind = "no_outbound_links"

	// IssueBrokenLink reports a page that returned an HTTP error status or
	// could not be fetched at all.
	IssueBrokenLink IssueKind = "broken_link"
)

// Issue is one detected internal-linking defect. The evidence fields are a
// flat union: each kind populates the subset that applies to it and leaves
// the rest empty.
type Issue struct {
	// Kind identifies the issue category.
	Kind IssueKind `json:"kind"`

	// Severity is the numeric severity level for sorting and comparison.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity name.
	SeverityText string `json:"severity_text"`

	// Title is a short human-readable summary of the issue.
	Title string `json:"title"`

	// PageURL is the primary affected page: the source page for link-level
	// issues, the page itself for page-level issues.
	PageURL string `json:"page_url"`

	// DestinationURL is the link destination for link-level issues.
	DestinationURL string `json:"destination_url,omitempty"`

	// DestinationURLs lists all destinations for anchor-ambiguity issues.
	DestinationURLs []string `json:"destination_urls,omitempty"`

	// SourceURLs lists every distinct page contributing to the issue, such
	// as all pages linking to a broken destination.
	SourceURLs []string `json:"source_urls,omitempty"`

	// AnchorText is the offending anchor text for anchor-level issues.
	AnchorText string `json:"anchor_text,omitempty"`

	// AnchorTexts lists every anchor text in a duplicate-link group.
	AnchorTexts []string `json:"anchor_texts,omitempty"`

	// Positions lists the layout positions of the links in a duplicate group.
	Positions []Position `json:"positions,omitempty"`

	// AnchorScores carries anchor quality sub-scores attached by the scorer,
	// forwarded verbatim without interpretation.
	AnchorScores map[string]float64 `json:"anchor_scores,omitempty"`

	// Count is the group size for duplicate issues or the outbound link
	// count for distribution issues.
	Count int `json:"count,omitempty"`

	// Depth is the click depth for excessive-depth issues.
	Depth int `json:"depth,omitempty"`

	// StatusCode is the HTTP status for broken-link issues. StatusUnreachable
	// means the fetch failed at the network level.
	StatusCode int `json:"status_code,omitempty"`

	// Impact describes why the issue matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation describes how to fix the issue.
	Recommendation string `json:"recommendation,omitempty"`
}

// IssueInfo contains the static metadata of an issue kind: its title,
// impact description and remediation recommendation. Severity is not part
// of the mapping because two kinds grade it by evidence (depth, anchors).
type IssueInfo struct {
	Title          string
	Impact         string
	Recommendation string
}

// issueInfoMapping maps issue kinds to their metadata.
// This centralized mapping ensures consistent wording across the application.
//
// Design decision: We use a map rather than embedding the text in each pass
// because:
// 1. It allows updating wording without modifying pass logic
// 2. It provides a single source of truth for issue documentation
// 3. It makes it easy to generate issue reference documentation
var issueInfoMapping = map[IssueKind]IssueInfo{
	IssueDuplicateLinks: {
		Title:          "Duplicate links to the same destination",
		Impact:         "Repeated links from one page to the same destination dilute link context and waste crawl signals.",
		Recommendation: "Keep a single, well-placed link per destination and remove the redundant occurrences.",
	},
	IssueDuplicateAnchorSameDestination: {
		Title:          "Repeated anchor text for one destination",
		Impact:         "Reusing identical anchor text across pages narrows the descriptive signal for the destination page.",
		Recommendation: "Vary the anchor text so each link describes the destination in its own context.",
	},
	IssueDuplicateAnchorDifferentDestinations: {
		Title:          "Identical anchor text pointing at different destinations",
		Impact:         "The same anchor text leading to different pages confuses both users and crawlers about the link target.",
		Recommendation: "Give each destination distinct anchor text that describes its content.",
	},
	IssueGenericAnchor: {
		Title:          "Generic anchor text",
		Impact:         "Generic phrases like \"click here\" carry no information about the destination page.",
		Recommendation: "Replace the generic phrase with descriptive anchor text naming the destination's content.",
	},
	IssueOrphanedPage: {
		Title:          "Orphaned page",
		Impact:         "No crawled page links to this page, so users and crawlers cannot reach it by navigation.",
		Recommendation: "Link to the page from at least one related page, or remove it if it is obsolete.",
	},
	IssueExcessiveDepth: {
		Title:          "Page buried too deep",
		Impact:         "Pages many clicks from the root are rarely discovered and receive little link equity.",
		Recommendation: "Add links from pages closer to the root, such as hub or category pages.",
	},
	IssueExcessiveOutboundLinks: {
		Title:          "Too many outbound links",
		Impact:         "A page with over a hundred outbound links spreads its link equity thin and overwhelms readers.",
		Recommendation: "Split the page or trim the link list to the destinations that matter.",
	},
	IssueNoOutboundLinks: {
		Title:          "Dead-end page",
		Impact:         "A page without outbound links strands visitors and passes no link equity onward.",
		Recommendation: "Add links to related pages so navigation can continue.",
	},
	IssueBrokenLink: {
		Title:          "Broken link destination",
		Impact:         "Links pointing at error pages or unreachable URLs waste crawl budget and frustrate visitors.",
		Recommendation: "Fix or remove every link to this destination, or restore the destination page.",
	},
}

// GetIssueInfo returns the static metadata for an issue kind.
// Unknown kinds get a generic placeholder so writers never render blanks.
func GetIssueInfo(kind IssueKind) IssueInfo {
	if info, ok := issueInfoMapping[kind]; ok {
		return info
	}
	return IssueInfo{
		Title:          string(kind),
		Impact:         "Unknown issue kind. Review manually.",
		Recommendation: "Investigate the issue and assess impact.",
	}
}

// NewIssue creates an Issue of the given kind and severity with its static
// metadata filled in. Passes populate the evidence fields afterwards.
func NewIssue(kind IssueKind, severity Severity) *Issue {
	info := GetIssueInfo(kind)
	return &Issue{
		Kind:           kind,
		Severity:       severity,
		SeverityText:   severity.String(),
		Title:          info.Title,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
	}
}

// SortIssues orders issues from critical to low severity. Within one
// severity level, issues sort by kind and then by page URL. The sort is
// stable so pass emission order breaks remaining ties.
func SortIssues(issues []*Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity > issues[j].Severity
		}
		if issues[i].Kind != issues[j].Kind {
			return issues[i].Kind < issues[j].Kind
		}
		return issues[i].PageURL < issues[j].PageURL
	})
}
