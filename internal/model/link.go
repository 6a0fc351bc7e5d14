package model

// Position classifies where in the page layout a link was found, based on
// the link's nearest structural ancestor element.
type Position string

// Link positions, from most to least specific. The extractor picks the
// nearest structural ancestor; PositionContent is the default.
const (
	PositionNavigation Position = "navigation"
	PositionHeader     Position = "header"
	PositionFooter     Position = "footer"
	PositionSidebar    Position = "sidebar"
	PositionContent    Position = "content"
)

// LinkAttributes carries raw HTML attributes of an anchor element that the
// analysis layer treats as opaque. They are preserved for reporting only.
type LinkAttributes struct {
	// Rel holds the whitespace-separated tokens of the rel attribute.
	Rel []string `json:"rel,omitempty"`

	// Target is the raw target attribute value.
	Target string `json:"target,omitempty"`

	// Title is the raw title attribute value.
	Title string `json:"title,omitempty"`
}

// Link is a directed edge in the link graph: one <a href> occurrence on a
// source page pointing at an in-scope destination. Duplicate occurrences on
// the same page produce one Link each.
type Link struct {
	// SourceURL is the normalized URL of the page the link appears on.
	SourceURL string `json:"source_url"`

	// DestinationURL is the normalized in-scope destination of the link.
	DestinationURL string `json:"destination_url"`

	// AnchorText is the visible text of the link: direct text content,
	// falling back to descendant text and then image alt text. Whitespace
	// is collapsed and the value is capped at 200 characters.
	AnchorText string `json:"anchor_text"`

	// Position classifies where in the page layout the link appears.
	Position Position `json:"position"`

	// Attributes carries the anchor's rel/target/title attributes verbatim.
	Attributes LinkAttributes `json:"attributes,omitempty"`
}
