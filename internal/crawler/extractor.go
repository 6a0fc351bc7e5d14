package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/linkscan/internal/model"
	"github.com/nao1215/linkscan/internal/urlutil"
)

// maxAnchorTextLen caps stored anchor text so one pathological link cannot
// bloat the graph.
const maxAnchorTextLen = 200

// Extractor pulls internal links and the page title out of fetched HTML.
// It is created per page because link resolution depends on the page URL.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure for ancestor-based position
//     classification
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Extractor struct {
	// base is the final URL of the page being parsed, used for resolving
	// relative hrefs.
	base *url.URL

	// scope decides which resolved destinations belong to the crawl.
	scope *urlutil.Scope
}

// ExtractResult contains everything pulled from one HTML page.
type ExtractResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// Links holds one entry per in-scope <a href> occurrence, duplicates
	// included. External links are never recorded.
	Links []*model.Link
}

// NewExtractor creates an extractor for the page at pageURL.
func NewExtractor(pageURL string, scope *urlutil.Scope) (*Extractor, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page URL %q: %w", pageURL, err)
	}
	return &Extractor{base: u, scope: scope}, nil
}

// Extract parses HTML content and collects the title and in-scope links.
// Unparseable hrefs are skipped individually; they never fail the page.
func (e *Extractor) Extract(content io.Reader) (*ExtractResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse HTML of %s: %w", e.base, err)
	}

	result := &ExtractResult{Links: make([]*model.Link, 0)}

	// Walk the DOM tree carrying the innermost structural ancestor's
	// position. The nearest structural ancestor wins for nested regions.
	var walk func(n *html.Node, position model.Position)
	walk = func(n *html.Node, position model.Position) {
		if n.Type == html.ElementNode {
			if p := classifyElement(n); p != "" {
				position = p
			}
			switch n.Data {
			case "title":
				if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if link := e.buildLink(n, position); link != nil {
					result.Links = append(result.Links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, position)
		}
	}
	walk(doc, model.PositionContent)

	return result, nil
}

// buildLink converts one anchor element into a Link, or nil when the href
// is missing, unresolvable, or out of scope.
func (e *Extractor) buildLink(n *html.Node, position model.Position) *model.Link {
	href := getAttr(n, "href")
	if !urlutil.CrawlableScheme(href) {
		return nil
	}

	dest, err := urlutil.ResolveReference(e.base, href)
	if err != nil {
		return nil
	}
	if !e.scope.IsInternal(dest) {
		return nil
	}

	source, err := urlutil.Normalize(e.base.String())
	if err != nil {
		return nil
	}

	return &model.Link{
		SourceURL:      source,
		DestinationURL: dest,
		AnchorText:     anchorText(n),
		Position:       position,
		Attributes: model.LinkAttributes{
			Rel:    strings.Fields(getAttr(n, "rel")),
			Target: getAttr(n, "target"),
			Title:  getAttr(n, "title"),
		},
	}
}

// classifyElement returns the layout position an element defines, or ""
// when the element is not structural.
func classifyElement(n *html.Node) model.Position {
	switch n.Data {
	case "nav":
		return model.PositionNavigation
	case "header":
		return model.PositionHeader
	case "footer":
		return model.PositionFooter
	case "aside":
		return model.PositionSidebar
	}
	if strings.Contains(strings.ToLower(getAttr(n, "class")), "sidebar") ||
		strings.Contains(strings.ToLower(getAttr(n, "id")), "sidebar") {
		return model.PositionSidebar
	}
	return ""
}

// anchorText extracts the visible text of an anchor element. Direct text
// children win; otherwise descendant text is used, and as a last resort the
// alt text of a contained image. Whitespace is collapsed and the result is
// capped at maxAnchorTextLen characters.
func anchorText(n *html.Node) string {
	var direct strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			direct.WriteString(c.Data)
		}
	}
	if text := collapseSpace(direct.String()); text != "" {
		return capLen(text)
	}

	var nested strings.Builder
	collectVisibleText(n, &nested)
	if text := collapseSpace(nested.String()); text != "" {
		return capLen(text)
	}

	if alt := imageAlt(n); alt != "" {
		return capLen(collapseSpace(alt))
	}
	return ""
}

// collectVisibleText appends the text of every descendant node, skipping
// subtrees that never render as text.
func collectVisibleText(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			switch c.Data {
			case "script", "style", "svg", "img":
				continue
			}
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteString(" ")
		}
		collectVisibleText(c, sb)
	}
}

// imageAlt returns the alt text of the first descendant image, if any.
func imageAlt(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "img" {
		return getAttr(n, "alt")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if alt := imageAlt(c); alt != "" {
			return alt
		}
	}
	return ""
}

// collapseSpace trims and collapses all whitespace runs to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// capLen truncates a string to maxAnchorTextLen characters.
func capLen(s string) string {
	runes := []rune(s)
	if len(runes) <= maxAnchorTextLen {
		return s
	}
	return string(runes[:maxAnchorTextLen])
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
