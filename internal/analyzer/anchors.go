package analyzer

import (
	"context"
	"strings"

	"github.com/nao1215/linkscan/internal/model"
)

// genericAnchors is the fixed set of anchor phrases flagged as generic.
// Matching is exact on the case-normalized, trimmed anchor text; substrings
// never match.
var genericAnchors = map[string]bool{
	"click here": true,
	"read more":  true,
	"learn more": true,
	"here":       true,
	"more":       true,
	"link":       true,
}

// AnchorTextPass audits anchor text across the whole graph: site-wide
// anchor reuse and generic phrasing. Anchor comparison is case-insensitive
// on trimmed text, and empty anchors are exempt from the uniqueness rules.
type AnchorTextPass struct {
	scorer Scorer
}

// NewAnchorTextPass creates the anchor text pass. The scorer may be nil,
// in which case generic-anchor issues carry no score evidence.
func NewAnchorTextPass(scorer Scorer) *AnchorTextPass {
	return &AnchorTextPass{scorer: scorer}
}

// Name returns the pass identifier.
func (p *AnchorTextPass) Name() string { return "anchor-text" }

// Analyze emits anchor uniqueness and generic anchor issues.
func (p *AnchorTextPass) Analyze(_ context.Context, data *Data) ([]*model.Issue, error) {
	issues := p.analyzeUniqueness(data)
	return append(issues, p.analyzeGeneric(data)...), nil
}

// analyzeUniqueness groups links by normalized anchor text. A reused anchor
// with one destination is a medium issue; a reused anchor with several
// destinations is ambiguous and therefore high.
func (p *AnchorTextPass) analyzeUniqueness(data *Data) []*model.Issue {
	groups := make(map[string][]*model.Link)
	var order []string
	for _, link := range data.Links {
		key := normalizeAnchor(link.AnchorText)
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], link)
	}

	var issues []*model.Issue
	for _, key := range order {
		group := groups[key]
		if len(group) < 2 {
			continue
		}

		var destinations []string
		destSeen := make(map[string]bool)
		for _, link := range group {
			if !destSeen[link.DestinationURL] {
				destSeen[link.DestinationURL] = true
				destinations = append(destinations, link.DestinationURL)
			}
		}

		var issue *model.Issue
		if len(destinations) == 1 {
			issue = model.NewIssue(model.IssueDuplicateAnchorSameDestination, model.SeverityMedium)
			issue.DestinationURL = destinations[0]
		} else {
			issue = model.NewIssue(model.IssueDuplicateAnchorDifferentDestinations, model.SeverityHigh)
			issue.DestinationURLs = destinations
		}
		issue.AnchorText = key
		issue.Count = len(group)
		issue.SourceURLs = distinctSources(group)
		issue.PageURL = issue.SourceURLs[0]
		issues = append(issues, issue)
	}
	return issues
}

// analyzeGeneric emits one low-severity issue per generic-anchored link,
// attaching the scorer's verdict when a scorer is configured.
func (p *AnchorTextPass) analyzeGeneric(data *Data) []*model.Issue {
	var issues []*model.Issue
	for _, link := range data.Links {
		if !genericAnchors[normalizeAnchor(link.AnchorText)] {
			continue
		}

		issue := model.NewIssue(model.IssueGenericAnchor, model.SeverityLow)
		issue.PageURL = link.SourceURL
		issue.DestinationURL = link.DestinationURL
		issue.AnchorText = link.AnchorText
		if p.scorer != nil {
			issue.AnchorScores = p.scorer.Score(link.AnchorText)
		}
		issues = append(issues, issue)
	}
	return issues
}

// normalizeAnchor produces the comparison key for anchor grouping.
func normalizeAnchor(anchorText string) string {
	return strings.ToLower(strings.TrimSpace(anchorText))
}

// distinctSources lists the group's source pages in first-seen order.
func distinctSources(links []*model.Link) []string {
	var sources []string
	seen := make(map[string]bool)
	for _, link := range links {
		if !seen[link.SourceURL] {
			seen[link.SourceURL] = true
			sources = append(sources, link.SourceURL)
		}
	}
	return sources
}
