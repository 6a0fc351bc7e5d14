package analyzer

import (
	"context"

	"github.com/nao1215/linkscan/internal/model"
)

// DuplicateLinkPass finds multiple links from one source page to the same
// destination. Each (source, destination) group with more than one link
// produces exactly one issue carrying the whole group's evidence.
type DuplicateLinkPass struct{}

// NewDuplicateLinkPass creates the duplicate link pass.
func NewDuplicateLinkPass() *DuplicateLinkPass {
	return &DuplicateLinkPass{}
}

// Name returns the pass identifier.
func (p *DuplicateLinkPass) Name() string { return "duplicate-links" }

// Analyze groups links by (source, destination) and reports groups larger
// than one.
func (p *DuplicateLinkPass) Analyze(_ context.Context, data *Data) ([]*model.Issue, error) {
	type pairKey struct{ source, dest string }

	groups := make(map[pairKey][]*model.Link)
	var order []pairKey
	for _, link := range data.Links {
		key := pairKey{source: link.SourceURL, dest: link.DestinationURL}
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

		issue := model.NewIssue(model.IssueDuplicateLinks, model.SeverityHigh)
		issue.PageURL = key.source
		issue.DestinationURL = key.dest
		issue.Count = len(group)
		for _, link := range group {
			issue.AnchorTexts = append(issue.AnchorTexts, link.AnchorText)
			issue.Positions = append(issue.Positions, link.Position)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
