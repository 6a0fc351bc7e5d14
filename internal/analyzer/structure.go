package analyzer

import (
	"context"

	"github.com/nao1215/linkscan/internal/model"
)

// Structural thresholds.
const (
	// maxHealthyDepth is the deepest click depth that raises no issue.
	maxHealthyDepth = 3

	// buriedDepth is the depth beyond which excessive-depth issues
	// escalate from medium to high.
	buriedDepth = 5

	// maxOutboundLinks is the outbound link count above which a page is
	// flagged for link dilution.
	maxOutboundLinks = 100
)

// OrphanPass finds crawled pages that no link targets. The crawl root is
// exempt: nothing is expected to link to the entry point.
type OrphanPass struct{}

// NewOrphanPass creates the orphaned page pass.
func NewOrphanPass() *OrphanPass {
	return &OrphanPass{}
}

// Name returns the pass identifier.
func (p *OrphanPass) Name() string { return "orphaned-pages" }

// Analyze reports every non-root page with zero inbound links.
func (p *OrphanPass) Analyze(_ context.Context, data *Data) ([]*model.Issue, error) {
	var issues []*model.Issue
	for _, page := range data.Pages {
		if page.URL == data.Root || page.InboundLinkCount > 0 {
			continue
		}
		issue := model.NewIssue(model.IssueOrphanedPage, model.SeverityCritical)
		issue.PageURL = page.URL
		issues = append(issues, issue)
	}
	return issues, nil
}

// DepthPass finds pages buried too many clicks from the crawl root.
// Unreachable pages are skipped here; the orphan pass covers them.
type DepthPass struct{}

// NewDepthPass creates the click depth pass.
func NewDepthPass() *DepthPass {
	return &DepthPass{}
}

// Name returns the pass identifier.
func (p *DepthPass) Name() string { return "click-depth" }

// Analyze reports pages deeper than maxHealthyDepth, escalating severity
// for pages deeper than buriedDepth.
func (p *DepthPass) Analyze(_ context.Context, data *Data) ([]*model.Issue, error) {
	var issues []*model.Issue
	for _, page := range data.Pages {
		if page.ClickDepth <= maxHealthyDepth {
			continue
		}

		severity := model.SeverityMedium
		if page.ClickDepth > buriedDepth {
			severity = model.SeverityHigh
		}
		issue := model.NewIssue(model.IssueExcessiveDepth, severity)
		issue.PageURL = page.URL
		issue.Depth = page.ClickDepth
		issues = append(issues, issue)
	}
	return issues, nil
}

// OutboundPass audits each page's outbound link distribution: pages that
// link too much dilute their link equity, and fetched pages that link
// nowhere strand visitors.
type OutboundPass struct{}

// NewOutboundPass creates the outbound distribution pass.
func NewOutboundPass() *OutboundPass {
	return &OutboundPass{}
}

// Name returns the pass identifier.
func (p *OutboundPass) Name() string { return "outbound-links" }

// Analyze reports excessive and missing outbound links. Dead-end detection
// only applies to successfully fetched non-root pages: a page that returned
// an error trivially has no links and is the broken-link pass's concern.
func (p *OutboundPass) Analyze(_ context.Context, data *Data) ([]*model.Issue, error) {
	var issues []*model.Issue
	for _, page := range data.Pages {
		if page.OutboundLinkCount > maxOutboundLinks {
			issue := model.NewIssue(model.IssueExcessiveOutboundLinks, model.SeverityMedium)
			issue.PageURL = page.URL
			issue.Count = page.OutboundLinkCount
			issues = append(issues, issue)
			continue
		}
		if page.OutboundLinkCount == 0 && page.URL != data.Root && page.Fetched() {
			issue := model.NewIssue(model.IssueNoOutboundLinks, model.SeverityLow)
			issue.PageURL = page.URL
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// BrokenLinkPass finds crawled pages that are broken link destinations:
// HTTP error statuses and terminal network failures alike.
type BrokenLinkPass struct{}

// NewBrokenLinkPass creates the broken link pass.
func NewBrokenLinkPass() *BrokenLinkPass {
	return &BrokenLinkPass{}
}

// Name returns the pass identifier.
func (p *BrokenLinkPass) Name() string { return "broken-links" }

// Analyze reports every broken page annotated with all pages linking to it,
// so each source can be fixed in one sweep.
func (p *BrokenLinkPass) Analyze(_ context.Context, data *Data) ([]*model.Issue, error) {
	var issues []*model.Issue
	for _, page := range data.Pages {
		if !page.IsBroken() {
			continue
		}
		issue := model.NewIssue(model.IssueBrokenLink, model.SeverityCritical)
		issue.PageURL = page.URL
		issue.StatusCode = page.StatusCode
		issue.SourceURLs = data.Sources[page.URL]
		issue.Count = len(issue.SourceURLs)
		issues = append(issues, issue)
	}
	return issues, nil
}
