package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/linkscan/internal/graph"
	"github.com/nao1215/linkscan/internal/model"
)

// Scorer rates anchor text quality. The metric map is forwarded verbatim
// into issue evidence; the analyzer never interprets the values.
type Scorer interface {
	Score(anchorText string) map[string]float64
}

// Data is the immutable graph snapshot handed to every pass. Derived page
// fields (link counts, click depths) are already computed when a pass runs.
type Data struct {
	// Root is the normalized crawl root URL.
	Root string

	// Pages holds every crawled page in dispatch order.
	Pages []*model.Page

	// Links holds every recorded link in discovery order.
	Links []*model.Link

	// Sources maps a destination URL to the distinct source pages linking
	// to it, in first-seen order.
	Sources map[string][]string
}

// Pass is one analysis over the link graph. Passes read the snapshot and
// emit issues; they never mutate pages or links.
type Pass interface {
	// Name identifies the pass in logs.
	Name() string

	// Analyze inspects the graph snapshot and returns detected issues.
	Analyze(ctx context.Context, data *Data) ([]*model.Issue, error)
}

// Analyzer coordinates the analysis passes over a crawled link graph.
type Analyzer struct {
	passes []Pass
	scorer Scorer
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithScorer sets the anchor text scorer used by the anchor pass.
func WithScorer(scorer Scorer) Option {
	return func(a *Analyzer) { a.scorer = scorer }
}

// WithLogger sets the analysis logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPasses replaces the default pass list. Used by tests to run a single
// pass in isolation.
func WithPasses(passes ...Pass) Option {
	return func(a *Analyzer) { a.passes = passes }
}

// New creates an Analyzer with the default pass list.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(a)
	}
	if a.passes == nil {
		a.passes = []Pass{
			NewDuplicateLinkPass(),
			NewAnchorTextPass(a.scorer),
			NewOrphanPass(),
			NewDepthPass(),
			NewOutboundPass(),
			NewBrokenLinkPass(),
		}
	}
	return a
}

// Analyze prepares the graph's derived fields, runs every pass in order and
// returns the combined issues sorted from critical to low severity.
//
// The count and depth recomputation here is what establishes the
// happens-before edge between the crawl's writes and the passes' reads of
// derived fields.
func (a *Analyzer) Analyze(ctx context.Context, store *graph.Store, root string) ([]*model.Issue, error) {
	store.RecomputeLinkCounts()
	store.AssignClickDepths(root)

	data := &Data{
		Root:    root,
		Pages:   store.Pages(),
		Links:   store.Links(),
		Sources: buildSources(store.Links()),
	}

	var issues []*model.Issue
	for _, pass := range a.passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := pass.Analyze(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("analysis pass %s: %w", pass.Name(), err)
		}
		a.logger.Debug("analysis pass finished", "pass", pass.Name(), "issues", len(found))
		issues = append(issues, found...)
	}

	model.SortIssues(issues)
	return issues, nil
}

// buildSources indexes distinct link sources per destination, preserving
// first-seen order.
func buildSources(links []*model.Link) map[string][]string {
	sources := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	for _, link := range links {
		if seen[link.DestinationURL] == nil {
			seen[link.DestinationURL] = make(map[string]bool)
		}
		if seen[link.DestinationURL][link.SourceURL] {
			continue
		}
		seen[link.DestinationURL][link.SourceURL] = true
		sources[link.DestinationURL] = append(sources[link.DestinationURL], link.SourceURL)
	}
	return sources
}
