package graph

import (
	"fmt"
	"sync"
	"testing"

	"github.com/nao1215/linkscan/internal/model"
)

func TestStoreAddPageFirstWins(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.AddPage(&model.Page{URL: "https://example.com/", StatusCode: 200})
	store.AddPage(&model.Page{URL: "https://example.com/", StatusCode: 404})

	if store.PageCount() != 1 {
		t.Fatalf("PageCount = %d, want 1", store.PageCount())
	}
	if got := store.Page("https://example.com/").StatusCode; got != 200 {
		t.Errorf("first registration should win, got status %d", got)
	}
}

func TestStorePagesPreserveInsertionOrder(t *testing.T) {
	t.Parallel()

	store := NewStore()
	urls := []string{
		"https://example.com/",
		"https://example.com/b",
		"https://example.com/a",
	}
	for _, u := range urls {
		store.AddPage(&model.Page{URL: u})
	}

	pages := store.Pages()
	if len(pages) != len(urls) {
		t.Fatalf("len(Pages()) = %d, want %d", len(pages), len(urls))
	}
	for i, u := range urls {
		if pages[i].URL != u {
			t.Errorf("Pages()[%d].URL = %q, want %q", i, pages[i].URL, u)
		}
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			url := fmt.Sprintf("https://example.com/p%d", n)
			store.AddPage(&model.Page{URL: url})
			store.AddLinks(&model.Link{SourceURL: url, DestinationURL: "https://example.com/"})
		}(i)
	}
	wg.Wait()

	if store.PageCount() != 20 {
		t.Errorf("PageCount = %d, want 20", store.PageCount())
	}
	if store.LinkCount() != 20 {
		t.Errorf("LinkCount = %d, want 20", store.LinkCount())
	}
}

func TestRecomputeLinkCounts(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.AddPage(&model.Page{URL: "https://example.com/"})
	store.AddPage(&model.Page{URL: "https://example.com/a"})
	store.AddPage(&model.Page{URL: "https://example.com/b"})

	// Root links to /a twice (duplicates count individually) and /b once.
	// /a links back to root. A link to an uncrawled URL counts only for
	// its source.
	store.AddLinks(
		&model.Link{SourceURL: "https://example.com/", DestinationURL: "https://example.com/a"},
		&model.Link{SourceURL: "https://example.com/", DestinationURL: "https://example.com/a"},
		&model.Link{SourceURL: "https://example.com/", DestinationURL: "https://example.com/b"},
		&model.Link{SourceURL: "https://example.com/a", DestinationURL: "https://example.com/"},
		&model.Link{SourceURL: "https://example.com/b", DestinationURL: "https://example.com/missing"},
	)

	store.RecomputeLinkCounts()

	tests := []struct {
		url          string
		wantInbound  int
		wantOutbound int
	}{
		{url: "https://example.com/", wantInbound: 1, wantOutbound: 3},
		{url: "https://example.com/a", wantInbound: 2, wantOutbound: 1},
		{url: "https://example.com/b", wantInbound: 1, wantOutbound: 1},
	}
	for _, tt := range tests {
		page := store.Page(tt.url)
		if page.InboundLinkCount != tt.wantInbound {
			t.Errorf("%s inbound = %d, want %d", tt.url, page.InboundLinkCount, tt.wantInbound)
		}
		if page.OutboundLinkCount != tt.wantOutbound {
			t.Errorf("%s outbound = %d, want %d", tt.url, page.OutboundLinkCount, tt.wantOutbound)
		}
	}
}

func TestRecomputeLinkCountsIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.AddPage(&model.Page{URL: "https://example.com/"})
	store.AddPage(&model.Page{URL: "https://example.com/a"})
	store.AddLinks(&model.Link{SourceURL: "https://example.com/", DestinationURL: "https://example.com/a"})

	store.RecomputeLinkCounts()
	store.RecomputeLinkCounts()

	if got := store.Page("https://example.com/a").InboundLinkCount; got != 1 {
		t.Errorf("inbound after recompute twice = %d, want 1", got)
	}
}

func TestAssignClickDepths(t *testing.T) {
	t.Parallel()

	// root -> a -> b, with an extra shortcut root -> b and an island page.
	store := NewStore()
	for _, u := range []string{
		"https://example.com/",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
		"https://example.com/island",
	} {
		store.AddPage(&model.Page{URL: u})
	}
	store.AddLinks(
		&model.Link{SourceURL: "https://example.com/", DestinationURL: "https://example.com/a"},
		&model.Link{SourceURL: "https://example.com/a", DestinationURL: "https://example.com/b"},
		&model.Link{SourceURL: "https://example.com/", DestinationURL: "https://example.com/b"},
		&model.Link{SourceURL: "https://example.com/b", DestinationURL: "https://example.com/c"},
	)

	store.AssignClickDepths("https://example.com/")

	tests := []struct {
		url  string
		want int
	}{
		{url: "https://example.com/", want: 0},
		{url: "https://example.com/a", want: 1},
		{url: "https://example.com/b", want: 1}, // shortest path wins over root->a->b
		{url: "https://example.com/c", want: 2},
		{url: "https://example.com/island", want: model.DepthUnreachable},
	}
	for _, tt := range tests {
		if got := store.Page(tt.url).ClickDepth; got != tt.want {
			t.Errorf("%s depth = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestAssignClickDepthsMissingRoot(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.AddPage(&model.Page{URL: "https://example.com/a"})
	store.AssignClickDepths("https://example.com/")

	if got := store.Page("https://example.com/a").ClickDepth; got != model.DepthUnreachable {
		t.Errorf("depth with missing root = %d, want unreachable", got)
	}
}
