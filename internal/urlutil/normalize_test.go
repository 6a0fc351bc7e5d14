package urlutil

import (
	"errors"
	"net/url"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases scheme and host",
			input: "HTTPS://Example.COM/Path",
			want:  "https://example.com/Path",
		},
		{
			name:  "strips fragment",
			input: "https://example.com/page#section",
			want:  "https://example.com/page",
		},
		{
			name:  "empty path becomes root",
			input: "https://example.com",
			want:  "https://example.com/",
		},
		{
			name:  "root slash is kept",
			input: "https://example.com/",
			want:  "https://example.com/",
		},
		{
			name:  "trailing slash stripped",
			input: "https://example.com/about/",
			want:  "https://example.com/about",
		},
		{
			name:  "repeated trailing slashes stripped",
			input: "https://example.com/about///",
			want:  "https://example.com/about",
		},
		{
			name:  "query is preserved",
			input: "https://example.com/search?q=go&page=2",
			want:  "https://example.com/search?q=go&page=2",
		},
		{
			name:  "unnecessary percent escape decoded",
			input: "https://example.com/%7Euser",
			want:  "https://example.com/~user",
		},
		{
			name:  "path case preserved",
			input: "https://example.com/About/Team",
			want:  "https://example.com/About/Team",
		},
		{
			name:  "fragment on root",
			input: "https://example.com/#top",
			want:  "https://example.com/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Applying Normalize to its own output must always return the same string.
func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTPS://Example.COM/Path/",
		"https://example.com",
		"https://example.com/a/b/?x=1#frag",
		"https://example.com/%7Euser/",
		"http://example.com:8080/docs///",
	}

	for _, input := range inputs {
		once, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", input, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", once, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "relative path", input: "/about"},
		{name: "missing host", input: "https://"},
		{name: "bare word", input: "about"},
		{name: "control character", input: "https://example.com/\x7f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Normalize(tt.input); err == nil {
				t.Errorf("Normalize(%q) should fail", tt.input)
			}
		})
	}
}

func TestNormalizeNotAbsolute(t *testing.T) {
	t.Parallel()

	_, err := Normalize("/relative/path")
	if !errors.Is(err, ErrNotAbsolute) {
		t.Errorf("want ErrNotAbsolute, got %v", err)
	}
}

func TestResolveReference(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.com/blog/post")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		href string
		want string
	}{
		{name: "relative sibling", href: "other", want: "https://example.com/blog/other"},
		{name: "absolute path", href: "/about/", want: "https://example.com/about"},
		{name: "absolute URL", href: "https://example.com/contact", want: "https://example.com/contact"},
		{name: "parent directory", href: "../top", want: "https://example.com/top"},
		{name: "scheme relative", href: "//example.com/x", want: "https://example.com/x"},
		{name: "fragment dropped after resolve", href: "page#sec", want: "https://example.com/blog/page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveReference(base, tt.href)
			if err != nil {
				t.Fatalf("ResolveReference(%q) returned error: %v", tt.href, err)
			}
			if got != tt.want {
				t.Errorf("ResolveReference(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestCrawlableScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		href string
		want bool
	}{
		{name: "relative path", href: "/about", want: true},
		{name: "absolute http", href: "http://example.com/", want: true},
		{name: "absolute https", href: "https://example.com/", want: true},
		{name: "empty", href: "", want: false},
		{name: "whitespace only", href: "   ", want: false},
		{name: "bare fragment", href: "#top", want: false},
		{name: "mailto", href: "mailto:hi@example.com", want: false},
		{name: "tel", href: "tel:+1234567890", want: false},
		{name: "javascript", href: "javascript:void(0)", want: false},
		{name: "data URI", href: "data:text/plain,hello", want: false},
		{name: "uppercase scheme", href: "MAILTO:hi@example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CrawlableScheme(tt.href); got != tt.want {
				t.Errorf("CrawlableScheme(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}
