package urlutil

import "testing"

func TestNewScope(t *testing.T) {
	t.Parallel()

	scope, err := NewScope("HTTPS://Example.COM/start/")
	if err != nil {
		t.Fatalf("NewScope returned error: %v", err)
	}
	if scope.Host() != "example.com" {
		t.Errorf("Host() = %q, want %q", scope.Host(), "example.com")
	}
	if scope.Scheme() != "https" {
		t.Errorf("Scheme() = %q, want %q", scope.Scheme(), "https")
	}
	if scope.Root() != "https://example.com/start" {
		t.Errorf("Root() = %q, want %q", scope.Root(), "https://example.com/start")
	}
}

func TestNewScopeInvalidRoot(t *testing.T) {
	t.Parallel()

	if _, err := NewScope("not-a-url"); err == nil {
		t.Error("NewScope should fail for a relative root")
	}
}

func TestScopeIsInternal(t *testing.T) {
	t.Parallel()

	scope, err := NewScope("https://example.com/")
	if err != nil {
		t.Fatalf("NewScope returned error: %v", err)
	}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "same host", url: "https://example.com/about", want: true},
		{name: "same host other scheme", url: "http://example.com/about", want: true},
		{name: "www is a different host", url: "https://www.example.com/about", want: false},
		{name: "subdomain is a different host", url: "https://blog.example.com/", want: false},
		{name: "other domain", url: "https://other.com/", want: false},
		{name: "different port is a different host", url: "https://example.com:8443/", want: false},
		{name: "malformed", url: "://broken", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := scope.IsInternal(tt.url); got != tt.want {
				t.Errorf("IsInternal(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
