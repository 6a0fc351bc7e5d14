package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fastOptions keeps retry waits negligible in tests.
func fastOptions(extra ...Option) []Option {
	opts := []Option{WithBackoff(time.Millisecond, 5*time.Millisecond)}
	return append(opts, extra...)
}

func TestFetchSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer server.Close()

	f := New(server.Client(), fastOptions()...)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if !strings.Contains(string(result.Body), "ok") {
		t.Errorf("Body = %q, want page content", result.Body)
	}
	if result.ResponseTime <= 0 {
		t.Error("ResponseTime should be positive")
	}
}

func TestFetchNonRetryableStatusReturnsImmediately(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := New(server.Client(), fastOptions()...)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", result.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Errorf("server saw %d requests, want 1 (404 must not retry)", requests)
	}
}

func TestFetchRetriesRateLimitWithRotatedAgent(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var agents []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.UserAgent())
		n := len(agents)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := New(server.Client(), fastOptions(WithUserAgents([]string{"agent-a", "agent-b"}))...)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(agents) != 2 || agents[0] != "agent-a" || agents[1] != "agent-b" {
		t.Errorf("user agents = %v, want rotation [agent-a agent-b]", agents)
	}
}

func TestFetchExhaustedForbiddenReturnsLastResponse(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f := New(server.Client(), fastOptions(WithMaxAttempts(3))...)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v (a final 403 is data, not an error)", err)
	}
	if result.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", result.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 3 {
		t.Errorf("server saw %d requests, want 3", requests)
	}
}

func TestFetchNetworkFailureExhaustsRetries(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := server.Client()
	server.Close() // Every attempt now fails at the network level.

	f := New(client, fastOptions(WithMaxAttempts(2))...)
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Fetch should fail when every attempt hits a network error")
	}
}

func TestFetchBodySizeCap(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	f := New(server.Client(), fastOptions(WithMaxBodySize(64))...)
	result, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if len(result.Body) != 64 {
		t.Errorf("len(Body) = %d, want 64", len(result.Body))
	}
}

func TestFetchContextCancellation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	// A long backoff makes the cancellation land during the retry wait.
	f := New(server.Client(), WithBackoff(10*time.Second, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx, server.URL)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Fetch should return an error after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not return after context cancellation")
	}
}
