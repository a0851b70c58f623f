package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestArticlesURL(t *testing.T) {
	cases := map[string]string{
		"https://www.renovaverde.com.br/api":  "https://www.renovaverde.com.br/api/articles?published=true",
		"https://www.renovaverde.com.br/api/": "https://www.renovaverde.com.br/api/articles?published=true",
	}
	for base, want := range cases {
		if got := ArticlesURL(base); got != want {
			t.Errorf("ArticlesURL(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestFetch(t *testing.T) {
	var gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/articles" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		gotAgent = r.UserAgent()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"slug":"a","updatedAt":"2024-01-01T00:00:00Z"}]`))
	}))
	defer server.Close()

	f := NewFetcher(&FetcherConfig{APIBaseURL: server.URL + "/api", UserAgent: "sitegen-test"})
	body, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if !strings.Contains(string(body), `"slug":"a"`) {
		t.Errorf("Unexpected body: %s", body)
	}
	if gotQuery != "published=true" {
		t.Errorf("Expected published=true query, got %q", gotQuery)
	}
	if gotAgent != "sitegen-test" {
		t.Errorf("Expected user agent 'sitegen-test', got %q", gotAgent)
	}
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Erro ao buscar artigos"}`))
	}))
	defer server.Close()

	f := NewFetcher(&FetcherConfig{APIBaseURL: server.URL, UserAgent: "sitegen-test"})
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("Expected an error for a 500 response")
	}
}

func TestFetchNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	f := NewFetcher(&FetcherConfig{APIBaseURL: base, UserAgent: "sitegen-test"})
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("Expected an error when the API is unreachable")
	}
}

func TestFetchCancelledInFlight(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	f := NewFetcher(&FetcherConfig{APIBaseURL: server.URL, UserAgent: "sitegen-test"})

	start := time.Now()
	_, err := f.Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Fetch did not stop on cancel, took %s", elapsed)
	}
}

func TestFetchCancelledBeforeStart(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(&FetcherConfig{APIBaseURL: server.URL, UserAgent: "sitegen-test"})
	if _, err := f.Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if hits != 0 {
		t.Errorf("Expected no request, got %d", hits)
	}
}
