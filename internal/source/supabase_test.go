package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListPublishedArticles(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"slug":"solar","updatedAt":"2024-03-01T10:00:00.500Z"},
			{"slug":"horta","updatedAt":"2024-03-01T10:00:00Z"}
		]`)
	}))
	defer server.Close()

	src, err := NewSupabaseSource(server.URL, "anon-key")
	if err != nil {
		t.Fatalf("NewSupabaseSource failed: %v", err)
	}

	articles, err := src.ListPublishedArticles(context.Background())
	if err != nil {
		t.Fatalf("ListPublishedArticles failed: %v", err)
	}

	if gotPath != "/rest/v1/articles" {
		t.Errorf("Unexpected path: %s", gotPath)
	}
	if gotKey != "anon-key" {
		t.Errorf("Expected the API key header, got %q", gotKey)
	}
	if got := gotQuery["order"]; len(got) != 1 || got[0] != "updatedAt.desc.nullslast" {
		t.Errorf("Expected server-side ordering by updatedAt desc, got %v", got)
	}
	if got := gotQuery["is_published"]; len(got) != 1 || got[0] != "eq.true" {
		t.Errorf("Expected the published filter, got %v", got)
	}
	if got := gotQuery["select"]; len(got) != 1 || got[0] != "slug,updatedAt" {
		t.Errorf("Unexpected columns: %v", got)
	}

	// Rows keep the order the server returned.
	if len(articles) != 2 || articles[0].Slug != "solar" || articles[1].Slug != "horta" {
		t.Fatalf("Unexpected articles: %+v", articles)
	}
	for _, a := range articles {
		if !a.IsPublished {
			t.Errorf("Expected %s to be marked published", a.Slug)
		}
	}
}

func TestListPublishedArticlesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"code":"PGRST301","message":"JWT expired"}`)
	}))
	defer server.Close()

	src, err := NewSupabaseSource(server.URL, "anon-key")
	if err != nil {
		t.Fatalf("NewSupabaseSource failed: %v", err)
	}
	if _, err := src.ListPublishedArticles(context.Background()); err == nil {
		t.Fatal("Expected an error for a rejected query")
	}
}

func TestNewSupabaseSourceRequiresCredentials(t *testing.T) {
	if _, err := NewSupabaseSource("", "key"); err == nil {
		t.Error("Expected an error without a URL")
	}
	if _, err := NewSupabaseSource("https://project.supabase.co", ""); err == nil {
		t.Error("Expected an error without a key")
	}
}
