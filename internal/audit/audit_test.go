package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/renovaverde/sitegen/internal/models"
	"github.com/renovaverde/sitegen/internal/sitemap"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/spf13/afero"
)

func TestParseHTML(t *testing.T) {
	meta, err := ParseHTML(`<html><head>
<title> Horta em casa </title>
<link rel="canonical" href="https://example.com/artigos/horta">
<meta name="robots" content="index, NOINDEX">
</head><body></body></html>`)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	if meta.Title != "Horta em casa" {
		t.Errorf("Unexpected title: %q", meta.Title)
	}
	if meta.Canonical != "https://example.com/artigos/horta" {
		t.Errorf("Unexpected canonical: %q", meta.Canonical)
	}
	if !meta.NoIndex {
		t.Error("Expected noindex to be detected")
	}
}

func TestParseHTMLPlainPage(t *testing.T) {
	meta, err := ParseHTML(`<html><body><p>sem cabeçalho</p></body></html>`)
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if meta.Title != "" || meta.Canonical != "" || meta.NoIndex {
		t.Errorf("Expected empty meta, got %+v", meta)
	}
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/":
			fmt.Fprintf(w, `<html><head><title>Início</title><link rel="canonical" href="%s/"></head></html>`, srv.URL)
		case "/sobre":
			fmt.Fprint(w, `<html><head></head><body>sobre</body></html>`)
		case "/artigos/rascunho":
			fmt.Fprint(w, `<html><head><title>Rascunho</title><meta name="robots" content="noindex"></head></html>`)
		case "/artigos/copia":
			fmt.Fprintf(w, `<html><head><title>Cópia</title><link rel="canonical" href="%s/artigos/original"></head></html>`, srv.URL)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuditReportsIssues(t *testing.T) {
	srv := newSite(t)

	set := &models.URLSet{URLs: []models.URL{
		{Loc: srv.URL},
		{Loc: srv.URL + "/sobre"},
		{Loc: srv.URL + "/artigos/rascunho"},
		{Loc: srv.URL + "/artigos/copia"},
		{Loc: srv.URL + "/artigos/sumiu"},
	}}

	auditor := NewAuditor(&AuditConfig{UserAgent: "audit-test"}, utils.NewWriterLogger(io.Discard))
	reports, err := auditor.Audit(context.Background(), set)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if len(reports) != 5 {
		t.Fatalf("Expected 5 reports, got %d", len(reports))
	}

	if !reports[0].OK() || reports[0].Title != "Início" || reports[0].StatusCode != 200 {
		t.Errorf("Expected a clean home page, got %+v", reports[0])
	}

	expected := []string{"", "missing title", "noindex", "canonical points to", "status 404"}
	for i, want := range expected {
		if want == "" {
			continue
		}
		got := strings.Join(reports[i].Issues, "; ")
		if !strings.Contains(got, want) {
			t.Errorf("Report %d (%s): expected issue %q, got %q", i, reports[i].URL, want, got)
		}
	}

	ok, failing := Summarize(reports)
	if ok != 1 || failing != 4 {
		t.Errorf("Expected 1 ok and 4 failing, got %d and %d", ok, failing)
	}
}

func TestAuditMaxURLs(t *testing.T) {
	srv := newSite(t)

	set := &models.URLSet{URLs: []models.URL{
		{Loc: srv.URL},
		{Loc: srv.URL + "/sobre"},
		{Loc: srv.URL + "/artigos/rascunho"},
	}}

	auditor := NewAuditor(&AuditConfig{MaxURLs: 2}, utils.NewWriterLogger(io.Discard))
	reports, err := auditor.Audit(context.Background(), set)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if len(reports) != 2 {
		t.Errorf("Expected 2 reports, got %d", len(reports))
	}
}

func TestAuditUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	loc := srv.URL + "/"
	srv.Close()

	auditor := NewAuditor(&AuditConfig{}, utils.NewWriterLogger(io.Discard))
	reports, err := auditor.Audit(context.Background(), &models.URLSet{URLs: []models.URL{{Loc: loc}}})
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if reports[0].OK() || !strings.HasPrefix(reports[0].Issues[0], "request failed") {
		t.Errorf("Expected a request failure, got %+v", reports[0])
	}
}

func TestAuditStopsWhenCancelled(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	auditor := NewAuditor(&AuditConfig{}, utils.NewWriterLogger(io.Discard))
	reports, err := auditor.Audit(ctx, &models.URLSet{URLs: []models.URL{{Loc: srv.URL}, {Loc: srv.URL + "/sobre"}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(reports) != 0 || hits != 0 {
		t.Errorf("Expected no visits, got %d reports and %d requests", len(reports), hits)
	}
}

func TestLoadSitemapRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	builder := sitemap.NewBuilder(sitemap.BuilderConfig{BaseURL: "https://example.com"})

	data, set, err := builder.Render([]*models.Article{{Slug: "horta", UpdatedAt: "2024-05-01T10:00:00Z"}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := afero.WriteFile(fs, "sitemap.xml", data, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded, err := LoadSitemap(fs, "sitemap.xml")
	if err != nil {
		t.Fatalf("LoadSitemap failed: %v", err)
	}
	if len(loaded.URLs) != len(set.URLs) {
		t.Fatalf("Expected %d URLs, got %d", len(set.URLs), len(loaded.URLs))
	}
	if loaded.URLs[7].Loc != "https://example.com/artigos/horta" {
		t.Errorf("Unexpected article URL: %s", loaded.URLs[7].Loc)
	}
}

func TestLoadSitemapMissing(t *testing.T) {
	if _, err := LoadSitemap(afero.NewMemMapFs(), "nope.xml"); err == nil {
		t.Error("Expected an error for a missing sitemap")
	}
}
