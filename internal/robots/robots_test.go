package robots

import (
	"strings"
	"testing"
)

func TestRenderDefaults(t *testing.T) {
	out := string(Render("https://www.renovaverde.com.br/", nil))

	if !strings.HasPrefix(out, "User-Agent: *\nAllow: /\nDisallow: /admin/\n") {
		t.Errorf("Unexpected first group:\n%s", out)
	}
	if strings.Count(out, "User-Agent: ") != 3 {
		t.Errorf("Expected 3 user agent groups:\n%s", out)
	}
	if !strings.Contains(out, "User-Agent: Bingbot\nAllow: /\nDisallow: /admin/\nDisallow: /api/\nDisallow: /private/\n\n") {
		t.Errorf("Unexpected Bingbot group:\n%s", out)
	}
	if !strings.HasSuffix(out, "Host: https://www.renovaverde.com.br\nSitemap: https://www.renovaverde.com.br/sitemap.xml\n") {
		t.Errorf("Unexpected trailer:\n%s", out)
	}
}

func TestRenderCustomRules(t *testing.T) {
	out := string(Render("https://example.com", []Rule{{UserAgent: "*", Disallow: []string{"/tmp/"}}}))

	want := "User-Agent: *\nDisallow: /tmp/\n\nHost: https://example.com\nSitemap: https://example.com/sitemap.xml\n"
	if out != want {
		t.Errorf("Unexpected output:\n%q\nwant:\n%q", out, want)
	}
}
