package robots

import (
	"strings"
)

type Rule struct {
	UserAgent string
	Allow     []string
	Disallow  []string
}

var DefaultRules = []Rule{
	{
		UserAgent: "*",
		Allow:     []string{"/"},
		Disallow:  []string{"/admin/", "/api/", "/private/", "/_next/", "/static/"},
	},
	{
		UserAgent: "Googlebot",
		Allow:     []string{"/"},
		Disallow:  []string{"/admin/", "/api/", "/private/"},
	},
	{
		UserAgent: "Bingbot",
		Allow:     []string{"/"},
		Disallow:  []string{"/admin/", "/api/", "/private/"},
	},
}

// Render produces robots.txt for baseURL, pointing crawlers at its sitemap.
func Render(baseURL string, rules []Rule) []byte {
	baseURL = strings.TrimRight(baseURL, "/")
	if len(rules) == 0 {
		rules = DefaultRules
	}

	var b strings.Builder
	for _, rule := range rules {
		b.WriteString("User-Agent: " + rule.UserAgent + "\n")
		for _, path := range rule.Allow {
			b.WriteString("Allow: " + path + "\n")
		}
		for _, path := range rule.Disallow {
			b.WriteString("Disallow: " + path + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Host: " + baseURL + "\n")
	b.WriteString("Sitemap: " + baseURL + "/sitemap.xml\n")

	return []byte(b.String())
}
