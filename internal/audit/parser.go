package audit

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageMeta holds what the audit reads from an HTML page.
type PageMeta struct {
	Title     string
	Canonical string
	NoIndex   bool
}

// ParseHTML parses a raw HTML document.
func ParseHTML(content string) (*PageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	return ExtractMeta(doc.Selection), nil
}

// ExtractMeta reads the title, canonical link and robots directives below s.
func ExtractMeta(s *goquery.Selection) *PageMeta {
	meta := &PageMeta{
		Title: strings.TrimSpace(s.Find("title").First().Text()),
	}

	s.Find("link[rel='canonical']").EachWithBreak(func(i int, l *goquery.Selection) bool {
		if href, exists := l.Attr("href"); exists {
			meta.Canonical = strings.TrimSpace(href)
			return false
		}
		return true
	})

	s.Find("meta[name]").Each(func(i int, m *goquery.Selection) {
		name, _ := m.Attr("name")
		name = strings.ToLower(name)
		if name != "robots" && name != "googlebot" {
			return
		}
		content, exists := m.Attr("content")
		if !exists {
			return
		}
		for _, directive := range strings.Split(content, ",") {
			if strings.EqualFold(strings.TrimSpace(directive), "noindex") {
				meta.NoIndex = true
			}
		}
	})

	return meta
}
