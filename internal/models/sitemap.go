// internal/models/sitemap.go
package models

import "encoding/xml"

const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet represents the structure of an XML sitemap.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL represents a single URL entry in the sitemap.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}
