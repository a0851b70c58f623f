// Package audit samples the URLs of a generated sitemap and reports pages that
// would not index cleanly.
package audit

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/renovaverde/sitegen/internal/models"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/spf13/afero"
)

const locKey = "loc"

type Auditor struct {
	config *AuditConfig
	logger *utils.RunLogger
}

type AuditConfig struct {
	UserAgent string
	// MaxURLs caps how many sitemap entries are visited; 0 visits all of them.
	MaxURLs int
	Delay   time.Duration
}

// PageReport is the outcome of visiting one sitemap URL.
type PageReport struct {
	URL        string
	StatusCode int
	Title      string
	Canonical  string
	NoIndex    bool
	Err        string
	Issues     []string
}

func (r *PageReport) OK() bool {
	return len(r.Issues) == 0
}

func NewAuditor(config *AuditConfig, logger *utils.RunLogger) *Auditor {
	return &Auditor{
		config: config,
		logger: logger,
	}
}

// LoadSitemap reads and decodes a sitemap file.
func LoadSitemap(fs afero.Fs, path string) (*models.URLSet, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	var set models.URLSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return &set, nil
}

// Audit visits the sitemap URLs in order and returns one report per URL.
func (a *Auditor) Audit(ctx context.Context, set *models.URLSet) ([]*PageReport, error) {
	urls := set.URLs
	if a.config.MaxURLs > 0 && len(urls) > a.config.MaxURLs {
		urls = urls[:a.config.MaxURLs]
	}

	reports := make(map[string]*PageReport, len(urls))
	var mu sync.Mutex
	report := func(ctx *colly.Context) *PageReport {
		mu.Lock()
		defer mu.Unlock()
		return reports[ctx.Get(locKey)]
	}

	c := colly.NewCollector(
		colly.UserAgent(a.config.UserAgent),
	)
	c.WithTransport(&utils.ContextTransport{Ctx: ctx})
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       a.config.Delay,
	})

	c.OnResponse(func(r *colly.Response) {
		report(r.Ctx).StatusCode = r.StatusCode
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		meta := ExtractMeta(e.DOM)
		rep := report(e.Request.Ctx)
		rep.Title = meta.Title
		rep.Canonical = meta.Canonical
		rep.NoIndex = meta.NoIndex
	})

	c.OnError(func(r *colly.Response, err error) {
		rep := report(r.Ctx)
		rep.StatusCode = r.StatusCode
		rep.Err = err.Error()
	})

	ordered := make([]*PageReport, 0, len(urls))
	for idx, u := range urls {
		if err := ctx.Err(); err != nil {
			return ordered, err
		}

		rep := &PageReport{URL: u.Loc}
		mu.Lock()
		reports[u.Loc] = rep
		mu.Unlock()
		ordered = append(ordered, rep)

		a.logger.LogInfo("Auditing URL %d/%d: %s", idx+1, len(urls), u.Loc)

		cctx := colly.NewContext()
		cctx.Put(locKey, u.Loc)
		if err := c.Request("GET", u.Loc, nil, cctx, nil); err != nil && rep.Err == "" {
			rep.Err = err.Error()
		}

		rep.Issues = findIssues(rep)
		if !rep.OK() {
			a.logger.LogWarn("%s: %s", u.Loc, strings.Join(rep.Issues, "; "))
		}
	}

	return ordered, ctx.Err()
}

func findIssues(r *PageReport) []string {
	var issues []string

	if r.StatusCode == 0 {
		return append(issues, fmt.Sprintf("request failed: %s", r.Err))
	}
	if r.StatusCode != 200 {
		return append(issues, fmt.Sprintf("status %d", r.StatusCode))
	}

	if r.Title == "" {
		issues = append(issues, "missing title")
	}
	if r.Canonical != "" && normalizeURL(r.Canonical) != normalizeURL(r.URL) {
		issues = append(issues, fmt.Sprintf("canonical points to %s", r.Canonical))
	}
	if r.NoIndex {
		issues = append(issues, "noindex")
	}

	return issues
}

func normalizeURL(u string) string {
	return strings.TrimSuffix(strings.TrimSpace(u), "/")
}

// Summarize counts clean pages and pages with issues.
func Summarize(reports []*PageReport) (ok, failing int) {
	for _, r := range reports {
		if r.OK() {
			ok++
		} else {
			failing++
		}
	}
	return ok, failing
}
