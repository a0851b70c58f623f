package publish

import (
	"context"
	"fmt"

	"github.com/renovaverde/sitegen/internal/cachefile"
	"github.com/renovaverde/sitegen/internal/feed"
	"github.com/renovaverde/sitegen/internal/fetcher"
	"github.com/renovaverde/sitegen/internal/models"
	"github.com/renovaverde/sitegen/internal/robots"
	"github.com/renovaverde/sitegen/internal/sitemap"
	"github.com/renovaverde/sitegen/internal/storage"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/spf13/afero"
)

// ArticleSource lists the articles that belong in the sitemap.
type ArticleSource interface {
	ListPublishedArticles(ctx context.Context) ([]*models.Article, error)
}

type Publisher struct {
	fs      afero.Fs
	fetcher *fetcher.Fetcher
	cache   *cachefile.File
	source  ArticleSource
	sitemap *sitemap.Builder
	feed    *feed.Builder
	store   storage.Store
	logger  *utils.RunLogger
	paths   Paths
}

// Paths are the generated files. Empty Robots or Feed paths skip that file.
type Paths struct {
	Sitemap string
	Robots  string
	Feed    string
}

type Options struct {
	Fs      afero.Fs
	Fetcher *fetcher.Fetcher
	Cache   *cachefile.File
	// Source defaults to Cache.
	Source  ArticleSource
	Sitemap *sitemap.Builder
	Feed    *feed.Builder
	// Store is optional; when set, fetched articles are mirrored and runs recorded.
	Store  storage.Store
	Logger *utils.RunLogger
	Paths  Paths
}

func NewPublisher(opts Options) *Publisher {
	p := &Publisher{
		fs:      opts.Fs,
		fetcher: opts.Fetcher,
		cache:   opts.Cache,
		source:  opts.Source,
		sitemap: opts.Sitemap,
		feed:    opts.Feed,
		store:   opts.Store,
		logger:  opts.Logger,
		paths:   opts.Paths,
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.source == nil && p.cache != nil {
		p.source = p.cache
	}
	return p
}

// Result describes one rendering of the published documents.
type Result struct {
	Sitemap  []byte
	Robots   []byte
	Feed     []byte
	URLs     int
	Articles int
}

// FetchArticles downloads the published articles and replaces the cache file.
// On any failure the cache file is left as it was.
func (p *Publisher) FetchArticles(ctx context.Context) (int, error) {
	run := models.NewRun(models.RunFetch)
	count, err := p.fetchArticles(ctx)
	run.Articles = count
	p.finishRun(ctx, run, err)
	return count, err
}

func (p *Publisher) fetchArticles(ctx context.Context) (int, error) {
	if p.fetcher == nil || p.cache == nil {
		return 0, fmt.Errorf("fetching is not configured")
	}

	p.logger.LogInfo("Fetching articles from %s", p.fetcher.Endpoint())
	body, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("error fetching articles: %w", err)
	}

	count, err := p.cache.Write(body)
	if err != nil {
		return 0, fmt.Errorf("error saving articles: %w", err)
	}
	p.logger.LogInfo("Fetched %d articles and saved to %s", count, p.cache.Path())

	if p.store != nil {
		articles, err := cachefile.Decode(body)
		if err != nil {
			return count, fmt.Errorf("error decoding articles for store: %w", err)
		}
		for _, article := range articles {
			article.IsPublished = true
		}
		if err := p.store.SaveArticles(ctx, articles); err != nil {
			return count, fmt.Errorf("error mirroring articles: %w", err)
		}
		p.logger.LogDebug("Mirrored %d articles into the store", len(articles))
	}

	return count, nil
}

// Render builds every document from the article source without writing.
func (p *Publisher) Render(ctx context.Context) (*Result, error) {
	if p.source == nil {
		return nil, fmt.Errorf("no article source configured")
	}

	articles, err := p.source.ListPublishedArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading articles: %w", err)
	}

	data, set, err := p.sitemap.Render(articles)
	if err != nil {
		return nil, fmt.Errorf("error building sitemap: %w", err)
	}

	result := &Result{
		Sitemap:  data,
		Robots:   robots.Render(p.sitemap.BaseURL(), nil),
		URLs:     len(set.URLs),
		Articles: len(articles),
	}

	if p.feed != nil {
		result.Feed, err = p.feed.Render(articles)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// GenerateSitemap renders the documents and writes them to their paths.
// Nothing is written when rendering fails.
func (p *Publisher) GenerateSitemap(ctx context.Context) (*Result, error) {
	run := models.NewRun(models.RunSitemap)
	result, err := p.generate(ctx)
	if result != nil {
		run.Articles = result.Articles
		run.URLs = result.URLs
	}
	p.finishRun(ctx, run, err)
	return result, err
}

func (p *Publisher) generate(ctx context.Context) (*Result, error) {
	result, err := p.Render(ctx)
	if err != nil {
		return nil, err
	}

	files := []struct {
		path string
		data []byte
	}{
		{p.paths.Sitemap, result.Sitemap},
		{p.paths.Robots, result.Robots},
		{p.paths.Feed, result.Feed},
	}
	for _, file := range files {
		if file.path == "" || file.data == nil {
			continue
		}
		if err := utils.WriteFileAtomic(p.fs, file.path, file.data); err != nil {
			return nil, err
		}
		p.logger.LogInfo("Wrote %s", file.path)
	}

	p.logger.LogInfo("Sitemap generated with %d URLs (%d articles)", result.URLs, result.Articles)
	return result, nil
}

// Refresh fetches the articles and regenerates the documents. A failed fetch
// still regenerates from the previous cache.
func (p *Publisher) Refresh(ctx context.Context) (*Result, error) {
	run := models.NewRun(models.RunRefresh)

	if _, err := p.fetchArticles(ctx); err != nil {
		p.logger.LogError("Refresh fetch failed, using existing articles: %v", err)
	}

	result, err := p.generate(ctx)
	if result != nil {
		run.Articles = result.Articles
		run.URLs = result.URLs
	}
	p.finishRun(ctx, run, err)
	return result, err
}

func (p *Publisher) finishRun(ctx context.Context, run *models.Run, err error) {
	run.Finish(err)
	if err != nil {
		p.logger.LogError("%s run %s failed: %v", run.Kind, run.ID, err)
	}
	if p.store == nil {
		return
	}
	if recErr := p.store.RecordRun(ctx, run); recErr != nil {
		p.logger.LogError("Failed to record %s run: %v", run.Kind, recErr)
	}
}
