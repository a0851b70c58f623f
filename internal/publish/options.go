package publish

import (
	"github.com/renovaverde/sitegen/config"
	"github.com/renovaverde/sitegen/internal/cachefile"
	"github.com/renovaverde/sitegen/internal/feed"
	"github.com/renovaverde/sitegen/internal/fetcher"
	"github.com/renovaverde/sitegen/internal/sitemap"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/spf13/afero"
)

// OptionsFromConfig wires the fetcher, cache file and builders from cfg on
// fs. Source and Store are left for the caller.
func OptionsFromConfig(cfg *config.Config, fs afero.Fs, logger *utils.RunLogger) Options {
	return Options{
		Fs: fs,
		Fetcher: fetcher.NewFetcher(&fetcher.FetcherConfig{
			APIBaseURL: cfg.API.BaseURL,
			UserAgent:  cfg.API.UserAgent,
		}),
		Cache: cachefile.New(fs, cfg.Paths.Articles),
		Sitemap: sitemap.NewBuilder(sitemap.BuilderConfig{
			BaseURL:     cfg.Site.BaseURL,
			StaticPages: cfg.Site.StaticPages,
			Categories:  cfg.Site.Categories,
		}),
		Feed: &feed.Builder{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			BaseURL:     cfg.Site.BaseURL,
		},
		Logger: logger,
		Paths: Paths{
			Sitemap: cfg.Paths.Sitemap,
			Robots:  cfg.Paths.Robots,
			Feed:    cfg.Paths.Feed,
		},
	}
}
