package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/renovaverde/sitegen/internal/models"
)

type Builder struct {
	Title       string
	Description string
	BaseURL     string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Build turns articles into an RSS channel linking to the article pages.
func (b *Builder) Build(articles []*models.Article) *feeds.Feed {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	baseURL := strings.TrimRight(b.BaseURL, "/")

	feed := &feeds.Feed{
		Title:       b.Title,
		Link:        &feeds.Link{Href: baseURL},
		Description: b.Description,
		Updated:     now(),
	}

	for _, article := range articles {
		if article == nil || article.Slug == "" {
			continue
		}

		title := article.Title
		if title == "" {
			title = article.Slug
		}
		link := baseURL + "/artigos/" + article.Slug

		feed.Items = append(feed.Items, &feeds.Item{
			Title:       title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: article.Excerpt,
			Created:     parseTime(now(), article.PublishedAt, article.CreatedAt, article.UpdatedAt),
			Updated:     parseTime(now(), article.UpdatedAt),
		})
	}

	return feed
}

func (b *Builder) Render(articles []*models.Article) ([]byte, error) {
	rss, err := b.Build(articles).ToRss()
	if err != nil {
		return nil, fmt.Errorf("failed to render feed: %w", err)
	}
	return []byte(rss), nil
}

// parseTime returns the first value that parses as RFC 3339, or fallback.
func parseTime(fallback time.Time, values ...string) time.Time {
	for _, value := range values {
		if value == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t
		}
	}
	return fallback
}
