package source

import (
	"context"
	"fmt"

	"github.com/renovaverde/sitegen/internal/models"
	"github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"
)

const (
	articlesTable   = "articles"
	articlesColumns = "slug, updatedAt"
	updatedColumn   = "updatedAt"
)

// SupabaseSource reads published articles straight from the site's Supabase
// project over the REST API.
type SupabaseSource struct {
	client *supabase.Client
}

func NewSupabaseSource(url, key string) (*SupabaseSource, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase URL and key are required")
	}

	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase SDK: %w", err)
	}

	return &SupabaseSource{client: client}, nil
}

// ListPublishedArticles returns published articles, most recently updated first.
func (s *SupabaseSource) ListPublishedArticles(ctx context.Context) ([]*models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []*models.Article
	_, err := s.client.From(articlesTable).
		Select(articlesColumns, "", false).
		Eq("is_published", "true").
		Order(updatedColumn, &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("query supabase articles: %w", err)
	}

	for _, row := range rows {
		row.IsPublished = true
	}

	return rows, nil
}
