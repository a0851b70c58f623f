package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/renovaverde/sitegen/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS articles (
            slug VARCHAR(255) PRIMARY KEY,
            article_id VARCHAR(255),
            title TEXT,
            excerpt TEXT,
            category VARCHAR(255),
            is_published BOOLEAN NOT NULL DEFAULT FALSE,
            created_at VARCHAR(64),
            published_at VARCHAR(64),
            updated_at VARCHAR(64) NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS runs (
            id UUID PRIMARY KEY,
            kind VARCHAR(32) NOT NULL,
            status VARCHAR(32) NOT NULL,
            articles INTEGER NOT NULL DEFAULT 0,
            urls INTEGER NOT NULL DEFAULT 0,
            error TEXT,
            started_at TIMESTAMPTZ NOT NULL,
            finished_at TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_articles_updated_at ON articles(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

// SaveArticles upserts articles by slug. Stored articles missing from the
// list are marked unpublished.
func (s *PostgresStore) SaveArticles(ctx context.Context, articles []*models.Article) error {
	query := `
        INSERT INTO articles (slug, article_id, title, excerpt, category, is_published, created_at, published_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (slug) DO UPDATE SET
            article_id = EXCLUDED.article_id,
            title = EXCLUDED.title,
            excerpt = EXCLUDED.excerpt,
            category = EXCLUDED.category,
            is_published = EXCLUDED.is_published,
            created_at = EXCLUDED.created_at,
            published_at = EXCLUDED.published_at,
            updated_at = EXCLUDED.updated_at
    `

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	slugs := make([]string, 0, len(articles))
	for i, article := range articles {
		if article == nil {
			return fmt.Errorf("cannot save null article at index %d", i)
		}
		if err := article.Validate(); err != nil {
			return fmt.Errorf("cannot save article %q: %w", article.Slug, err)
		}
		_, err := tx.ExecContext(ctx, query,
			article.Slug,
			article.ID,
			article.Title,
			article.Excerpt,
			article.Category,
			article.IsPublished,
			article.CreatedAt,
			article.PublishedAt,
			article.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save article %q: %w", article.Slug, err)
		}
		slugs = append(slugs, article.Slug)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE articles SET is_published = FALSE WHERE NOT (slug = ANY($1))`,
		pq.Array(slugs),
	)
	if err != nil {
		return fmt.Errorf("failed to unpublish missing articles: %w", err)
	}

	return tx.Commit()
}

func (s *PostgresStore) ListPublishedArticles(ctx context.Context) ([]*models.Article, error) {
	query := `
        SELECT slug, article_id, title, excerpt, category, is_published, created_at, published_at, updated_at
        FROM articles
        WHERE is_published
        ORDER BY updated_at DESC
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		var article models.Article
		var id, title, excerpt, category, createdAt, publishedAt sql.NullString

		err := rows.Scan(
			&article.Slug,
			&id,
			&title,
			&excerpt,
			&category,
			&article.IsPublished,
			&createdAt,
			&publishedAt,
			&article.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		article.ID = id.String
		article.Title = title.String
		article.Excerpt = excerpt.String
		article.Category = category.String
		article.CreatedAt = createdAt.String
		article.PublishedAt = publishedAt.String

		articles = append(articles, &article)
	}

	return articles, rows.Err()
}

func (s *PostgresStore) RecordRun(ctx context.Context, run *models.Run) error {
	query := `
        INSERT INTO runs (id, kind, status, articles, urls, error, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO UPDATE SET
            status = EXCLUDED.status,
            articles = EXCLUDED.articles,
            urls = EXCLUDED.urls,
            error = EXCLUDED.error,
            finished_at = EXCLUDED.finished_at
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		string(run.Kind),
		run.Status,
		run.Articles,
		run.URLs,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)

	return err
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
        SELECT id, kind, status, articles, urls, error, started_at, finished_at
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1
    `

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var run models.Run
		var kind string
		var errText sql.NullString
		var finishedAt sql.NullTime

		err := rows.Scan(
			&run.ID,
			&kind,
			&run.Status,
			&run.Articles,
			&run.URLs,
			&errText,
			&run.StartedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, err
		}

		run.Kind = models.RunKind(kind)
		run.Error = errText.String
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
