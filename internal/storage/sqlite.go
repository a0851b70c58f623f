package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/renovaverde/sitegen/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS articles (
            slug TEXT PRIMARY KEY,
            article_id TEXT,
            title TEXT,
            excerpt TEXT,
            category TEXT,
            is_published INTEGER NOT NULL DEFAULT 0,
            created_at TEXT,
            published_at TEXT,
            updated_at TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            kind TEXT NOT NULL,
            status TEXT NOT NULL,
            articles INTEGER NOT NULL DEFAULT 0,
            urls INTEGER NOT NULL DEFAULT 0,
            error TEXT,
            started_at DATETIME NOT NULL,
            finished_at DATETIME
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
func (s *SQLiteStore) SaveArticles(ctx context.Context, articles []*models.Article) error {
	query := `
        INSERT INTO articles (slug, article_id, title, excerpt, category, is_published, created_at, published_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(slug) DO UPDATE SET
            article_id = excluded.article_id,
            title = excluded.title,
            excerpt = excluded.excerpt,
            category = excluded.category,
            is_published = excluded.is_published,
            created_at = excluded.created_at,
            published_at = excluded.published_at,
            updated_at = excluded.updated_at
    `

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

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
	}

	unpublish := `UPDATE articles SET is_published = 0`
	args := make([]interface{}, 0, len(articles))
	if len(articles) > 0 {
		placeholders := make([]string, 0, len(articles))
		for _, article := range articles {
			placeholders = append(placeholders, "?")
			args = append(args, article.Slug)
		}
		unpublish += ` WHERE slug NOT IN (` + strings.Join(placeholders, ", ") + `)`
	}
	if _, err := tx.ExecContext(ctx, unpublish, args...); err != nil {
		return fmt.Errorf("failed to unpublish missing articles: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListPublishedArticles(ctx context.Context) ([]*models.Article, error) {
	query := `
        SELECT slug, article_id, title, excerpt, category, is_published, created_at, published_at, updated_at
        FROM articles
        WHERE is_published = 1
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

func (s *SQLiteStore) RecordRun(ctx context.Context, run *models.Run) error {
	query := `
        INSERT INTO runs (id, kind, status, articles, urls, error, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            status = excluded.status,
            articles = excluded.articles,
            urls = excluded.urls,
            error = excluded.error,
            finished_at = excluded.finished_at
    `

	_, err := s.db.ExecContext(ctx, query,
		run.ID.String(),
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

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
        SELECT id, kind, status, articles, urls, error, started_at, finished_at
        FROM runs
        ORDER BY started_at DESC
        LIMIT ?
    `

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var run models.Run
		var idStr, kind string
		var errText sql.NullString
		var finishedAt sql.NullTime

		err := rows.Scan(
			&idStr,
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

		run.ID, _ = uuid.Parse(idStr)
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

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
