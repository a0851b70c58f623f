package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/renovaverde/sitegen/internal/models"
)

// Set SITEGEN_TEST_POSTGRES_URL to a disposable database to run these.
func newPostgresTestStore(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("SITEGEN_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("SITEGEN_TEST_POSTGRES_URL not set")
	}

	store, err := NewPostgresStore(url)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Initialize(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	if _, err := store.db.Exec(`TRUNCATE articles, runs`); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}
	return store
}

func TestPostgresSaveAndListArticles(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()

	first := []*models.Article{
		{Slug: "horta", Title: "Horta", IsPublished: true, UpdatedAt: "2024-01-10T00:00:00Z"},
		{Slug: "solar", Title: "Solar", IsPublished: true, UpdatedAt: "2024-03-10T00:00:00Z"},
	}
	if err := store.SaveArticles(ctx, first); err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}

	second := []*models.Article{
		{Slug: "solar", Title: "Energia solar", IsPublished: true, UpdatedAt: "2024-05-01T00:00:00Z"},
	}
	if err := store.SaveArticles(ctx, second); err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}

	articles, err := store.ListPublishedArticles(ctx)
	if err != nil {
		t.Fatalf("ListPublishedArticles failed: %v", err)
	}
	if len(articles) != 1 || articles[0].Slug != "solar" || articles[0].Title != "Energia solar" {
		t.Errorf("Unexpected articles: %+v", articles)
	}

	err = store.SaveArticles(ctx, []*models.Article{{Slug: "sem-data"}})
	if !errors.Is(err, models.ErrMissingUpdatedAt) {
		t.Errorf("Expected ErrMissingUpdatedAt, got %v", err)
	}
}

func TestPostgresRuns(t *testing.T) {
	store := newPostgresTestStore(t)
	ctx := context.Background()

	run := models.NewRun(models.RunRefresh)
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	run.Articles = 3
	run.URLs = 17
	run.Finish(nil)
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun update failed: %v", err)
	}

	runs, err := store.ListRuns(ctx, 5)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID || runs[0].URLs != 17 || runs[0].FinishedAt == nil {
		t.Errorf("Unexpected runs: %+v", runs)
	}
}
