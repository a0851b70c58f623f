package storage

import (
	"context"
	"fmt"

	"github.com/renovaverde/sitegen/internal/models"
)

type Store interface {
	Initialize() error
	Close() error

	// Article operations
	SaveArticles(ctx context.Context, articles []*models.Article) error
	ListPublishedArticles(ctx context.Context) ([]*models.Article, error)

	// Run operations
	RecordRun(ctx context.Context, run *models.Run) error
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

// NewStore opens the store for driver ("sqlite3" or "postgres").
func NewStore(driver, url string) (Store, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return NewSQLiteStore(url)
	case "postgres", "postgresql":
		return NewPostgresStore(url)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
