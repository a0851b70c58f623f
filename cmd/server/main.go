package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/renovaverde/sitegen/config"
	"github.com/renovaverde/sitegen/internal/api"
	"github.com/renovaverde/sitegen/internal/pagecache"
	"github.com/renovaverde/sitegen/internal/publish"
	"github.com/renovaverde/sitegen/internal/source"
	"github.com/renovaverde/sitegen/internal/storage"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewRunLogger(cfg.Log.Dir, "server", cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	// Initialize storage
	var store storage.Store
	if cfg.Database.URL != "" {
		store, err = storage.NewStore(cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			logger.LogFatal("Failed to initialize storage: %v", err)
		}
		defer store.Close()

		if err := store.Initialize(); err != nil {
			logger.LogFatal("Failed to initialize database tables: %v", err)
		}
	}

	opts := publish.OptionsFromConfig(cfg, afero.NewOsFs(), logger)
	opts.Store = store
	opts.Source, err = articleSource(cfg, store)
	if err != nil {
		logger.LogFatal("Failed to initialize article source: %v", err)
	}
	publisher := publish.NewPublisher(opts)

	cache := pageCache(cfg, logger)

	// Initialize API server
	server := api.NewServer(cfg.Server.Port, publisher, cache, store, logger)

	// Setup periodic refresh
	ticker := time.NewTicker(cfg.GetRefreshDuration())
	defer ticker.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for {
			select {
			case <-ticker.C:
				logger.LogInfo("Starting periodic refresh...")
				if _, err := publisher.Refresh(ctx); err != nil {
					logger.LogError("Periodic refresh failed: %v", err)
					continue
				}
				if _, err := cache.Delete(ctx, api.PageKeys...); err != nil {
					logger.LogWarn("Failed to clear page cache: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start the API server
	go func() {
		logger.LogInfo("Starting API server on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.LogFatal("Failed to start API server: %v", err)
		}
	}()

	// Wait for shutdown
	waitForShutdown(cancel, server, logger)
}

func articleSource(cfg *config.Config, store storage.Store) (publish.ArticleSource, error) {
	switch cfg.Source.Kind {
	case "", "cache":
		// nil falls back to the cache file
		return nil, nil
	case "store":
		if store == nil {
			return nil, fmt.Errorf("source %q requires database.url", cfg.Source.Kind)
		}
		return store, nil
	case "supabase":
		return source.NewSupabaseSource(cfg.Supabase.URL, cfg.Supabase.Key)
	default:
		return nil, fmt.Errorf("unknown article source %q", cfg.Source.Kind)
	}
}

func pageCache(cfg *config.Config, logger *utils.RunLogger) pagecache.Cache {
	if cfg.Redis.Addr == "" {
		return pagecache.NewMemoryCache()
	}

	cache, err := pagecache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.LogWarn("Redis unavailable at %s, using in-memory page cache: %v", cfg.Redis.Addr, err)
		return pagecache.NewMemoryCache()
	}
	return cache
}

func waitForShutdown(cancel context.CancelFunc, server *api.Server, logger *utils.RunLogger) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.LogInfo("Shutting down...")
	cancel()

	// Graceful server shutdown
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Error shutting down server: %v", err)
	}
	logger.LogInfo("Server shut down gracefully")
}
