package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/renovaverde/sitegen/config"
	"github.com/renovaverde/sitegen/internal/publish"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewRunLogger(cfg.Log.Dir, "fetch-articles", cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := publish.NewPublisher(publish.OptionsFromConfig(cfg, afero.NewOsFs(), logger))

	count, err := publisher.FetchArticles(ctx)
	if err != nil {
		logger.LogFatal("Article fetch failed: %v", err)
	}

	logger.LogInfo("%d articles saved", count)
}
