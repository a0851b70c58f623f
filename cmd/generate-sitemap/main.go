package main

import (
	"context"

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

	logger, err := utils.NewRunLogger(cfg.Log.Dir, "generate-sitemap", cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	publisher := publish.NewPublisher(publish.OptionsFromConfig(cfg, afero.NewOsFs(), logger))

	result, err := publisher.GenerateSitemap(context.Background())
	if err != nil {
		logger.LogFatal("Sitemap generation failed: %v", err)
	}

	logger.LogInfo("Sitemap written to %s with %d URLs", cfg.Paths.Sitemap, result.URLs)
}
