package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/renovaverde/sitegen/config"
	"github.com/renovaverde/sitegen/internal/audit"
	"github.com/renovaverde/sitegen/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.NewRunLogger(cfg.Log.Dir, "sitemap-audit", cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	set, err := audit.LoadSitemap(afero.NewOsFs(), cfg.Paths.Sitemap)
	if err != nil {
		logger.LogFatal("Error loading sitemap: %v", err)
	}

	fmt.Printf("Total URLs found: %d\n\n", len(set.URLs))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditor := audit.NewAuditor(&audit.AuditConfig{
		UserAgent: cfg.API.UserAgent,
		MaxURLs:   cfg.Audit.Samples,
		Delay:     cfg.GetAuditDelay(),
	}, logger)

	reports, err := auditor.Audit(ctx, set)
	if err != nil {
		logger.LogError("Audit interrupted: %v", err)
	}

	for i, r := range reports {
		fmt.Printf("=== URL %d/%d: %s ===\n", i+1, len(reports), r.URL)
		fmt.Printf("  Status:    %d\n", r.StatusCode)
		fmt.Printf("  Title:     %s\n", r.Title)
		fmt.Printf("  Canonical: %s\n", r.Canonical)
		if r.OK() {
			fmt.Println("  OK")
		} else {
			fmt.Printf("  Issues:    %s\n", strings.Join(r.Issues, "; "))
		}
		fmt.Println()
	}

	ok, failing := audit.Summarize(reports)
	fmt.Printf("Audited %d URLs: %d ok, %d with issues\n", len(reports), ok, failing)
	if failing > 0 {
		os.Exit(1)
	}
}
