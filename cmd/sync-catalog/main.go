package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/repository/postgres"
	"github.com/arcshop/podbridge/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	catalog := service.NewCatalogService(repos, cfg.Providers, nil, logger)

	// Sync the providers named on the command line, or every configured
	// provider when none are given.
	var codes []domain.ProviderCode
	if len(os.Args) > 1 {
		for _, arg := range os.Args[1:] {
			code := domain.ProviderCode(arg)
			if !code.IsValid() {
				fmt.Fprintf(os.Stderr, "Unknown provider: %s\n", arg)
				os.Exit(1)
			}
			codes = append(codes, code)
		}
	} else {
		codes = cfg.ConfiguredProviders()
	}

	if len(codes) == 0 {
		fmt.Fprintln(os.Stderr, "No providers configured; set PRINTIFY_API_KEY, GELATO_API_KEY or PRINTFUL_API_KEY")
		os.Exit(1)
	}

	ctx := context.Background()
	failed := false
	for _, code := range codes {
		report, err := catalog.Sync(ctx, code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed for %s: %v\n", code, err)
			failed = true
			continue
		}
		fmt.Printf("%s: synced %d products, %d failed\n", code, report.SyncedCount, report.FailedCount)
	}

	if failed {
		os.Exit(1)
	}
}
