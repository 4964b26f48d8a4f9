package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/repository/postgres"
	"github.com/arcshop/podbridge/internal/service"
)

func main() {
	workers := flag.Int("workers", 4, "concurrent status polls")
	sweepAge := flag.Duration("sweep-age", 30*time.Minute, "fail pending orders older than this")
	noSweep := flag.Bool("no-sweep", false, "skip the stale pending sweep")
	flag.Parse()

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
	dispatch := service.NewDispatchService(repos, cfg.Providers, nil, logger)

	ctx := context.Background()

	if !*noSweep {
		swept, err := dispatch.SweepStalePending(ctx, *sweepAge)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Pending sweep failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Swept %d stale pending orders\n", swept)
	}

	report, err := dispatch.PollAllSent(ctx, *workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Polling run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Polled %d sent orders, %d failed\n", report.Polled, report.Failed)
}
