package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/api"
	"github.com/arcshop/podbridge/internal/config"
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
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	dispatch := service.NewDispatchService(repos, cfg.Providers, nil, logger)
	catalog := service.NewCatalogService(repos, cfg.Providers, nil, logger)

	router := api.NewRouter(cfg, repos, dispatch, catalog, logger)

	logger.Info("Starting server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
	)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
