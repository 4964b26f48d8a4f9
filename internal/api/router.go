package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/api/handlers"
	"github.com/arcshop/podbridge/internal/api/middleware"
	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/repository"
	"github.com/arcshop/podbridge/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, dispatch *service.DispatchService, catalog *service.CatalogService, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes (all require operator authentication)
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(repos, logger))
	{
		v1.POST("/orders/:ref/dispatches", handlers.HandleCreateDispatches(dispatch, logger))
		v1.GET("/dispatches", handlers.HandleListDispatches(repos, logger))
		v1.GET("/dispatches/:id", handlers.HandleGetDispatch(repos, logger))
		v1.POST("/dispatches/:id/send", handlers.HandleSendDispatch(dispatch, repos, logger))
		v1.POST("/dispatches/:id/retry", handlers.HandleRetryDispatch(dispatch, repos, logger))
		v1.POST("/dispatches/:id/poll", handlers.HandlePollDispatch(dispatch, repos, logger))

		v1.POST("/mappings", handlers.HandleCreateMapping(repos, logger))
		v1.GET("/mappings", handlers.HandleListMappings(repos, logger))

		v1.POST("/providers/:code/test", handlers.HandleTestProvider(dispatch, logger))
		v1.POST("/providers/:code/sync", handlers.HandleSyncCatalog(catalog, logger))

		v1.GET("/errors", handlers.HandleListErrors(repos, logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
