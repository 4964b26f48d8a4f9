package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/service"
)

// HandleTestProvider handles POST /v1/providers/:code/test
func HandleTestProvider(dispatch *service.DispatchService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := domain.ProviderCode(c.Param("code"))
		if !code.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider: " + c.Param("code")})
			return
		}

		message, err := dispatch.TestProvider(c.Request.Context(), code)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// HandleSyncCatalog handles POST /v1/providers/:code/sync
func HandleSyncCatalog(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := domain.ProviderCode(c.Param("code"))
		if !code.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider: " + c.Param("code")})
			return
		}

		report, err := catalog.Sync(c.Request.Context(), code)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"synced": report.SyncedCount,
			"failed": report.FailedCount,
		})
	}
}
