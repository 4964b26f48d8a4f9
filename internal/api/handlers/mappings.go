package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/repository"
)

// CreateMappingRequest represents the mapping creation request
type CreateMappingRequest struct {
	LocalProductID    string  `json:"local_product_id" binding:"required"`
	Provider          string  `json:"provider" binding:"required"`
	ExternalProductID string  `json:"external_product_id" binding:"required"`
	ExternalVariantID *string `json:"external_variant_id"`
}

// MappingResponse represents a product mapping in API responses
type MappingResponse struct {
	ID                string  `json:"id"`
	LocalProductID    string  `json:"local_product_id"`
	Provider          string  `json:"provider"`
	ExternalProductID string  `json:"external_product_id"`
	ExternalVariantID *string `json:"external_variant_id,omitempty"`
	IsActive          bool    `json:"is_active"`
	CreatedAt         string  `json:"created_at"`
}

func toMappingResponse(mapping *domain.ProductMapping) MappingResponse {
	return MappingResponse{
		ID:                mapping.ID.String(),
		LocalProductID:    mapping.LocalProductID,
		Provider:          string(mapping.ProviderCode),
		ExternalProductID: mapping.ExternalProductID,
		ExternalVariantID: mapping.ExternalVariantID,
		IsActive:          mapping.IsActive,
		CreatedAt:         mapping.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleCreateMapping handles POST /v1/mappings
func HandleCreateMapping(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMappingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		code := domain.ProviderCode(req.Provider)
		if !code.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider: " + req.Provider})
			return
		}

		mapping := &domain.ProductMapping{
			LocalProductID:    req.LocalProductID,
			ProviderCode:      code,
			ExternalProductID: req.ExternalProductID,
			ExternalVariantID: req.ExternalVariantID,
			IsActive:          true,
		}
		if err := repos.ProductMapping.Create(c.Request.Context(), mapping); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, toMappingResponse(mapping))
	}
}

// HandleListMappings handles GET /v1/mappings
func HandleListMappings(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		mappings, err := repos.ProductMapping.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]MappingResponse, len(mappings))
		for i, mapping := range mappings {
			responses[i] = toMappingResponse(mapping)
		}
		c.JSON(http.StatusOK, gin.H{"mappings": responses})
	}
}
