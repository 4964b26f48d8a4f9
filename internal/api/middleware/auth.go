package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/repository"
)

const operatorContextKey = "operator"

// AuthMiddleware authenticates back-office operators by API key.
func AuthMiddleware(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		// Bcrypt hashes are salted, so the key is verified against each
		// active operator's hash rather than looked up directly.
		operators, err := repos.Operator.ListActive(c.Request.Context())
		if err != nil {
			logger.Error("Failed to list operators", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		for _, operator := range operators {
			if bcrypt.CompareHashAndPassword([]byte(operator.APIKeyHash), []byte(apiKey)) == nil {
				c.Set(operatorContextKey, operator)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
	}
}

// GetOperatorFromContext retrieves the authenticated operator
func GetOperatorFromContext(c *gin.Context) (*domain.Operator, bool) {
	value, exists := c.Get(operatorContextKey)
	if !exists {
		return nil, false
	}
	operator, ok := value.(*domain.Operator)
	return operator, ok
}
