package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

// respondError maps service and repository errors to HTTP responses.
// Provider failures surface as 502 so callers can tell an upstream
// outage apart from a local fault.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var notFound *apperrors.ErrNotFound
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	var validation *apperrors.ErrValidation
	if errors.As(err, &validation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": validation.Error(),
			"field": validation.Field,
		})
		return
	}

	var invalidState *apperrors.ErrInvalidStateTransition
	if errors.As(err, &invalidState) {
		c.JSON(http.StatusConflict, gin.H{"error": invalidState.Error()})
		return
	}

	var duplicate *apperrors.ErrDuplicateMapping
	if errors.As(err, &duplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": duplicate.Error()})
		return
	}

	var provErr *apperrors.ErrProvider
	if errors.As(err, &provErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":    provErr.Error(),
			"provider": provErr.Provider,
			"code":     string(provErr.Kind),
		})
		return
	}

	logger.Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
