package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/repository"
)

const defaultErrorListLimit = 50

// ErrorRecordResponse represents a provider failure audit entry
type ErrorRecordResponse struct {
	ID         string  `json:"id"`
	Provider   string  `json:"provider"`
	Message    string  `json:"message"`
	Code       *string `json:"code,omitempty"`
	Endpoint   string  `json:"endpoint"`
	OccurredAt string  `json:"occurred_at"`
}

func toErrorRecordResponse(record *domain.ErrorRecord) ErrorRecordResponse {
	return ErrorRecordResponse{
		ID:         record.ID.String(),
		Provider:   string(record.ProviderCode),
		Message:    record.Message,
		Code:       record.Code,
		Endpoint:   record.Endpoint,
		OccurredAt: record.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// HandleListErrors handles GET /v1/errors?limit=
func HandleListErrors(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultErrorListLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}

		records, err := repos.ErrorRecord.List(c.Request.Context(), limit)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]ErrorRecordResponse, len(records))
		for i, record := range records {
			responses[i] = toErrorRecordResponse(record)
		}
		c.JSON(http.StatusOK, gin.H{"errors": responses})
	}
}
