package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/repository"
	"github.com/arcshop/podbridge/internal/service"
)

// DispatchResponse represents a dispatched order in API responses
type DispatchResponse struct {
	ID              string  `json:"id"`
	LocalOrderRef   string  `json:"local_order_ref"`
	Provider        string  `json:"provider"`
	State           string  `json:"state"`
	ExternalOrderID *string `json:"external_order_id,omitempty"`
	TrackingNumber  *string `json:"tracking_number,omitempty"`
	TrackingURL     *string `json:"tracking_url,omitempty"`
	ErrorMessage    *string `json:"error_message,omitempty"`
	LastSyncAt      *string `json:"last_sync_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toDispatchResponse(order *domain.DispatchedOrder) DispatchResponse {
	response := DispatchResponse{
		ID:              order.ID.String(),
		LocalOrderRef:   order.LocalOrderRef,
		Provider:        string(order.ProviderCode),
		State:           string(order.State),
		ExternalOrderID: order.ExternalOrderID,
		TrackingNumber:  order.TrackingNumber,
		TrackingURL:     order.TrackingURL,
		ErrorMessage:    order.ErrorMessage,
		CreatedAt:       order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:       order.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if order.LastSyncAt != nil {
		lastSync := order.LastSyncAt.Format("2006-01-02T15:04:05Z07:00")
		response.LastSyncAt = &lastSync
	}
	return response
}

// HandleCreateDispatches handles POST /v1/orders/:ref/dispatches
func HandleCreateDispatches(dispatch *service.DispatchService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderRef := c.Param("ref")
		if orderRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order ref"})
			return
		}

		created, err := dispatch.CreateForOrder(c.Request.Context(), orderRef)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]DispatchResponse, len(created))
		for i, order := range created {
			responses[i] = toDispatchResponse(order)
		}
		c.JSON(http.StatusCreated, gin.H{"dispatches": responses})
	}
}

// HandleGetDispatch handles GET /v1/dispatches/:id
func HandleGetDispatch(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispatch ID"})
			return
		}

		order, err := repos.DispatchedOrder.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, toDispatchResponse(order))
	}
}

// HandleListDispatches handles GET /v1/dispatches?state=
func HandleListDispatches(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := domain.DispatchState(c.Query("state"))
		if !state.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing state"})
			return
		}

		orders, err := repos.DispatchedOrder.ListByState(c.Request.Context(), state)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		responses := make([]DispatchResponse, len(orders))
		for i, order := range orders {
			responses[i] = toDispatchResponse(order)
		}
		c.JSON(http.StatusOK, gin.H{"dispatches": responses})
	}
}

// HandleSendDispatch handles POST /v1/dispatches/:id/send
func HandleSendDispatch(dispatch *service.DispatchService, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispatch ID"})
			return
		}

		if err := dispatch.Dispatch(c.Request.Context(), orderID); err != nil {
			respondError(c, logger, err)
			return
		}

		order, err := repos.DispatchedOrder.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toDispatchResponse(order))
	}
}

// HandleRetryDispatch handles POST /v1/dispatches/:id/retry
func HandleRetryDispatch(dispatch *service.DispatchService, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispatch ID"})
			return
		}

		if err := dispatch.Retry(c.Request.Context(), orderID); err != nil {
			respondError(c, logger, err)
			return
		}

		order, err := repos.DispatchedOrder.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toDispatchResponse(order))
	}
}

// HandlePollDispatch handles POST /v1/dispatches/:id/poll
func HandlePollDispatch(dispatch *service.DispatchService, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispatch ID"})
			return
		}

		if err := dispatch.PollStatus(c.Request.Context(), orderID); err != nil {
			respondError(c, logger, err)
			return
		}

		order, err := repos.DispatchedOrder.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toDispatchResponse(order))
	}
}
