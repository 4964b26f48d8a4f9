package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

// normalizeTransportError maps connection-level failures (timeout, DNS,
// refused) into the shared error taxonomy. A timed-out call is treated
// identically to any other transport failure by callers.
func normalizeTransportError(code domain.ProviderCode, err error, timeout time.Duration) *apperrors.ErrProvider {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &apperrors.ErrProvider{
			Provider: string(code),
			Kind:     apperrors.KindTimeout,
			Message:  fmt.Sprintf("connection timeout: request took longer than %s", timeout),
		}
	}
	return &apperrors.ErrProvider{
		Provider: string(code),
		Kind:     apperrors.KindUnreachable,
		Message:  "connection failed: unable to reach the server",
	}
}

// normalizeStatus maps a non-2xx HTTP status plus response body into the
// shared error taxonomy. The mapping is identical across all providers.
func normalizeStatus(code domain.ProviderCode, status int, body []byte) *apperrors.ErrProvider {
	switch {
	case status == 401:
		return &apperrors.ErrProvider{
			Provider: string(code),
			Kind:     apperrors.KindAuthFailed,
			Message:  fmt.Sprintf("connection failed (%d): Invalid API key", status),
		}
	case status == 403:
		return &apperrors.ErrProvider{
			Provider: string(code),
			Kind:     apperrors.KindForbidden,
			Message:  fmt.Sprintf("connection failed (%d): Access forbidden", status),
		}
	case status == 404:
		return &apperrors.ErrProvider{
			Provider: string(code),
			Kind:     apperrors.KindNotFound,
			Message:  fmt.Sprintf("connection failed (%d): Endpoint not found", status),
		}
	case status >= 500:
		return &apperrors.ErrProvider{
			Provider: string(code),
			Kind:     apperrors.KindProviderServerError,
			Message:  fmt.Sprintf("connection failed (%d): Server error - %s", status, parseErrorBody(body)),
		}
	default:
		return &apperrors.ErrProvider{
			Provider: string(code),
			Kind:     apperrors.KindProviderRejected,
			Message:  fmt.Sprintf("connection failed (%d): %s", status, parseErrorBody(body)),
		}
	}
}

// parseErrorBody extracts a human-readable message from a provider error
// payload, trying the keys error, message and error_message before falling
// back to the raw response text.
func parseErrorBody(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "no details provided"
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return raw
	}

	for _, key := range []string{"error", "message", "error_message"} {
		if msg, ok := payload[key].(string); ok && msg != "" {
			return msg
		}
	}
	return raw
}

// mapFulfillment matches a provider's free-text order status against the
// fixed set of normalized fulfillment statuses.
func mapFulfillment(status string) domain.FulfillmentStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "delivered":
		return domain.FulfillmentDelivered
	case "shipped", "completed", "fulfilled":
		return domain.FulfillmentShipped
	case "in_production", "in-production", "inprocess", "printing", "on_hold", "onhold", "pending", "draft":
		return domain.FulfillmentInProduction
	default:
		return domain.FulfillmentUnknown
	}
}

// priceString renders a provider price value as a canonical decimal string
// in major units. Providers send prices as JSON numbers or strings; values
// that do not parse are passed through for the caller to reject.
func priceString(value any) string {
	switch v := value.(type) {
	case nil:
		return "0"
	case string:
		return v
	case float64:
		return decimal.NewFromFloat(v).String()
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
