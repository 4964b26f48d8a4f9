package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

func printifyTestClient(t *testing.T, baseURL string) *printifyClient {
	t.Helper()
	client, err := newPrintifyClient(config.ProviderCredential{
		Code:    domain.ProviderPrintify,
		APIKey:  "test-key",
		ShopID:  "shop-1",
		BaseURL: baseURL,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestPrintifyRequiresShopID(t *testing.T) {
	_, err := newPrintifyClient(config.ProviderCredential{
		Code:   domain.ProviderPrintify,
		APIKey: "test-key",
	}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shop ID is required")
}

func TestPrintifyListProductsPaginatesAndNormalizesPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/shops/shop-1/products.json", r.URL.Path)

		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{
				"current_page": 1, "last_page": 2,
				"data": [{
					"id": "prod-1", "title": "Classic Tee",
					"description": "Soft cotton tee",
					"images": [{"src": "https://img.example/tee.png"}],
					"variants": [
						{"id": 101, "sku": "TEE-S-BLK", "title": "S / Black", "price": 2599},
						{"id": 102, "sku": "TEE-M-BLK", "title": "M / Black", "price": 2750}
					]
				}]
			}`)
		case "2":
			fmt.Fprint(w, `{
				"current_page": 2, "last_page": 2,
				"data": [{
					"id": "prod-2", "title": "Mug",
					"variants": [{"id": 201, "sku": "MUG-11", "title": "11oz", "price": 1200}]
				}]
			}`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	client := printifyTestClient(t, server.URL)
	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	tee := products[0]
	assert.Equal(t, "prod-1", tee.ExternalID)
	assert.Equal(t, "Classic Tee", tee.Name)
	assert.Equal(t, "https://img.example/tee.png", tee.ThumbnailURL)
	require.Len(t, tee.Variants, 2)
	assert.Equal(t, "101", tee.Variants[0].ExternalID)
	assert.Equal(t, "S", tee.Variants[0].Size)
	assert.Equal(t, "Black", tee.Variants[0].Color)
	assert.Equal(t, "25.99", tee.Variants[0].Price)
	assert.Equal(t, "27.5", tee.Variants[1].Price)

	mug := products[1]
	require.Len(t, mug.Variants, 1)
	assert.Equal(t, "11oz", mug.Variants[0].Size)
	assert.Equal(t, "", mug.Variants[0].Color)
	assert.Equal(t, "12", mug.Variants[0].Price)
}

func TestPrintifyAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := printifyTestClient(t, server.URL)
	err := client.TestConnection(context.Background())
	require.Error(t, err)

	var provErr *apperrors.ErrProvider
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, apperrors.KindAuthFailed, provErr.Kind)
	assert.Contains(t, provErr.Message, "Invalid API key")
}

func TestPrintifyCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/shops/shop-1/orders.json", r.URL.Path)
		fmt.Fprint(w, `{"id": "ext-42"}`)
	}))
	defer server.Close()

	client := printifyTestClient(t, server.URL)
	id, err := client.CreateOrder(context.Background(), OrderPayload{
		Provider: domain.ProviderPrintify,
		Body:     map[string]string{"external_id": "SO-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ext-42", id)
}

func TestPrintifyCreateOrderRejectsMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := printifyTestClient(t, server.URL)
	_, err := client.CreateOrder(context.Background(), OrderPayload{Provider: domain.ProviderPrintify})
	require.Error(t, err)

	var provErr *apperrors.ErrProvider
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, apperrors.KindProviderRejected, provErr.Kind)
}

func TestPrintifyCreateOrderRejectsForeignPayload(t *testing.T) {
	client := printifyTestClient(t, "http://unused.invalid")
	_, err := client.CreateOrder(context.Background(), OrderPayload{Provider: domain.ProviderGelato})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be sent to printify")
}

func TestPrintifyGetOrderStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shops/shop-1/orders/ext-42.json", r.URL.Path)
		fmt.Fprint(w, `{
			"status": "shipped",
			"shipments": [{"carrier": "usps", "number": "TRACK123", "url": "https://track.example/TRACK123"}]
		}`)
	}))
	defer server.Close()

	client := printifyTestClient(t, server.URL)
	status, err := client.GetOrderStatus(context.Background(), "ext-42")
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentShipped, status.Status)
	assert.Equal(t, "TRACK123", status.TrackingNumber)
	assert.Equal(t, "https://track.example/TRACK123", status.TrackingURL)
}
