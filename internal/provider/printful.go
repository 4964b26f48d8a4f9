package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

const printfulDefaultBaseURL = "https://api.printful.com/"

// printfulClient wraps the Printful REST API. Responses nest payloads
// under a result envelope.
type printfulClient struct {
	tr     *transport
	logger *zap.Logger
}

func newPrintfulClient(cred config.ProviderCredential, logger *zap.Logger) (*printfulClient, error) {
	baseURL := cred.BaseURL
	if baseURL == "" {
		baseURL = printfulDefaultBaseURL
	}
	apiKey := cred.APIKey
	headers := func() map[string]string {
		return map[string]string{"Authorization": "Bearer " + apiKey}
	}
	return &printfulClient{
		tr:     newTransport(domain.ProviderPrintful, baseURL, headers, logger),
		logger: logger,
	}, nil
}

func (c *printfulClient) Code() domain.ProviderCode {
	return domain.ProviderPrintful
}

// TestConnection issues an authenticated store listing.
func (c *printfulClient) TestConnection(ctx context.Context) error {
	_, err := c.tr.get(ctx, "stores")
	return err
}

type printfulProductList struct {
	Result []printfulProduct `json:"result"`
}

type printfulProduct struct {
	ID          json.Number       `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Thumbnail   string            `json:"thumbnail_url"`
	Variants    []printfulVariant `json:"variants"`
}

type printfulVariant struct {
	ID    json.Number `json:"id"`
	SKU   string      `json:"sku"`
	Size  string      `json:"size"`
	Color string      `json:"color"`
	Price any         `json:"price"`
}

// ListProducts fetches the Printful catalog. Printful has no product-level
// SKU; SKUs live per variant.
func (c *printfulClient) ListProducts(ctx context.Context) ([]Product, error) {
	body, err := c.tr.getCatalog(ctx, "products")
	if err != nil {
		return nil, err
	}

	var resp printfulProductList
	decode(body, &resp)

	products := make([]Product, 0, len(resp.Result))
	for _, item := range resp.Result {
		product := Product{
			ExternalID:   item.ID.String(),
			Name:         item.Name,
			Description:  item.Description,
			SKU:          "",
			ThumbnailURL: item.Thumbnail,
		}
		for _, v := range item.Variants {
			product.Variants = append(product.Variants, Variant{
				ExternalID: v.ID.String(),
				SKU:        v.SKU,
				Size:       v.Size,
				Color:      v.Color,
				Price:      priceString(v.Price),
			})
		}
		products = append(products, product)
	}

	c.logger.Info("Fetched products from Printful", zap.Int("count", len(products)))
	return products, nil
}

type printfulOrderResponse struct {
	Result struct {
		ID json.Number `json:"id"`
	} `json:"result"`
}

func (c *printfulClient) CreateOrder(ctx context.Context, payload OrderPayload) (string, error) {
	if payload.Provider != domain.ProviderPrintful {
		return "", fmt.Errorf("payload built for provider %s cannot be sent to printful", payload.Provider)
	}

	body, err := c.tr.post(ctx, "orders", payload.Body)
	if err != nil {
		return "", err
	}

	var resp printfulOrderResponse
	decode(body, &resp)
	if resp.Result.ID.String() == "" {
		return "", &apperrors.ErrProvider{
			Provider: string(domain.ProviderPrintful),
			Kind:     apperrors.KindProviderRejected,
			Message:  "order was accepted but the response carried no order ID",
		}
	}
	return resp.Result.ID.String(), nil
}

type printfulOrderStatus struct {
	Result struct {
		Status    string `json:"status"`
		Shipments []struct {
			TrackingNumber string `json:"tracking_number"`
			TrackingURL    string `json:"tracking_url"`
		} `json:"shipments"`
	} `json:"result"`
}

func (c *printfulClient) GetOrderStatus(ctx context.Context, externalOrderID string) (OrderStatus, error) {
	body, err := c.tr.get(ctx, "orders/"+externalOrderID)
	if err != nil {
		return OrderStatus{}, err
	}

	var resp printfulOrderStatus
	decode(body, &resp)

	status := OrderStatus{Status: mapFulfillment(resp.Result.Status)}
	if len(resp.Result.Shipments) > 0 {
		status.TrackingNumber = resp.Result.Shipments[0].TrackingNumber
		status.TrackingURL = resp.Result.Shipments[0].TrackingURL
	}
	return status, nil
}
