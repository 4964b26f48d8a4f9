package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

const gelatoDefaultBaseURL = "https://api.gelato.com/v1/"

// gelatoClient wraps the Gelato REST API. Gelato authenticates with an
// X-API-KEY header rather than a bearer token.
type gelatoClient struct {
	tr     *transport
	logger *zap.Logger
}

func newGelatoClient(cred config.ProviderCredential, logger *zap.Logger) (*gelatoClient, error) {
	baseURL := cred.BaseURL
	if baseURL == "" {
		baseURL = gelatoDefaultBaseURL
	}
	apiKey := cred.APIKey
	headers := func() map[string]string {
		return map[string]string{"X-API-KEY": apiKey}
	}
	return &gelatoClient{
		tr:     newTransport(domain.ProviderGelato, baseURL, headers, logger),
		logger: logger,
	}, nil
}

func (c *gelatoClient) Code() domain.ProviderCode {
	return domain.ProviderGelato
}

// TestConnection issues an authenticated ping.
func (c *gelatoClient) TestConnection(ctx context.Context) error {
	_, err := c.tr.get(ctx, "ping")
	return err
}

type gelatoProductList struct {
	Products []gelatoProduct `json:"products"`
}

type gelatoProduct struct {
	UID          string          `json:"uid"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	SKU          string          `json:"sku"`
	PreviewURL   string          `json:"previewUrl"`
	Variants     []gelatoVariant `json:"variants"`
}

type gelatoVariant struct {
	UID   string `json:"uid"`
	SKU   string `json:"sku"`
	Size  string `json:"size"`
	Color string `json:"color"`
	Price struct {
		Amount   any    `json:"amount"`
		Currency string `json:"currency"`
	} `json:"price"`
}

// ListProducts fetches the Gelato catalog. Gelato nests prices in an
// amount object, which is flattened to a major-unit decimal string.
func (c *gelatoClient) ListProducts(ctx context.Context) ([]Product, error) {
	body, err := c.tr.getCatalog(ctx, "products")
	if err != nil {
		return nil, err
	}

	var resp gelatoProductList
	decode(body, &resp)

	products := make([]Product, 0, len(resp.Products))
	for _, item := range resp.Products {
		product := Product{
			ExternalID:   item.UID,
			Name:         item.Title,
			Description:  item.Description,
			SKU:          item.SKU,
			ThumbnailURL: item.PreviewURL,
		}
		for _, v := range item.Variants {
			product.Variants = append(product.Variants, Variant{
				ExternalID: v.UID,
				SKU:        v.SKU,
				Size:       v.Size,
				Color:      v.Color,
				Price:      priceString(v.Price.Amount),
			})
		}
		products = append(products, product)
	}

	c.logger.Info("Fetched products from Gelato", zap.Int("count", len(products)))
	return products, nil
}

type gelatoOrderResponse struct {
	ID string `json:"id"`
}

func (c *gelatoClient) CreateOrder(ctx context.Context, payload OrderPayload) (string, error) {
	if payload.Provider != domain.ProviderGelato {
		return "", fmt.Errorf("payload built for provider %s cannot be sent to gelato", payload.Provider)
	}

	body, err := c.tr.post(ctx, "orders", payload.Body)
	if err != nil {
		return "", err
	}

	var resp gelatoOrderResponse
	decode(body, &resp)
	if resp.ID == "" {
		return "", &apperrors.ErrProvider{
			Provider: string(domain.ProviderGelato),
			Kind:     apperrors.KindProviderRejected,
			Message:  "order was accepted but the response carried no order ID",
		}
	}
	return resp.ID, nil
}

type gelatoOrderStatus struct {
	FulfillmentStatus string `json:"fulfillmentStatus"`
	Status            string `json:"status"`
	TrackingCodes     []struct {
		Code string `json:"code"`
		URL  string `json:"url"`
	} `json:"trackingCodes"`
}

func (c *gelatoClient) GetOrderStatus(ctx context.Context, externalOrderID string) (OrderStatus, error) {
	body, err := c.tr.get(ctx, "orders/"+externalOrderID)
	if err != nil {
		return OrderStatus{}, err
	}

	var resp gelatoOrderStatus
	decode(body, &resp)

	rawStatus := resp.FulfillmentStatus
	if rawStatus == "" {
		rawStatus = resp.Status
	}

	status := OrderStatus{Status: mapFulfillment(rawStatus)}
	if len(resp.TrackingCodes) > 0 {
		status.TrackingNumber = resp.TrackingCodes[0].Code
		status.TrackingURL = resp.TrackingCodes[0].URL
	}
	return status, nil
}
