package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

const printifyDefaultBaseURL = "https://api.printify.com/v1/"

// printifyClient wraps the Printify REST API. Printify scopes catalog and
// order endpoints to a shop, so the credential must carry a shop ID.
type printifyClient struct {
	tr     *transport
	shopID string
	logger *zap.Logger
}

func newPrintifyClient(cred config.ProviderCredential, logger *zap.Logger) (*printifyClient, error) {
	if cred.ShopID == "" {
		return nil, fmt.Errorf("shop ID is required for Printify")
	}
	baseURL := cred.BaseURL
	if baseURL == "" {
		baseURL = printifyDefaultBaseURL
	}
	apiKey := cred.APIKey
	headers := func() map[string]string {
		return map[string]string{"Authorization": "Bearer " + apiKey}
	}
	return &printifyClient{
		tr:     newTransport(domain.ProviderPrintify, baseURL, headers, logger),
		shopID: cred.ShopID,
		logger: logger,
	}, nil
}

func (c *printifyClient) Code() domain.ProviderCode {
	return domain.ProviderPrintify
}

// TestConnection issues a lightweight authenticated shop listing.
func (c *printifyClient) TestConnection(ctx context.Context) error {
	_, err := c.tr.get(ctx, "shops.json")
	return err
}

type printifyProductPage struct {
	CurrentPage int               `json:"current_page"`
	LastPage    int               `json:"last_page"`
	Data        []printifyProduct `json:"data"`
}

type printifyProduct struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Images      []struct {
		Src string `json:"src"`
	} `json:"images"`
	Variants []printifyVariant `json:"variants"`
}

type printifyVariant struct {
	ID    int64  `json:"id"`
	SKU   string `json:"sku"`
	Title string `json:"title"`
	Price int64  `json:"price"` // integer cents
}

// ListProducts fetches the shop catalog, exhausting pagination. Printify
// prices arrive as integer cents and are normalized to major units.
func (c *printifyClient) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product

	for page := 1; ; page++ {
		body, err := c.tr.getCatalog(ctx, fmt.Sprintf("shops/%s/products.json?page=%d", c.shopID, page))
		if err != nil {
			return nil, err
		}

		var resp printifyProductPage
		decode(body, &resp)

		for _, item := range resp.Data {
			products = append(products, normalizePrintifyProduct(item))
		}

		if len(resp.Data) == 0 || resp.LastPage == 0 || page >= resp.LastPage {
			break
		}
	}

	c.logger.Info("Fetched products from Printify", zap.Int("count", len(products)))
	return products, nil
}

func normalizePrintifyProduct(item printifyProduct) Product {
	product := Product{
		ExternalID:  item.ID,
		Name:        item.Title,
		Description: item.Description,
		// Printify has no product-level SKU; SKUs live per variant.
		SKU: "",
	}
	if len(item.Images) > 0 {
		product.ThumbnailURL = item.Images[0].Src
	}
	for _, v := range item.Variants {
		size, color := splitVariantTitle(v.Title)
		product.Variants = append(product.Variants, Variant{
			ExternalID: fmt.Sprintf("%d", v.ID),
			SKU:        v.SKU,
			Size:       size,
			Color:      color,
			Price:      decimal.NewFromInt(v.Price).Div(decimal.NewFromInt(100)).String(),
		})
	}
	return product
}

// splitVariantTitle parses Printify's "Size / Color" variant titles.
func splitVariantTitle(title string) (size, color string) {
	parts := strings.SplitN(title, " / ", 2)
	size = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		color = strings.TrimSpace(parts[1])
	}
	return size, color
}

type printifyOrderResponse struct {
	ID string `json:"id"`
}

func (c *printifyClient) CreateOrder(ctx context.Context, payload OrderPayload) (string, error) {
	if payload.Provider != domain.ProviderPrintify {
		return "", fmt.Errorf("payload built for provider %s cannot be sent to printify", payload.Provider)
	}

	body, err := c.tr.post(ctx, fmt.Sprintf("shops/%s/orders.json", c.shopID), payload.Body)
	if err != nil {
		return "", err
	}

	var resp printifyOrderResponse
	decode(body, &resp)
	if resp.ID == "" {
		return "", &apperrors.ErrProvider{
			Provider: string(domain.ProviderPrintify),
			Kind:     apperrors.KindProviderRejected,
			Message:  "order was accepted but the response carried no order ID",
		}
	}
	return resp.ID, nil
}

type printifyOrderStatus struct {
	Status    string `json:"status"`
	Shipments []struct {
		Carrier string `json:"carrier"`
		Number  string `json:"number"`
		URL     string `json:"url"`
	} `json:"shipments"`
}

func (c *printifyClient) GetOrderStatus(ctx context.Context, externalOrderID string) (OrderStatus, error) {
	body, err := c.tr.get(ctx, fmt.Sprintf("shops/%s/orders/%s.json", c.shopID, externalOrderID))
	if err != nil {
		return OrderStatus{}, err
	}

	var resp printifyOrderStatus
	decode(body, &resp)

	status := OrderStatus{Status: mapFulfillment(resp.Status)}
	if len(resp.Shipments) > 0 {
		status.TrackingNumber = resp.Shipments[0].Number
		status.TrackingURL = resp.Shipments[0].URL
	}
	return status, nil
}
