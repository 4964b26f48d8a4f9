// Package transform converts local orders into provider-specific order
// payloads, validating required fields before any network call is made.
package transform

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/provider"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

// Transformer builds provider order payloads from a local order, its
// product mappings, and a shipping address.
type Transformer struct {
	logger *zap.Logger
}

// NewTransformer creates a new order transformer
func NewTransformer(logger *zap.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Transform validates the order and builds the payload for the target
// provider. Lines mapped only to other providers are excluded; if no line
// maps to the target provider the transformation fails closed.
func (t *Transformer) Transform(order domain.LocalOrder, mappings []domain.ProductMapping, code domain.ProviderCode) (provider.OrderPayload, error) {
	if err := validateOrder(order); err != nil {
		return provider.OrderPayload{}, err
	}

	resolved, err := resolveLines(order, mappings, code)
	if err != nil {
		return provider.OrderPayload{}, err
	}

	var body any
	switch code {
	case domain.ProviderPrintify:
		body = buildPrintifyOrder(order, resolved)
	case domain.ProviderGelato:
		body = buildGelatoOrder(order, resolved)
	case domain.ProviderPrintful:
		body = buildPrintfulOrder(order, resolved)
	default:
		return provider.OrderPayload{}, fmt.Errorf("unsupported provider: %s", code)
	}

	t.logger.Info("Transformed order",
		zap.String("order_ref", order.Ref),
		zap.String("provider", string(code)),
		zap.Int("line_count", len(resolved)),
	)

	return provider.OrderPayload{Provider: code, Body: body}, nil
}

// resolvedLine pairs an order line with its mapping for the target provider.
type resolvedLine struct {
	line    domain.OrderLineItem
	mapping domain.ProductMapping
}

func resolveLines(order domain.LocalOrder, mappings []domain.ProductMapping, code domain.ProviderCode) ([]resolvedLine, error) {
	byProduct := make(map[string]domain.ProductMapping)
	for _, m := range mappings {
		if m.ProviderCode == code && m.IsActive {
			byProduct[m.LocalProductID] = m
		}
	}

	var resolved []resolvedLine
	for _, line := range order.Lines {
		mapping, ok := byProduct[line.LocalProductID]
		if !ok {
			// Mapped to a different provider (or not at all); that
			// provider's dispatched order covers it.
			continue
		}
		if line.Quantity <= 0 {
			return nil, &apperrors.ErrValidation{
				Field:   "quantity",
				Message: fmt.Sprintf("line for product %s has non-positive quantity", line.LocalProductID),
			}
		}
		resolved = append(resolved, resolvedLine{line: line, mapping: mapping})
	}

	if len(resolved) == 0 {
		return nil, &apperrors.ErrValidation{
			Field:   "line_items",
			Message: fmt.Sprintf("no %s mappings found in order lines", code),
		}
	}
	return resolved, nil
}

func validateOrder(order domain.LocalOrder) error {
	if len(order.Lines) == 0 {
		return &apperrors.ErrValidation{Field: "line_items", Message: "order has no lines"}
	}

	addr := order.Shipping
	switch {
	case addr.Street1 == "":
		return &apperrors.ErrValidation{Field: "street1", Message: "shipping address street is required"}
	case addr.City == "":
		return &apperrors.ErrValidation{Field: "city", Message: "shipping address city is required"}
	case addr.CountryCode == "":
		return &apperrors.ErrValidation{Field: "country_code", Message: "shipping address country is required"}
	case addr.Email == "":
		return &apperrors.ErrValidation{Field: "email", Message: "customer email is required"}
	}
	return nil
}

// splitName splits a recipient name on the first space. Multi-word last
// names survive intact; a single-word name leaves the last name empty.
// This is a known lossy heuristic carried over deliberately.
func splitName(name string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

func variantID(m domain.ProductMapping) string {
	if m.ExternalVariantID != nil {
		return *m.ExternalVariantID
	}
	return ""
}

// PrintifyOrder is the Printify order request shape.
type PrintifyOrder struct {
	ExternalID     string             `json:"external_id"`
	LineItems      []PrintifyLineItem `json:"line_items"`
	ShippingMethod int                `json:"shipping_method"`
	AddressTo      PrintifyAddress    `json:"address_to"`
}

type PrintifyLineItem struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

type PrintifyAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	City      string `json:"city"`
	StateCode string `json:"state_code"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

func buildPrintifyOrder(order domain.LocalOrder, lines []resolvedLine) PrintifyOrder {
	items := make([]PrintifyLineItem, 0, len(lines))
	for _, rl := range lines {
		items = append(items, PrintifyLineItem{
			ProductID: rl.mapping.ExternalProductID,
			VariantID: variantID(rl.mapping),
			Quantity:  rl.line.Quantity,
		})
	}

	first, last := splitName(order.Shipping.RecipientName)
	return PrintifyOrder{
		ExternalID:     order.Ref,
		LineItems:      items,
		ShippingMethod: 1, // default shipping method
		AddressTo: PrintifyAddress{
			FirstName: first,
			LastName:  last,
			Email:     order.Shipping.Email,
			Address1:  order.Shipping.Street1,
			Address2:  order.Shipping.Street2,
			City:      order.Shipping.City,
			StateCode: order.Shipping.StateCode,
			Zip:       order.Shipping.Zip,
			Country:   order.Shipping.CountryCode,
		},
	}
}

// GelatoOrder is the Gelato order request shape. Gelato nests the shipping
// block in a shippingAddress object with camelCase keys.
type GelatoOrder struct {
	OrderReferenceID string         `json:"orderReferenceId"`
	OrderType        string         `json:"orderType"`
	CustomerEmail    string         `json:"customerEmail"`
	Items            []GelatoItem   `json:"items"`
	ShippingAddress  GelatoAddress  `json:"shippingAddress"`
}

type GelatoItem struct {
	ProductUID string `json:"product_uid"`
	VariantUID string `json:"variant_uid"`
	Quantity   int    `json:"quantity"`
}

type GelatoAddress struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	PostCode     string `json:"postCode"`
	Country      string `json:"country"`
	Email        string `json:"email"`
}

func buildGelatoOrder(order domain.LocalOrder, lines []resolvedLine) GelatoOrder {
	items := make([]GelatoItem, 0, len(lines))
	for _, rl := range lines {
		items = append(items, GelatoItem{
			ProductUID: rl.mapping.ExternalProductID,
			VariantUID: variantID(rl.mapping),
			Quantity:   rl.line.Quantity,
		})
	}

	first, last := splitName(order.Shipping.RecipientName)
	return GelatoOrder{
		OrderReferenceID: order.Ref,
		OrderType:        "order",
		CustomerEmail:    order.Shipping.Email,
		Items:            items,
		ShippingAddress: GelatoAddress{
			FirstName:    first,
			LastName:     last,
			AddressLine1: order.Shipping.Street1,
			AddressLine2: order.Shipping.Street2,
			City:         order.Shipping.City,
			PostCode:     order.Shipping.Zip,
			Country:      order.Shipping.CountryCode,
			Email:        order.Shipping.Email,
		},
	}
}

// PrintfulOrder is the Printful order request shape. Printful identifies
// lines by sync variant alone and takes the recipient name unsplit.
type PrintfulOrder struct {
	ExternalID string            `json:"external_id"`
	Recipient  PrintfulRecipient `json:"recipient"`
	Items      []PrintfulItem    `json:"items"`
}

type PrintfulItem struct {
	SyncVariantID string `json:"sync_variant_id"`
	Quantity      int    `json:"quantity"`
}

type PrintfulRecipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
	Email       string `json:"email"`
}

func buildPrintfulOrder(order domain.LocalOrder, lines []resolvedLine) PrintfulOrder {
	items := make([]PrintfulItem, 0, len(lines))
	for _, rl := range lines {
		items = append(items, PrintfulItem{
			SyncVariantID: variantID(rl.mapping),
			Quantity:      rl.line.Quantity,
		})
	}

	return PrintfulOrder{
		ExternalID: order.Ref,
		Items:      items,
		Recipient: PrintfulRecipient{
			Name:        order.Shipping.RecipientName,
			Address1:    order.Shipping.Street1,
			Address2:    order.Shipping.Street2,
			City:        order.Shipping.City,
			StateCode:   order.Shipping.StateCode,
			CountryCode: order.Shipping.CountryCode,
			Zip:         order.Shipping.Zip,
			Email:       order.Shipping.Email,
		},
	}
}
