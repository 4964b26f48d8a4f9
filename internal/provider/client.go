package provider

import (
	"context"

	"github.com/arcshop/podbridge/internal/domain"
)

// Product is a provider catalog product normalized to the internal shape.
type Product struct {
	ExternalID   string
	Name         string
	Description  string
	SKU          string
	ThumbnailURL string
	Variants     []Variant
}

// Variant is a normalized catalog variant. Price is a decimal string in
// major currency units (Printify cents are divided by 100, Gelato's nested
// amount object is flattened) so values are comparable across providers.
type Variant struct {
	ExternalID string
	SKU        string
	Size       string
	Color      string
	Price      string
}

// OrderPayload is an already-transformed order request. It is opaque to
// callers and consumed only by the client matching its provider code.
type OrderPayload struct {
	Provider domain.ProviderCode
	Body     any
}

// OrderStatus is the normalized result of a provider status lookup.
type OrderStatus struct {
	Status         domain.FulfillmentStatus
	TrackingNumber string
	TrackingURL    string
}

// Client is the uniform capability set over the heterogeneous provider
// REST APIs. Implementations are pure functions of the credential supplied
// at construction; they hold no mutable state across calls. Failures are
// always returned as normalized *errors.ErrProvider values, never raw
// transport errors.
type Client interface {
	Code() domain.ProviderCode
	TestConnection(ctx context.Context) error
	ListProducts(ctx context.Context) ([]Product, error)
	CreateOrder(ctx context.Context, payload OrderPayload) (string, error)
	GetOrderStatus(ctx context.Context, externalOrderID string) (OrderStatus, error)
}
