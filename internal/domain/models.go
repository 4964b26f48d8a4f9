package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PodProduct is the local mirror of a provider catalog product
type PodProduct struct {
	ID           uuid.UUID
	ProviderCode ProviderCode
	ExternalID   string
	Name         string
	Description  string
	SKU          string
	ThumbnailURL string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PodVariant is the local mirror of a provider catalog variant. Price is
// stored in major currency units so values are comparable across providers.
type PodVariant struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	ExternalID string
	SKU        string
	Size       string
	Color      string
	Price      decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductMapping associates one local product with one provider catalog
// entry. At most one mapping may exist per (local product, provider) pair.
type ProductMapping struct {
	ID                uuid.UUID
	LocalProductID    string
	ProviderCode      ProviderCode
	ExternalProductID string
	ExternalVariantID *string
	IsActive          bool
	LastSyncAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderLineItem is one line of a local order as seen by the transformer.
type OrderLineItem struct {
	LocalProductID string
	Title          string
	Quantity       int
}

// ShippingAddress holds the destination fields read from the local order.
// Street1, City, CountryCode and Email are mandatory before dispatch.
type ShippingAddress struct {
	RecipientName string
	Email         string
	Street1       string
	Street2       string
	City          string
	StateCode     string
	Zip           string
	CountryCode   string
}

// LocalOrder is the read-only view of a confirmed commerce order consumed
// by the dispatch pipeline.
type LocalOrder struct {
	Ref      string
	Lines    []OrderLineItem
	Shipping ShippingAddress
}

// DispatchedOrder is the per-(local order, provider) unit of fulfillment
// tracked through its lifecycle. All state mutation goes through the
// dispatch service.
type DispatchedOrder struct {
	ID              uuid.UUID
	LocalOrderRef   string
	ProviderCode    ProviderCode
	ExternalOrderID *string
	State           DispatchState
	TrackingNumber  *string
	TrackingURL     *string
	ErrorMessage    *string
	LastSyncAt      *time.Time
	RawPayload      []byte // provider response stored verbatim
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ErrorRecord is one append-only audit entry for a provider failure.
type ErrorRecord struct {
	ID           uuid.UUID
	ProviderCode ProviderCode
	Message      string
	Code         *string
	Endpoint     string
	OccurredAt   time.Time
}

// Operator is a back-office user authenticated by API key.
type Operator struct {
	ID         uuid.UUID
	Name       string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
