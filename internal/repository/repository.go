// Package repository defines the persistence contracts consumed by the
// dispatch and catalog services.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arcshop/podbridge/internal/domain"
)

// DispatchedOrderRepository persists dispatch lifecycle state. State
// mutation goes through the dispatch service only.
type DispatchedOrderRepository interface {
	Create(ctx context.Context, order *domain.DispatchedOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.DispatchedOrder, error)
	GetByOrderAndProvider(ctx context.Context, orderRef string, code domain.ProviderCode) (*domain.DispatchedOrder, error)
	ListByState(ctx context.Context, state domain.DispatchState) ([]*domain.DispatchedOrder, error)
	// ListStalePending returns pending orders whose last update is older
	// than the cutoff; used by the startup sweep.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]*domain.DispatchedOrder, error)
	// ClaimPending atomically moves a draft order to pending. Returns
	// false when the order was not in draft, guarding against concurrent
	// dispatch of the same order.
	ClaimPending(ctx context.Context, id uuid.UUID) (bool, error)
	Update(ctx context.Context, order *domain.DispatchedOrder) error
}

// ProductMappingRepository persists local-product-to-provider mappings.
type ProductMappingRepository interface {
	Create(ctx context.Context, mapping *domain.ProductMapping) error
	GetByProductAndProvider(ctx context.Context, localProductID string, code domain.ProviderCode) (*domain.ProductMapping, error)
	// ListForProducts returns the active mappings for the given local
	// products across all providers.
	ListForProducts(ctx context.Context, localProductIDs []string) ([]*domain.ProductMapping, error)
	List(ctx context.Context) ([]*domain.ProductMapping, error)
}

// CatalogMirrorRepository persists local mirrors of provider catalogs.
type CatalogMirrorRepository interface {
	// UpsertProduct creates or updates a mirror keyed by
	// (provider_code, external_id) and reports the mirror row ID.
	UpsertProduct(ctx context.Context, product *domain.PodProduct) error
	// UpsertVariant creates or updates a variant keyed by
	// (product mirror, external_variant_id).
	UpsertVariant(ctx context.Context, variant *domain.PodVariant) error
	GetProduct(ctx context.Context, code domain.ProviderCode, externalID string) (*domain.PodProduct, error)
}

// ErrorRecordRepository is the append-only failure audit trail.
type ErrorRecordRepository interface {
	Create(ctx context.Context, record *domain.ErrorRecord) error
	List(ctx context.Context, limit int) ([]*domain.ErrorRecord, error)
}

// LocalOrderRepository is the read-only view over the host commerce
// system's order, line and customer records.
type LocalOrderRepository interface {
	GetByRef(ctx context.Context, ref string) (*domain.LocalOrder, error)
}

// OperatorRepository persists back-office operators and their API keys.
type OperatorRepository interface {
	Create(ctx context.Context, operator *domain.Operator) error
	ListActive(ctx context.Context) ([]*domain.Operator, error)
}

// Repositories bundles all repositories for injection into services.
type Repositories struct {
	DispatchedOrder DispatchedOrderRepository
	ProductMapping  ProductMappingRepository
	CatalogMirror   CatalogMirrorRepository
	ErrorRecord     ErrorRecordRepository
	LocalOrder      LocalOrderRepository
	Operator        OperatorRepository
}
