package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/provider"
	"github.com/arcshop/podbridge/internal/repository"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

// In-memory repository fakes backing the service tests.

type fakeDispatchedOrderRepo struct {
	orders map[uuid.UUID]*domain.DispatchedOrder
}

func newFakeDispatchedOrderRepo() *fakeDispatchedOrderRepo {
	return &fakeDispatchedOrderRepo{orders: make(map[uuid.UUID]*domain.DispatchedOrder)}
}

func (r *fakeDispatchedOrderRepo) Create(ctx context.Context, order *domain.DispatchedOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = order
	return nil
}

func (r *fakeDispatchedOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.DispatchedOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "dispatched order", ID: id.String()}
	}
	return order, nil
}

func (r *fakeDispatchedOrderRepo) GetByOrderAndProvider(ctx context.Context, orderRef string, code domain.ProviderCode) (*domain.DispatchedOrder, error) {
	for _, order := range r.orders {
		if order.LocalOrderRef == orderRef && order.ProviderCode == code {
			return order, nil
		}
	}
	return nil, &apperrors.ErrNotFound{Resource: "dispatched order", ID: orderRef}
}

func (r *fakeDispatchedOrderRepo) ListByState(ctx context.Context, state domain.DispatchState) ([]*domain.DispatchedOrder, error) {
	var result []*domain.DispatchedOrder
	for _, order := range r.orders {
		if order.State == state {
			result = append(result, order)
		}
	}
	return result, nil
}

func (r *fakeDispatchedOrderRepo) ListStalePending(ctx context.Context, cutoff time.Time) ([]*domain.DispatchedOrder, error) {
	var result []*domain.DispatchedOrder
	for _, order := range r.orders {
		if order.State == domain.StatePending && order.UpdatedAt.Before(cutoff) {
			result = append(result, order)
		}
	}
	return result, nil
}

func (r *fakeDispatchedOrderRepo) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	order, ok := r.orders[id]
	if !ok || order.State != domain.StateDraft {
		return false, nil
	}
	order.State = domain.StatePending
	order.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeDispatchedOrderRepo) Update(ctx context.Context, order *domain.DispatchedOrder) error {
	if _, ok := r.orders[order.ID]; !ok {
		return &apperrors.ErrNotFound{Resource: "dispatched order", ID: order.ID.String()}
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = order
	return nil
}

type fakeProductMappingRepo struct {
	mappings []*domain.ProductMapping
}

func (r *fakeProductMappingRepo) Create(ctx context.Context, mapping *domain.ProductMapping) error {
	for _, m := range r.mappings {
		if m.LocalProductID == mapping.LocalProductID && m.ProviderCode == mapping.ProviderCode {
			return &apperrors.ErrDuplicateMapping{
				LocalProductID: mapping.LocalProductID,
				Provider:       string(mapping.ProviderCode),
			}
		}
	}
	if mapping.ID == uuid.Nil {
		mapping.ID = uuid.New()
	}
	r.mappings = append(r.mappings, mapping)
	return nil
}

func (r *fakeProductMappingRepo) GetByProductAndProvider(ctx context.Context, localProductID string, code domain.ProviderCode) (*domain.ProductMapping, error) {
	for _, m := range r.mappings {
		if m.LocalProductID == localProductID && m.ProviderCode == code {
			return m, nil
		}
	}
	return nil, &apperrors.ErrNotFound{Resource: "product mapping", ID: localProductID}
}

func (r *fakeProductMappingRepo) ListForProducts(ctx context.Context, localProductIDs []string) ([]*domain.ProductMapping, error) {
	wanted := make(map[string]bool, len(localProductIDs))
	for _, id := range localProductIDs {
		wanted[id] = true
	}
	var result []*domain.ProductMapping
	for _, m := range r.mappings {
		if wanted[m.LocalProductID] && m.IsActive {
			result = append(result, m)
		}
	}
	return result, nil
}

func (r *fakeProductMappingRepo) List(ctx context.Context) ([]*domain.ProductMapping, error) {
	return r.mappings, nil
}

type fakeCatalogMirrorRepo struct {
	products map[string]*domain.PodProduct
	variants map[string]*domain.PodVariant
}

func newFakeCatalogMirrorRepo() *fakeCatalogMirrorRepo {
	return &fakeCatalogMirrorRepo{
		products: make(map[string]*domain.PodProduct),
		variants: make(map[string]*domain.PodVariant),
	}
}

func (r *fakeCatalogMirrorRepo) UpsertProduct(ctx context.Context, product *domain.PodProduct) error {
	key := string(product.ProviderCode) + "/" + product.ExternalID
	if existing, ok := r.products[key]; ok {
		product.ID = existing.ID
	} else if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[key] = product
	return nil
}

func (r *fakeCatalogMirrorRepo) UpsertVariant(ctx context.Context, variant *domain.PodVariant) error {
	key := variant.ProductID.String() + "/" + variant.ExternalID
	if existing, ok := r.variants[key]; ok {
		variant.ID = existing.ID
	} else if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	r.variants[key] = variant
	return nil
}

func (r *fakeCatalogMirrorRepo) GetProduct(ctx context.Context, code domain.ProviderCode, externalID string) (*domain.PodProduct, error) {
	product, ok := r.products[string(code)+"/"+externalID]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "pod product", ID: externalID}
	}
	return product, nil
}

type fakeErrorRecordRepo struct {
	records []*domain.ErrorRecord
}

func (r *fakeErrorRecordRepo) Create(ctx context.Context, record *domain.ErrorRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeErrorRecordRepo) List(ctx context.Context, limit int) ([]*domain.ErrorRecord, error) {
	if limit > len(r.records) {
		limit = len(r.records)
	}
	return r.records[:limit], nil
}

type fakeLocalOrderRepo struct {
	orders map[string]*domain.LocalOrder
}

func (r *fakeLocalOrderRepo) GetByRef(ctx context.Context, ref string) (*domain.LocalOrder, error) {
	order, ok := r.orders[ref]
	if !ok {
		return nil, &apperrors.ErrNotFound{Resource: "sale order", ID: ref}
	}
	return order, nil
}

// stubClient is a scriptable provider.Client double.
type stubClient struct {
	code             domain.ProviderCode
	testConnectionFn func(ctx context.Context) error
	listProductsFn   func(ctx context.Context) ([]provider.Product, error)
	createOrderFn    func(ctx context.Context, payload provider.OrderPayload) (string, error)
	getStatusFn      func(ctx context.Context, externalOrderID string) (provider.OrderStatus, error)

	createCalls int
	statusCalls int
}

func (c *stubClient) Code() domain.ProviderCode { return c.code }

func (c *stubClient) TestConnection(ctx context.Context) error {
	if c.testConnectionFn == nil {
		return nil
	}
	return c.testConnectionFn(ctx)
}

func (c *stubClient) ListProducts(ctx context.Context) ([]provider.Product, error) {
	if c.listProductsFn == nil {
		return nil, nil
	}
	return c.listProductsFn(ctx)
}

func (c *stubClient) CreateOrder(ctx context.Context, payload provider.OrderPayload) (string, error) {
	c.createCalls++
	if c.createOrderFn == nil {
		return "ext-1", nil
	}
	return c.createOrderFn(ctx, payload)
}

func (c *stubClient) GetOrderStatus(ctx context.Context, externalOrderID string) (provider.OrderStatus, error) {
	c.statusCalls++
	if c.getStatusFn == nil {
		return provider.OrderStatus{Status: domain.FulfillmentInProduction}, nil
	}
	return c.getStatusFn(ctx, externalOrderID)
}

// testHarness bundles fakes, a stub factory and both services.
type testHarness struct {
	orders   *fakeDispatchedOrderRepo
	mappings *fakeProductMappingRepo
	mirrors  *fakeCatalogMirrorRepo
	errs     *fakeErrorRecordRepo
	local    *fakeLocalOrderRepo
	clients  map[domain.ProviderCode]*stubClient
	dispatch *DispatchService
	catalog  *CatalogService
}

func newTestHarness() *testHarness {
	h := &testHarness{
		orders:   newFakeDispatchedOrderRepo(),
		mappings: &fakeProductMappingRepo{},
		mirrors:  newFakeCatalogMirrorRepo(),
		errs:     &fakeErrorRecordRepo{},
		local:    &fakeLocalOrderRepo{orders: make(map[string]*domain.LocalOrder)},
		clients:  make(map[domain.ProviderCode]*stubClient),
	}
	for _, code := range domain.AllProviders() {
		h.clients[code] = &stubClient{code: code}
	}

	repos := &repository.Repositories{
		DispatchedOrder: h.orders,
		ProductMapping:  h.mappings,
		CatalogMirror:   h.mirrors,
		ErrorRecord:     h.errs,
		LocalOrder:      h.local,
	}

	providers := config.ProvidersConfig{
		Printify: config.ProviderCredential{Code: domain.ProviderPrintify, APIKey: "k", ShopID: "s"},
		Gelato:   config.ProviderCredential{Code: domain.ProviderGelato, APIKey: "k"},
		Printful: config.ProviderCredential{Code: domain.ProviderPrintful, APIKey: "k"},
	}

	factory := func(cred config.ProviderCredential, logger *zap.Logger) (provider.Client, error) {
		return h.clients[cred.Code], nil
	}

	logger := zap.NewNop()
	h.dispatch = NewDispatchService(repos, providers, factory, logger)
	h.catalog = NewCatalogService(repos, providers, factory, logger)
	return h
}

func (h *testHarness) addLocalOrder(ref string, lines ...domain.OrderLineItem) {
	h.local.orders[ref] = &domain.LocalOrder{
		Ref:   ref,
		Lines: lines,
		Shipping: domain.ShippingAddress{
			RecipientName: "Ana Silva",
			Email:         "ana@example.com",
			Street1:       "1 Main St",
			City:          "Porto",
			Zip:           "4000-001",
			CountryCode:   "PT",
		},
	}
}

func (h *testHarness) addMapping(localProductID string, code domain.ProviderCode, externalProductID, externalVariantID string) {
	h.mappings.mappings = append(h.mappings.mappings, &domain.ProductMapping{
		ID:                uuid.New(),
		LocalProductID:    localProductID,
		ProviderCode:      code,
		ExternalProductID: externalProductID,
		ExternalVariantID: &externalVariantID,
		IsActive:          true,
	})
}

func (h *testHarness) addDraft(ref string, code domain.ProviderCode) *domain.DispatchedOrder {
	order := &domain.DispatchedOrder{
		LocalOrderRef: ref,
		ProviderCode:  code,
		State:         domain.StateDraft,
	}
	_ = h.orders.Create(context.Background(), order)
	return order
}
