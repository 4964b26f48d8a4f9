package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/provider"
	"github.com/arcshop/podbridge/internal/repository"
	"github.com/arcshop/podbridge/internal/transform"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

// defaultPollWorkers bounds concurrent status polls; each poll is an
// independent blocking network call.
const defaultPollWorkers = 4

// DispatchService owns the dispatched-order state machine. Every state
// mutation goes through its methods so the transition table is preserved.
type DispatchService struct {
	repos       *repository.Repositories
	transformer *transform.Transformer
	providers   config.ProvidersConfig
	factory     provider.Factory
	logger      *zap.Logger
}

// NewDispatchService creates a new dispatch service. A nil factory falls
// back to the real provider clients.
func NewDispatchService(repos *repository.Repositories, providers config.ProvidersConfig, factory provider.Factory, logger *zap.Logger) *DispatchService {
	if factory == nil {
		factory = provider.New
	}
	return &DispatchService{
		repos:       repos,
		transformer: transform.NewTransformer(logger),
		providers:   providers,
		factory:     factory,
		logger:      logger,
	}
}

func (s *DispatchService) client(code domain.ProviderCode) (provider.Client, error) {
	cred, err := s.providers.Credential(code)
	if err != nil {
		return nil, err
	}
	return s.factory(cred, s.logger)
}

// CreateForOrder creates one draft dispatched order per provider that has
// at least one mapped line in the given local order. Pairs that already
// have a dispatched order are left untouched.
func (s *DispatchService) CreateForOrder(ctx context.Context, orderRef string) ([]*domain.DispatchedOrder, error) {
	localOrder, err := s.repos.LocalOrder.GetByRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(localOrder.Lines))
	for _, line := range localOrder.Lines {
		productIDs = append(productIDs, line.LocalProductID)
	}

	mappings, err := s.repos.ProductMapping.ListForProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	mapped := make(map[domain.ProviderCode]bool)
	for _, m := range mappings {
		mapped[m.ProviderCode] = true
	}

	var created []*domain.DispatchedOrder
	for _, code := range domain.AllProviders() {
		if !mapped[code] {
			continue
		}

		_, err := s.repos.DispatchedOrder.GetByOrderAndProvider(ctx, orderRef, code)
		if err == nil {
			continue // already dispatched for this provider
		}
		var notFound *apperrors.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}

		order := &domain.DispatchedOrder{
			LocalOrderRef: orderRef,
			ProviderCode:  code,
			State:         domain.StateDraft,
		}
		if err := s.repos.DispatchedOrder.Create(ctx, order); err != nil {
			return nil, err
		}

		s.logger.Info("Created dispatched order",
			zap.String("order_ref", orderRef),
			zap.String("provider", string(code)),
		)
		created = append(created, order)
	}

	return created, nil
}

// Dispatch transforms and submits a draft order to its provider. The
// draft-to-pending claim is persisted before the network call so a crash
// mid-call leaves visible evidence. Re-dispatching an order that is not in
// draft is rejected without touching the network.
func (s *DispatchService) Dispatch(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repos.DispatchedOrder.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.State != domain.StateDraft {
		return &apperrors.ErrInvalidStateTransition{
			From: string(order.State),
			To:   string(domain.StatePending),
		}
	}

	claimed, err := s.repos.DispatchedOrder.ClaimPending(ctx, order.ID)
	if err != nil {
		return err
	}
	if !claimed {
		// Lost the claim to a concurrent dispatch attempt.
		return &apperrors.ErrInvalidStateTransition{
			From: string(domain.StatePending),
			To:   string(domain.StatePending),
		}
	}
	order.State = domain.StatePending

	localOrder, err := s.repos.LocalOrder.GetByRef(ctx, order.LocalOrderRef)
	if err != nil {
		return s.failDispatch(ctx, order, err)
	}

	productIDs := make([]string, 0, len(localOrder.Lines))
	for _, line := range localOrder.Lines {
		productIDs = append(productIDs, line.LocalProductID)
	}

	mappingPtrs, err := s.repos.ProductMapping.ListForProducts(ctx, productIDs)
	if err != nil {
		return s.failDispatch(ctx, order, err)
	}
	mappings := make([]domain.ProductMapping, 0, len(mappingPtrs))
	for _, m := range mappingPtrs {
		mappings = append(mappings, *m)
	}

	payload, err := s.transformer.Transform(*localOrder, mappings, order.ProviderCode)
	if err != nil {
		return s.failDispatch(ctx, order, err)
	}

	client, err := s.client(order.ProviderCode)
	if err != nil {
		return s.failDispatch(ctx, order, err)
	}

	s.logger.Info("Sending order to provider",
		zap.String("order_ref", order.LocalOrderRef),
		zap.String("provider", string(order.ProviderCode)),
	)

	externalOrderID, err := client.CreateOrder(ctx, payload)
	if err != nil {
		return s.failDispatch(ctx, order, err)
	}

	now := time.Now()
	rawPayload, _ := json.Marshal(payload.Body)

	order.State = domain.StateSent
	order.ExternalOrderID = &externalOrderID
	order.LastSyncAt = &now
	order.RawPayload = rawPayload
	if err := s.repos.DispatchedOrder.Update(ctx, order); err != nil {
		return err
	}

	s.logger.Info("Order sent successfully",
		zap.String("order_ref", order.LocalOrderRef),
		zap.String("provider", string(order.ProviderCode)),
		zap.String("external_order_id", externalOrderID),
	)
	return nil
}

// PollStatus fetches the provider status for a sent order. A polling
// failure appends an error record but never changes state; a transient
// provider outage must not regress a successfully sent order.
func (s *DispatchService) PollStatus(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repos.DispatchedOrder.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.State != domain.StateSent {
		return &apperrors.ErrInvalidStateTransition{
			From: string(order.State),
			To:   string(domain.StateCompleted),
		}
	}
	if order.ExternalOrderID == nil {
		return fmt.Errorf("dispatched order %s has no external order ID", order.ID)
	}

	client, err := s.client(order.ProviderCode)
	if err != nil {
		s.recordError(ctx, order.ProviderCode, err, "get_order_status")
		return err
	}

	status, err := client.GetOrderStatus(ctx, *order.ExternalOrderID)
	if err != nil {
		s.recordError(ctx, order.ProviderCode, err, "get_order_status")
		return err
	}

	now := time.Now()
	order.LastSyncAt = &now
	if status.TrackingNumber != "" {
		order.TrackingNumber = &status.TrackingNumber
	}
	if status.TrackingURL != "" {
		order.TrackingURL = &status.TrackingURL
	}
	if status.Status.IsTerminal() {
		order.State = domain.StateCompleted
	}

	if err := s.repos.DispatchedOrder.Update(ctx, order); err != nil {
		return err
	}

	s.logger.Info("Status updated",
		zap.String("order_ref", order.LocalOrderRef),
		zap.String("provider", string(order.ProviderCode)),
		zap.String("state", string(order.State)),
	)
	return nil
}

// Retry resets a failed order to draft for redispatch. The error message
// is cleared; error records are history and persist.
func (s *DispatchService) Retry(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repos.DispatchedOrder.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.State != domain.StateFailed {
		return &apperrors.ErrInvalidStateTransition{
			From: string(order.State),
			To:   string(domain.StateDraft),
		}
	}

	order.State = domain.StateDraft
	order.ErrorMessage = nil
	return s.repos.DispatchedOrder.Update(ctx, order)
}

// PollReport summarizes one scheduler-driven polling run.
type PollReport struct {
	Polled int
	Failed int
}

// PollAllSent polls every sent order through a bounded worker pool; each
// poll is an independent network call, so orders are processed in
// parallel across providers.
func (s *DispatchService) PollAllSent(ctx context.Context, workers int) (PollReport, error) {
	if workers <= 0 {
		workers = defaultPollWorkers
	}

	orders, err := s.repos.DispatchedOrder.ListByState(ctx, domain.StateSent)
	if err != nil {
		return PollReport{}, err
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		report = PollReport{Polled: len(orders)}
		sem    = make(chan struct{}, workers)
	)

	for _, order := range orders {
		order := order
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := s.PollStatus(ctx, order.ID); err != nil {
				s.logger.Error("Failed to poll order status",
					zap.String("order_ref", order.LocalOrderRef),
					zap.String("provider", string(order.ProviderCode)),
					zap.Error(err),
				)
				mu.Lock()
				report.Failed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.logger.Info("Polling run completed",
		zap.Int("polled", report.Polled),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// SweepStalePending fails any order stuck in pending longer than the given
// age. A crash between the pending claim and the create-order call leaves
// such orphans; they are never silently resubmitted.
func (s *DispatchService) SweepStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	orders, err := s.repos.DispatchedOrder.ListStalePending(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	for _, order := range orders {
		cause := &apperrors.ErrProvider{
			Provider: string(order.ProviderCode),
			Kind:     apperrors.KindTimeout,
			Message:  fmt.Sprintf("dispatch did not resolve within %s; failed by pending sweep", olderThan),
		}
		if err := s.markFailed(ctx, order, cause, "pending_sweep"); err != nil {
			return 0, err
		}
	}

	if len(orders) > 0 {
		s.logger.Warn("Swept stale pending orders", zap.Int("count", len(orders)))
	}
	return len(orders), nil
}

// TestProvider runs the provider's lightweight connectivity check and
// returns a display message.
func (s *DispatchService) TestProvider(ctx context.Context, code domain.ProviderCode) (string, error) {
	client, err := s.client(code)
	if err != nil {
		return "", err
	}

	if err := client.TestConnection(ctx); err != nil {
		s.recordError(ctx, code, err, "test_connection")
		return "", err
	}
	return fmt.Sprintf("Connection successful: %s API is accessible", code), nil
}

// failDispatch records a create-order failure and surfaces the cause to
// the caller.
func (s *DispatchService) failDispatch(ctx context.Context, order *domain.DispatchedOrder, cause error) error {
	if err := s.markFailed(ctx, order, cause, "create_order"); err != nil {
		return err
	}
	return cause
}

// markFailed moves an order to failed, persists the message, and appends
// exactly one error record.
func (s *DispatchService) markFailed(ctx context.Context, order *domain.DispatchedOrder, cause error, endpoint string) error {
	message := cause.Error()
	order.State = domain.StateFailed
	order.ErrorMessage = &message

	if err := s.repos.DispatchedOrder.Update(ctx, order); err != nil {
		s.logger.Error("Failed to persist failed state", zap.Error(err))
		return err
	}

	s.recordError(ctx, order.ProviderCode, cause, endpoint)
	return nil
}

func (s *DispatchService) recordError(ctx context.Context, code domain.ProviderCode, cause error, endpoint string) {
	record := &domain.ErrorRecord{
		ProviderCode: code,
		Message:      cause.Error(),
		Endpoint:     endpoint,
	}
	if errCode := errorCode(cause); errCode != "" {
		record.Code = &errCode
	}
	if err := s.repos.ErrorRecord.Create(ctx, record); err != nil {
		s.logger.Error("Failed to append error record", zap.Error(err))
	}
}

func errorCode(err error) string {
	var provErr *apperrors.ErrProvider
	if errors.As(err, &provErr) {
		return string(provErr.Kind)
	}
	var validationErr *apperrors.ErrValidation
	if errors.As(err, &validationErr) {
		return "VALIDATION_ERROR"
	}
	return ""
}
