package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

type dispatchedOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDispatchedOrderRepository creates a new dispatched order repository
func NewDispatchedOrderRepository(db *sql.DB, logger *zap.Logger) *dispatchedOrderRepository {
	return &dispatchedOrderRepository{
		db:     db,
		logger: logger,
	}
}

const dispatchedOrderColumns = `
	id, local_order_ref, provider_code, external_order_id, state,
	tracking_number, tracking_url, error_message, last_sync_at,
	raw_payload, created_at, updated_at
`

func (r *dispatchedOrderRepository) Create(ctx context.Context, order *domain.DispatchedOrder) error {
	query := `
		INSERT INTO dispatched_orders (` + dispatchedOrderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	if order.State == "" {
		order.State = domain.StateDraft
	}

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.LocalOrderRef,
		order.ProviderCode,
		order.ExternalOrderID,
		order.State,
		order.TrackingNumber,
		order.TrackingURL,
		order.ErrorMessage,
		order.LastSyncAt,
		order.RawPayload,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create dispatched order", zap.Error(err))
		return err
	}

	return nil
}

func (r *dispatchedOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DispatchedOrder, error) {
	query := `
		SELECT ` + dispatchedOrderColumns + `
		FROM dispatched_orders
		WHERE id = $1
	`

	order, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &apperrors.ErrNotFound{Resource: "dispatched order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get dispatched order", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *dispatchedOrderRepository) GetByOrderAndProvider(ctx context.Context, orderRef string, code domain.ProviderCode) (*domain.DispatchedOrder, error) {
	query := `
		SELECT ` + dispatchedOrderColumns + `
		FROM dispatched_orders
		WHERE local_order_ref = $1 AND provider_code = $2
	`

	order, err := r.scanOne(r.db.QueryRowContext(ctx, query, orderRef, code))
	if err == sql.ErrNoRows {
		return nil, &apperrors.ErrNotFound{Resource: "dispatched order", ID: orderRef + "/" + string(code)}
	}
	if err != nil {
		r.logger.Error("Failed to get dispatched order", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *dispatchedOrderRepository) ListByState(ctx context.Context, state domain.DispatchState) ([]*domain.DispatchedOrder, error) {
	query := `
		SELECT ` + dispatchedOrderColumns + `
		FROM dispatched_orders
		WHERE state = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, state)
	if err != nil {
		r.logger.Error("Failed to list dispatched orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *dispatchedOrderRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]*domain.DispatchedOrder, error) {
	query := `
		SELECT ` + dispatchedOrderColumns + `
		FROM dispatched_orders
		WHERE state = $1 AND updated_at < $2
		ORDER BY updated_at
	`

	rows, err := r.db.QueryContext(ctx, query, domain.StatePending, cutoff)
	if err != nil {
		r.logger.Error("Failed to list stale pending orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ClaimPending is a check-and-set on state so that concurrent dispatch
// attempts on the same order cannot both proceed.
func (r *dispatchedOrderRepository) ClaimPending(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE dispatched_orders
		SET state = $2, updated_at = $3
		WHERE id = $1 AND state = $4
	`

	result, err := r.db.ExecContext(ctx, query, id, domain.StatePending, time.Now(), domain.StateDraft)
	if err != nil {
		r.logger.Error("Failed to claim dispatched order", zap.Error(err))
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *dispatchedOrderRepository) Update(ctx context.Context, order *domain.DispatchedOrder) error {
	query := `
		UPDATE dispatched_orders
		SET external_order_id = $2, state = $3, tracking_number = $4,
		    tracking_url = $5, error_message = $6, last_sync_at = $7,
		    raw_payload = $8, updated_at = $9
		WHERE id = $1
	`

	order.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.ExternalOrderID,
		order.State,
		order.TrackingNumber,
		order.TrackingURL,
		order.ErrorMessage,
		order.LastSyncAt,
		order.RawPayload,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update dispatched order", zap.Error(err))
		return err
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *dispatchedOrderRepository) scanOne(row rowScanner) (*domain.DispatchedOrder, error) {
	var order domain.DispatchedOrder
	var externalOrderID, trackingNumber, trackingURL, errorMessage sql.NullString
	var lastSyncAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.LocalOrderRef,
		&order.ProviderCode,
		&externalOrderID,
		&order.State,
		&trackingNumber,
		&trackingURL,
		&errorMessage,
		&lastSyncAt,
		&order.RawPayload,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalOrderID.Valid {
		order.ExternalOrderID = &externalOrderID.String
	}
	if trackingNumber.Valid {
		order.TrackingNumber = &trackingNumber.String
	}
	if trackingURL.Valid {
		order.TrackingURL = &trackingURL.String
	}
	if errorMessage.Valid {
		order.ErrorMessage = &errorMessage.String
	}
	if lastSyncAt.Valid {
		order.LastSyncAt = &lastSyncAt.Time
	}

	return &order, nil
}

func (r *dispatchedOrderRepository) scanAll(rows *sql.Rows) ([]*domain.DispatchedOrder, error) {
	var orders []*domain.DispatchedOrder
	for rows.Next() {
		order, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
