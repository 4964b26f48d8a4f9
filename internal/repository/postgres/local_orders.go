package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

// localOrderRepository is a read-only view over the host commerce system's
// order, line and customer tables. Nothing here is ever written.
type localOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLocalOrderRepository creates a new local order repository
func NewLocalOrderRepository(db *sql.DB, logger *zap.Logger) *localOrderRepository {
	return &localOrderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *localOrderRepository) GetByRef(ctx context.Context, ref string) (*domain.LocalOrder, error) {
	query := `
		SELECT o.ref, o.recipient_name, o.email, o.street1, o.street2,
		       o.city, o.state_code, o.zip, o.country_code
		FROM sale_orders o
		WHERE o.ref = $1
	`

	order := domain.LocalOrder{Ref: ref}
	var street2, stateCode, zip sql.NullString

	err := r.db.QueryRowContext(ctx, query, ref).Scan(
		&order.Ref,
		&order.Shipping.RecipientName,
		&order.Shipping.Email,
		&order.Shipping.Street1,
		&street2,
		&order.Shipping.City,
		&stateCode,
		&zip,
		&order.Shipping.CountryCode,
	)

	if err == sql.ErrNoRows {
		return nil, &apperrors.ErrNotFound{Resource: "sale order", ID: ref}
	}
	if err != nil {
		r.logger.Error("Failed to get sale order", zap.Error(err))
		return nil, err
	}

	order.Shipping.Street2 = street2.String
	order.Shipping.StateCode = stateCode.String
	order.Shipping.Zip = zip.String

	lines, err := r.getLines(ctx, ref)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

func (r *localOrderRepository) getLines(ctx context.Context, ref string) ([]domain.OrderLineItem, error) {
	query := `
		SELECT l.local_product_id, l.title, l.quantity
		FROM sale_order_lines l
		WHERE l.order_ref = $1
		ORDER BY l.position
	`

	rows, err := r.db.QueryContext(ctx, query, ref)
	if err != nil {
		r.logger.Error("Failed to get sale order lines", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLineItem
	for rows.Next() {
		var line domain.OrderLineItem
		if err := rows.Scan(&line.LocalProductID, &line.Title, &line.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}
