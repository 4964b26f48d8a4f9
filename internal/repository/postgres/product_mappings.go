package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
	apperrors "github.com/arcshop/podbridge/pkg/errors"
)

type productMappingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductMappingRepository creates a new product mapping repository
func NewProductMappingRepository(db *sql.DB, logger *zap.Logger) *productMappingRepository {
	return &productMappingRepository{
		db:     db,
		logger: logger,
	}
}

const mappingColumns = `
	id, local_product_id, provider_code, external_product_id,
	external_variant_id, is_active, last_sync_at, created_at, updated_at
`

func (r *productMappingRepository) Create(ctx context.Context, mapping *domain.ProductMapping) error {
	query := `
		INSERT INTO product_mappings (` + mappingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now()
	if mapping.ID == uuid.Nil {
		mapping.ID = uuid.New()
	}
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	if mapping.UpdatedAt.IsZero() {
		mapping.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		mapping.ID,
		mapping.LocalProductID,
		mapping.ProviderCode,
		mapping.ExternalProductID,
		mapping.ExternalVariantID,
		mapping.IsActive,
		mapping.LastSyncAt,
		mapping.CreatedAt,
		mapping.UpdatedAt,
	)

	if err != nil {
		// 23505 is the unique_violation code; the table carries a unique
		// constraint on (local_product_id, provider_code).
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return &apperrors.ErrDuplicateMapping{
				LocalProductID: mapping.LocalProductID,
				Provider:       string(mapping.ProviderCode),
			}
		}
		r.logger.Error("Failed to create product mapping", zap.Error(err))
		return err
	}

	return nil
}

func (r *productMappingRepository) GetByProductAndProvider(ctx context.Context, localProductID string, code domain.ProviderCode) (*domain.ProductMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM product_mappings
		WHERE local_product_id = $1 AND provider_code = $2
	`

	mapping, err := scanMapping(r.db.QueryRowContext(ctx, query, localProductID, code))
	if err == sql.ErrNoRows {
		return nil, &apperrors.ErrNotFound{Resource: "product mapping", ID: localProductID + "/" + string(code)}
	}
	if err != nil {
		r.logger.Error("Failed to get product mapping", zap.Error(err))
		return nil, err
	}

	return mapping, nil
}

func (r *productMappingRepository) ListForProducts(ctx context.Context, localProductIDs []string) ([]*domain.ProductMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM product_mappings
		WHERE local_product_id = ANY($1) AND is_active = true
		ORDER BY local_product_id, provider_code
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(localProductIDs))
	if err != nil {
		r.logger.Error("Failed to list product mappings", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanMappings(rows)
}

func (r *productMappingRepository) List(ctx context.Context) ([]*domain.ProductMapping, error) {
	query := `
		SELECT ` + mappingColumns + `
		FROM product_mappings
		ORDER BY local_product_id, provider_code
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list product mappings", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanMappings(rows)
}

func scanMapping(row rowScanner) (*domain.ProductMapping, error) {
	var mapping domain.ProductMapping
	var externalVariantID sql.NullString
	var lastSyncAt sql.NullTime

	err := row.Scan(
		&mapping.ID,
		&mapping.LocalProductID,
		&mapping.ProviderCode,
		&mapping.ExternalProductID,
		&externalVariantID,
		&mapping.IsActive,
		&lastSyncAt,
		&mapping.CreatedAt,
		&mapping.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalVariantID.Valid {
		mapping.ExternalVariantID = &externalVariantID.String
	}
	if lastSyncAt.Valid {
		mapping.LastSyncAt = &lastSyncAt.Time
	}

	return &mapping, nil
}

func scanMappings(rows *sql.Rows) ([]*domain.ProductMapping, error) {
	var mappings []*domain.ProductMapping
	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}
	return mappings, rows.Err()
}
