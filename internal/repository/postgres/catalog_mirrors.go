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

type catalogMirrorRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCatalogMirrorRepository creates a new catalog mirror repository
func NewCatalogMirrorRepository(db *sql.DB, logger *zap.Logger) *catalogMirrorRepository {
	return &catalogMirrorRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertProduct creates or updates a product mirror keyed by
// (provider_code, external_id). The mirror row ID is written back so
// variant upserts can reference it.
func (r *catalogMirrorRepository) UpsertProduct(ctx context.Context, product *domain.PodProduct) error {
	query := `
		INSERT INTO pod_products (
			id, provider_code, external_id, name, description, sku,
			thumbnail_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (provider_code, external_id) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    sku = EXCLUDED.sku,
		    thumbnail_url = EXCLUDED.thumbnail_url,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		product.ID,
		product.ProviderCode,
		product.ExternalID,
		product.Name,
		product.Description,
		product.SKU,
		product.ThumbnailURL,
		now,
		now,
	).Scan(&product.ID, &product.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to upsert pod product", zap.Error(err))
		return err
	}

	return nil
}

// UpsertVariant creates or updates a variant mirror keyed by
// (product mirror, external_variant_id).
func (r *catalogMirrorRepository) UpsertVariant(ctx context.Context, variant *domain.PodVariant) error {
	query := `
		INSERT INTO pod_variants (
			id, product_id, external_id, sku, size, color, price,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (product_id, external_id) DO UPDATE
		SET sku = EXCLUDED.sku,
		    size = EXCLUDED.size,
		    color = EXCLUDED.color,
		    price = EXCLUDED.price,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	now := time.Now()
	if variant.ID == uuid.Nil {
		variant.ID = uuid.New()
	}
	variant.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		variant.ID,
		variant.ProductID,
		variant.ExternalID,
		variant.SKU,
		variant.Size,
		variant.Color,
		variant.Price,
		now,
		now,
	).Scan(&variant.ID, &variant.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to upsert pod variant", zap.Error(err))
		return err
	}

	return nil
}

func (r *catalogMirrorRepository) GetProduct(ctx context.Context, code domain.ProviderCode, externalID string) (*domain.PodProduct, error) {
	query := `
		SELECT id, provider_code, external_id, name, description, sku,
		       thumbnail_url, created_at, updated_at
		FROM pod_products
		WHERE provider_code = $1 AND external_id = $2
	`

	var product domain.PodProduct
	err := r.db.QueryRowContext(ctx, query, code, externalID).Scan(
		&product.ID,
		&product.ProviderCode,
		&product.ExternalID,
		&product.Name,
		&product.Description,
		&product.SKU,
		&product.ThumbnailURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &apperrors.ErrNotFound{Resource: "pod product", ID: string(code) + "/" + externalID}
	}
	if err != nil {
		r.logger.Error("Failed to get pod product", zap.Error(err))
		return nil, err
	}

	return &product, nil
}
