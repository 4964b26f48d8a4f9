package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/config"
	"github.com/arcshop/podbridge/internal/domain"
	"github.com/arcshop/podbridge/internal/provider"
	"github.com/arcshop/podbridge/internal/repository"
)

// CatalogService reconciles provider catalogs against the local mirrors.
type CatalogService struct {
	repos     *repository.Repositories
	providers config.ProvidersConfig
	factory   provider.Factory
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service. A nil factory falls
// back to the real provider clients.
func NewCatalogService(repos *repository.Repositories, providers config.ProvidersConfig, factory provider.Factory, logger *zap.Logger) *CatalogService {
	if factory == nil {
		factory = provider.New
	}
	return &CatalogService{
		repos:     repos,
		providers: providers,
		factory:   factory,
		logger:    logger,
	}
}

// SyncReport summarizes one catalog sync run.
type SyncReport struct {
	SyncedCount int
	FailedCount int
}

// Sync pulls the provider's full catalog and upserts local mirrors. A
// single malformed product is logged as one error record and counted;
// it never aborts the remaining items.
func (s *CatalogService) Sync(ctx context.Context, code domain.ProviderCode) (SyncReport, error) {
	cred, err := s.providers.Credential(code)
	if err != nil {
		return SyncReport{}, err
	}

	client, err := s.factory(cred, s.logger)
	if err != nil {
		return SyncReport{}, err
	}

	products, err := client.ListProducts(ctx)
	if err != nil {
		s.recordSyncError(ctx, code, err.Error())
		return SyncReport{}, err
	}

	var report SyncReport
	for _, product := range products {
		if err := s.syncProduct(ctx, code, product); err != nil {
			s.logger.Warn("Failed to sync product",
				zap.String("provider", string(code)),
				zap.String("external_id", product.ExternalID),
				zap.Error(err),
			)
			s.recordSyncError(ctx, code, fmt.Sprintf("failed to sync product %s: %s", product.ExternalID, err))
			report.FailedCount++
			continue
		}
		report.SyncedCount++
	}

	s.logger.Info("Catalog sync completed",
		zap.String("provider", string(code)),
		zap.Int("synced", report.SyncedCount),
		zap.Int("failed", report.FailedCount),
	)
	return report, nil
}

func (s *CatalogService) syncProduct(ctx context.Context, code domain.ProviderCode, product provider.Product) error {
	if product.ExternalID == "" {
		return fmt.Errorf("product has no external ID")
	}

	// Parse every variant price before writing anything, so a malformed
	// product leaves no partial mirror behind.
	variants := make([]domain.PodVariant, 0, len(product.Variants))
	for _, v := range product.Variants {
		price, err := decimal.NewFromString(v.Price)
		if err != nil {
			return fmt.Errorf("variant %s has malformed price %q", v.ExternalID, v.Price)
		}
		variants = append(variants, domain.PodVariant{
			ExternalID: v.ExternalID,
			SKU:        v.SKU,
			Size:       v.Size,
			Color:      v.Color,
			Price:      price,
		})
	}

	mirror := &domain.PodProduct{
		ProviderCode: code,
		ExternalID:   product.ExternalID,
		Name:         product.Name,
		Description:  product.Description,
		SKU:          product.SKU,
		ThumbnailURL: product.ThumbnailURL,
	}
	if err := s.repos.CatalogMirror.UpsertProduct(ctx, mirror); err != nil {
		return err
	}

	for i := range variants {
		variants[i].ProductID = mirror.ID
		if err := s.repos.CatalogMirror.UpsertVariant(ctx, &variants[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *CatalogService) recordSyncError(ctx context.Context, code domain.ProviderCode, message string) {
	record := &domain.ErrorRecord{
		ProviderCode: code,
		Message:      message,
		Endpoint:     "list_products",
	}
	if err := s.repos.ErrorRecord.Create(ctx, record); err != nil {
		s.logger.Error("Failed to append error record", zap.Error(err))
	}
}
