package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcshop/podbridge/internal/domain"
)

type errorRecordRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewErrorRecordRepository creates a new error record repository
func NewErrorRecordRepository(db *sql.DB, logger *zap.Logger) *errorRecordRepository {
	return &errorRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends one audit record. Records are never updated or deleted.
func (r *errorRecordRepository) Create(ctx context.Context, record *domain.ErrorRecord) error {
	query := `
		INSERT INTO error_records (id, provider_code, message, code, endpoint, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.ProviderCode,
		record.Message,
		record.Code,
		record.Endpoint,
		record.OccurredAt,
	)

	if err != nil {
		r.logger.Error("Failed to create error record", zap.Error(err))
		return err
	}

	return nil
}

func (r *errorRecordRepository) List(ctx context.Context, limit int) ([]*domain.ErrorRecord, error) {
	query := `
		SELECT id, provider_code, message, code, endpoint, occurred_at
		FROM error_records
		ORDER BY occurred_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list error records", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ErrorRecord
	for rows.Next() {
		var record domain.ErrorRecord
		var code sql.NullString

		err := rows.Scan(
			&record.ID,
			&record.ProviderCode,
			&record.Message,
			&code,
			&record.Endpoint,
			&record.OccurredAt,
		)
		if err != nil {
			return nil, err
		}

		if code.Valid {
			record.Code = &code.String
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}
