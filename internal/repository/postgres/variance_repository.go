// internal/repository/postgres/variance_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tradewindhq/planboard/internal/domain"
)

type varianceRepository struct {
	db *DB
}

func NewVarianceRepository(db *DB) *varianceRepository {
	return &varianceRepository{db: db}
}

const varianceColumns = `
	id, source_type, source_id, sku, channel, planned_qty, fulfilled_qty,
	pending_qty, status, planned_week, remarks, created_at, resolved_at
`

func (r *varianceRepository) List(ctx context.Context, filter domain.VarianceFilter) ([]domain.VarianceRecord, error) {
	query := "SELECT " + varianceColumns + " FROM variance_records WHERE 1=1"

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.SKU != "" {
		conditions = append(conditions, fmt.Sprintf("sku = $%d", argCounter))
		args = append(args, filter.SKU)
		argCounter++
	}
	// Overdue is derived at read time; the caller filters on it after
	// classification.
	if filter.Status != "" && filter.Status != domain.VarianceOverdue {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, filter.Status)
		argCounter++
	}
	if filter.SourceType != "" {
		conditions = append(conditions, fmt.Sprintf("source_type = $%d", argCounter))
		args = append(args, filter.SourceType)
		argCounter++
	}
	if filter.MinPendingQty > 0 {
		conditions = append(conditions, fmt.Sprintf("pending_qty >= $%d", argCounter))
		args = append(args, filter.MinPendingQty)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	var records []domain.VarianceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error listing variance records: %w", err)
	}
	return records, nil
}

func (r *varianceRepository) Get(ctx context.Context, id int64) (*domain.VarianceRecord, error) {
	query := "SELECT " + varianceColumns + " FROM variance_records WHERE id = $1"

	var v domain.VarianceRecord
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error getting variance record %d: %w", id, err)
	}
	return &v, nil
}

func (r *varianceRepository) Update(ctx context.Context, v *domain.VarianceRecord) error {
	query := `
		UPDATE variance_records
		SET fulfilled_qty = $1, pending_qty = $2, status = $3,
		    planned_week = $4, remarks = $5, resolved_at = $6
		WHERE id = $7
	`

	res, err := r.db.ExecContext(ctx, query,
		v.FulfilledQty, v.PendingQty, v.Status,
		v.PlannedWeek, v.Remarks, v.ResolvedAt, v.ID)
	if err != nil {
		return fmt.Errorf("error updating variance record %d: %w", v.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *varianceRepository) UpsertDetected(ctx context.Context, records []domain.VarianceRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO variance_records (
				source_type, source_id, sku, channel, planned_qty,
				fulfilled_qty, pending_qty, status, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
			ON CONFLICT (source_type, source_id)
			DO UPDATE SET
				fulfilled_qty = EXCLUDED.fulfilled_qty,
				pending_qty = EXCLUDED.pending_qty,
				status = CASE
					WHEN variance_records.status IN ('fulfilled', 'short_closed')
						THEN variance_records.status
					WHEN EXCLUDED.pending_qty = 0 THEN 'fulfilled'
					ELSE variance_records.status
				END,
				resolved_at = CASE
					WHEN variance_records.status IN ('fulfilled', 'short_closed')
						THEN variance_records.resolved_at
					WHEN EXCLUDED.pending_qty = 0 THEN NOW()
					ELSE variance_records.resolved_at
				END
			WHERE variance_records.status NOT IN ('fulfilled', 'short_closed')
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, v := range records {
			_, err := stmt.ExecContext(ctx,
				v.SourceType, v.SourceID, v.SKU, v.Channel,
				v.PlannedQty, v.FulfilledQty, v.PendingQty, domain.VariancePending)
			if err != nil {
				return fmt.Errorf("failed to upsert variance for %s/%d: %w", v.SourceType, v.SourceID, err)
			}
		}
		return nil
	})
}

func (r *varianceRepository) ScheduledBySKU(ctx context.Context, sku string) ([]domain.VarianceRecord, error) {
	query := "SELECT " + varianceColumns + `
		FROM variance_records
		WHERE sku = $1 AND status = $2 AND planned_week IS NOT NULL
		ORDER BY planned_week
	`

	var records []domain.VarianceRecord
	if err := r.db.SelectContext(ctx, &records, query, sku, domain.VarianceScheduled); err != nil {
		return nil, fmt.Errorf("error listing scheduled variances for %s: %w", sku, err)
	}
	return records, nil
}
