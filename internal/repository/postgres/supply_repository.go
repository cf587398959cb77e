// internal/repository/postgres/supply_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tradewindhq/planboard/internal/domain"
)

type supplyRepository struct {
	db *DB
}

func NewSupplyRepository(db *DB) *supplyRepository {
	return &supplyRepository{db: db}
}

func (r *supplyRepository) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, channel, production_weeks, shipping_weeks,
		       safety_stock_weeks, created_at, updated_at
		FROM products
		WHERE sku = $1
	`

	var p domain.Product
	if err := r.db.GetContext(ctx, &p, query, sku); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("error getting product %s: %w", sku, err)
	}
	return &p, nil
}

func (r *supplyRepository) ListOrderLines(ctx context.Context, sku string) ([]domain.OrderLine, error) {
	query := `
		SELECT i.id, i.order_id, o.order_no, i.sku, o.channel, i.qty, o.placed_at
		FROM purchase_order_items i
		JOIN purchase_orders o ON o.id = i.order_id
	`
	args := []interface{}{}
	if sku != "" {
		query += " WHERE i.sku = $1"
		args = append(args, sku)
	}
	query += " ORDER BY i.id"

	var lines []domain.OrderLine
	if err := r.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, fmt.Errorf("error listing order lines: %w", err)
	}
	return lines, nil
}

func (r *supplyRepository) ListDeliveries(ctx context.Context, sku string) ([]domain.FactoryDelivery, error) {
	query := `
		SELECT id, order_line_id, sku, qty, delivered_at
		FROM factory_deliveries
	`
	args := []interface{}{}
	if sku != "" {
		query += " WHERE sku = $1"
		args = append(args, sku)
	}
	query += " ORDER BY id"

	var deliveries []domain.FactoryDelivery
	if err := r.db.SelectContext(ctx, &deliveries, query, args...); err != nil {
		return nil, fmt.Errorf("error listing factory deliveries: %w", err)
	}
	return deliveries, nil
}

func (r *supplyRepository) ListShipmentLines(ctx context.Context, sku string) ([]domain.ShipmentLine, error) {
	query := `
		SELECT i.id, i.shipment_id, s.shipment_no, i.sku, i.qty,
		       s.shipped_at, s.arrived_at
		FROM shipment_items i
		JOIN shipments s ON s.id = i.shipment_id
	`
	args := []interface{}{}
	if sku != "" {
		query += " WHERE i.sku = $1"
		args = append(args, sku)
	}
	query += " ORDER BY i.id"

	var lines []domain.ShipmentLine
	if err := r.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, fmt.Errorf("error listing shipment lines: %w", err)
	}
	return lines, nil
}

func (r *supplyRepository) ListForecast(ctx context.Context, sku string) ([]domain.WeeklySales, error) {
	return r.listWeekly(ctx, "sales_forecasts", sku)
}

func (r *supplyRepository) ListSalesActuals(ctx context.Context, sku string) ([]domain.WeeklySales, error) {
	return r.listWeekly(ctx, "sales_actuals", sku)
}

func (r *supplyRepository) listWeekly(ctx context.Context, table, sku string) ([]domain.WeeklySales, error) {
	query := fmt.Sprintf("SELECT sku, week, qty FROM %s", table)
	args := []interface{}{}
	if sku != "" {
		query += " WHERE sku = $1"
		args = append(args, sku)
	}
	query += " ORDER BY week"

	var rows []domain.WeeklySales
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error listing %s: %w", table, err)
	}
	return rows, nil
}

func (r *supplyRepository) UpsertForecasts(ctx context.Context, rows []domain.WeeklySales) error {
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO sales_forecasts (sku, week, qty)
			VALUES ($1, $2, $3)
			ON CONFLICT (sku, week)
			DO UPDATE SET qty = EXCLUDED.qty
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare forecast upsert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row.SKU, row.Week, row.Qty); err != nil {
				return fmt.Errorf("failed to upsert forecast %s/%s: %w", row.SKU, row.Week, err)
			}
		}
		return nil
	})
}

func (r *supplyRepository) OnHand(ctx context.Context, sku string) (int, error) {
	query := `
		SELECT COALESCE(SUM(qty), 0)
		FROM inventory_snapshots
		WHERE sku = $1
	`

	var total int
	if err := r.db.GetContext(ctx, &total, query, sku); err != nil {
		return 0, fmt.Errorf("error summing inventory snapshots for %s: %w", sku, err)
	}
	return total, nil
}
