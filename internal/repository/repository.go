// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/tradewindhq/planboard/internal/domain"
)

// SupplyRepository reads the materialized supply-chain records the engine
// consumes. An empty sku on the list methods means all SKUs. Implementations
// never mutate anything.
type SupplyRepository interface {
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	ListOrderLines(ctx context.Context, sku string) ([]domain.OrderLine, error)
	ListDeliveries(ctx context.Context, sku string) ([]domain.FactoryDelivery, error)
	ListShipmentLines(ctx context.Context, sku string) ([]domain.ShipmentLine, error)
	ListForecast(ctx context.Context, sku string) ([]domain.WeeklySales, error)
	ListSalesActuals(ctx context.Context, sku string) ([]domain.WeeklySales, error)
	OnHand(ctx context.Context, sku string) (int, error)
}

// ImportRepository accepts externally supplied forecast rows.
type ImportRepository interface {
	UpsertForecasts(ctx context.Context, rows []domain.WeeklySales) error
}

// VarianceRepository is the single writer surface for variance records.
type VarianceRepository interface {
	List(ctx context.Context, filter domain.VarianceFilter) ([]domain.VarianceRecord, error)
	Get(ctx context.Context, id int64) (*domain.VarianceRecord, error)
	Update(ctx context.Context, v *domain.VarianceRecord) error
	// UpsertDetected inserts freshly detected shortfalls and refreshes the
	// fulfilled/pending quantities of existing open records. Terminal
	// records are left alone.
	UpsertDetected(ctx context.Context, records []domain.VarianceRecord) error
	// ScheduledBySKU returns the open records an operator has deferred to a
	// concrete week, for the projection engine to fold into its plans.
	ScheduledBySKU(ctx context.Context, sku string) ([]domain.VarianceRecord, error)
}
