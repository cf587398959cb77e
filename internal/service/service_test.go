package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/engine"
	"github.com/tradewindhq/planboard/internal/weekcal"
)

// ---------------------------------------------------------------------------
// fakes

type fakeSupplyRepo struct {
	products   map[string]*domain.Product
	orders     []domain.OrderLine
	deliveries []domain.FactoryDelivery
	shipments  []domain.ShipmentLine
	forecast   []domain.WeeklySales
	actuals    []domain.WeeklySales
	onHand     map[string]int

	upserted []domain.WeeklySales
}

func newFakeSupplyRepo() *fakeSupplyRepo {
	return &fakeSupplyRepo{
		products: make(map[string]*domain.Product),
		onHand:   make(map[string]int),
	}
}

func (f *fakeSupplyRepo) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	p, ok := f.products[sku]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeSupplyRepo) ListOrderLines(_ context.Context, sku string) ([]domain.OrderLine, error) {
	var out []domain.OrderLine
	for _, l := range f.orders {
		if sku == "" || l.SKU == sku {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeSupplyRepo) ListDeliveries(_ context.Context, sku string) ([]domain.FactoryDelivery, error) {
	var out []domain.FactoryDelivery
	for _, d := range f.deliveries {
		if sku == "" || d.SKU == sku {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeSupplyRepo) ListShipmentLines(_ context.Context, sku string) ([]domain.ShipmentLine, error) {
	var out []domain.ShipmentLine
	for _, s := range f.shipments {
		if sku == "" || s.SKU == sku {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSupplyRepo) ListForecast(_ context.Context, sku string) ([]domain.WeeklySales, error) {
	var out []domain.WeeklySales
	for _, r := range f.forecast {
		if sku == "" || r.SKU == sku {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSupplyRepo) ListSalesActuals(_ context.Context, sku string) ([]domain.WeeklySales, error) {
	var out []domain.WeeklySales
	for _, r := range f.actuals {
		if sku == "" || r.SKU == sku {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSupplyRepo) OnHand(_ context.Context, sku string) (int, error) {
	return f.onHand[sku], nil
}

func (f *fakeSupplyRepo) UpsertForecasts(_ context.Context, rows []domain.WeeklySales) error {
	f.upserted = append(f.upserted, rows...)
	return nil
}

type fakeVarianceRepo struct {
	nextID  int64
	records map[int64]*domain.VarianceRecord
}

func newFakeVarianceRepo() *fakeVarianceRepo {
	return &fakeVarianceRepo{nextID: 1, records: make(map[int64]*domain.VarianceRecord)}
}

func (f *fakeVarianceRepo) add(v domain.VarianceRecord) int64 {
	id := f.nextID
	f.nextID++
	v.ID = id
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	f.records[id] = &v
	return id
}

func (f *fakeVarianceRepo) List(_ context.Context, filter domain.VarianceFilter) ([]domain.VarianceRecord, error) {
	var out []domain.VarianceRecord
	for _, v := range f.records {
		if filter.SKU != "" && v.SKU != filter.SKU {
			continue
		}
		if filter.Status != "" && filter.Status != domain.VarianceOverdue && v.Status != filter.Status {
			continue
		}
		if filter.SourceType != "" && v.SourceType != filter.SourceType {
			continue
		}
		if filter.MinPendingQty > 0 && v.PendingQty < filter.MinPendingQty {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeVarianceRepo) Get(_ context.Context, id int64) (*domain.VarianceRecord, error) {
	v, ok := f.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVarianceRepo) Update(_ context.Context, v *domain.VarianceRecord) error {
	if _, ok := f.records[v.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *v
	f.records[v.ID] = &cp
	return nil
}

func (f *fakeVarianceRepo) UpsertDetected(_ context.Context, records []domain.VarianceRecord) error {
	for _, rec := range records {
		found := false
		for _, existing := range f.records {
			if existing.SourceType == rec.SourceType && existing.SourceID == rec.SourceID {
				found = true
				if !existing.Status.Terminal() {
					existing.FulfilledQty = rec.FulfilledQty
					existing.PendingQty = rec.PendingQty
				}
				break
			}
		}
		if !found {
			f.add(rec)
		}
	}
	return nil
}

func (f *fakeVarianceRepo) ScheduledBySKU(_ context.Context, sku string) ([]domain.VarianceRecord, error) {
	var out []domain.VarianceRecord
	for _, v := range f.records {
		if v.SKU == sku && v.Status == domain.VarianceScheduled && v.PlannedWeek != nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// helpers

func intp(v int) *int { return &v }

func strp(s string) *string { return &s }

func tp(t time.Time) *time.Time { return &t }

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		PastWeeks:        4,
		FutureWeeks:      11,
		LoadingWeeks:     1,
		ShippingMinWeeks: 3,
		ShippingMaxWeeks: 8,
	}
}

func testVarianceConfig() config.VarianceConfig {
	return config.VarianceConfig{
		OverdueAgeDays:  14,
		CriticalAgeDays: 30,
		HighAgeDays:     14,
		CriticalQty:     500,
		HighQty:         100,
	}
}

func seedProduct(repo *fakeSupplyRepo) {
	repo.products["SKU-001"] = &domain.Product{
		ID:               1,
		SKU:              "SKU-001",
		Name:             "Widget",
		ProductionWeeks:  5,
		ShippingWeeks:    5,
		SafetyStockWeeks: 2,
	}
}

// ---------------------------------------------------------------------------
// audit service

func TestComputeReportUnknownSKU(t *testing.T) {
	svc := NewAuditService(newFakeSupplyRepo(), newFakeVarianceRepo(), nil, testEngineConfig())

	report, err := svc.ComputeReport(context.Background(), "NOPE", nil)
	require.NoError(t, err)
	assert.Nil(t, report.Product)
	assert.Empty(t, report.Rows)
}

func TestComputeReportOverrideValidation(t *testing.T) {
	supply := newFakeSupplyRepo()
	seedProduct(supply)
	svc := NewAuditService(supply, newFakeVarianceRepo(), nil, testEngineConfig())

	_, err := svc.ComputeReport(context.Background(), "SKU-001", intp(20))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestComputeReport(t *testing.T) {
	supply := newFakeSupplyRepo()
	seedProduct(supply)
	supply.onHand["SKU-001"] = 50
	supply.forecast = []domain.WeeklySales{
		{SKU: "SKU-001", Week: "2025-W20", Qty: 100},
	}

	svc := NewAuditService(supply, newFakeVarianceRepo(), nil, testEngineConfig())
	svc.now = func() time.Time { return weekcal.Week{Year: 2025, Num: 10}.Monday() }

	report, err := svc.ComputeReport(context.Background(), "SKU-001", nil)
	require.NoError(t, err)
	require.NotNil(t, report.Product)
	require.Len(t, report.Rows, 16)
	assert.Equal(t, 50, report.Metadata.OnHand)

	// Demand in 2025-W20 backtracks to an order in 2025-W07 (inside the
	// 4-week past window) and an arrival in 2025-W18.
	byWeek := make(map[weekcal.Week]engine.AuditRow)
	for _, row := range report.Rows {
		byWeek[row.Week] = row
	}
	assert.Equal(t, 100, byWeek[weekcal.Week{Year: 2025, Num: 7}].Order.Planned)
	assert.Equal(t, 100, byWeek[weekcal.Week{Year: 2025, Num: 18}].Arrival.Planned)
	assert.Equal(t, 100, byWeek[weekcal.Week{Year: 2025, Num: 20}].Sales.Effective)
}

func TestComputeReportFoldsScheduledVariances(t *testing.T) {
	supply := newFakeSupplyRepo()
	seedProduct(supply)
	supply.onHand["SKU-001"] = 10

	variances := newFakeVarianceRepo()
	variances.add(domain.VarianceRecord{
		SourceType:  domain.SourceShipToArrival,
		SourceID:    7,
		SKU:         "SKU-001",
		PlannedQty:  45,
		PendingQty:  45,
		Status:      domain.VarianceScheduled,
		PlannedWeek: strp("2025-W12"),
	})

	svc := NewAuditService(supply, variances, nil, testEngineConfig())
	svc.now = func() time.Time { return weekcal.Week{Year: 2025, Num: 10}.Monday() }

	report, err := svc.ComputeReport(context.Background(), "SKU-001", nil)
	require.NoError(t, err)

	for _, row := range report.Rows {
		if row.Week == (weekcal.Week{Year: 2025, Num: 12}) {
			assert.Equal(t, 45, row.Arrival.Planned)
			assert.Equal(t, 45, row.Arrival.Effective)
			return
		}
	}
	t.Fatal("2025-W12 row not found")
}

// ---------------------------------------------------------------------------
// variance service

func seedShortfall(supply *fakeSupplyRepo) {
	placed := time.Now().AddDate(0, 0, -20)
	delivered := time.Now().AddDate(0, 0, -10)
	supply.orders = []domain.OrderLine{
		{ID: 1, SKU: "SKU-001", Qty: 100, PlacedAt: tp(placed)},
	}
	supply.deliveries = []domain.FactoryDelivery{
		{ID: 10, OrderLineID: 1, SKU: "SKU-001", Qty: 60, DeliveredAt: tp(delivered)},
	}
}

func TestOverviewDetectsAndClassifies(t *testing.T) {
	supply := newFakeSupplyRepo()
	seedProduct(supply)
	seedShortfall(supply)

	repo := newFakeVarianceRepo()
	svc := NewVarianceService(supply, repo, nil, testVarianceConfig())

	overview, err := svc.Overview(context.Background(), domain.VarianceFilter{SKU: "SKU-001"})
	require.NoError(t, err)

	// order->delivery shortfall of 40, delivery->ship shortfall of 60.
	require.Len(t, overview.Items, 2)
	assert.Equal(t, 2, overview.ByStatus[domain.VariancePending])
	for _, item := range overview.Items {
		assert.Equal(t, domain.VariancePending, item.Status)
		assert.NotEqual(t, domain.VariancePriority(""), item.Priority)
	}
}

func TestOverviewMinPendingFilter(t *testing.T) {
	supply := newFakeSupplyRepo()
	seedShortfall(supply)

	svc := NewVarianceService(supply, newFakeVarianceRepo(), nil, testVarianceConfig())

	overview, err := svc.Overview(context.Background(), domain.VarianceFilter{SKU: "SKU-001", MinPendingQty: 50})
	require.NoError(t, err)
	require.Len(t, overview.Items, 1)
	assert.Equal(t, domain.SourceDeliveryToShip, overview.Items[0].SourceType)
	assert.Equal(t, 60, overview.Items[0].PendingQty)
}

func TestOverviewClosesCoveredVariance(t *testing.T) {
	supply := newFakeSupplyRepo()
	seedShortfall(supply)

	repo := newFakeVarianceRepo()
	id := repo.add(domain.VarianceRecord{
		SourceType:   domain.SourceOrderToDelivery,
		SourceID:     1,
		SKU:          "SKU-001",
		PlannedQty:   100,
		FulfilledQty: 60,
		PendingQty:   40,
		Status:       domain.VariancePending,
	})

	// The factory has since delivered the remaining 40 units.
	supply.deliveries = append(supply.deliveries, domain.FactoryDelivery{
		ID:          11,
		OrderLineID: 1,
		SKU:         "SKU-001",
		Qty:         40,
		DeliveredAt: tp(time.Now().AddDate(0, 0, -1)),
	})

	svc := NewVarianceService(supply, repo, nil, testVarianceConfig())
	_, err := svc.Overview(context.Background(), domain.VarianceFilter{SKU: "SKU-001"})
	require.NoError(t, err)

	rec, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.VarianceFulfilled, rec.Status)
	assert.Equal(t, 100, rec.FulfilledQty)
	assert.Equal(t, 0, rec.PendingQty)
	require.NotNil(t, rec.ResolvedAt)
}

func TestResolveDefer(t *testing.T) {
	repo := newFakeVarianceRepo()
	id := repo.add(domain.VarianceRecord{
		SourceType: domain.SourceOrderToDelivery,
		SourceID:   1,
		SKU:        "SKU-001",
		PlannedQty: 100,
		PendingQty: 40,
		Status:     domain.VariancePending,
	})

	svc := NewVarianceService(newFakeSupplyRepo(), repo, nil, testVarianceConfig())

	err := svc.Resolve(context.Background(), id, ActionDefer, ResolvePayload{PlannedWeek: "2025-W30"})
	require.NoError(t, err)

	stored := repo.records[id]
	assert.Equal(t, domain.VarianceScheduled, stored.Status)
	require.NotNil(t, stored.PlannedWeek)
	assert.Equal(t, "2025-W30", *stored.PlannedWeek)
}

func TestResolveDeferInvalidWeekLeavesRecord(t *testing.T) {
	repo := newFakeVarianceRepo()
	id := repo.add(domain.VarianceRecord{
		SourceType: domain.SourceOrderToDelivery,
		SourceID:   1,
		SKU:        "SKU-001",
		PlannedQty: 100,
		PendingQty: 40,
		Status:     domain.VariancePending,
	})

	svc := NewVarianceService(newFakeSupplyRepo(), repo, nil, testVarianceConfig())

	err := svc.Resolve(context.Background(), id, ActionDefer, ResolvePayload{PlannedWeek: "whenever"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, domain.VariancePending, repo.records[id].Status)
	assert.Nil(t, repo.records[id].PlannedWeek)
}

func TestResolveShortClose(t *testing.T) {
	repo := newFakeVarianceRepo()
	id := repo.add(domain.VarianceRecord{
		SourceType: domain.SourceShipToArrival,
		SourceID:   2,
		SKU:        "SKU-001",
		PlannedQty: 30,
		PendingQty: 30,
		Status:     domain.VariancePending,
	})

	svc := NewVarianceService(newFakeSupplyRepo(), repo, nil, testVarianceConfig())

	require.NoError(t, svc.Resolve(context.Background(), id, ActionShortClose, ResolvePayload{Reason: "container lost at sea"}))
	stored := repo.records[id]
	assert.Equal(t, domain.VarianceShortClosed, stored.Status)
	require.NotNil(t, stored.Remarks)
	assert.NotNil(t, stored.ResolvedAt)

	err := svc.Resolve(context.Background(), id, ActionShortClose, ResolvePayload{Reason: ""})
	require.Error(t, err)
}

func TestResolveUnknownAction(t *testing.T) {
	repo := newFakeVarianceRepo()
	id := repo.add(domain.VarianceRecord{SKU: "SKU-001", Status: domain.VariancePending})

	svc := NewVarianceService(newFakeSupplyRepo(), repo, nil, testVarianceConfig())
	err := svc.Resolve(context.Background(), id, "escalate", ResolvePayload{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestBatchResolvePartialSuccess(t *testing.T) {
	repo := newFakeVarianceRepo()
	good1 := repo.add(domain.VarianceRecord{SKU: "SKU-001", PlannedQty: 10, PendingQty: 10, Status: domain.VariancePending})
	closed := repo.add(domain.VarianceRecord{SKU: "SKU-001", PlannedQty: 10, PendingQty: 10, Status: domain.VarianceShortClosed})
	good2 := repo.add(domain.VarianceRecord{SKU: "SKU-002", PlannedQty: 20, PendingQty: 20, Status: domain.VariancePending})

	svc := NewVarianceService(newFakeSupplyRepo(), repo, nil, testVarianceConfig())

	result, err := svc.BatchResolve(context.Background(),
		[]int64{good1, closed, good2, 9999},
		ActionDefer, ResolvePayload{PlannedWeek: "2025-W40"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.ResolvedCount)
	assert.ElementsMatch(t, []int64{closed, 9999}, result.FailedIDs)
	assert.Contains(t, result.Errors, closed)
	assert.Contains(t, result.Errors, int64(9999))
}

// ---------------------------------------------------------------------------
// import service

func TestImportForecastCSV(t *testing.T) {
	supply := newFakeSupplyRepo()
	svc := NewImportService(supply, nil)

	data := []byte("sku,week,qty\n" +
		"SKU-001,2025-W10,20\n" +
		"SKU-001,2025-W11,35\n" +
		"SKU-001,not-a-week,10\n" +
		"SKU-001,2025-W12,-5\n" +
		",2025-W13,10\n")

	result, err := svc.ImportForecastCSV(context.Background(), "forecast.csv", data)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 3, result.Failed)
	assert.Len(t, result.Errors, 3)
	require.Len(t, supply.upserted, 2)
	assert.Equal(t, domain.WeeklySales{SKU: "SKU-001", Week: "2025-W10", Qty: 20}, supply.upserted[0])
}

func TestImportForecastCSVNoHeader(t *testing.T) {
	supply := newFakeSupplyRepo()
	svc := NewImportService(supply, nil)

	result, err := svc.ImportForecastCSV(context.Background(), "f.csv", []byte("SKU-001,2025-W10,20\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalRows)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Failed)
}
