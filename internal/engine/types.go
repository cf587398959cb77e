// Package engine implements the inventory projection pipeline: actuals
// bucketing, reverse scheduling from future demand, effective-value
// resolution, and the rolling week-by-week balance. Everything in this
// package is a pure function of its inputs; the service layer owns data
// loading and caching.
package engine

import (
	"time"

	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/weekcal"
)

// Series maps weeks to quantities. Presence of a key in an actuals series
// means the value was recorded, even when it is zero.
type Series map[weekcal.Week]int

// Add accumulates qty into the week bucket.
func (s Series) Add(w weekcal.Week, qty int) {
	s[w] += qty
}

// At returns the recorded quantity and whether the week has an entry.
func (s Series) At(w weekcal.Week) (int, bool) {
	v, ok := s[w]
	return v, ok
}

// LeadTimeProfile is the per-SKU stage durations, all in weeks.
type LeadTimeProfile struct {
	Production  int `json:"production_weeks"`
	Loading     int `json:"loading_weeks"`
	Shipping    int `json:"shipping_weeks"`
	SafetyStock int `json:"safety_stock_weeks"`
}

// StageValues is one pipeline stage's quantities for one week. Actual is nil
// when nothing was recorded; Effective is always the actual-if-present-and-
// nonzero-else-planned value.
type StageValues struct {
	Planned   int  `json:"planned"`
	Actual    *int `json:"actual"`
	Effective int  `json:"effective"`
}

// StockStatus classifies a week's closing balance against the safety
// threshold.
type StockStatus string

const (
	StockOK       StockStatus = "ok"
	StockRisk     StockStatus = "risk"
	StockStockout StockStatus = "stockout"
)

// AuditRow is one week of the audit report. Rows are recomputed in full on
// every query; they carry no persisted state.
type AuditRow struct {
	Week      weekcal.Week `json:"week"`
	Offset    int          `json:"offset"`
	IsPast    bool         `json:"is_past"`
	IsCurrent bool         `json:"is_current"`

	Order       StageValues `json:"order"`
	FactoryShip StageValues `json:"factory_ship"`
	Ship        StageValues `json:"ship"`
	Arrival     StageValues `json:"arrival"`
	Sales       StageValues `json:"sales"`

	OpeningStock    int         `json:"opening_stock"`
	ClosingStock    int         `json:"closing_stock"`
	SafetyThreshold int         `json:"safety_threshold"`
	StockStatus     StockStatus `json:"stock_status"`
}

// ReportMetadata describes the window a report was computed over.
type ReportMetadata struct {
	GeneratedAt time.Time    `json:"generated_at"`
	CurrentWeek weekcal.Week `json:"current_week"`
	PastWeeks   int          `json:"past_weeks"`
	FutureWeeks int          `json:"future_weeks"`
	OnHand      int          `json:"on_hand"`
}

// Report is the full audit report for one SKU. Product is nil when the SKU
// has no master record; Rows is empty in that case.
type Report struct {
	Product   *domain.Product `json:"product"`
	LeadTimes LeadTimeProfile `json:"lead_times"`
	Rows      []AuditRow      `json:"rows"`
	Metadata  ReportMetadata  `json:"metadata"`
}

// Window describes the analysis window around the current week.
type Window struct {
	PastWeeks   int
	FutureWeeks int
}

// Inputs is everything Compute needs, already loaded. The engine never
// touches a data source itself.
type Inputs struct {
	Product    *domain.Product
	Orders     []domain.OrderLine
	Deliveries []domain.FactoryDelivery
	Shipments  []domain.ShipmentLine
	Forecast   []domain.WeeklySales
	Actuals    []domain.WeeklySales
	OnHand     int

	// Deferred holds quantities from scheduled variance records, keyed by
	// the week the operator promised resolution in. They top up the planned
	// series of the destination stage.
	Deferred DeferredPlans

	Now time.Time
}

// DeferredPlans carries variance resolutions into forward planning.
type DeferredPlans struct {
	FactoryShip Series
	Ship        Series
	Arrival     Series
}
