// internal/engine/engine.go
package engine

import (
	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/weekcal"
)

// Compute runs the full pipeline over already-loaded inputs and produces the
// audit report. Running it twice over identical inputs yields identical
// output: there is no hidden state and the only clock involved is
// inputs.Now.
//
// Pipeline order: bucket actuals, resolve effective sales, reverse-schedule
// planned quantities from demand, merge deferred variance plans, then roll
// the balance forward week by week.
func Compute(in Inputs, profile LeadTimeProfile, cfg config.EngineConfig) *Report {
	cur := weekcal.Current(in.Now)
	report := &Report{
		Product:   in.Product,
		LeadTimes: profile,
		Rows:      []AuditRow{},
		Metadata: ReportMetadata{
			GeneratedAt: in.Now,
			CurrentWeek: cur,
			PastWeeks:   cfg.PastWeeks,
			FutureWeeks: cfg.FutureWeeks,
			OnHand:      in.OnHand,
		},
	}
	if in.Product == nil {
		return report
	}

	from, okFrom := cur.Add(-cfg.PastWeeks)
	to, okTo := cur.Add(cfg.FutureWeeks)
	if !okFrom || !okTo {
		return report
	}
	weeks := weekcal.Range(from, to)

	orderActuals := BucketOrders(in.Orders)
	factoryActuals := BucketDeliveries(in.Deliveries)
	shipActuals, arrivalActuals := BucketShipments(in.Shipments)
	forecast := BucketWeekly(in.Forecast)
	salesActuals := BucketWeekly(in.Actuals)

	effSales := func(w weekcal.Week) int {
		return ResolveStage(forecast, salesActuals, w).Effective
	}

	planned := ReverseSchedule(weeks, effSales, profile)
	planned.MergeDeferred(in.Deferred)

	arrivals := make([]int, len(weeks))
	sales := make([]int, len(weeks))
	rows := make([]AuditRow, len(weeks))
	for i, w := range weeks {
		row := AuditRow{
			Week:        w,
			Offset:      i - cfg.PastWeeks,
			Order:       ResolveStage(planned.Order, orderActuals, w),
			FactoryShip: ResolveStage(planned.FactoryShip, factoryActuals, w),
			Ship:        ResolveStage(planned.Ship, shipActuals, w),
			Arrival:     ResolveStage(planned.Arrival, arrivalActuals, w),
			Sales:       ResolveStage(forecast, salesActuals, w),
		}
		row.IsPast = row.Offset < 0
		row.IsCurrent = row.Offset == 0
		arrivals[i] = row.Arrival.Effective
		sales[i] = row.Sales.Effective
		rows[i] = row
	}

	for i, b := range RollBalances(in.OnHand, arrivals, sales, profile.SafetyStock) {
		rows[i].OpeningStock = b.Opening
		rows[i].ClosingStock = b.Closing
		rows[i].SafetyThreshold = b.SafetyThreshold
		rows[i].StockStatus = b.Status
	}

	report.Rows = rows
	return report
}
