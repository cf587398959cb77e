// internal/engine/aggregate.go
package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/weekcal"
)

// The aggregator buckets realized quantities into the week each event's
// actual date falls in. Records with no actual date contribute nothing: a
// planned date never substitutes for a realized one.

// BucketOrders folds placed order lines into a week series.
func BucketOrders(lines []domain.OrderLine) Series {
	out := make(Series)
	for _, l := range lines {
		if l.PlacedAt == nil {
			continue
		}
		out.Add(weekcal.FromTime(*l.PlacedAt), l.Qty)
	}
	return out
}

// BucketDeliveries folds realized factory deliveries into a week series.
func BucketDeliveries(deliveries []domain.FactoryDelivery) Series {
	out := make(Series)
	for _, d := range deliveries {
		if d.DeliveredAt == nil {
			continue
		}
		out.Add(weekcal.FromTime(*d.DeliveredAt), d.Qty)
	}
	return out
}

// BucketShipments folds shipment lines into two week series, one for the
// logistics-ship stage and one for arrivals.
func BucketShipments(lines []domain.ShipmentLine) (shipped, arrived Series) {
	shipped = make(Series)
	arrived = make(Series)
	for _, l := range lines {
		if l.ShippedAt != nil {
			shipped.Add(weekcal.FromTime(*l.ShippedAt), l.Qty)
		}
		if l.ArrivedAt != nil {
			arrived.Add(weekcal.FromTime(*l.ArrivedAt), l.Qty)
		}
	}
	return shipped, arrived
}

// BucketWeekly folds already week-keyed rows (forecasts, sales actuals) into
// a series. Rows with malformed week strings are skipped and logged.
func BucketWeekly(rows []domain.WeeklySales) Series {
	out := make(Series)
	for _, r := range rows {
		w, ok := weekcal.Parse(r.Week)
		if !ok {
			log.Warn().Str("sku", r.SKU).Str("week", r.Week).Msg("skipping row with malformed week")
			continue
		}
		out.Add(w, r.Qty)
	}
	return out
}
