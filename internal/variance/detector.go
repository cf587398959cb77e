// Package variance implements open-balance detection and the reconciliation
// state machine. The detector derives shortfall candidates from the raw
// stage records; the state machine owns every status transition a stored
// record may take. Priority and overdue are read-time classifications and
// are never persisted.
package variance

import (
	"sort"

	"github.com/tradewindhq/planboard/internal/domain"
)

// Detect scans the stage transitions and returns a candidate variance
// record for every realized transition, including fully covered ones with a
// zero pending quantity: those let a previously stored open balance
// graduate once later actuals close the gap. Pending quantities are clamped
// at zero. Candidates carry no ID or timestamps; the store assigns those on
// first insert.
func Detect(orders []domain.OrderLine, deliveries []domain.FactoryDelivery, shipments []domain.ShipmentLine) []domain.VarianceRecord {
	var out []domain.VarianceRecord
	out = append(out, detectOrderToDelivery(orders, deliveries)...)
	out = append(out, detectDeliveryToShip(deliveries, shipments)...)
	out = append(out, detectShipToArrival(shipments)...)
	return out
}

// detectOrderToDelivery compares each placed order line against the factory
// deliveries referencing it.
func detectOrderToDelivery(orders []domain.OrderLine, deliveries []domain.FactoryDelivery) []domain.VarianceRecord {
	delivered := make(map[int64]int)
	for _, d := range deliveries {
		if d.DeliveredAt == nil {
			continue
		}
		delivered[d.OrderLineID] += d.Qty
	}

	var out []domain.VarianceRecord
	for _, line := range orders {
		if line.PlacedAt == nil {
			continue
		}
		pending := clamp(line.Qty - delivered[line.ID])
		out = append(out, domain.VarianceRecord{
			SourceType:   domain.SourceOrderToDelivery,
			SourceID:     line.ID,
			SKU:          line.SKU,
			Channel:      line.Channel,
			PlannedQty:   line.Qty,
			FulfilledQty: line.Qty - pending,
			PendingQty:   pending,
			Status:       domain.VariancePending,
		})
	}
	return out
}

// detectDeliveryToShip allocates each SKU's total shipped quantity FIFO
// across that SKU's realized deliveries; whatever a delivery is left
// holding is its open balance. One SKU's shipments never cover another
// SKU's deliveries.
func detectDeliveryToShip(deliveries []domain.FactoryDelivery, shipments []domain.ShipmentLine) []domain.VarianceRecord {
	shipped := make(map[string]int)
	for _, s := range shipments {
		if s.ShippedAt != nil {
			shipped[s.SKU] += s.Qty
		}
	}

	realized := make([]domain.FactoryDelivery, 0, len(deliveries))
	for _, d := range deliveries {
		if d.DeliveredAt != nil {
			realized = append(realized, d)
		}
	}
	sort.Slice(realized, func(i, j int) bool {
		if realized[i].DeliveredAt.Equal(*realized[j].DeliveredAt) {
			return realized[i].ID < realized[j].ID
		}
		return realized[i].DeliveredAt.Before(*realized[j].DeliveredAt)
	})

	var out []domain.VarianceRecord
	for _, d := range realized {
		take := d.Qty
		if take > shipped[d.SKU] {
			take = shipped[d.SKU]
		}
		shipped[d.SKU] -= take

		pending := clamp(d.Qty - take)
		out = append(out, domain.VarianceRecord{
			SourceType:   domain.SourceDeliveryToShip,
			SourceID:     d.ID,
			SKU:          d.SKU,
			PlannedQty:   d.Qty,
			FulfilledQty: take,
			PendingQty:   pending,
			Status:       domain.VariancePending,
		})
	}
	return out
}

// detectShipToArrival flags shipped lines that have not arrived. Ship and
// arrival live on the same line, so this one is a per-record comparison;
// arrived lines yield a fully covered candidate.
func detectShipToArrival(shipments []domain.ShipmentLine) []domain.VarianceRecord {
	var out []domain.VarianceRecord
	for _, s := range shipments {
		if s.ShippedAt == nil {
			continue
		}
		fulfilled := 0
		if s.ArrivedAt != nil {
			fulfilled = s.Qty
		}
		out = append(out, domain.VarianceRecord{
			SourceType:   domain.SourceShipToArrival,
			SourceID:     s.ID,
			SKU:          s.SKU,
			PlannedQty:   s.Qty,
			FulfilledQty: fulfilled,
			PendingQty:   s.Qty - fulfilled,
			Status:       domain.VariancePending,
		})
	}
	return out
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
