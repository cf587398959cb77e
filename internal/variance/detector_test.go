package variance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewindhq/planboard/internal/domain"
)

func tp(t time.Time) *time.Time { return &t }

var (
	day1 = time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	day2 = day1.AddDate(0, 0, 7)
	day3 = day1.AddDate(0, 0, 14)
)

func TestDetectOrderToDelivery(t *testing.T) {
	orders := []domain.OrderLine{
		{ID: 1, SKU: "SKU-001", Channel: "retail", Qty: 100, PlacedAt: tp(day1)},
		{ID: 2, SKU: "SKU-001", Qty: 50, PlacedAt: tp(day1)},
		{ID: 3, SKU: "SKU-001", Qty: 80, PlacedAt: nil}, // never placed, no transition yet
	}
	deliveries := []domain.FactoryDelivery{
		{ID: 10, OrderLineID: 1, SKU: "SKU-001", Qty: 60, DeliveredAt: tp(day2)},
		{ID: 11, OrderLineID: 2, SKU: "SKU-001", Qty: 50, DeliveredAt: tp(day2)},
		{ID: 12, OrderLineID: 2, SKU: "SKU-001", Qty: 25, DeliveredAt: tp(day3)}, // over-delivery
	}

	got := detectOrderToDelivery(orders, deliveries)
	require.Len(t, got, 2)

	v := got[0]
	assert.Equal(t, domain.SourceOrderToDelivery, v.SourceType)
	assert.Equal(t, int64(1), v.SourceID)
	assert.Equal(t, "retail", v.Channel)
	assert.Equal(t, 100, v.PlannedQty)
	assert.Equal(t, 60, v.FulfilledQty)
	assert.Equal(t, 40, v.PendingQty)
	assert.Equal(t, domain.VariancePending, v.Status)

	// Line 2 is fully covered; the zero-pending candidate is what lets a
	// previously stored open balance graduate.
	assert.Equal(t, int64(2), got[1].SourceID)
	assert.Equal(t, 50, got[1].FulfilledQty)
	assert.Equal(t, 0, got[1].PendingQty)
}

func TestDetectOrderToDeliveryClampsOverDelivery(t *testing.T) {
	orders := []domain.OrderLine{
		{ID: 1, SKU: "SKU-001", Qty: 30, PlacedAt: tp(day1)},
	}
	deliveries := []domain.FactoryDelivery{
		{ID: 10, OrderLineID: 1, SKU: "SKU-001", Qty: 45, DeliveredAt: tp(day2)},
	}

	got := detectOrderToDelivery(orders, deliveries)
	require.Len(t, got, 1)
	assert.Equal(t, 30, got[0].FulfilledQty)
	assert.Equal(t, 0, got[0].PendingQty)
}

func TestDetectDeliveryToShipFIFO(t *testing.T) {
	deliveries := []domain.FactoryDelivery{
		{ID: 21, SKU: "SKU-001", Qty: 40, DeliveredAt: tp(day2)},
		{ID: 20, SKU: "SKU-001", Qty: 100, DeliveredAt: tp(day1)},
		{ID: 22, SKU: "SKU-001", Qty: 10, DeliveredAt: nil}, // not delivered, not eligible
	}
	shipments := []domain.ShipmentLine{
		{ID: 30, SKU: "SKU-001", Qty: 110, ShippedAt: tp(day3)},
		{ID: 31, SKU: "SKU-001", Qty: 15, ShippedAt: nil}, // not shipped, ignored
	}

	got := detectDeliveryToShip(deliveries, shipments)
	require.Len(t, got, 2)

	// The oldest delivery (ID 20) absorbs 100 of the 110 shipped; the
	// newer one keeps the 30-unit open balance.
	assert.Equal(t, int64(20), got[0].SourceID)
	assert.Equal(t, 100, got[0].FulfilledQty)
	assert.Equal(t, 0, got[0].PendingQty)

	v := got[1]
	assert.Equal(t, domain.SourceDeliveryToShip, v.SourceType)
	assert.Equal(t, int64(21), v.SourceID)
	assert.Equal(t, 40, v.PlannedQty)
	assert.Equal(t, 10, v.FulfilledQty)
	assert.Equal(t, 30, v.PendingQty)
}

func TestDetectDeliveryToShipAllocatesPerSKU(t *testing.T) {
	deliveries := []domain.FactoryDelivery{
		{ID: 20, SKU: "SKU-001", Qty: 100, DeliveredAt: tp(day1)},
	}
	shipments := []domain.ShipmentLine{
		{ID: 30, SKU: "SKU-002", Qty: 100, ShippedAt: tp(day2)},
	}

	// Another SKU's shipment must not cover this delivery; the full
	// quantity stays open.
	got := detectDeliveryToShip(deliveries, shipments)
	require.Len(t, got, 1)
	assert.Equal(t, "SKU-001", got[0].SKU)
	assert.Equal(t, 0, got[0].FulfilledQty)
	assert.Equal(t, 100, got[0].PendingQty)
}

func TestDetectShipToArrival(t *testing.T) {
	shipments := []domain.ShipmentLine{
		{ID: 40, SKU: "SKU-001", Qty: 25, ShippedAt: tp(day1), ArrivedAt: tp(day3)},
		{ID: 41, SKU: "SKU-001", Qty: 35, ShippedAt: tp(day2)},
		{ID: 42, SKU: "SKU-001", Qty: 5},
	}

	got := detectShipToArrival(shipments)
	require.Len(t, got, 2)

	// Arrived line: fully covered candidate.
	assert.Equal(t, int64(40), got[0].SourceID)
	assert.Equal(t, 25, got[0].FulfilledQty)
	assert.Equal(t, 0, got[0].PendingQty)

	assert.Equal(t, int64(41), got[1].SourceID)
	assert.Equal(t, 35, got[1].PendingQty)
	assert.Equal(t, 0, got[1].FulfilledQty)
}

func TestDetectCombined(t *testing.T) {
	orders := []domain.OrderLine{
		{ID: 1, SKU: "SKU-001", Qty: 100, PlacedAt: tp(day1)},
	}
	deliveries := []domain.FactoryDelivery{
		{ID: 10, OrderLineID: 1, SKU: "SKU-001", Qty: 60, DeliveredAt: tp(day2)},
	}
	shipments := []domain.ShipmentLine{
		{ID: 30, SKU: "SKU-001", Qty: 20, ShippedAt: tp(day3)},
	}

	got := Detect(orders, deliveries, shipments)
	require.Len(t, got, 3)

	bySource := make(map[domain.VarianceSource]domain.VarianceRecord)
	for _, v := range got {
		bySource[v.SourceType] = v
	}
	assert.Equal(t, 40, bySource[domain.SourceOrderToDelivery].PendingQty)
	assert.Equal(t, 40, bySource[domain.SourceDeliveryToShip].PendingQty)
	assert.Equal(t, 20, bySource[domain.SourceShipToArrival].PendingQty)
}
