// internal/domain/models.go
package domain

import "time"

// Product is the per-SKU master record. Lead times live here; shipping weeks
// may be overridden per request within the configured bounds.
type Product struct {
	ID               int64     `json:"id" db:"id"`
	SKU              string    `json:"sku" db:"sku"`
	Name             string    `json:"name" db:"name"`
	Channel          string    `json:"channel" db:"channel"`
	ProductionWeeks  int       `json:"production_weeks" db:"production_weeks"`
	ShippingWeeks    int       `json:"shipping_weeks" db:"shipping_weeks"`
	SafetyStockWeeks int       `json:"safety_stock_weeks" db:"safety_stock_weeks"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// OrderLine is a purchase-order line item joined with its order header.
// PlacedAt is the date the order actually went out; nil means not yet placed.
type OrderLine struct {
	ID       int64      `json:"id" db:"id"`
	OrderID  int64      `json:"order_id" db:"order_id"`
	OrderNo  string     `json:"order_no" db:"order_no"`
	SKU      string     `json:"sku" db:"sku"`
	Channel  string     `json:"channel" db:"channel"`
	Qty      int        `json:"qty" db:"qty"`
	PlacedAt *time.Time `json:"placed_at" db:"placed_at"`
}

// FactoryDelivery records quantity handed over by the factory against an
// order line. DeliveredAt nil means the delivery has not happened yet.
type FactoryDelivery struct {
	ID          int64      `json:"id" db:"id"`
	OrderLineID int64      `json:"order_line_id" db:"order_line_id"`
	SKU         string     `json:"sku" db:"sku"`
	Qty         int        `json:"qty" db:"qty"`
	DeliveredAt *time.Time `json:"delivered_at" db:"delivered_at"`
}

// ShipmentLine is a shipment line item joined with its shipment header.
// ShippedAt/ArrivedAt are the realized dates for the logistics-ship and
// arrival stages respectively.
type ShipmentLine struct {
	ID         int64      `json:"id" db:"id"`
	ShipmentID int64      `json:"shipment_id" db:"shipment_id"`
	ShipmentNo string     `json:"shipment_no" db:"shipment_no"`
	SKU        string     `json:"sku" db:"sku"`
	Qty        int        `json:"qty" db:"qty"`
	ShippedAt  *time.Time `json:"shipped_at" db:"shipped_at"`
	ArrivedAt  *time.Time `json:"arrived_at" db:"arrived_at"`
}

// WeeklySales is one week of forecast or realized sales for a SKU. Week is
// the "YYYY-Wnn" wire format.
type WeeklySales struct {
	SKU  string `json:"sku" db:"sku"`
	Week string `json:"week" db:"week"`
	Qty  int    `json:"qty" db:"qty"`
}

// InventorySnapshot is the current on-hand quantity at one location.
type InventorySnapshot struct {
	ID       int64     `json:"id" db:"id"`
	SKU      string    `json:"sku" db:"sku"`
	Location string    `json:"location" db:"location"`
	Qty      int       `json:"qty" db:"qty"`
	TakenAt  time.Time `json:"taken_at" db:"taken_at"`
}
