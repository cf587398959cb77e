// internal/domain/variance.go
package domain

import "time"

// VarianceSource identifies which stage transition produced the shortfall.
type VarianceSource string

const (
	SourceOrderToDelivery VarianceSource = "order_to_delivery"
	SourceDeliveryToShip  VarianceSource = "delivery_to_ship"
	SourceShipToArrival   VarianceSource = "ship_to_arrival"
)

func (s VarianceSource) Valid() bool {
	switch s {
	case SourceOrderToDelivery, SourceDeliveryToShip, SourceShipToArrival:
		return true
	}
	return false
}

// VarianceStatus is the stored lifecycle state of a variance record.
// Overdue and partial are read-time classifications, never persisted.
type VarianceStatus string

const (
	VariancePending     VarianceStatus = "pending"
	VarianceScheduled   VarianceStatus = "scheduled"
	VarianceFulfilled   VarianceStatus = "fulfilled"
	VarianceShortClosed VarianceStatus = "short_closed"

	// VarianceOverdue is accepted in filters only; it is derived from age
	// at read time and never stored.
	VarianceOverdue VarianceStatus = "overdue"
)

// Valid reports whether s is a recognized filter value: a stored lifecycle
// state or the read-time overdue pseudo-status.
func (s VarianceStatus) Valid() bool {
	switch s {
	case VariancePending, VarianceScheduled, VarianceFulfilled, VarianceShortClosed, VarianceOverdue:
		return true
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s VarianceStatus) Terminal() bool {
	return s == VarianceFulfilled || s == VarianceShortClosed
}

// VariancePriority is derived at read time from age and magnitude.
type VariancePriority string

const (
	PriorityCritical VariancePriority = "critical"
	PriorityHigh     VariancePriority = "high"
	PriorityMedium   VariancePriority = "medium"
	PriorityLow      VariancePriority = "low"
)

// VarianceRecord is an open-balance item: the unresolved gap between a
// planned and a fulfilled stage transition. Closure is always a status
// change; records are never deleted.
type VarianceRecord struct {
	ID           int64          `json:"id" db:"id"`
	SourceType   VarianceSource `json:"source_type" db:"source_type"`
	SourceID     int64          `json:"source_id" db:"source_id"`
	SKU          string         `json:"sku" db:"sku"`
	Channel      string         `json:"channel" db:"channel"`
	PlannedQty   int            `json:"planned_qty" db:"planned_qty"`
	FulfilledQty int            `json:"fulfilled_qty" db:"fulfilled_qty"`
	PendingQty   int            `json:"pending_qty" db:"pending_qty"`
	Status       VarianceStatus `json:"status" db:"status"`
	PlannedWeek  *string        `json:"planned_week" db:"planned_week"`
	Remarks      *string        `json:"remarks" db:"remarks"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	ResolvedAt   *time.Time     `json:"resolved_at" db:"resolved_at"`
}

// AgeDays returns the record's age at the reference time.
func (v *VarianceRecord) AgeDays(ref time.Time) int {
	d := int(ref.Sub(v.CreatedAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// VarianceFilter narrows variance overview queries. Zero values mean "any".
type VarianceFilter struct {
	SKU           string           `json:"sku"`
	Status        VarianceStatus   `json:"status"`
	Priority      VariancePriority `json:"priority"`
	MinPendingQty int              `json:"min_pending_qty"`
	SourceType    VarianceSource   `json:"source_type"`
}

// VarianceView is a record decorated with the read-time classifications.
type VarianceView struct {
	VarianceRecord
	Priority VariancePriority `json:"priority"`
	Overdue  bool             `json:"overdue"`
	Partial  bool             `json:"partial"`
	AgeDays  int              `json:"age_days"`
}

// VarianceOverview is the overview payload: the filtered records plus
// roll-up counts.
type VarianceOverview struct {
	Items      []VarianceView           `json:"items"`
	ByStatus   map[VarianceStatus]int   `json:"by_status"`
	ByPriority map[VariancePriority]int `json:"by_priority"`
}

// BatchResult reports how many of N batch updates actually succeeded.
type BatchResult struct {
	ResolvedCount int              `json:"resolved_count"`
	FailedIDs     []int64          `json:"failed_ids"`
	Errors        map[int64]string `json:"errors,omitempty"`
}
