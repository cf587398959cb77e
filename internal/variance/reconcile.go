// internal/variance/reconcile.go
package variance

import (
	"strings"
	"time"

	"github.com/tradewindhq/planboard/internal/domain"
	"github.com/tradewindhq/planboard/internal/weekcal"
)

// The state machine: pending -> scheduled -> fulfilled | short_closed.
// Closure is a status change; records are never deleted.

// Defer moves a record to scheduled with a concrete resolution week. The
// target week must be a well-formed ISO week; on any validation failure the
// record is left untouched.
func Defer(v *domain.VarianceRecord, plannedWeek string) error {
	if v.Status.Terminal() {
		return domain.NewValidationError("status", "variance is already %s", v.Status)
	}
	if strings.TrimSpace(plannedWeek) == "" {
		return domain.NewValidationError("planned_week", "a target week is required to defer")
	}
	w, ok := weekcal.Parse(plannedWeek)
	if !ok {
		return domain.NewValidationError("planned_week", "%q is not a valid ISO week (want YYYY-Wnn)", plannedWeek)
	}

	wk := w.String()
	v.Status = domain.VarianceScheduled
	v.PlannedWeek = &wk
	return nil
}

// ShortClose permanently closes a record: the pending quantity will never be
// fulfilled. A non-empty reason is mandatory.
func ShortClose(v *domain.VarianceRecord, reason string, now time.Time) error {
	if v.Status.Terminal() {
		return domain.NewValidationError("status", "variance is already %s", v.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.NewValidationError("reason", "a reason is required to short-close")
	}

	v.Status = domain.VarianceShortClosed
	v.Remarks = &reason
	v.ResolvedAt = &now
	return nil
}

// Reconcile folds freshly detected quantities into an existing record. When
// later actuals close the gap the record graduates to fulfilled; a terminal
// record is never reopened.
func Reconcile(v *domain.VarianceRecord, fulfilledQty int, now time.Time) {
	if v.Status.Terminal() {
		return
	}
	v.FulfilledQty = fulfilledQty
	v.PendingQty = clamp(v.PlannedQty - fulfilledQty)
	if v.PendingQty == 0 {
		v.Status = domain.VarianceFulfilled
		v.ResolvedAt = &now
	}
}
