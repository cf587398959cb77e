// internal/variance/priority.go
package variance

import (
	"time"

	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/domain"
)

// PriorityOf derives the read-time priority from age and pending magnitude.
// The cutoffs come from operator configuration, never from constants here.
func PriorityOf(v *domain.VarianceRecord, ref time.Time, cfg config.VarianceConfig) domain.VariancePriority {
	if v.Status.Terminal() || v.PendingQty == 0 {
		return domain.PriorityLow
	}

	age := v.AgeDays(ref)
	switch {
	case age >= cfg.CriticalAgeDays || v.PendingQty >= cfg.CriticalQty:
		return domain.PriorityCritical
	case age >= cfg.HighAgeDays || v.PendingQty >= cfg.HighQty:
		return domain.PriorityHigh
	default:
		return domain.PriorityMedium
	}
}

// IsOverdue reports the view-time overdue classification. It never changes
// the stored status.
func IsOverdue(v *domain.VarianceRecord, ref time.Time, cfg config.VarianceConfig) bool {
	if v.Status != domain.VariancePending && v.Status != domain.VarianceScheduled {
		return false
	}
	return v.AgeDays(ref) > cfg.OverdueAgeDays
}

// Classify decorates a record with every read-time derivation the overview
// exposes.
func Classify(v domain.VarianceRecord, ref time.Time, cfg config.VarianceConfig) domain.VarianceView {
	return domain.VarianceView{
		VarianceRecord: v,
		Priority:       PriorityOf(&v, ref, cfg),
		Overdue:        IsOverdue(&v, ref, cfg),
		Partial:        !v.Status.Terminal() && v.FulfilledQty > 0 && v.PendingQty > 0,
		AgeDays:        v.AgeDays(ref),
	}
}
