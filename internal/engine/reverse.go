// internal/engine/reverse.go
package engine

import (
	"github.com/rs/zerolog/log"

	"github.com/tradewindhq/planboard/internal/weekcal"
)

// PlannedSchedule holds the back-calculated planned quantities per stage.
type PlannedSchedule struct {
	Order       Series
	FactoryShip Series
	Ship        Series
	Arrival     Series
}

// NewPlannedSchedule returns a schedule with empty series.
func NewPlannedSchedule() PlannedSchedule {
	return PlannedSchedule{
		Order:       make(Series),
		FactoryShip: make(Series),
		Ship:        make(Series),
		Arrival:     make(Series),
	}
}

// ReverseSchedule walks every demand week backward through the lead-time
// chain and accumulates the demand into the week each upstream stage must
// happen in: arrival safetyStock weeks ahead of the sale, shipping before
// that, then loading, then production. Demand from different sales weeks
// landing on the same planning week sums up.
//
// A backward step that falls off the calendar drops only that stage's
// contribution for that week; the rest of the computation continues.
func ReverseSchedule(weeks []weekcal.Week, effSales func(weekcal.Week) int, p LeadTimeProfile) PlannedSchedule {
	sched := NewPlannedSchedule()

	type stageOffset struct {
		name   string
		series Series
		offset int
	}
	stages := []stageOffset{
		{"arrival", sched.Arrival, p.SafetyStock},
		{"ship", sched.Ship, p.SafetyStock + p.Shipping},
		{"factory_ship", sched.FactoryShip, p.SafetyStock + p.Shipping + p.Loading},
		{"order", sched.Order, p.SafetyStock + p.Shipping + p.Loading + p.Production},
	}

	for _, w := range weeks {
		demand := effSales(w)
		if demand <= 0 {
			continue
		}

		for _, st := range stages {
			target, ok := w.Add(-st.offset)
			if !ok {
				log.Warn().
					Str("demand_week", w.String()).
					Str("stage", st.name).
					Int("offset_weeks", st.offset).
					Msg("backward step off the calendar, dropping contribution")
				continue
			}
			st.series.Add(target, demand)
		}
	}

	return sched
}

// MergeDeferred tops up the planned series with quantities the reconciliation
// workflow has rescheduled to concrete weeks.
func (s PlannedSchedule) MergeDeferred(d DeferredPlans) {
	for w, qty := range d.FactoryShip {
		s.FactoryShip.Add(w, qty)
	}
	for w, qty := range d.Ship {
		s.Ship.Add(w, qty)
	}
	for w, qty := range d.Arrival {
		s.Arrival.Add(w, qty)
	}
}
