// internal/engine/effective.go
package engine

import "github.com/tradewindhq/planboard/internal/weekcal"

// Effective resolves the planned/actual precedence for one stage and week:
// the actual wins whenever it was recorded and is non-zero, otherwise the
// planned value stands. A recorded zero falls back to the plan: it means
// "nothing happened yet", not "explicitly nothing". Every stage boundary in
// the engine goes through this one function.
func Effective(planned int, actual *int) int {
	if actual != nil && *actual != 0 {
		return *actual
	}
	return planned
}

// ResolveStage builds the planned/actual/effective triple for one stage and
// week out of the planned and actuals series.
func ResolveStage(planned, actuals Series, w weekcal.Week) StageValues {
	sv := StageValues{Planned: planned[w]}
	if v, ok := actuals.At(w); ok {
		actual := v
		sv.Actual = &actual
	}
	sv.Effective = Effective(sv.Planned, sv.Actual)
	return sv
}
