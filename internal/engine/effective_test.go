package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tradewindhq/planboard/internal/weekcal"
)

func intp(v int) *int { return &v }

func TestEffective(t *testing.T) {
	tests := []struct {
		name    string
		planned int
		actual  *int
		want    int
	}{
		{"no actual falls back to planned", 120, nil, 120},
		{"actual overrides planned", 120, intp(80), 80},
		{"actual overrides even when larger", 50, intp(400), 400},
		{"recorded zero falls back to planned", 120, intp(0), 120},
		{"both zero", 0, intp(0), 0},
		{"planned zero with actual", 0, intp(33), 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Effective(tt.planned, tt.actual))
		})
	}
}

func TestResolveStage(t *testing.T) {
	w := weekcal.Week{Year: 2025, Num: 10}
	planned := Series{w: 100}

	// Nothing recorded: actual stays nil, effective is the plan.
	sv := ResolveStage(planned, Series{}, w)
	assert.Equal(t, 100, sv.Planned)
	assert.Nil(t, sv.Actual)
	assert.Equal(t, 100, sv.Effective)

	// Recorded non-zero actual wins.
	sv = ResolveStage(planned, Series{w: 60}, w)
	assert.Equal(t, 60, *sv.Actual)
	assert.Equal(t, 60, sv.Effective)

	// Recorded zero is surfaced as an actual but the plan stands.
	actuals := make(Series)
	actuals.Add(w, 0)
	sv = ResolveStage(planned, actuals, w)
	assert.NotNil(t, sv.Actual)
	assert.Equal(t, 0, *sv.Actual)
	assert.Equal(t, 100, sv.Effective)
}
