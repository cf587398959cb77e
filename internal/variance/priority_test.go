package variance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tradewindhq/planboard/internal/config"
	"github.com/tradewindhq/planboard/internal/domain"
)

func testVarianceConfig() config.VarianceConfig {
	return config.VarianceConfig{
		OverdueAgeDays:  14,
		CriticalAgeDays: 30,
		HighAgeDays:     14,
		CriticalQty:     500,
		HighQty:         100,
	}
}

func recordAged(days int, pending int) domain.VarianceRecord {
	v := pendingRecord()
	v.CreatedAt = time.Now().AddDate(0, 0, -days)
	v.PendingQty = pending
	return v
}

func TestPriorityOf(t *testing.T) {
	cfg := testVarianceConfig()
	now := time.Now()

	tests := []struct {
		name string
		v    domain.VarianceRecord
		want domain.VariancePriority
	}{
		{"old record is critical", recordAged(45, 10), domain.PriorityCritical},
		{"huge pending qty is critical", recordAged(1, 600), domain.PriorityCritical},
		{"two-week-old is high", recordAged(15, 10), domain.PriorityHigh},
		{"large pending qty is high", recordAged(1, 150), domain.PriorityHigh},
		{"fresh small record is medium", recordAged(2, 10), domain.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityOf(&tt.v, now, cfg))
		})
	}

	closed := recordAged(60, 400)
	closed.Status = domain.VarianceShortClosed
	assert.Equal(t, domain.PriorityLow, PriorityOf(&closed, now, cfg))
}

func TestIsOverdue(t *testing.T) {
	cfg := testVarianceConfig()
	now := time.Now()

	fresh := recordAged(3, 10)
	assert.False(t, IsOverdue(&fresh, now, cfg))

	old := recordAged(20, 10)
	assert.True(t, IsOverdue(&old, now, cfg))

	// Overdue is a view-time classification for open records only.
	scheduled := recordAged(20, 10)
	scheduled.Status = domain.VarianceScheduled
	assert.True(t, IsOverdue(&scheduled, now, cfg))

	closed := recordAged(20, 10)
	closed.Status = domain.VarianceFulfilled
	assert.False(t, IsOverdue(&closed, now, cfg))
}

func TestClassify(t *testing.T) {
	cfg := testVarianceConfig()
	now := time.Now()

	v := recordAged(20, 40)
	v.FulfilledQty = 60
	view := Classify(v, now, cfg)

	assert.Equal(t, domain.PriorityHigh, view.Priority)
	assert.True(t, view.Overdue)
	assert.True(t, view.Partial)
	assert.Equal(t, 20, view.AgeDays)
	// The stored status is untouched by classification.
	assert.Equal(t, domain.VariancePending, view.Status)
}
