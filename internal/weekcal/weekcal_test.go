package weekcal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Week
		ok   bool
	}{
		{"2025-W06", Week{2025, 6}, true},
		{"2025-W01", Week{2025, 1}, true},
		{"2025-W52", Week{2025, 52}, true},
		{"2020-W53", Week{2020, 53}, true}, // 2020 is a 53-week ISO year
		{"2025-W53", Week{}, false},        // 2025 only has 52
		{"2025-W00", Week{}, false},
		{"2025-W54", Week{}, false},
		{"2025-6", Week{}, false},
		{"2025W06", Week{}, false},
		{"25-W06", Week{}, false},
		{"2025-w06", Week{}, false},
		{"2025-W6a", Week{}, false},
		{"", Week{}, false},
		{"garbage", Week{}, false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.ok, ok, "Parse(%q) ok", tt.in)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "2025-W06", Week{2025, 6}.String())
	assert.Equal(t, "2025-W52", Week{2025, 52}.String())
	assert.Equal(t, "0099-W01", Week{99, 1}.String())
}

func TestFromTime(t *testing.T) {
	// 2024-12-30 (Monday) belongs to ISO week 2025-W01.
	d := time.Date(2024, time.December, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Week{2025, 1}, FromTime(d))

	// 2027-01-01 (Friday) belongs to 2026-W53.
	d = time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Week{2026, 53}, FromTime(d))
}

func TestAdd(t *testing.T) {
	tests := []struct {
		start Week
		n     int
		want  Week
	}{
		{Week{2025, 10}, 0, Week{2025, 10}},
		{Week{2025, 10}, 5, Week{2025, 15}},
		{Week{2025, 10}, -5, Week{2025, 5}},
		{Week{2025, 50}, 3, Week{2026, 1}},  // year rollover forward
		{Week{2026, 2}, -4, Week{2025, 50}}, // year rollover backward
		{Week{2020, 52}, 1, Week{2020, 53}}, // 53-week year
		{Week{2020, 53}, 1, Week{2021, 1}},
		{Week{2021, 1}, -1, Week{2020, 53}},
	}

	for _, tt := range tests {
		got, ok := tt.start.Add(tt.n)
		require.True(t, ok, "%s + %d", tt.start, tt.n)
		assert.Equal(t, tt.want, got, "%s + %d", tt.start, tt.n)
	}
}

func TestAddInvalid(t *testing.T) {
	_, ok := Week{}.Add(1)
	assert.False(t, ok)

	_, ok = Week{2025, 60}.Add(1)
	assert.False(t, ok)

	// Falling off the calendar entirely.
	_, ok = Week{9999, 52}.Add(5)
	assert.False(t, ok)
	_, ok = Week{1, 1}.Add(-5)
	assert.False(t, ok)
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, Compare(Week{2025, 10}, Week{2025, 11}))
	assert.Equal(t, 1, Compare(Week{2026, 1}, Week{2025, 52}))
	assert.Equal(t, 0, Compare(Week{2025, 10}, Week{2025, 10}))
	assert.Equal(t, -1, Compare(Week{2024, 52}, Week{2025, 1}))
}

func TestRange(t *testing.T) {
	weeks := Range(Week{2025, 50}, Week{2026, 2})
	require.Len(t, weeks, 5)
	assert.Equal(t, []Week{
		{2025, 50}, {2025, 51}, {2025, 52}, {2026, 1}, {2026, 2},
	}, weeks)

	assert.Empty(t, Range(Week{2025, 10}, Week{2025, 9}))
	assert.Empty(t, Range(Week{}, Week{2025, 9}))
	assert.Empty(t, Range(Week{2025, 1}, Week{2025, 60}))

	single := Range(Week{2025, 7}, Week{2025, 7})
	assert.Equal(t, []Week{{2025, 7}}, single)
}

func TestMonday(t *testing.T) {
	// 2025-W01 starts on Monday 2024-12-30.
	assert.Equal(t,
		time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC),
		Week{2025, 1}.Monday())

	// Round trip: Monday of any week maps back to that week.
	for _, w := range Range(Week{2024, 50}, Week{2025, 5}) {
		assert.Equal(t, w, FromTime(w.Monday()), "round trip %s", w)
	}
}

func TestJSON(t *testing.T) {
	b, err := Week{2025, 6}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2025-W06"`, string(b))

	var w Week
	require.NoError(t, w.UnmarshalJSON([]byte(`"2025-W20"`)))
	assert.Equal(t, Week{2025, 20}, w)

	assert.Error(t, w.UnmarshalJSON([]byte(`"2025-20"`)))
	assert.Error(t, w.UnmarshalJSON([]byte(`2025`)))
}
