package worktime

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-01 09:00:00", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"2024-03-01T09:00:00", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"2024-03-01T09:00:00Z", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)},
		{"2024-03-01 09:15", time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC)},
		{"09:00:00", time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC)},
		{" 18:30 ", time.Date(0, 1, 1, 18, 30, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := Parse(c.input)
		require.NoError(t, err, c.input)
		assert.True(t, c.want.Equal(got), "Parse(%q) = %v, want %v", c.input, got, c.want)
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmptyTime)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyTime)

	for _, bad := range []string{"yesterday", "25:00:00", "2024-13-01 09:00:00", "9am"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestIsTimeOfDay(t *testing.T) {
	assert.True(t, IsTimeOfDay("08:00:00"))
	assert.True(t, IsTimeOfDay("08:00"))
	assert.False(t, IsTimeOfDay("2024-01-01 08:00:00"))
	assert.False(t, IsTimeOfDay(""))
}

func TestCalculator_WorkHours(t *testing.T) {
	c := NewCalculator(8)

	cases := []struct {
		name     string
		checkIn  string
		checkOut string
		want     float64
	}{
		{"regular day", "09:00:00", "17:00:00", 8},
		{"with overtime", "09:00:00", "18:30:00", 9.5},
		{"overnight bare times", "22:00:00", "06:00:00", 8},
		{"same instant", "09:00:00", "09:00:00", 0},
		{"full timestamps", "2024-03-01 08:00:00", "2024-03-01 12:30:00", 4.5},
		{"full timestamps across midnight", "2024-03-01 22:00:00", "2024-03-02 07:00:00", 9},
		{"full check-in with bare check-out", "2024-03-01 08:00:00", "16:00:00", 8},
		{"bare check-in with full check-out", "20:00:00", "2024-03-01 02:00:00", 6},
		{"missing check-in", "", "17:00:00", 0},
		{"missing check-out", "09:00:00", "", 0},
		{"malformed check-in", "not-a-time", "17:00:00", 0},
		{"malformed check-out", "09:00:00", "later", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.WorkHours(tc.checkIn, tc.checkOut)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCalculator_WorkHours_FailureHook(t *testing.T) {
	failures := 0
	c := NewCalculator(8, WithFailureHook(func() { failures++ }))

	assert.Zero(t, c.WorkHours("garbage", "17:00:00"))
	assert.Zero(t, c.WorkHours("09:00:00", "garbage"))
	assert.Zero(t, c.WorkHours("", "17:00:00"))

	assert.Equal(t, 2, failures)
}

func TestCalculator_Elapsed_NeverNegative(t *testing.T) {
	c := NewCalculator(8)
	in := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	// More than a day earlier is still negative after the +24h shift.
	out := time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)
	assert.Zero(t, c.Elapsed(in, out))

	assert.Zero(t, c.Elapsed(time.Time{}, in))
	assert.Zero(t, c.Elapsed(in, time.Time{}))
}

func TestCalculator_Split(t *testing.T) {
	c := NewCalculator(8)

	b := c.Split(9.5)
	assert.Equal(t, 9.5, b.ElapsedHours)
	assert.Equal(t, 8.0, b.WorkHours)
	assert.Equal(t, 1.5, b.OvertimeHours)
	assert.Equal(t, 8.0, b.TotalHours)

	b = c.Split(6)
	assert.Equal(t, 6.0, b.WorkHours)
	assert.Zero(t, b.OvertimeHours)
	assert.Equal(t, 6.0, b.TotalHours)

	b = c.Split(-3)
	assert.Zero(t, b.WorkHours)
	assert.Zero(t, b.OvertimeHours)

	b = c.Split(math.NaN())
	assert.Zero(t, b.WorkHours)
}

func TestCalculator_SplitInvariant(t *testing.T) {
	c := NewCalculator(8)
	for elapsed := 0.0; elapsed <= 24; elapsed += 0.25 {
		b := c.Split(elapsed)
		assert.InDelta(t, math.Min(elapsed, 8)+math.Max(0, elapsed-8), b.WorkHours+b.OvertimeHours, 1e-9)
		assert.LessOrEqual(t, b.WorkHours, 8.0)
		assert.GreaterOrEqual(t, b.OvertimeHours, 0.0)
		assert.Equal(t, b.WorkHours, b.TotalHours)
	}
}

func TestCalculator_CustomThreshold(t *testing.T) {
	c := NewCalculator(7.5)
	b := c.ComputeStrings("08:00:00", "17:00:00")
	assert.InDelta(t, 7.5, b.WorkHours, 1e-9)
	assert.InDelta(t, 1.5, b.OvertimeHours, 1e-9)

	assert.Equal(t, DefaultStandardHours, NewCalculator(0).StandardHours)
}

func TestCalculator_Compute(t *testing.T) {
	c := NewCalculator(8)
	in := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)

	first := c.Compute(&in, &out)
	second := c.Compute(&in, &out)
	assert.Equal(t, first, second)
	assert.Equal(t, 8.0, first.WorkHours)
	assert.Equal(t, 1.5, first.OvertimeHours)
	assert.Equal(t, 8.0, first.TotalHours)

	assert.Equal(t, Breakdown{}, c.Compute(&in, nil))
	assert.Equal(t, Breakdown{}, c.Compute(nil, &out))
}

func TestNormalizeCheckOut(t *testing.T) {
	in := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	out := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 2, 6, 0, 0, 0, time.UTC), NormalizeCheckOut(in, out))

	later := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, later, NormalizeCheckOut(in, later))
}

func TestRound(t *testing.T) {
	assert.Equal(t, "8.33", Round(8.3333333).String())
	assert.Equal(t, 1.67, RoundFloat(1.666666))
	assert.Equal(t, 0.0, RoundFloat(0))
}
