package worktime

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStandardHours is the regular working day length.
const DefaultStandardHours = 8.0

// Breakdown is the derived hour split for one attendance record.
// TotalHours mirrors WorkHours (capped regular hours), not gross elapsed time.
type Breakdown struct {
	ElapsedHours  float64
	WorkHours     float64
	OvertimeHours float64
	TotalHours    float64
}

type Calculator struct {
	StandardHours float64
	logger        *slog.Logger
	onFailure     func()
}

type Option func(*Calculator)

// WithLogger sets the logger used for swallowed calculation errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithFailureHook registers fn to be called every time a calculation degrades to zero.
func WithFailureHook(fn func()) Option {
	return func(c *Calculator) {
		c.onFailure = fn
	}
}

func NewCalculator(standardHours float64, opts ...Option) *Calculator {
	if standardHours <= 0 {
		standardHours = DefaultStandardHours
	}
	c := &Calculator{
		StandardHours: standardHours,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WorkHours computes elapsed hours between two raw check-in/check-out strings.
// Absent or unparsable input yields 0; parse failures are logged, never returned.
func (c *Calculator) WorkHours(checkIn, checkOut string) float64 {
	if checkIn == "" || checkOut == "" {
		return 0
	}

	in, err := ParseInstant(checkIn)
	if err != nil {
		c.fail("check_in", checkIn, err)
		return 0
	}
	out, err := ParseInstant(checkOut)
	if err != nil {
		c.fail("check_out", checkOut, err)
		return 0
	}

	// A bare time next to a full timestamp is read on the timestamp's day.
	switch {
	case in.HasDate && !out.HasDate:
		out.Time = AnchorTimeOfDay(in.Time, out.Time)
	case !in.HasDate && out.HasDate:
		in.Time = AnchorTimeOfDay(out.Time, in.Time)
	}

	return c.Elapsed(in.Time, out.Time)
}

// Elapsed returns the hours from checkIn to checkOut. A checkOut earlier than
// checkIn is read as falling on the following day. Never negative.
func (c *Calculator) Elapsed(checkIn, checkOut time.Time) float64 {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	checkOut = NormalizeCheckOut(checkIn, checkOut)
	hours := checkOut.Sub(checkIn).Hours()
	if hours < 0 || math.IsNaN(hours) {
		return 0
	}
	return hours
}

// Split divides elapsed hours into regular and overtime hours.
func (c *Calculator) Split(hours float64) Breakdown {
	if hours < 0 || math.IsNaN(hours) {
		hours = 0
	}
	regular := math.Min(hours, c.StandardHours)
	overtime := math.Max(0, hours-c.StandardHours)
	return Breakdown{
		ElapsedHours:  hours,
		WorkHours:     regular,
		OvertimeHours: overtime,
		TotalHours:    regular,
	}
}

// Compute derives the hour breakdown from stored instants. Either side nil
// means zero hours.
func (c *Calculator) Compute(checkIn, checkOut *time.Time) Breakdown {
	if checkIn == nil || checkOut == nil {
		return c.Split(0)
	}
	return c.Split(c.Elapsed(*checkIn, *checkOut))
}

// ComputeStrings is Compute for raw string input.
func (c *Calculator) ComputeStrings(checkIn, checkOut string) Breakdown {
	return c.Split(c.WorkHours(checkIn, checkOut))
}

func (c *Calculator) fail(field, value string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, ErrEmptyTime) {
		level = slog.LevelDebug
	}
	c.logger.Log(context.Background(), level, "work hours calculation failed, using 0",
		"field", field,
		"value", value,
		"error", err,
	)
	if c.onFailure != nil {
		c.onFailure()
	}
}

// NormalizeCheckOut shifts checkOut by 24h when it precedes checkIn.
func NormalizeCheckOut(checkIn, checkOut time.Time) time.Time {
	if checkOut.Before(checkIn) {
		return checkOut.Add(24 * time.Hour)
	}
	return checkOut
}

// Round converts hours to a 2-decimal value for persistence.
func Round(hours float64) decimal.Decimal {
	return decimal.NewFromFloat(hours).Round(2)
}

// RoundFloat rounds hours to 2 decimals for API responses.
func RoundFloat(hours float64) float64 {
	f, _ := Round(hours).Float64()
	return f
}
