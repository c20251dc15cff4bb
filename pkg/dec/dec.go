// Package dec is the decimal arithmetic substrate shared by all indicator
// math. It is a thin layer over shopspring/decimal that adds the pieces the
// indicators need: safe construction from floats (NaN/Inf rejected at the
// boundary), division that returns an error instead of panicking on a zero
// divisor, and sqrt/ln via an IEEE-double bridge (decimal has no closed form
// for either; the precision loss is accepted).
package dec

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fractional digits applied to a value just
// before it is placed into a result. Intermediate computation is unrounded.
const DisplayPlaces = 6

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Two     = decimal.NewFromInt(2)
	Three   = decimal.NewFromInt(3)
	Four    = decimal.NewFromInt(4)
	Fifty   = decimal.NewFromInt(50)
	Hundred = decimal.NewFromInt(100)
)

// FromFloat converts an IEEE double into a decimal, rejecting NaN and ±Inf.
// All float input enters indicator math through this function.
func FromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("non-finite value: NaN")
	}
	if math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("non-finite value: %f", f)
	}
	return decimal.NewFromFloat(f), nil
}

// MustFromString parses a decimal literal, panicking on malformed input.
// Intended for constants and test fixtures only.
func MustFromString(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Div divides a by b, returning an error when b is zero. Indicators branch on
// known-zero divisors before calling this; the error path covers divisors that
// were not pre-checked.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, fmt.Errorf("division by zero")
	}
	return a.Div(b), nil
}

// Sqrt computes the square root through the float64 bridge.
func Sqrt(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(math.Sqrt(f))
}

// Ln computes the natural logarithm through the float64 bridge. The argument
// must be positive; callers branch on non-positive values first.
func Ln(d decimal.Decimal) decimal.Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(math.Log(f))
}

// Display rounds a value to the shared display precision.
func Display(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// FromInt wraps decimal.NewFromInt for symmetry with FromFloat.
func FromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// Max returns the larger of two decimals.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}

// Min returns the smaller of two decimals.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThanOrEqual(b) {
		return a
	}
	return b
}
