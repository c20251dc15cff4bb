// Package series holds the OHLCV data model, the shared result record, the
// structured error taxonomy, and the windowed statistics every indicator
// builds on.
package series

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
)

// Bar represents one OHLCV point. PriceOnly marks bars built from a bare
// price sequence (no real OHLC shape, no volume); indicators that need the
// full bar reject those.
type Bar struct {
	Symbol    string          `json:"symbol,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
	PriceOnly bool            `json:"price_only,omitempty"`
}

// NewPriceBar wraps a single price into a Bar so price-only sequences flow
// through the same pipeline. All four price fields carry the value.
func NewPriceBar(price decimal.Decimal, ts time.Time) Bar {
	return Bar{
		Timestamp: ts,
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		PriceOnly: true,
	}
}

// PriceBars converts a bare price sequence into bars, index-ordered with
// zero timestamps. Used by callers that have no bar times at all.
func PriceBars(prices []decimal.Decimal) []Bar {
	bars := make([]Bar, len(prices))
	for i, p := range prices {
		bars[i] = NewPriceBar(p, time.Time{})
	}
	return bars
}

// Validate checks value-level sanity: non-negative prices and volume, and
// high >= low. The indicator math itself assumes these hold; this is the
// boundary check services run before feeding the engine.
func (b *Bar) Validate() error {
	if b.Open.IsNegative() {
		return &ValidationError{Field: "open", Value: b.Open.String(), Constraint: "must not be negative"}
	}
	if b.High.IsNegative() {
		return &ValidationError{Field: "high", Value: b.High.String(), Constraint: "must not be negative"}
	}
	if b.Low.IsNegative() {
		return &ValidationError{Field: "low", Value: b.Low.String(), Constraint: "must not be negative"}
	}
	if b.Close.IsNegative() {
		return &ValidationError{Field: "close", Value: b.Close.String(), Constraint: "must not be negative"}
	}
	if b.Volume.IsNegative() {
		return &ValidationError{Field: "volume", Value: b.Volume.String(), Constraint: "must not be negative"}
	}
	if b.High.LessThan(b.Low) {
		return &ValidationError{Field: "high", Value: b.High.String(), Constraint: "must not be below low"}
	}
	return nil
}

// Source selects which price field single-price indicators read.
type Source string

const (
	SourceOpen  Source = "open"
	SourceHigh  Source = "high"
	SourceLow   Source = "low"
	SourceClose Source = "close"
)

// Valid reports whether s names a known price field.
func (s Source) Valid() bool {
	switch s {
	case SourceOpen, SourceHigh, SourceLow, SourceClose:
		return true
	}
	return false
}

// Price extracts the selected field from a bar. Unknown sources fall back to
// close; the options layer validates before this is reached.
func (b *Bar) Price(src Source) decimal.Decimal {
	switch src {
	case SourceOpen:
		return b.Open
	case SourceHigh:
		return b.High
	case SourceLow:
		return b.Low
	default:
		return b.Close
	}
}

// Result is one emitted indicator value. Scalar indicators fill Value;
// multi-output indicators (Bollinger, MACD, Stochastic) fill Values with a
// small fixed set of named components. Metadata always carries the indicator
// name and the effective parameters; oscillators add a "signal" tag.
type Result struct {
	Value     decimal.Decimal            `json:"value,omitempty"`
	Values    map[string]decimal.Decimal `json:"values,omitempty"`
	Timestamp time.Time                  `json:"timestamp"`
	Metadata  map[string]interface{}     `json:"metadata"`
}

// NewResult builds a scalar result, applying the display rounding.
func NewResult(value decimal.Decimal, ts time.Time, metadata map[string]interface{}) *Result {
	return &Result{
		Value:     dec.Display(value),
		Timestamp: ts,
		Metadata:  metadata,
	}
}

// NewMultiResult builds a multi-output result, rounding every component.
func NewMultiResult(values map[string]decimal.Decimal, ts time.Time, metadata map[string]interface{}) *Result {
	rounded := make(map[string]decimal.Decimal, len(values))
	for k, v := range values {
		rounded[k] = dec.Display(v)
	}
	return &Result{
		Values:    rounded,
		Timestamp: ts,
		Metadata:  metadata,
	}
}

// Signal is the qualitative tag oscillators attach to results.
type Signal string

const (
	SignalNeutral    Signal = "neutral"
	SignalBullish    Signal = "bullish"
	SignalBearish    Signal = "bearish"
	SignalOverbought Signal = "overbought"
	SignalOversold   Signal = "oversold"
)
