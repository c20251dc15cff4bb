package series

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
)

func TestBarValidate(t *testing.T) {
	good := Bar{
		Open:   decimal.NewFromInt(10),
		High:   decimal.NewFromInt(12),
		Low:    decimal.NewFromInt(9),
		Close:  decimal.NewFromInt(11),
		Volume: decimal.NewFromInt(1000),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid bar rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Bar)
		field  string
	}{
		{"negative close", func(b *Bar) { b.Close = decimal.NewFromInt(-1) }, "close"},
		{"negative volume", func(b *Bar) { b.Volume = decimal.NewFromInt(-1) }, "volume"},
		{"high below low", func(b *Bar) { b.High = decimal.NewFromInt(8) }, "high"},
	}
	for _, tc := range cases {
		bar := good
		tc.mutate(&bar)
		err := bar.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
			continue
		}
		if verr.Field != tc.field {
			t.Errorf("%s: expected field %q, got %q", tc.name, tc.field, verr.Field)
		}
	}
}

func TestPriceBars(t *testing.T) {
	prices := []decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(11)}
	bars := PriceBars(prices)
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	for i, bar := range bars {
		if !bar.PriceOnly {
			t.Errorf("index %d: expected PriceOnly", i)
		}
		if !bar.Close.Equal(prices[i]) || !bar.High.Equal(prices[i]) {
			t.Errorf("index %d: price not copied into all fields", i)
		}
		if !bar.Volume.IsZero() {
			t.Errorf("index %d: expected zero volume", i)
		}
	}
}

func TestBarPriceSource(t *testing.T) {
	bar := Bar{
		Open:  decimal.NewFromInt(1),
		High:  decimal.NewFromInt(2),
		Low:   decimal.NewFromInt(3),
		Close: decimal.NewFromInt(4),
	}
	if !bar.Price(SourceOpen).Equal(decimal.NewFromInt(1)) {
		t.Error("open source mismatch")
	}
	if !bar.Price(SourceLow).Equal(decimal.NewFromInt(3)) {
		t.Error("low source mismatch")
	}
	if !bar.Price(SourceClose).Equal(decimal.NewFromInt(4)) {
		t.Error("close source mismatch")
	}
	if Source("median").Valid() {
		t.Error("unknown source must not validate")
	}
}

func TestNewResultRoundsForDisplay(t *testing.T) {
	ts := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	raw := decimal.RequireFromString("1.23456789")
	res := NewResult(raw, ts, map[string]interface{}{"indicator": "sma"})
	if !res.Value.Equal(decimal.RequireFromString("1.234568")) {
		t.Errorf("expected 6-place rounding, got %s", res.Value)
	}
	if !res.Timestamp.Equal(ts) {
		t.Error("timestamp not carried through")
	}
}

func TestNewMultiResultRoundsEveryField(t *testing.T) {
	values := map[string]decimal.Decimal{
		"upper": decimal.RequireFromString("10.9999995"),
		"lower": dec.One,
	}
	res := NewMultiResult(values, time.Time{}, nil)
	if !res.Values["upper"].Equal(decimal.RequireFromString("11")) {
		t.Errorf("expected upper rounded to 11, got %s", res.Values["upper"])
	}
	if !res.Values["lower"].Equal(dec.One) {
		t.Errorf("expected lower unchanged, got %s", res.Values["lower"])
	}
}
