package indicator

import (
	"errors"
	"testing"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

func TestVolatility_ConstantPricesAreZero(t *testing.T) {
	vol, err := NewVolatility(VolatilityOptions{Period: 3, Annualization: 252, Method: VolatilityHistorical})
	if err != nil {
		t.Fatalf("NewVolatility failed: %v", err)
	}
	if vol.RequiredPeriods() != 4 {
		t.Fatalf("expected required periods 4, got %d", vol.RequiredPeriods())
	}
	results, err := feed(vol, closeBars("100", "100", "100", "100", "100"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if !res.Value.IsZero() {
			t.Errorf("index %d: expected zero volatility, got %s", i, res.Value)
		}
	}
}

func TestVolatility_HistoricalIsPositiveWhenPricesMove(t *testing.T) {
	vol, _ := NewVolatility(VolatilityOptions{Period: 3, Annualization: 252})
	results, err := feed(vol, closeBars("100", "102", "99", "103", "101"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	for i, res := range results {
		if !res.Value.IsPositive() {
			t.Errorf("index %d: expected positive volatility, got %s", i, res.Value)
		}
	}
}

func TestVolatility_RangeMethodsRejectPriceOnly(t *testing.T) {
	for _, method := range []VolatilityMethod{VolatilityGarmanKlass, VolatilityParkinson} {
		vol, err := NewVolatility(VolatilityOptions{Period: 3, Annualization: 252, Method: method})
		if err != nil {
			t.Fatalf("NewVolatility(%s) failed: %v", method, err)
		}
		_, err = vol.Update(series.NewPriceBar(dec.MustFromString("100"), testStart))
		var ferr *series.InvalidDataFormatError
		if !errors.As(err, &ferr) {
			t.Errorf("%s: expected InvalidDataFormatError, got %v", method, err)
		}
	}
}

func TestVolatility_ParkinsonUsesRange(t *testing.T) {
	vol, _ := NewVolatility(VolatilityOptions{Period: 2, Annualization: 252, Method: VolatilityParkinson})
	bars := []series.Bar{
		ohlcvBar(0, "100", "104", "98", "101", "1000"),
		ohlcvBar(1, "101", "103", "99", "102", "1000"),
	}
	results, err := feed(vol, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Value.IsPositive() {
		t.Errorf("expected positive Parkinson volatility, got %s", results[0].Value)
	}
}

func TestVolatility_InvalidAnnualization(t *testing.T) {
	if _, err := NewVolatility(VolatilityOptions{Period: 20, Annualization: -1}); err == nil {
		t.Fatal("expected error for negative annualization")
	}
}
