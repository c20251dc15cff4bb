package indicator

import (
	"errors"
	"testing"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

func stochBars() []series.Bar {
	return []series.Bar{
		ohlcvBar(0, "10", "12", "9", "11", "1000"),
		ohlcvBar(1, "11", "13", "10", "12", "1100"),
		ohlcvBar(2, "12", "14", "11", "13", "1200"),
		ohlcvBar(3, "13", "15", "12", "14", "1300"),
		ohlcvBar(4, "14", "16", "13", "15", "1400"),
	}
}

func TestStochastic_KAtRangeTop(t *testing.T) {
	stoch, err := NewStochastic(StochasticOptions{KPeriod: 3, DPeriod: 2})
	if err != nil {
		t.Fatalf("NewStochastic failed: %v", err)
	}
	results, err := feed(stoch, stochBars())
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Over bars 0..2 the range is low 9, high 14; close 13 sits at
	// (13-9)/(14-9)*100 = 80.
	first := results[0]
	if !first.Values["k"].Equal(dec.MustFromString("80")) {
		t.Errorf("expected %%K 80, got %s", first.Values["k"])
	}
	if _, ok := first.Values["d"]; ok {
		t.Error("expected %D absent before its smoothing window fills")
	}
	if _, ok := results[1].Values["d"]; !ok {
		t.Error("expected %D present from the second emission")
	}
}

func TestStochastic_CollapsedRangeIsFifty(t *testing.T) {
	stoch, _ := NewStochastic(StochasticOptions{KPeriod: 3, DPeriod: 3})
	results, err := feed(stoch, closeBars("100", "100", "100", "100"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	for i, res := range results {
		if !res.Values["k"].Equal(dec.Fifty) {
			t.Errorf("index %d: expected %%K 50 on a flat range, got %s", i, res.Values["k"])
		}
	}
}

func TestStochastic_RejectsPriceOnlyBars(t *testing.T) {
	stoch, _ := NewStochastic(DefaultStochasticOptions())
	_, err := stoch.Update(series.NewPriceBar(dec.MustFromString("100"), testStart))
	var ferr *series.InvalidDataFormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected InvalidDataFormatError, got %v", err)
	}
	if stoch.Count() != 0 {
		t.Errorf("rejected bar must not advance count, got %d", stoch.Count())
	}
}
