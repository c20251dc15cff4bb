package indicator

import (
	"errors"
	"testing"
	"time"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

func TestVWAP_CloseVariant(t *testing.T) {
	vwap, err := NewVWAP(VWAPOptions{Variant: VWAPClose})
	if err != nil {
		t.Fatalf("NewVWAP failed: %v", err)
	}
	bars := []series.Bar{
		ohlcvBar(0, "100", "100", "100", "100", "1000"),
		ohlcvBar(1, "102", "102", "102", "102", "1500"),
	}
	results, err := feed(vwap, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Value.Equal(dec.MustFromString("100")) {
		t.Errorf("expected first VWAP 100, got %s", results[0].Value)
	}
	// (100*1000 + 102*1500) / 2500 = 101.2
	if !results[1].Value.Equal(dec.MustFromString("101.200000")) {
		t.Errorf("expected second VWAP 101.2, got %s", results[1].Value)
	}
}

func TestVWAP_ZeroVolumeReEmitsRunningAverage(t *testing.T) {
	vwap, _ := NewVWAP(VWAPOptions{Variant: VWAPClose})

	// No volume seen yet: no emission.
	res, err := vwap.Update(ohlcvBar(0, "100", "100", "100", "100", "0"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if res != nil {
		t.Fatalf("expected no result before any volume, got %v", res)
	}

	if _, err := vwap.Update(ohlcvBar(1, "100", "100", "100", "100", "1000")); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// Zero-volume bar after volume: re-emit the running average unchanged.
	res, err = vwap.Update(ohlcvBar(2, "200", "200", "200", "200", "0"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if res == nil || !res.Value.Equal(dec.MustFromString("100")) {
		t.Fatalf("expected re-emitted VWAP 100, got %v", res)
	}
}

func TestVWAP_DailySessionReset(t *testing.T) {
	vwap, _ := NewVWAP(VWAPOptions{Variant: VWAPClose, SessionReset: SessionDaily})

	day1 := ohlcvBar(0, "100", "100", "100", "100", "1000")
	day2 := ohlcvBar(0, "50", "50", "50", "50", "1000")
	day2.Timestamp = day1.Timestamp.Add(24 * time.Hour)

	if _, err := vwap.Update(day1); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	res, err := vwap.Update(day2)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	// The new session starts clean, so the first day's volume is gone.
	if !res.Value.Equal(dec.MustFromString("50")) {
		t.Errorf("expected VWAP 50 after session reset, got %s", res.Value)
	}
}

func TestVWAP_NegativeVolumeRejected(t *testing.T) {
	vwap, _ := NewVWAP(DefaultVWAPOptions())
	bad := ohlcvBar(0, "100", "101", "99", "100", "0")
	bad.Volume = dec.MustFromString("-5")
	_, err := vwap.Update(bad)
	var verr *series.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestVWAP_PriceOnlyRejected(t *testing.T) {
	vwap, _ := NewVWAP(DefaultVWAPOptions())
	_, err := vwap.Update(series.NewPriceBar(dec.MustFromString("100"), testStart))
	var ferr *series.InvalidDataFormatError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected InvalidDataFormatError, got %v", err)
	}
}
