package indicator

import (
	"testing"
)

func TestEMA_SeedsWithSimpleMean(t *testing.T) {
	ema, err := NewEMA(EMAOptions{Period: 5})
	if err != nil {
		t.Fatalf("NewEMA failed: %v", err)
	}

	bars := closeBars("10", "11", "12", "13", "14")
	results, err := feed(ema, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	// First EMA is the plain mean of the first window.
	if !results[0].Value.Equal(d("12")) {
		t.Errorf("expected seed 12, got %s", results[0].Value)
	}
}

func TestEMA_Recurrence(t *testing.T) {
	ema, _ := NewEMA(EMAOptions{Period: 3})
	bars := closeBars("10", "10", "10", "20")
	results, err := feed(ema, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// alpha = 2/4 = 0.5; ema = 0.5*20 + 0.5*10 = 15.
	if !results[1].Value.Equal(d("15")) {
		t.Errorf("expected 15, got %s", results[1].Value)
	}
}

func TestEMA_RespondsFasterThanSMA(t *testing.T) {
	ema, _ := NewEMA(EMAOptions{Period: 5})
	sma, _ := NewSMA(SMAOptions{Period: 5})

	// Flat then a step up: the EMA must sit above the SMA while the step
	// propagates through the window.
	bars := closeBars("100", "100", "100", "100", "100", "110", "110")
	emaRes, err := feed(ema, bars)
	if err != nil {
		t.Fatalf("ema feed failed: %v", err)
	}
	smaRes, err := feed(sma, bars)
	if err != nil {
		t.Fatalf("sma feed failed: %v", err)
	}
	last := len(emaRes) - 1
	if !emaRes[last].Value.GreaterThan(smaRes[last].Value) {
		t.Errorf("expected EMA (%s) above SMA (%s) after step", emaRes[last].Value, smaRes[last].Value)
	}
}
