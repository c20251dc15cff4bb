package indicator

import (
	"testing"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

func TestOBV_RunningTotal(t *testing.T) {
	obv := NewOBV()
	bars := []series.Bar{
		ohlcvBar(0, "10", "10", "10", "10", "1000"),
		ohlcvBar(1, "10", "11", "10", "11", "500"),  // up: +500
		ohlcvBar(2, "11", "11", "10", "10", "300"),  // down: -300
		ohlcvBar(3, "10", "10", "10", "10", "9999"), // unchanged: hold
		ohlcvBar(4, "10", "12", "10", "12", "100"),  // up: +100
	}
	results, err := feed(obv, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	want := []string{"500", "200", "200", "300"}
	for i, w := range want {
		if !results[i].Value.Equal(dec.MustFromString(w)) {
			t.Errorf("index %d: expected OBV %s, got %s", i, w, results[i].Value)
		}
	}
}

func TestOBV_ResetClearsTotal(t *testing.T) {
	obv := NewOBV()
	if _, err := feed(obv, closeBars("10", "11", "12")); err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	obv.Reset()
	if obv.Count() != 0 || obv.IsReady() {
		t.Fatal("reset must clear count and readiness")
	}
	results, err := feed(obv, closeBars("10", "11"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if !results[0].Value.Equal(dec.MustFromString("1000")) {
		t.Errorf("expected fresh total 1000, got %s", results[0].Value)
	}
}
