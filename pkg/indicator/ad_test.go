package indicator

import (
	"testing"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

func TestAD_CloseAtHigh(t *testing.T) {
	ad := NewAD()
	// Close at the high makes the money-flow multiplier exactly 1, so the
	// line equals the bar's volume.
	res, err := ad.Update(ohlcvBar(0, "100", "105", "99", "105", "1000"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if res == nil {
		t.Fatal("expected a result on the first bar")
	}
	if !res.Value.Equal(dec.MustFromString("1000")) {
		t.Errorf("expected A/D 1000, got %s", res.Value)
	}
}

func TestAD_CloseAtLowSubtracts(t *testing.T) {
	ad := NewAD()
	if _, err := ad.Update(ohlcvBar(0, "100", "105", "99", "105", "1000")); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	// Multiplier -1 at the low: 1000 - 400 = 600.
	res, err := ad.Update(ohlcvBar(1, "105", "106", "100", "100", "400"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !res.Value.Equal(dec.MustFromString("600")) {
		t.Errorf("expected A/D 600, got %s", res.Value)
	}
}

func TestAD_FlatBarContributesNothing(t *testing.T) {
	ad := NewAD()
	if _, err := ad.Update(ohlcvBar(0, "100", "105", "99", "105", "1000")); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	res, err := ad.Update(ohlcvBar(1, "100", "100", "100", "100", "5000"))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !res.Value.Equal(dec.MustFromString("1000")) {
		t.Errorf("expected flat bar to leave A/D at 1000, got %s", res.Value)
	}
}

func TestCMF_ExactWindow(t *testing.T) {
	cmf, err := NewCMF(CMFOptions{Period: 2})
	if err != nil {
		t.Fatalf("NewCMF failed: %v", err)
	}
	// Bar 1 multiplier +1 with volume 1000, bar 2 multiplier -1 with volume
	// 400: CMF = (1000 - 400) / 1400.
	results, err := feed(cmf, []series.Bar{
		ohlcvBar(0, "100", "105", "99", "105", "1000"),
		ohlcvBar(1, "105", "106", "100", "100", "400"),
	})
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Value.Equal(dec.MustFromString("0.428571")) {
		t.Errorf("expected CMF 0.428571, got %s", results[0].Value)
	}
}

func TestCMF_ZeroVolumeWindowIsZero(t *testing.T) {
	cmf, _ := NewCMF(CMFOptions{Period: 2})
	bars := []series.Bar{
		ohlcvBar(0, "100", "105", "99", "105", "0"),
		ohlcvBar(1, "105", "106", "100", "104", "0"),
	}
	results, err := feed(cmf, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 1 || !results[0].Value.IsZero() {
		t.Fatalf("expected zero CMF on a zero-volume window, got %v", results)
	}
}
