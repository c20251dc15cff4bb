package indicator

import "testing"

func TestWMA_Weighting(t *testing.T) {
	wma, err := NewWMA(WMAOptions{Period: 3})
	if err != nil {
		t.Fatalf("NewWMA failed: %v", err)
	}

	// (1*1 + 2*2 + 3*3) / 6 = 14/6.
	results, err := feed(wma, closeBars("1", "2", "3"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	expected := d("14").Div(d("6")).Round(6)
	if !results[0].Value.Equal(expected) {
		t.Errorf("expected %s, got %s", expected, results[0].Value)
	}
}

func TestWMA_NewestWeighsMost(t *testing.T) {
	wma, _ := NewWMA(WMAOptions{Period: 4})
	bars := closeBars("10", "10", "10", "10", "30")
	results, err := feed(wma, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	// Window 10,10,10,30: (10+20+30+120)/10 = 18, versus a plain mean 15.
	last := results[len(results)-1]
	if !last.Value.Equal(d("18")) {
		t.Errorf("expected 18, got %s", last.Value)
	}
}

func TestHMA_WarmupLength(t *testing.T) {
	hma, err := NewHMA(HMAOptions{Period: 9})
	if err != nil {
		t.Fatalf("NewHMA failed: %v", err)
	}
	// sqrt(9) = 3, so the first value needs 9 + 3 - 1 bars.
	if hma.RequiredPeriods() != 11 {
		t.Fatalf("expected required periods 11, got %d", hma.RequiredPeriods())
	}

	bars := closeBars("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12")
	results, err := feed(hma, bars)
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != len(bars)-hma.RequiredPeriods()+1 {
		t.Errorf("expected %d results, got %d", len(bars)-hma.RequiredPeriods()+1, len(results))
	}
}

func TestHMA_TracksTrendCloserThanWMA(t *testing.T) {
	hma, _ := NewHMA(HMAOptions{Period: 9})
	wma, _ := NewWMA(WMAOptions{Period: 9})

	bars := closeBars("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12")
	hmaRes, err := feed(hma, bars)
	if err != nil {
		t.Fatalf("hma feed failed: %v", err)
	}
	wmaRes, err := feed(wma, bars)
	if err != nil {
		t.Fatalf("wma feed failed: %v", err)
	}
	// On a steady uptrend the hull average hugs price above the plain WMA.
	lastClose := bars[len(bars)-1].Close
	hmaGap := lastClose.Sub(hmaRes[len(hmaRes)-1].Value).Abs()
	wmaGap := lastClose.Sub(wmaRes[len(wmaRes)-1].Value).Abs()
	if !hmaGap.LessThan(wmaGap) {
		t.Errorf("expected HMA gap (%s) below WMA gap (%s)", hmaGap, wmaGap)
	}
}
