package series

import (
	"testing"

	"github.com/shopspring/decimal"
)

func nums(vals ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vals))
	for i, v := range vals {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestWindows(t *testing.T) {
	wins := Windows(nums("1", "2", "3", "4"), 2)
	if len(wins) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(wins))
	}
	if !wins[0][0].Equal(decimal.NewFromInt(1)) || !wins[2][1].Equal(decimal.NewFromInt(4)) {
		t.Error("window contents out of order")
	}
	if Windows(nums("1"), 2) != nil {
		t.Error("expected nil for input shorter than size")
	}
	if Windows(nums("1", "2"), 0) != nil {
		t.Error("expected nil for size below 1")
	}
}

func TestMeanAndSum(t *testing.T) {
	vals := nums("2", "4", "6")
	if !Sum(vals).Equal(decimal.NewFromInt(12)) {
		t.Errorf("expected sum 12, got %s", Sum(vals))
	}
	if !Mean(vals).Equal(decimal.NewFromInt(4)) {
		t.Errorf("expected mean 4, got %s", Mean(vals))
	}
	if !Mean(nil).IsZero() {
		t.Error("expected zero mean for empty input")
	}
}

func TestVariance(t *testing.T) {
	vals := nums("2", "4", "4", "6")
	if !Variance(vals, false).Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected population variance 2, got %s", Variance(vals, false))
	}
	sample := Variance(vals, true)
	if !sample.GreaterThan(decimal.NewFromInt(2)) {
		t.Errorf("expected sample variance above 2, got %s", sample)
	}
	if !Variance(nums("5"), true).IsZero() {
		t.Error("sample variance of one value must be zero")
	}
}

func TestMeanAbsDeviation(t *testing.T) {
	// Mean 4, deviations 2,0,0,2.
	mad := MeanAbsDeviation(nums("2", "4", "4", "6"))
	if !mad.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected MAD 1, got %s", mad)
	}
}

func TestTrueRange(t *testing.T) {
	cur := &Bar{High: decimal.NewFromInt(14), Low: decimal.NewFromInt(10), Close: decimal.NewFromInt(12)}
	if !TrueRange(cur, nil).Equal(decimal.NewFromInt(4)) {
		t.Errorf("expected high-low on first bar, got %s", TrueRange(cur, nil))
	}

	// Gap down: the previous close dominates the bar's own range.
	prev := &Bar{Close: decimal.NewFromInt(20)}
	if !TrueRange(cur, prev).Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected gap true range 10, got %s", TrueRange(cur, prev))
	}
}

func TestTypicalPrice(t *testing.T) {
	bar := &Bar{High: decimal.NewFromInt(15), Low: decimal.NewFromInt(9), Close: decimal.NewFromInt(12)}
	if !TypicalPrice(bar).Equal(decimal.NewFromInt(12)) {
		t.Errorf("expected typical price 12, got %s", TypicalPrice(bar))
	}
}

func TestHighestHighLowestLow(t *testing.T) {
	bars := []Bar{
		{High: decimal.NewFromInt(12), Low: decimal.NewFromInt(9)},
		{High: decimal.NewFromInt(15), Low: decimal.NewFromInt(11)},
		{High: decimal.NewFromInt(13), Low: decimal.NewFromInt(8)},
	}
	hh, ll := HighestHighLowestLow(bars)
	if !hh.Equal(decimal.NewFromInt(15)) || !ll.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected 15/8, got %s/%s", hh, ll)
	}
}
