package series

import (
	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
)

// Windows returns every contiguous sub-slice of length size, oldest first.
// The result has len(vals)-size+1 entries and is empty when the input is
// shorter than size. Sub-slices alias the input; callers must not mutate.
func Windows(vals []decimal.Decimal, size int) [][]decimal.Decimal {
	if size < 1 || len(vals) < size {
		return nil
	}
	out := make([][]decimal.Decimal, 0, len(vals)-size+1)
	for i := 0; i+size <= len(vals); i++ {
		out = append(out, vals[i:i+size])
	}
	return out
}

// Mean returns the arithmetic mean of vals, zero for an empty slice.
func Mean(vals []decimal.Decimal) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	return Sum(vals).Div(dec.FromInt(int64(len(vals))))
}

// Sum returns the sum of vals.
func Sum(vals []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vals {
		total = total.Add(v)
	}
	return total
}

// Variance returns the variance of vals. Population variance (divide by N)
// is the default everywhere; sample=true divides by N-1 for the indicators
// that explicitly ask for it.
func Variance(vals []decimal.Decimal, sample bool) decimal.Decimal {
	n := len(vals)
	if n == 0 {
		return decimal.Zero
	}
	divisor := n
	if sample {
		if n < 2 {
			return decimal.Zero
		}
		divisor = n - 1
	}
	mean := Mean(vals)
	total := decimal.Zero
	for _, v := range vals {
		d := v.Sub(mean)
		total = total.Add(d.Mul(d))
	}
	return total.Div(dec.FromInt(int64(divisor)))
}

// StdDev returns the population standard deviation of vals. The square root
// goes through the float bridge in pkg/dec.
func StdDev(vals []decimal.Decimal) decimal.Decimal {
	return dec.Sqrt(Variance(vals, false))
}

// SampleStdDev returns the sample (N-1) standard deviation of vals.
func SampleStdDev(vals []decimal.Decimal) decimal.Decimal {
	return dec.Sqrt(Variance(vals, true))
}

// MeanAbsDeviation returns the mean absolute deviation of vals around their
// mean. Used by CCI.
func MeanAbsDeviation(vals []decimal.Decimal) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	mean := Mean(vals)
	total := decimal.Zero
	for _, v := range vals {
		total = total.Add(v.Sub(mean).Abs())
	}
	return total.Div(dec.FromInt(int64(len(vals))))
}

// TrueRange computes max(high-low, |high-prevClose|, |low-prevClose|).
// On the first bar (prev == nil) it degrades to high-low.
func TrueRange(cur *Bar, prev *Bar) decimal.Decimal {
	hl := cur.High.Sub(cur.Low)
	if prev == nil {
		return hl
	}
	hc := cur.High.Sub(prev.Close).Abs()
	lc := cur.Low.Sub(prev.Close).Abs()
	return dec.Max(hl, dec.Max(hc, lc))
}

// TypicalPrice returns (high + low + close) / 3.
func TypicalPrice(b *Bar) decimal.Decimal {
	return b.High.Add(b.Low).Add(b.Close).Div(dec.Three)
}

// Prices extracts the selected price field from every bar.
func Prices(bars []Bar, src Source) []decimal.Decimal {
	out := make([]decimal.Decimal, len(bars))
	for i := range bars {
		out[i] = bars[i].Price(src)
	}
	return out
}

// Closes extracts the close field from every bar.
func Closes(bars []Bar) []decimal.Decimal {
	return Prices(bars, SourceClose)
}

// Volumes extracts the volume field from every bar.
func Volumes(bars []Bar) []decimal.Decimal {
	out := make([]decimal.Decimal, len(bars))
	for i := range bars {
		out[i] = bars[i].Volume
	}
	return out
}

// HighestHighLowestLow scans bars for the extreme high and low.
func HighestHighLowestLow(bars []Bar) (decimal.Decimal, decimal.Decimal) {
	hh := bars[0].High
	ll := bars[0].Low
	for i := 1; i < len(bars); i++ {
		hh = dec.Max(hh, bars[i].High)
		ll = dec.Min(ll, bars[i].Low)
	}
	return hh, ll
}
