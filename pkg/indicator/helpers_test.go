package indicator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

var testStart = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// closeBars builds flat bars where open/high/low/close all carry the close
// price, one minute apart. Good enough for single-price indicators.
func closeBars(closes ...string) []series.Bar {
	bars := make([]series.Bar, len(closes))
	for i, c := range closes {
		p := d(c)
		bars[i] = series.Bar{
			Timestamp: testStart.Add(time.Duration(i) * time.Minute),
			Open:      p,
			High:      p,
			Low:       p,
			Close:     p,
			Volume:    decimal.NewFromInt(1000),
		}
	}
	return bars
}

// ohlcvBar builds one full bar at the i-th minute.
func ohlcvBar(i int, open, high, low, close, volume string) series.Bar {
	return series.Bar{
		Timestamp: testStart.Add(time.Duration(i) * time.Minute),
		Open:      d(open),
		High:      d(high),
		Low:       d(low),
		Close:     d(close),
		Volume:    d(volume),
	}
}

// feed pushes bars through a streamer and collects emitted results.
func feed(s Streamer, bars []series.Bar) ([]series.Result, error) {
	var out []series.Result
	for _, bar := range bars {
		res, err := s.Update(bar)
		if err != nil {
			return out, err
		}
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}
