package indicator

import (
	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// AD is the Accumulation/Distribution line: a running sum of money-flow
// volume, where the money-flow multiplier ((close-low)-(high-close))/(high-low)
// places the close within the bar's range. A flat bar (high == low) has a
// multiplier of exactly zero. Parameterless.
type AD struct {
	total     decimal.Decimal
	processed int
	ready     bool
}

// NewAD creates an A/D streamer.
func NewAD() *AD {
	return &AD{total: decimal.Zero}
}

func (a *AD) Name() string { return "ad" }

func (a *AD) RequiredPeriods() int { return 1 }

func (a *AD) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, volumeBarError()
	}
	a.processed++

	a.total = a.total.Add(moneyFlowVolume(&bar))
	a.ready = true
	return series.NewResult(a.total, bar.Timestamp, a.metadata()), nil
}

// moneyFlowVolume is the money-flow multiplier times the bar's volume.
func moneyFlowVolume(bar *series.Bar) decimal.Decimal {
	rng := bar.High.Sub(bar.Low)
	if rng.IsZero() {
		return decimal.Zero
	}
	mult := bar.Close.Sub(bar.Low).Sub(bar.High.Sub(bar.Close)).Div(rng)
	return mult.Mul(bar.Volume)
}

func (a *AD) Calculate(bars []series.Bar) ([]series.Result, error) {
	return runBatch(NewAD(), bars)
}

func (a *AD) Count() int { return a.processed }

func (a *AD) IsReady() bool { return a.ready }

func (a *AD) Reset() {
	a.total = decimal.Zero
	a.processed = 0
	a.ready = false
}

func (a *AD) metadata() map[string]interface{} {
	return map[string]interface{}{"indicator": "ad"}
}

func (a *AD) Parameters() []Param { return nil }

func (a *AD) Outputs() OutputSpec { return scalarOutput("ad") }

func adFromOptions(opts Options) (Streamer, error) {
	if err := requireEmpty("ad", opts); err != nil {
		return nil, err
	}
	return NewAD(), nil
}
