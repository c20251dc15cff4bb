package indicator

import (
	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// OBV is On-Balance Volume: a running total that adds the bar's volume when
// the close rises, subtracts it when the close falls, and holds when the
// close is unchanged. Parameterless; the accumulator starts at zero and the
// first value is emitted on the second bar.
type OBV struct {
	prevClose decimal.Decimal
	hasPrev   bool
	total     decimal.Decimal
	processed int
	ready     bool
}

// NewOBV creates an OBV streamer.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Name() string { return "obv" }

// RequiredPeriods: the first close-to-close comparison needs two bars.
func (o *OBV) RequiredPeriods() int { return 2 }

func (o *OBV) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, volumeBarError()
	}
	o.processed++

	if !o.hasPrev {
		o.prevClose = bar.Close
		o.hasPrev = true
		return nil, nil
	}

	switch {
	case bar.Close.GreaterThan(o.prevClose):
		o.total = o.total.Add(bar.Volume)
	case bar.Close.LessThan(o.prevClose):
		o.total = o.total.Sub(bar.Volume)
	}
	o.prevClose = bar.Close
	o.ready = true

	return series.NewResult(o.total, bar.Timestamp, o.metadata()), nil
}

func (o *OBV) Calculate(bars []series.Bar) ([]series.Result, error) {
	return runBatch(NewOBV(), bars)
}

func (o *OBV) Count() int { return o.processed }

func (o *OBV) IsReady() bool { return o.ready }

func (o *OBV) Reset() {
	o.prevClose = decimal.Zero
	o.hasPrev = false
	o.total = decimal.Zero
	o.processed = 0
	o.ready = false
}

func (o *OBV) metadata() map[string]interface{} {
	return map[string]interface{}{"indicator": "obv"}
}

func (o *OBV) Parameters() []Param { return nil }

func (o *OBV) Outputs() OutputSpec { return scalarOutput("obv") }

func obvFromOptions(opts Options) (Streamer, error) {
	if err := requireEmpty("obv", opts); err != nil {
		return nil, err
	}
	return NewOBV(), nil
}
