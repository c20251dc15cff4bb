package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// ATRSmoothing selects the smoothing applied to the true range series.
type ATRSmoothing string

const (
	ATRSmoothingRMA ATRSmoothing = "rma"
	ATRSmoothingEMA ATRSmoothing = "ema"
	ATRSmoothingSMA ATRSmoothing = "sma"
)

// ATROptions configures the Average True Range.
type ATROptions struct {
	Period    int
	Smoothing ATRSmoothing
}

// DefaultATROptions returns the standard 14-period Wilder (RMA) ATR.
func DefaultATROptions() ATROptions {
	return ATROptions{Period: 14, Smoothing: ATRSmoothingRMA}
}

// ATR smooths the true range series. The RMA variant is Wilder's recurrence
// ((period-1)*prev + tr)/period, seeded by the first bar's true range; the
// first bar's true range itself degrades to high-low since there is no prior
// close. A flat bar whose high, low, and previous close coincide contributes
// a true range of exactly zero.
type ATR struct {
	opts      ATROptions
	name      string
	rma       *rmaCore
	ema       *emaCore
	sma       *smaCore
	prev      *series.Bar
	processed int
	ready     bool
}

// NewATR creates an ATR streamer, validating the options first.
func NewATR(opts ATROptions) (*ATR, error) {
	if opts.Smoothing == "" {
		opts.Smoothing = ATRSmoothingRMA
	}
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	a := &ATR{
		opts: opts,
		name: fmt.Sprintf("atr_%d", opts.Period),
	}
	switch opts.Smoothing {
	case ATRSmoothingRMA:
		a.rma = newRMACore(opts.Period)
	case ATRSmoothingEMA:
		a.ema = newEMACore(opts.Period)
	case ATRSmoothingSMA:
		a.sma = newSMACore(opts.Period)
	default:
		return nil, invalidParam("smoothing", string(opts.Smoothing), "one of rma, ema, sma")
	}
	return a, nil
}

func (a *ATR) Name() string { return a.name }

func (a *ATR) RequiredPeriods() int { return a.opts.Period }

func (a *ATR) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, fullBarError()
	}

	tr := series.TrueRange(&bar, a.prev)
	prevBar := bar
	a.prev = &prevBar
	a.processed++

	var value decimal.Decimal
	var warm bool
	switch a.opts.Smoothing {
	case ATRSmoothingEMA:
		value, warm = a.ema.update(tr)
	case ATRSmoothingSMA:
		value, warm = a.sma.update(tr)
	default:
		value = a.rma.update(tr)
		warm = a.processed >= a.opts.Period
	}

	if !warm {
		return nil, nil
	}
	a.ready = true
	return series.NewResult(value, bar.Timestamp, a.metadata()), nil
}

func (a *ATR) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewATR(a.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (a *ATR) Count() int { return a.processed }

func (a *ATR) IsReady() bool { return a.ready }

func (a *ATR) Reset() {
	if a.rma != nil {
		a.rma.reset()
	}
	if a.ema != nil {
		a.ema.reset()
	}
	if a.sma != nil {
		a.sma.reset()
	}
	a.prev = nil
	a.processed = 0
	a.ready = false
}

func (a *ATR) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "atr",
		"period":    a.opts.Period,
		"smoothing": string(a.opts.Smoothing),
	}
}

func (a *ATR) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 14, Description: "smoothing period"},
		{Name: "smoothing", Type: "enum", Default: "rma", Enum: []string{"rma", "ema", "sma"}, Description: "true range smoothing"},
	}
}

func (a *ATR) Outputs() OutputSpec { return scalarOutput("atr") }

func atrFromOptions(o Options) (Streamer, error) {
	opts := DefaultATROptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	s, err := o.stringOption("smoothing", string(opts.Smoothing))
	if err != nil {
		return nil, err
	}
	opts.Smoothing = ATRSmoothing(s)
	return NewATR(opts)
}
