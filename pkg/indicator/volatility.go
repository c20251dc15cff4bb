package indicator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// VolatilityMethod selects the volatility estimator.
type VolatilityMethod string

const (
	VolatilityHistorical  VolatilityMethod = "historical"
	VolatilityGarmanKlass VolatilityMethod = "garman_klass"
	VolatilityParkinson   VolatilityMethod = "parkinson"
)

// VolatilityOptions configures the Volatility Index.
type VolatilityOptions struct {
	Period        int
	Annualization int
	Method        VolatilityMethod
	Source        series.Source
}

// DefaultVolatilityOptions returns a 20-period historical estimator
// annualized over 252 trading days.
func DefaultVolatilityOptions() VolatilityOptions {
	return VolatilityOptions{
		Period:        20,
		Annualization: 252,
		Method:        VolatilityHistorical,
		Source:        series.SourceClose,
	}
}

// Volatility estimates annualized volatility, expressed as a percentage.
// Historical is the standard deviation of log returns scaled by the square
// root of the annualization factor. Garman-Klass and Parkinson are
// range-based estimators averaged over the window; both need full OHLC bars
// and reject price-only input.
type Volatility struct {
	opts      VolatilityOptions
	name      string
	window    []decimal.Decimal // prices (historical) or per-bar estimates
	processed int
	ready     bool
}

// NewVolatility creates a Volatility streamer, validating the options first.
func NewVolatility(opts VolatilityOptions) (*Volatility, error) {
	if opts.Method == "" {
		opts.Method = VolatilityHistorical
	}
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if opts.Annualization == 0 {
		opts.Annualization = 252
	}
	if err := validatePeriod("period", opts.Period, 2); err != nil {
		return nil, err
	}
	if opts.Annualization < 1 {
		return nil, invalidParam("annualization", opts.Annualization, "a positive integer")
	}
	switch opts.Method {
	case VolatilityHistorical, VolatilityGarmanKlass, VolatilityParkinson:
	default:
		return nil, invalidParam("method", string(opts.Method), "one of historical, garman_klass, parkinson")
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	capacity := opts.Period
	if opts.Method == VolatilityHistorical {
		capacity = opts.Period + 1
	}
	return &Volatility{
		opts:   opts,
		name:   fmt.Sprintf("volatility_%d_%s", opts.Period, opts.Method),
		window: make([]decimal.Decimal, 0, capacity),
	}, nil
}

func (v *Volatility) Name() string { return v.name }

// RequiredPeriods: the historical method needs one extra bar to form the
// first log return.
func (v *Volatility) RequiredPeriods() int {
	if v.opts.Method == VolatilityHistorical {
		return v.opts.Period + 1
	}
	return v.opts.Period
}

func (v *Volatility) Update(bar series.Bar) (*series.Result, error) {
	var sample decimal.Decimal
	switch v.opts.Method {
	case VolatilityHistorical:
		sample = bar.Price(v.opts.Source)
		if !sample.IsPositive() {
			return nil, &series.CalculationError{Operation: "volatility", Reason: "non-positive price for log return"}
		}
	default:
		est, err := v.rangeEstimate(&bar)
		if err != nil {
			return nil, err
		}
		sample = est
	}

	maxLen := v.RequiredPeriods()
	v.window = append(v.window, sample)
	if len(v.window) > maxLen {
		copy(v.window, v.window[1:])
		v.window = v.window[:len(v.window)-1]
	}
	v.processed++

	if len(v.window) < maxLen {
		return nil, nil
	}
	v.ready = true

	annual := dec.FromInt(int64(v.opts.Annualization))
	var value decimal.Decimal
	if v.opts.Method == VolatilityHistorical {
		returns := make([]decimal.Decimal, 0, v.opts.Period)
		for i := 1; i < len(v.window); i++ {
			returns = append(returns, dec.Ln(v.window[i].Div(v.window[i-1])))
		}
		value = series.StdDev(returns).Mul(dec.Sqrt(annual)).Mul(dec.Hundred)
	} else {
		value = dec.Sqrt(series.Mean(v.window).Mul(annual)).Mul(dec.Hundred)
	}

	return series.NewResult(value, bar.Timestamp, v.metadata()), nil
}

// rangeEstimate computes the per-bar Garman-Klass or Parkinson term.
func (v *Volatility) rangeEstimate(bar *series.Bar) (decimal.Decimal, error) {
	if bar.PriceOnly {
		return decimal.Zero, fullBarError()
	}
	if !bar.High.IsPositive() || !bar.Low.IsPositive() {
		return decimal.Zero, &series.CalculationError{Operation: "volatility", Reason: "non-positive high or low"}
	}
	hl := dec.Ln(bar.High.Div(bar.Low))
	hl2 := hl.Mul(hl)

	if v.opts.Method == VolatilityParkinson {
		return hl2.Div(dec.Four.Mul(decimal.NewFromFloat(math.Ln2))), nil
	}

	if !bar.Close.IsPositive() || !bar.Open.IsPositive() {
		return decimal.Zero, &series.CalculationError{Operation: "volatility", Reason: "non-positive open or close"}
	}
	co := dec.Ln(bar.Close.Div(bar.Open))
	co2 := co.Mul(co)
	k := dec.Two.Mul(decimal.NewFromFloat(math.Ln2)).Sub(dec.One)
	return hl2.Sub(k.Mul(co2)), nil
}

func (v *Volatility) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewVolatility(v.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (v *Volatility) Count() int { return v.processed }

func (v *Volatility) IsReady() bool { return v.ready }

func (v *Volatility) Reset() {
	v.window = v.window[:0]
	v.processed = 0
	v.ready = false
}

func (v *Volatility) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":     "volatility",
		"period":        v.opts.Period,
		"annualization": v.opts.Annualization,
		"method":        string(v.opts.Method),
		"source":        string(v.opts.Source),
	}
}

func (v *Volatility) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "estimation window"},
		{Name: "annualization", Type: "int", Default: 252, Description: "periods per year"},
		{Name: "method", Type: "enum", Default: "historical", Enum: []string{"historical", "garman_klass", "parkinson"}, Description: "estimator"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field (historical only)"},
	}
}

func (v *Volatility) Outputs() OutputSpec { return scalarOutput("volatility") }

func volatilityFromOptions(o Options) (Streamer, error) {
	opts := DefaultVolatilityOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Annualization, err = o.intOption("annualization", opts.Annualization); err != nil {
		return nil, err
	}
	m, err := o.stringOption("method", string(opts.Method))
	if err != nil {
		return nil, err
	}
	opts.Method = VolatilityMethod(m)
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewVolatility(opts)
}
