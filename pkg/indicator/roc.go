package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// ROCOptions configures the Rate of Change.
type ROCOptions struct {
	Period int
	Source series.Source
}

// DefaultROCOptions returns the standard 12-period close ROC.
func DefaultROCOptions() ROCOptions {
	return ROCOptions{Period: 12, Source: series.SourceClose}
}

// ROC is (price - price_n) / price_n * 100 where price_n is the price period
// bars back. A zero base price surfaces as a CalculationError rather than an
// unchecked division.
type ROC struct {
	opts      ROCOptions
	name      string
	prices    []decimal.Decimal
	processed int
	ready     bool
}

// NewROC creates a ROC streamer, validating the options first.
func NewROC(opts ROCOptions) (*ROC, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &ROC{
		opts:   opts,
		name:   fmt.Sprintf("roc_%d", opts.Period),
		prices: make([]decimal.Decimal, 0, opts.Period+1),
	}, nil
}

func (r *ROC) Name() string { return r.name }

// RequiredPeriods: one return over period bars needs period+1 prices.
func (r *ROC) RequiredPeriods() int { return r.opts.Period + 1 }

func (r *ROC) Update(bar series.Bar) (*series.Result, error) {
	price := bar.Price(r.opts.Source)

	// Build the next window and divide before touching state, so a zero
	// base price surfaces without corrupting the streamer.
	next := append(append(make([]decimal.Decimal, 0, r.opts.Period+1), r.prices...), price)
	if len(next) > r.opts.Period+1 {
		next = next[1:]
	}

	var value decimal.Decimal
	full := len(next) == r.opts.Period+1
	if full {
		base := next[0]
		ratio, err := dec.Div(price.Sub(base), base)
		if err != nil {
			return nil, &series.CalculationError{Operation: "roc", Reason: "base price is zero"}
		}
		value = ratio.Mul(dec.Hundred)
	}

	r.prices = next
	r.processed++
	if !full {
		return nil, nil
	}
	r.ready = true

	meta := r.metadata()
	meta["signal"] = string(directionSignal(value))
	return series.NewResult(value, bar.Timestamp, meta), nil
}

func (r *ROC) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewROC(r.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (r *ROC) Count() int { return r.processed }

func (r *ROC) IsReady() bool { return r.ready }

func (r *ROC) Reset() {
	r.prices = r.prices[:0]
	r.processed = 0
	r.ready = false
}

func (r *ROC) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "roc",
		"period":    r.opts.Period,
		"source":    string(r.opts.Source),
	}
}

func (r *ROC) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 12, Description: "lookback distance"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (r *ROC) Outputs() OutputSpec { return scalarOutput("roc") }

// directionSignal tags positive values bullish and negative values bearish.
func directionSignal(value decimal.Decimal) series.Signal {
	if value.IsPositive() {
		return series.SignalBullish
	}
	if value.IsNegative() {
		return series.SignalBearish
	}
	return series.SignalNeutral
}

func rocFromOptions(o Options) (Streamer, error) {
	opts := DefaultROCOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewROC(opts)
}
