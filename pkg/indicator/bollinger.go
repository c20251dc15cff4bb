package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// BollingerOptions configures Bollinger Bands.
type BollingerOptions struct {
	Period     int
	Multiplier decimal.Decimal
	Source     series.Source
}

// DefaultBollingerOptions returns the standard 20-period, 2x configuration.
func DefaultBollingerOptions() BollingerOptions {
	return BollingerOptions{Period: 20, Multiplier: decimal.NewFromInt(2), Source: series.SourceClose}
}

// Bollinger emits upper/middle/lower/percent_b/bandwidth per bar. The middle
// band is the SMA, the deviation is multiplier times the population standard
// deviation. %B is (price-lower)/(upper-lower)*100, defined as 50 when the
// bands collapse; bandwidth is (upper-lower)/middle*100, defined as 0 when
// the middle band is zero.
type Bollinger struct {
	opts      BollingerOptions
	name      string
	prices    []decimal.Decimal
	processed int
	ready     bool
}

// NewBollinger creates a Bollinger streamer, validating the options first.
func NewBollinger(opts BollingerOptions) (*Bollinger, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if opts.Multiplier.IsZero() {
		opts.Multiplier = DefaultBollingerOptions().Multiplier
	}
	if err := validatePeriod("period", opts.Period, 2); err != nil {
		return nil, err
	}
	if !opts.Multiplier.IsPositive() {
		return nil, invalidParam("multiplier", opts.Multiplier.String(), "a positive decimal")
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &Bollinger{
		opts:   opts,
		name:   fmt.Sprintf("bollinger_%d", opts.Period),
		prices: make([]decimal.Decimal, 0, opts.Period),
	}, nil
}

func (b *Bollinger) Name() string { return b.name }

func (b *Bollinger) RequiredPeriods() int { return b.opts.Period }

func (b *Bollinger) Update(bar series.Bar) (*series.Result, error) {
	price := bar.Price(b.opts.Source)
	b.prices = append(b.prices, price)
	if len(b.prices) > b.opts.Period {
		copy(b.prices, b.prices[1:])
		b.prices = b.prices[:len(b.prices)-1]
	}
	b.processed++

	if len(b.prices) < b.opts.Period {
		return nil, nil
	}
	b.ready = true

	middle := series.Mean(b.prices)
	deviation := b.opts.Multiplier.Mul(series.StdDev(b.prices))
	upper := middle.Add(deviation)
	lower := middle.Sub(deviation)

	percentB := dec.Fifty
	if !upper.Equal(lower) {
		percentB = price.Sub(lower).Div(upper.Sub(lower)).Mul(dec.Hundred)
	}
	bandwidth := decimal.Zero
	if !middle.IsZero() {
		bandwidth = upper.Sub(lower).Div(middle).Mul(dec.Hundred)
	}

	values := map[string]decimal.Decimal{
		"upper":     upper,
		"middle":    middle,
		"lower":     lower,
		"percent_b": percentB,
		"bandwidth": bandwidth,
	}
	return series.NewMultiResult(values, bar.Timestamp, b.metadata()), nil
}

func (b *Bollinger) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewBollinger(b.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (b *Bollinger) Count() int { return b.processed }

func (b *Bollinger) IsReady() bool { return b.ready }

func (b *Bollinger) Reset() {
	b.prices = b.prices[:0]
	b.processed = 0
	b.ready = false
}

func (b *Bollinger) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":  "bollinger",
		"period":     b.opts.Period,
		"multiplier": b.opts.Multiplier.String(),
		"source":     string(b.opts.Source),
	}
}

func (b *Bollinger) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "moving average window"},
		{Name: "multiplier", Type: "decimal", Default: 2, Description: "standard deviation multiplier"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (b *Bollinger) Outputs() OutputSpec {
	return OutputSpec{Fields: []string{"upper", "middle", "lower", "percent_b", "bandwidth"}}
}

func bollingerFromOptions(o Options) (Streamer, error) {
	opts := DefaultBollingerOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Multiplier, err = o.decimalOption("multiplier", opts.Multiplier); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewBollinger(opts)
}
