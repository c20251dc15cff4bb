package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// KAMAOptions configures Kaufman's Adaptive Moving Average.
type KAMAOptions struct {
	Period     int
	FastPeriod int
	SlowPeriod int
	Source     series.Source
}

// DefaultKAMAOptions returns Kaufman's standard 10/2/30 configuration.
func DefaultKAMAOptions() KAMAOptions {
	return KAMAOptions{Period: 10, FastPeriod: 2, SlowPeriod: 30, Source: series.SourceClose}
}

// KAMA adapts its smoothing constant to the efficiency ratio: net change over
// the window divided by the sum of absolute bar-to-bar changes. The constant
// is scaled between the fast and slow EMA constants and squared:
//
//	sc = (er*(fastSC-slowSC) + slowSC)^2
//	kama = kama_prev + sc*(price - kama_prev)
//
// Seeded with the price immediately before the first emission.
type KAMA struct {
	opts      KAMAOptions
	name      string
	fastSC    decimal.Decimal
	slowSC    decimal.Decimal
	prices    []decimal.Decimal
	value     decimal.Decimal
	processed int
	ready     bool
}

// NewKAMA creates a KAMA streamer, validating the options first.
func NewKAMA(opts KAMAOptions) (*KAMA, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("period", opts.Period, 2); err != nil {
		return nil, err
	}
	if err := validatePeriod("fast_period", opts.FastPeriod, 1); err != nil {
		return nil, err
	}
	if opts.SlowPeriod <= opts.FastPeriod {
		return nil, invalidParam("slow_period", opts.SlowPeriod,
			fmt.Sprintf("an integer > fast_period (%d)", opts.FastPeriod))
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &KAMA{
		opts:   opts,
		name:   fmt.Sprintf("kama_%d", opts.Period),
		fastSC: dec.Two.Div(dec.FromInt(int64(opts.FastPeriod + 1))),
		slowSC: dec.Two.Div(dec.FromInt(int64(opts.SlowPeriod + 1))),
		prices: make([]decimal.Decimal, 0, opts.Period+1),
	}, nil
}

func (k *KAMA) Name() string { return k.name }

// RequiredPeriods: period bar-to-bar changes need period+1 prices.
func (k *KAMA) RequiredPeriods() int { return k.opts.Period + 1 }

func (k *KAMA) Update(bar series.Bar) (*series.Result, error) {
	price := bar.Price(k.opts.Source)
	k.prices = append(k.prices, price)
	if len(k.prices) > k.opts.Period+1 {
		copy(k.prices, k.prices[1:])
		k.prices = k.prices[:len(k.prices)-1]
	}
	k.processed++

	if len(k.prices) < k.opts.Period+1 {
		return nil, nil
	}

	if !k.ready {
		// Seed with the bar just before this one.
		k.value = k.prices[len(k.prices)-2]
		k.ready = true
	}

	net := price.Sub(k.prices[0]).Abs()
	noise := decimal.Zero
	for i := 1; i < len(k.prices); i++ {
		noise = noise.Add(k.prices[i].Sub(k.prices[i-1]).Abs())
	}

	er := decimal.Zero
	if !noise.IsZero() {
		er = net.Div(noise)
	}

	sc := er.Mul(k.fastSC.Sub(k.slowSC)).Add(k.slowSC)
	sc = sc.Mul(sc)
	k.value = k.value.Add(sc.Mul(price.Sub(k.value)))

	return series.NewResult(k.value, bar.Timestamp, k.metadata()), nil
}

func (k *KAMA) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewKAMA(k.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (k *KAMA) Count() int { return k.processed }

func (k *KAMA) IsReady() bool { return k.ready }

func (k *KAMA) Reset() {
	k.prices = k.prices[:0]
	k.value = decimal.Zero
	k.processed = 0
	k.ready = false
}

func (k *KAMA) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":   "kama",
		"period":      k.opts.Period,
		"fast_period": k.opts.FastPeriod,
		"slow_period": k.opts.SlowPeriod,
		"source":      string(k.opts.Source),
	}
}

func (k *KAMA) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 10, Description: "efficiency ratio window"},
		{Name: "fast_period", Type: "int", Default: 2, Description: "fast smoothing bound"},
		{Name: "slow_period", Type: "int", Default: 30, Description: "slow smoothing bound"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (k *KAMA) Outputs() OutputSpec { return scalarOutput("kama") }

func kamaFromOptions(o Options) (Streamer, error) {
	opts := DefaultKAMAOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.FastPeriod, err = o.intOption("fast_period", opts.FastPeriod); err != nil {
		return nil, err
	}
	if opts.SlowPeriod, err = o.intOption("slow_period", opts.SlowPeriod); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewKAMA(opts)
}
