package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// MACDOptions configures Moving Average Convergence Divergence.
type MACDOptions struct {
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	Source       series.Source
}

// DefaultMACDOptions returns the standard 12/26/9 configuration.
func DefaultMACDOptions() MACDOptions {
	return MACDOptions{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9, Source: series.SourceClose}
}

// MACD emits a map of macd/signal/histogram. The macd line is EMA(fast) -
// EMA(slow) and appears once the slow EMA warms; signal is an EMA of the macd
// line over the signal period, and it plus the histogram are omitted from the
// result map until that EMA itself warms.
type MACD struct {
	opts      MACDOptions
	name      string
	fast      *emaCore
	slow      *emaCore
	signal    *emaCore
	processed int
	ready     bool
}

// NewMACD creates a MACD streamer, validating the options first.
func NewMACD(opts MACDOptions) (*MACD, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("fast_period", opts.FastPeriod, 1); err != nil {
		return nil, err
	}
	if opts.SlowPeriod <= opts.FastPeriod {
		return nil, invalidParam("slow_period", opts.SlowPeriod,
			fmt.Sprintf("an integer > fast_period (%d)", opts.FastPeriod))
	}
	if err := validatePeriod("signal_period", opts.SignalPeriod, 1); err != nil {
		return nil, err
	}
	return &MACD{
		opts:   opts,
		name:   fmt.Sprintf("macd_%d_%d_%d", opts.FastPeriod, opts.SlowPeriod, opts.SignalPeriod),
		fast:   newEMACore(opts.FastPeriod),
		slow:   newEMACore(opts.SlowPeriod),
		signal: newEMACore(opts.SignalPeriod),
	}, nil
}

func (m *MACD) Name() string { return m.name }

// RequiredPeriods: the macd line first appears when the slow EMA warms.
func (m *MACD) RequiredPeriods() int { return m.opts.SlowPeriod }

func (m *MACD) Update(bar series.Bar) (*series.Result, error) {
	price := bar.Price(m.opts.Source)
	m.processed++

	fastVal, fastOK := m.fast.update(price)
	slowVal, slowOK := m.slow.update(price)
	if !fastOK || !slowOK {
		return nil, nil
	}
	m.ready = true

	macdLine := fastVal.Sub(slowVal)
	values := map[string]decimal.Decimal{"macd": macdLine}

	sig := series.SignalNeutral
	if signalVal, ok := m.signal.update(macdLine); ok {
		histogram := macdLine.Sub(signalVal)
		values["signal"] = signalVal
		values["histogram"] = histogram
		if histogram.IsPositive() {
			sig = series.SignalBullish
		} else if histogram.IsNegative() {
			sig = series.SignalBearish
		}
	}

	meta := m.metadata()
	meta["signal"] = string(sig)
	return series.NewMultiResult(values, bar.Timestamp, meta), nil
}

func (m *MACD) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewMACD(m.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (m *MACD) Count() int { return m.processed }

func (m *MACD) IsReady() bool { return m.ready }

func (m *MACD) Reset() {
	m.fast.reset()
	m.slow.reset()
	m.signal.reset()
	m.processed = 0
	m.ready = false
}

func (m *MACD) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":     "macd",
		"fast_period":   m.opts.FastPeriod,
		"slow_period":   m.opts.SlowPeriod,
		"signal_period": m.opts.SignalPeriod,
		"source":        string(m.opts.Source),
	}
}

func (m *MACD) Parameters() []Param {
	return []Param{
		{Name: "fast_period", Type: "int", Default: 12, Description: "fast EMA period"},
		{Name: "slow_period", Type: "int", Default: 26, Description: "slow EMA period"},
		{Name: "signal_period", Type: "int", Default: 9, Description: "signal EMA period"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (m *MACD) Outputs() OutputSpec {
	return OutputSpec{Fields: []string{"macd", "signal", "histogram"}}
}

func macdFromOptions(o Options) (Streamer, error) {
	opts := DefaultMACDOptions()
	var err error
	if opts.FastPeriod, err = o.intOption("fast_period", opts.FastPeriod); err != nil {
		return nil, err
	}
	if opts.SlowPeriod, err = o.intOption("slow_period", opts.SlowPeriod); err != nil {
		return nil, err
	}
	if opts.SignalPeriod, err = o.intOption("signal_period", opts.SignalPeriod); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewMACD(opts)
}
