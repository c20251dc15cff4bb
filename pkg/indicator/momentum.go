package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// MomentumOptions configures the plain Momentum indicator.
type MomentumOptions struct {
	Period int
	Source series.Source
}

// DefaultMomentumOptions returns the standard 10-period close momentum.
func DefaultMomentumOptions() MomentumOptions {
	return MomentumOptions{Period: 10, Source: series.SourceClose}
}

// Momentum is the raw difference price - price_n over period bars.
type Momentum struct {
	opts      MomentumOptions
	name      string
	prices    []decimal.Decimal
	processed int
	ready     bool
}

// NewMomentum creates a Momentum streamer, validating the options first.
func NewMomentum(opts MomentumOptions) (*Momentum, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &Momentum{
		opts:   opts,
		name:   fmt.Sprintf("momentum_%d", opts.Period),
		prices: make([]decimal.Decimal, 0, opts.Period+1),
	}, nil
}

func (m *Momentum) Name() string { return m.name }

// RequiredPeriods: one difference over period bars needs period+1 prices.
func (m *Momentum) RequiredPeriods() int { return m.opts.Period + 1 }

func (m *Momentum) Update(bar series.Bar) (*series.Result, error) {
	price := bar.Price(m.opts.Source)
	m.prices = append(m.prices, price)
	if len(m.prices) > m.opts.Period+1 {
		copy(m.prices, m.prices[1:])
		m.prices = m.prices[:len(m.prices)-1]
	}
	m.processed++

	if len(m.prices) < m.opts.Period+1 {
		return nil, nil
	}
	m.ready = true

	value := price.Sub(m.prices[0])
	meta := m.metadata()
	meta["signal"] = string(directionSignal(value))
	return series.NewResult(value, bar.Timestamp, meta), nil
}

func (m *Momentum) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewMomentum(m.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (m *Momentum) Count() int { return m.processed }

func (m *Momentum) IsReady() bool { return m.ready }

func (m *Momentum) Reset() {
	m.prices = m.prices[:0]
	m.processed = 0
	m.ready = false
}

func (m *Momentum) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "momentum",
		"period":    m.opts.Period,
		"source":    string(m.opts.Source),
	}
}

func (m *Momentum) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 10, Description: "lookback distance"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (m *Momentum) Outputs() OutputSpec { return scalarOutput("momentum") }

func momentumFromOptions(o Options) (Streamer, error) {
	opts := DefaultMomentumOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewMomentum(opts)
}
