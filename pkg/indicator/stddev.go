package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// StdDevCalculation selects the variance divisor.
type StdDevCalculation string

const (
	StdDevPopulation StdDevCalculation = "population"
	StdDevSample     StdDevCalculation = "sample"
)

// StdDevOptions configures the rolling Standard Deviation indicator.
type StdDevOptions struct {
	Period      int
	Source      series.Source
	Calculation StdDevCalculation
}

// DefaultStdDevOptions returns the standard 20-period population stddev.
func DefaultStdDevOptions() StdDevOptions {
	return StdDevOptions{Period: 20, Source: series.SourceClose, Calculation: StdDevPopulation}
}

// StdDev is the rolling standard deviation of the source price. Population
// (divide by N) is the default; the sample calculation divides by N-1.
type StdDev struct {
	opts      StdDevOptions
	name      string
	prices    []decimal.Decimal
	processed int
	ready     bool
}

// NewStdDev creates a StdDev streamer, validating the options first.
func NewStdDev(opts StdDevOptions) (*StdDev, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if opts.Calculation == "" {
		opts.Calculation = StdDevPopulation
	}
	min := 1
	if opts.Calculation == StdDevSample {
		min = 2
	}
	if err := validatePeriod("period", opts.Period, min); err != nil {
		return nil, err
	}
	if opts.Calculation != StdDevPopulation && opts.Calculation != StdDevSample {
		return nil, invalidParam("calculation", string(opts.Calculation), "one of population, sample")
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &StdDev{
		opts:   opts,
		name:   fmt.Sprintf("stddev_%d", opts.Period),
		prices: make([]decimal.Decimal, 0, opts.Period),
	}, nil
}

func (s *StdDev) Name() string { return s.name }

func (s *StdDev) RequiredPeriods() int { return s.opts.Period }

func (s *StdDev) Update(bar series.Bar) (*series.Result, error) {
	s.prices = append(s.prices, bar.Price(s.opts.Source))
	if len(s.prices) > s.opts.Period {
		copy(s.prices, s.prices[1:])
		s.prices = s.prices[:len(s.prices)-1]
	}
	s.processed++

	if len(s.prices) < s.opts.Period {
		return nil, nil
	}
	s.ready = true

	var value decimal.Decimal
	if s.opts.Calculation == StdDevSample {
		value = series.SampleStdDev(s.prices)
	} else {
		value = series.StdDev(s.prices)
	}
	return series.NewResult(value, bar.Timestamp, s.metadata()), nil
}

func (s *StdDev) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewStdDev(s.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (s *StdDev) Count() int { return s.processed }

func (s *StdDev) IsReady() bool { return s.ready }

func (s *StdDev) Reset() {
	s.prices = s.prices[:0]
	s.processed = 0
	s.ready = false
}

func (s *StdDev) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":   "stddev",
		"period":      s.opts.Period,
		"source":      string(s.opts.Source),
		"calculation": string(s.opts.Calculation),
	}
}

func (s *StdDev) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "deviation window"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
		{Name: "calculation", Type: "enum", Default: "population", Enum: []string{"population", "sample"}, Description: "variance divisor"},
	}
}

func (s *StdDev) Outputs() OutputSpec { return scalarOutput("stddev") }

func stddevFromOptions(o Options) (Streamer, error) {
	opts := DefaultStdDevOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	c, err := o.stringOption("calculation", string(opts.Calculation))
	if err != nil {
		return nil, err
	}
	opts.Calculation = StdDevCalculation(c)
	return NewStdDev(opts)
}
