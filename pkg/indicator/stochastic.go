package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// StochasticOptions configures the Stochastic Oscillator.
type StochasticOptions struct {
	KPeriod    int
	DPeriod    int
	Overbought decimal.Decimal
	Oversold   decimal.Decimal
}

// DefaultStochasticOptions returns the standard 14/3 configuration with
// 80/20 thresholds.
func DefaultStochasticOptions() StochasticOptions {
	return StochasticOptions{
		KPeriod:    14,
		DPeriod:    3,
		Overbought: decimal.NewFromInt(80),
		Oversold:   decimal.NewFromInt(20),
	}
}

// Stochastic emits %K = (close - lowest_low)/(highest_high - lowest_low)*100
// over the K window, with %D an SMA of %K over the D period. A collapsed
// range (highest == lowest) pins %K at the neutral 50. %D is omitted from
// the result map until enough %K values exist.
type Stochastic struct {
	opts      StochasticOptions
	name      string
	bars      []series.Bar
	dCore     *smaCore
	processed int
	ready     bool
}

// NewStochastic creates a Stochastic streamer, validating the options first.
func NewStochastic(opts StochasticOptions) (*Stochastic, error) {
	if opts.Overbought.IsZero() && opts.Oversold.IsZero() {
		def := DefaultStochasticOptions()
		opts.Overbought = def.Overbought
		opts.Oversold = def.Oversold
	}
	if err := validatePeriod("period", opts.KPeriod, 1); err != nil {
		return nil, err
	}
	if err := validatePeriod("d_period", opts.DPeriod, 1); err != nil {
		return nil, err
	}
	if err := validateThresholds(opts.Oversold, opts.Overbought); err != nil {
		return nil, err
	}
	return &Stochastic{
		opts:  opts,
		name:  fmt.Sprintf("stoch_%d_%d", opts.KPeriod, opts.DPeriod),
		bars:  make([]series.Bar, 0, opts.KPeriod),
		dCore: newSMACore(opts.DPeriod),
	}, nil
}

func (s *Stochastic) Name() string { return s.name }

func (s *Stochastic) RequiredPeriods() int { return s.opts.KPeriod }

func (s *Stochastic) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, fullBarError()
	}

	s.bars = append(s.bars, bar)
	if len(s.bars) > s.opts.KPeriod {
		copy(s.bars, s.bars[1:])
		s.bars = s.bars[:len(s.bars)-1]
	}
	s.processed++

	if len(s.bars) < s.opts.KPeriod {
		return nil, nil
	}
	s.ready = true

	hh, ll := series.HighestHighLowestLow(s.bars)
	k := dec.Fifty
	if !hh.Equal(ll) {
		k = bar.Close.Sub(ll).Div(hh.Sub(ll)).Mul(dec.Hundred)
	}

	values := map[string]decimal.Decimal{"k": k}
	if d, ok := s.dCore.update(k); ok {
		values["d"] = d
	}

	meta := s.metadata()
	meta["signal"] = string(oscillatorSignal(k, s.opts.Overbought, s.opts.Oversold))
	return series.NewMultiResult(values, bar.Timestamp, meta), nil
}

func (s *Stochastic) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewStochastic(s.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (s *Stochastic) Count() int { return s.processed }

func (s *Stochastic) IsReady() bool { return s.ready }

func (s *Stochastic) Reset() {
	s.bars = s.bars[:0]
	s.dCore.reset()
	s.processed = 0
	s.ready = false
}

func (s *Stochastic) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":  "stochastic",
		"period":     s.opts.KPeriod,
		"d_period":   s.opts.DPeriod,
		"overbought": s.opts.Overbought.String(),
		"oversold":   s.opts.Oversold.String(),
	}
}

func (s *Stochastic) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 14, Description: "%K lookback window"},
		{Name: "d_period", Type: "int", Default: 3, Description: "%D smoothing period"},
		{Name: "overbought", Type: "decimal", Default: 80, Description: "overbought threshold"},
		{Name: "oversold", Type: "decimal", Default: 20, Description: "oversold threshold"},
	}
}

func (s *Stochastic) Outputs() OutputSpec {
	return OutputSpec{Fields: []string{"k", "d"}}
}

func stochasticFromOptions(o Options) (Streamer, error) {
	opts := DefaultStochasticOptions()
	var err error
	if opts.KPeriod, err = o.intOption("period", opts.KPeriod); err != nil {
		return nil, err
	}
	if opts.DPeriod, err = o.intOption("d_period", opts.DPeriod); err != nil {
		return nil, err
	}
	if opts.Overbought, err = o.decimalOption("overbought", opts.Overbought); err != nil {
		return nil, err
	}
	if opts.Oversold, err = o.decimalOption("oversold", opts.Oversold); err != nil {
		return nil, err
	}
	return NewStochastic(opts)
}
