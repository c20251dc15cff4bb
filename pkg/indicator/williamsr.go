package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// WilliamsROptions configures Williams %R.
type WilliamsROptions struct {
	Period     int
	Overbought decimal.Decimal
	Oversold   decimal.Decimal
}

// DefaultWilliamsROptions returns the standard 14-period configuration with
// -20/-80 thresholds.
func DefaultWilliamsROptions() WilliamsROptions {
	return WilliamsROptions{
		Period:     14,
		Overbought: decimal.NewFromInt(-20),
		Oversold:   decimal.NewFromInt(-80),
	}
}

// WilliamsR is -100*(highest_high - close)/(highest_high - lowest_low) over
// the trailing window, bounded in [-100, 0]. A collapsed range is defined as
// exactly -50, the neutral midpoint.
type WilliamsR struct {
	opts      WilliamsROptions
	name      string
	bars      []series.Bar
	processed int
	ready     bool
}

// NewWilliamsR creates a Williams %R streamer, validating the options first.
func NewWilliamsR(opts WilliamsROptions) (*WilliamsR, error) {
	if opts.Overbought.IsZero() && opts.Oversold.IsZero() {
		def := DefaultWilliamsROptions()
		opts.Overbought = def.Overbought
		opts.Oversold = def.Oversold
	}
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	if err := validateThresholds(opts.Oversold, opts.Overbought); err != nil {
		return nil, err
	}
	return &WilliamsR{
		opts: opts,
		name: fmt.Sprintf("williams_r_%d", opts.Period),
		bars: make([]series.Bar, 0, opts.Period),
	}, nil
}

func (w *WilliamsR) Name() string { return w.name }

func (w *WilliamsR) RequiredPeriods() int { return w.opts.Period }

func (w *WilliamsR) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, fullBarError()
	}

	w.bars = append(w.bars, bar)
	if len(w.bars) > w.opts.Period {
		copy(w.bars, w.bars[1:])
		w.bars = w.bars[:len(w.bars)-1]
	}
	w.processed++

	if len(w.bars) < w.opts.Period {
		return nil, nil
	}
	w.ready = true

	hh, ll := series.HighestHighLowestLow(w.bars)
	value := dec.Fifty.Neg()
	if !hh.Equal(ll) {
		value = dec.Hundred.Neg().Mul(hh.Sub(bar.Close)).Div(hh.Sub(ll))
	}

	meta := w.metadata()
	meta["signal"] = string(oscillatorSignal(value, w.opts.Overbought, w.opts.Oversold))
	return series.NewResult(value, bar.Timestamp, meta), nil
}

func (w *WilliamsR) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewWilliamsR(w.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (w *WilliamsR) Count() int { return w.processed }

func (w *WilliamsR) IsReady() bool { return w.ready }

func (w *WilliamsR) Reset() {
	w.bars = w.bars[:0]
	w.processed = 0
	w.ready = false
}

func (w *WilliamsR) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":  "williams_r",
		"period":     w.opts.Period,
		"overbought": w.opts.Overbought.String(),
		"oversold":   w.opts.Oversold.String(),
	}
}

func (w *WilliamsR) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 14, Description: "lookback window"},
		{Name: "overbought", Type: "decimal", Default: -20, Description: "overbought threshold"},
		{Name: "oversold", Type: "decimal", Default: -80, Description: "oversold threshold"},
	}
}

func (w *WilliamsR) Outputs() OutputSpec { return scalarOutput("williams_r") }

func williamsRFromOptions(o Options) (Streamer, error) {
	opts := DefaultWilliamsROptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Overbought, err = o.decimalOption("overbought", opts.Overbought); err != nil {
		return nil, err
	}
	if opts.Oversold, err = o.decimalOption("oversold", opts.Oversold); err != nil {
		return nil, err
	}
	return NewWilliamsR(opts)
}
