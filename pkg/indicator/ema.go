package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// EMAOptions configures the Exponential Moving Average.
type EMAOptions struct {
	Period int
	Source series.Source
}

// DefaultEMAOptions returns the standard 20-period close EMA.
func DefaultEMAOptions() EMAOptions {
	return EMAOptions{Period: 20, Source: series.SourceClose}
}

// EMA smooths with alpha = 2/(period+1). The first emitted value, once period
// prices have accumulated, is the simple mean of that first window; the
// recurrence ema = alpha*x + (1-alpha)*ema_prev runs from there.
type EMA struct {
	opts      EMAOptions
	name      string
	core      *emaCore
	processed int
	ready     bool
}

// NewEMA creates an EMA streamer, validating the options first.
func NewEMA(opts EMAOptions) (*EMA, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &EMA{
		opts: opts,
		name: fmt.Sprintf("ema_%d", opts.Period),
		core: newEMACore(opts.Period),
	}, nil
}

func (e *EMA) Name() string { return e.name }

func (e *EMA) RequiredPeriods() int { return e.opts.Period }

func (e *EMA) Update(bar series.Bar) (*series.Result, error) {
	value, ok := e.core.update(bar.Price(e.opts.Source))
	e.processed++
	if !ok {
		return nil, nil
	}
	e.ready = true
	return series.NewResult(value, bar.Timestamp, e.metadata()), nil
}

func (e *EMA) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewEMA(e.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (e *EMA) Count() int { return e.processed }

func (e *EMA) IsReady() bool { return e.ready }

func (e *EMA) Reset() {
	e.core.reset()
	e.processed = 0
	e.ready = false
}

func (e *EMA) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "ema",
		"period":    e.opts.Period,
		"source":    string(e.opts.Source),
	}
}

func (e *EMA) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "smoothing period"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (e *EMA) Outputs() OutputSpec { return scalarOutput("ema") }

func emaFromOptions(o Options) (Streamer, error) {
	opts := DefaultEMAOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewEMA(opts)
}
