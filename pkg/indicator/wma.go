package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// WMAOptions configures the Weighted Moving Average.
type WMAOptions struct {
	Period int
	Source series.Source
}

// DefaultWMAOptions returns the standard 20-period close WMA.
func DefaultWMAOptions() WMAOptions {
	return WMAOptions{Period: 20, Source: series.SourceClose}
}

// WMA weights the trailing window linearly, oldest to newest, so the most
// recent price carries weight period and the oldest weight 1.
type WMA struct {
	opts      WMAOptions
	name      string
	core      *wmaCore
	processed int
	ready     bool
}

// NewWMA creates a WMA streamer, validating the options first.
func NewWMA(opts WMAOptions) (*WMA, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &WMA{
		opts: opts,
		name: fmt.Sprintf("wma_%d", opts.Period),
		core: newWMACore(opts.Period),
	}, nil
}

func (w *WMA) Name() string { return w.name }

func (w *WMA) RequiredPeriods() int { return w.opts.Period }

func (w *WMA) Update(bar series.Bar) (*series.Result, error) {
	value, ok := w.core.update(bar.Price(w.opts.Source))
	w.processed++
	if !ok {
		return nil, nil
	}
	w.ready = true
	return series.NewResult(value, bar.Timestamp, w.metadata()), nil
}

func (w *WMA) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewWMA(w.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (w *WMA) Count() int { return w.processed }

func (w *WMA) IsReady() bool { return w.ready }

func (w *WMA) Reset() {
	w.core.reset()
	w.processed = 0
	w.ready = false
}

func (w *WMA) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "wma",
		"period":    w.opts.Period,
		"source":    string(w.opts.Source),
	}
}

func (w *WMA) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "number of bars weighted"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (w *WMA) Outputs() OutputSpec { return scalarOutput("wma") }

func wmaFromOptions(o Options) (Streamer, error) {
	opts := DefaultWMAOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewWMA(opts)
}
