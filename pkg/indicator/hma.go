package indicator

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// HMAOptions configures the Hull Moving Average.
type HMAOptions struct {
	Period int
	Source series.Source
}

// DefaultHMAOptions returns the standard 14-period close HMA.
func DefaultHMAOptions() HMAOptions {
	return HMAOptions{Period: 14, Source: series.SourceClose}
}

// HMA is Hull's composition WMA(2*WMA(n/2) - WMA(n), sqrt(n)): the doubled
// half-period WMA minus the full WMA, smoothed again over the square root of
// the period.
type HMA struct {
	opts      HMAOptions
	name      string
	half      *wmaCore
	full      *wmaCore
	smooth    *wmaCore
	sqrtLen   int
	processed int
	ready     bool
}

// NewHMA creates an HMA streamer, validating the options first.
func NewHMA(opts HMAOptions) (*HMA, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("period", opts.Period, 2); err != nil {
		return nil, err
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	sqrtLen := int(math.Sqrt(float64(opts.Period)))
	if sqrtLen < 1 {
		sqrtLen = 1
	}
	return &HMA{
		opts:    opts,
		name:    fmt.Sprintf("hma_%d", opts.Period),
		half:    newWMACore(opts.Period / 2),
		full:    newWMACore(opts.Period),
		smooth:  newWMACore(sqrtLen),
		sqrtLen: sqrtLen,
	}, nil
}

func (h *HMA) Name() string { return h.name }

// RequiredPeriods: the full WMA warms after period bars, then the outer WMA
// needs sqrt(period) difference values.
func (h *HMA) RequiredPeriods() int { return h.opts.Period + h.sqrtLen - 1 }

func (h *HMA) Update(bar series.Bar) (*series.Result, error) {
	price := bar.Price(h.opts.Source)
	h.processed++

	halfVal, halfOK := h.half.update(price)
	fullVal, fullOK := h.full.update(price)
	if !halfOK || !fullOK {
		return nil, nil
	}

	diff := dec.Two.Mul(halfVal).Sub(fullVal)
	value, ok := h.smooth.update(diff)
	if !ok {
		return nil, nil
	}
	h.ready = true
	return series.NewResult(value, bar.Timestamp, h.metadata()), nil
}

func (h *HMA) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewHMA(h.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (h *HMA) Count() int { return h.processed }

func (h *HMA) IsReady() bool { return h.ready }

func (h *HMA) Reset() {
	h.half.reset()
	h.full.reset()
	h.smooth.reset()
	h.processed = 0
	h.ready = false
}

func (h *HMA) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "hma",
		"period":    h.opts.Period,
		"source":    string(h.opts.Source),
	}
}

func (h *HMA) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 14, Description: "hull period"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (h *HMA) Outputs() OutputSpec { return scalarOutput("hma") }

func hmaFromOptions(o Options) (Streamer, error) {
	opts := DefaultHMAOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewHMA(opts)
}
