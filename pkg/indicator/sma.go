package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// SMAOptions configures the Simple Moving Average.
type SMAOptions struct {
	Period int
	Source series.Source
}

// DefaultSMAOptions returns the standard 20-period close SMA.
func DefaultSMAOptions() SMAOptions {
	return SMAOptions{Period: 20, Source: series.SourceClose}
}

// SMA is the arithmetic mean of the trailing period prices. With period 1 it
// is the identity transform on the input.
type SMA struct {
	opts      SMAOptions
	name      string
	core      *smaCore
	processed int
	ready     bool
}

// NewSMA creates an SMA streamer, validating the options first.
func NewSMA(opts SMAOptions) (*SMA, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	return &SMA{
		opts: opts,
		name: fmt.Sprintf("sma_%d", opts.Period),
		core: newSMACore(opts.Period),
	}, nil
}

func (s *SMA) Name() string { return s.name }

func (s *SMA) RequiredPeriods() int { return s.opts.Period }

// Update feeds one bar; emits once period prices have accumulated.
func (s *SMA) Update(bar series.Bar) (*series.Result, error) {
	value, ok := s.core.update(bar.Price(s.opts.Source))
	s.processed++
	if !ok {
		return nil, nil
	}
	s.ready = true
	return series.NewResult(value, bar.Timestamp, s.metadata()), nil
}

// Calculate runs the batch transform over a full series.
func (s *SMA) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewSMA(s.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (s *SMA) Count() int { return s.processed }

func (s *SMA) IsReady() bool { return s.ready }

func (s *SMA) Reset() {
	s.core.reset()
	s.processed = 0
	s.ready = false
}

func (s *SMA) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "sma",
		"period":    s.opts.Period,
		"source":    string(s.opts.Source),
	}
}

func (s *SMA) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "number of bars averaged"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
	}
}

func (s *SMA) Outputs() OutputSpec { return scalarOutput("sma") }

func smaFromOptions(o Options) (Streamer, error) {
	opts := DefaultSMAOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	return NewSMA(opts)
}
