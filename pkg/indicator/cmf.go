package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// CMFOptions configures Chaikin Money Flow.
type CMFOptions struct {
	Period int
}

// DefaultCMFOptions returns the standard 20-period CMF.
func DefaultCMFOptions() CMFOptions {
	return CMFOptions{Period: 20}
}

// CMF is the sum of money-flow volume over the trailing window divided by
// the sum of raw volume over the same window. A window with zero total
// volume is defined as CMF 0.
type CMF struct {
	opts      CMFOptions
	name      string
	flows     []decimal.Decimal
	volumes   []decimal.Decimal
	processed int
	ready     bool
}

// NewCMF creates a CMF streamer, validating the options first.
func NewCMF(opts CMFOptions) (*CMF, error) {
	if err := validatePeriod("period", opts.Period, 1); err != nil {
		return nil, err
	}
	return &CMF{
		opts:    opts,
		name:    fmt.Sprintf("cmf_%d", opts.Period),
		flows:   make([]decimal.Decimal, 0, opts.Period),
		volumes: make([]decimal.Decimal, 0, opts.Period),
	}, nil
}

func (c *CMF) Name() string { return c.name }

func (c *CMF) RequiredPeriods() int { return c.opts.Period }

func (c *CMF) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, volumeBarError()
	}

	c.flows = append(c.flows, moneyFlowVolume(&bar))
	c.volumes = append(c.volumes, bar.Volume)
	if len(c.flows) > c.opts.Period {
		copy(c.flows, c.flows[1:])
		c.flows = c.flows[:len(c.flows)-1]
		copy(c.volumes, c.volumes[1:])
		c.volumes = c.volumes[:len(c.volumes)-1]
	}
	c.processed++

	if len(c.flows) < c.opts.Period {
		return nil, nil
	}
	c.ready = true

	totalVol := series.Sum(c.volumes)
	value := decimal.Zero
	if !totalVol.IsZero() {
		value = series.Sum(c.flows).Div(totalVol)
	}
	return series.NewResult(value, bar.Timestamp, c.metadata()), nil
}

func (c *CMF) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewCMF(c.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (c *CMF) Count() int { return c.processed }

func (c *CMF) IsReady() bool { return c.ready }

func (c *CMF) Reset() {
	c.flows = c.flows[:0]
	c.volumes = c.volumes[:0]
	c.processed = 0
	c.ready = false
}

func (c *CMF) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator": "cmf",
		"period":    c.opts.Period,
	}
}

func (c *CMF) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "money flow window"},
	}
}

func (c *CMF) Outputs() OutputSpec { return scalarOutput("cmf") }

func cmfFromOptions(o Options) (Streamer, error) {
	opts := DefaultCMFOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	return NewCMF(opts)
}
