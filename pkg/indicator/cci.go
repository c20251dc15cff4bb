package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// CCIOptions configures the Commodity Channel Index.
type CCIOptions struct {
	Period     int
	Constant   decimal.Decimal
	Overbought decimal.Decimal
	Oversold   decimal.Decimal
}

// DefaultCCIOptions returns the standard 20-period CCI with Lambert's 0.015
// constant and ±100 thresholds.
func DefaultCCIOptions() CCIOptions {
	return CCIOptions{
		Period:     20,
		Constant:   decimal.NewFromFloat(0.015),
		Overbought: decimal.NewFromInt(100),
		Oversold:   decimal.NewFromInt(-100),
	}
}

// CCI is (typical_price - SMA(typical_price)) / (constant * MAD) over the
// window, where MAD is the mean absolute deviation of the typical prices.
// A zero deviation (perfectly flat window) is defined as CCI 0.
type CCI struct {
	opts      CCIOptions
	name      string
	typicals  []decimal.Decimal
	processed int
	ready     bool
}

// NewCCI creates a CCI streamer, validating the options first.
func NewCCI(opts CCIOptions) (*CCI, error) {
	def := DefaultCCIOptions()
	if opts.Constant.IsZero() {
		opts.Constant = def.Constant
	}
	if opts.Overbought.IsZero() && opts.Oversold.IsZero() {
		opts.Overbought = def.Overbought
		opts.Oversold = def.Oversold
	}
	if err := validatePeriod("period", opts.Period, 2); err != nil {
		return nil, err
	}
	if !opts.Constant.IsPositive() {
		return nil, invalidParam("constant", opts.Constant.String(), "a positive decimal")
	}
	if err := validateThresholds(opts.Oversold, opts.Overbought); err != nil {
		return nil, err
	}
	return &CCI{
		opts:     opts,
		name:     fmt.Sprintf("cci_%d", opts.Period),
		typicals: make([]decimal.Decimal, 0, opts.Period),
	}, nil
}

func (c *CCI) Name() string { return c.name }

func (c *CCI) RequiredPeriods() int { return c.opts.Period }

func (c *CCI) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, fullBarError()
	}

	tp := series.TypicalPrice(&bar)
	c.typicals = append(c.typicals, tp)
	if len(c.typicals) > c.opts.Period {
		copy(c.typicals, c.typicals[1:])
		c.typicals = c.typicals[:len(c.typicals)-1]
	}
	c.processed++

	if len(c.typicals) < c.opts.Period {
		return nil, nil
	}
	c.ready = true

	mad := series.MeanAbsDeviation(c.typicals)
	value := decimal.Zero
	if !mad.IsZero() {
		value = tp.Sub(series.Mean(c.typicals)).Div(c.opts.Constant.Mul(mad))
	}

	meta := c.metadata()
	meta["signal"] = string(oscillatorSignal(value, c.opts.Overbought, c.opts.Oversold))
	return series.NewResult(value, bar.Timestamp, meta), nil
}

func (c *CCI) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewCCI(c.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (c *CCI) Count() int { return c.processed }

func (c *CCI) IsReady() bool { return c.ready }

func (c *CCI) Reset() {
	c.typicals = c.typicals[:0]
	c.processed = 0
	c.ready = false
}

func (c *CCI) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":  "cci",
		"period":     c.opts.Period,
		"constant":   c.opts.Constant.String(),
		"overbought": c.opts.Overbought.String(),
		"oversold":   c.opts.Oversold.String(),
	}
}

func (c *CCI) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 20, Description: "typical price window"},
		{Name: "constant", Type: "decimal", Default: 0.015, Description: "Lambert scaling constant"},
		{Name: "overbought", Type: "decimal", Default: 100, Description: "overbought threshold"},
		{Name: "oversold", Type: "decimal", Default: -100, Description: "oversold threshold"},
	}
}

func (c *CCI) Outputs() OutputSpec { return scalarOutput("cci") }

func cciFromOptions(o Options) (Streamer, error) {
	opts := DefaultCCIOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Constant, err = o.decimalOption("constant", opts.Constant); err != nil {
		return nil, err
	}
	if opts.Overbought, err = o.decimalOption("overbought", opts.Overbought); err != nil {
		return nil, err
	}
	if opts.Oversold, err = o.decimalOption("oversold", opts.Oversold); err != nil {
		return nil, err
	}
	return NewCCI(opts)
}
