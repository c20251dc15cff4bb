package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// RSIOptions configures the Relative Strength Index.
type RSIOptions struct {
	Period     int
	Source     series.Source
	Overbought decimal.Decimal
	Oversold   decimal.Decimal
}

// DefaultRSIOptions returns the standard 14-period RSI with 70/30 thresholds.
func DefaultRSIOptions() RSIOptions {
	return RSIOptions{
		Period:     14,
		Source:     series.SourceClose,
		Overbought: decimal.NewFromInt(70),
		Oversold:   decimal.NewFromInt(30),
	}
}

// RSI uses Wilder smoothing over period price deltas:
//
//	RS  = avg_gain / avg_loss
//	RSI = 100 - 100/(1+RS)
//
// The first averages are simple means of the first period gains and losses;
// thereafter avg = ((period-1)*avg_prev + x) / period. A zero average loss
// pins RSI at exactly 100.
type RSI struct {
	opts      RSIOptions
	name      string
	prevPrice decimal.Decimal
	hasPrev   bool
	gains     []decimal.Decimal
	losses    []decimal.Decimal
	avgGain   decimal.Decimal
	avgLoss   decimal.Decimal
	processed int
	ready     bool
}

// NewRSI creates an RSI streamer, validating the options first.
func NewRSI(opts RSIOptions) (*RSI, error) {
	if opts.Source == "" {
		opts.Source = series.SourceClose
	}
	if opts.Overbought.IsZero() && opts.Oversold.IsZero() {
		def := DefaultRSIOptions()
		opts.Overbought = def.Overbought
		opts.Oversold = def.Oversold
	}
	if err := validatePeriod("period", opts.Period, 2); err != nil {
		return nil, err
	}
	if !opts.Source.Valid() {
		return nil, invalidParam("source", string(opts.Source), "one of open, high, low, close")
	}
	if err := validateThresholds(opts.Oversold, opts.Overbought); err != nil {
		return nil, err
	}
	return &RSI{
		opts:   opts,
		name:   fmt.Sprintf("rsi_%d", opts.Period),
		gains:  make([]decimal.Decimal, 0, opts.Period),
		losses: make([]decimal.Decimal, 0, opts.Period),
	}, nil
}

func (r *RSI) Name() string { return r.name }

// RequiredPeriods: period deltas need period+1 raw prices.
func (r *RSI) RequiredPeriods() int { return r.opts.Period + 1 }

func (r *RSI) Update(bar series.Bar) (*series.Result, error) {
	price := bar.Price(r.opts.Source)
	r.processed++

	if !r.hasPrev {
		r.prevPrice = price
		r.hasPrev = true
		return nil, nil
	}

	change := price.Sub(r.prevPrice)
	r.prevPrice = price

	gain := decimal.Zero
	loss := decimal.Zero
	if change.IsPositive() {
		gain = change
	} else {
		loss = change.Neg()
	}

	if !r.ready {
		r.gains = append(r.gains, gain)
		r.losses = append(r.losses, loss)
		if len(r.gains) < r.opts.Period {
			return nil, nil
		}
		r.avgGain = series.Mean(r.gains)
		r.avgLoss = series.Mean(r.losses)
		r.ready = true
	} else {
		n := dec.FromInt(int64(r.opts.Period))
		r.avgGain = n.Sub(dec.One).Mul(r.avgGain).Add(gain).Div(n)
		r.avgLoss = n.Sub(dec.One).Mul(r.avgLoss).Add(loss).Div(n)
	}

	value := r.value()
	meta := r.metadata()
	meta["signal"] = string(oscillatorSignal(value, r.opts.Overbought, r.opts.Oversold))
	return series.NewResult(value, bar.Timestamp, meta), nil
}

func (r *RSI) value() decimal.Decimal {
	if r.avgLoss.IsZero() {
		return dec.Hundred
	}
	rs := r.avgGain.Div(r.avgLoss)
	return dec.Hundred.Sub(dec.Hundred.Div(dec.One.Add(rs)))
}

func (r *RSI) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewRSI(r.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (r *RSI) Count() int { return r.processed }

func (r *RSI) IsReady() bool { return r.ready }

func (r *RSI) Reset() {
	r.prevPrice = decimal.Zero
	r.hasPrev = false
	r.gains = r.gains[:0]
	r.losses = r.losses[:0]
	r.avgGain = decimal.Zero
	r.avgLoss = decimal.Zero
	r.processed = 0
	r.ready = false
}

func (r *RSI) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":  "rsi",
		"period":     r.opts.Period,
		"source":     string(r.opts.Source),
		"overbought": r.opts.Overbought.String(),
		"oversold":   r.opts.Oversold.String(),
	}
}

func (r *RSI) Parameters() []Param {
	return []Param{
		{Name: "period", Type: "int", Default: 14, Description: "Wilder smoothing period"},
		{Name: "source", Type: "enum", Default: "close", Enum: []string{"open", "high", "low", "close"}, Description: "price field"},
		{Name: "overbought", Type: "decimal", Default: 70, Description: "overbought threshold"},
		{Name: "oversold", Type: "decimal", Default: 30, Description: "oversold threshold"},
	}
}

func (r *RSI) Outputs() OutputSpec { return scalarOutput("rsi") }

// oscillatorSignal derives the qualitative tag from configured thresholds.
func oscillatorSignal(value, overbought, oversold decimal.Decimal) series.Signal {
	if value.GreaterThanOrEqual(overbought) {
		return series.SignalOverbought
	}
	if value.LessThanOrEqual(oversold) {
		return series.SignalOversold
	}
	return series.SignalNeutral
}

func rsiFromOptions(o Options) (Streamer, error) {
	opts := DefaultRSIOptions()
	var err error
	if opts.Period, err = o.intOption("period", opts.Period); err != nil {
		return nil, err
	}
	if opts.Source, err = o.sourceOption(opts.Source); err != nil {
		return nil, err
	}
	if opts.Overbought, err = o.decimalOption("overbought", opts.Overbought); err != nil {
		return nil, err
	}
	if opts.Oversold, err = o.decimalOption("oversold", opts.Oversold); err != nil {
		return nil, err
	}
	return NewRSI(opts)
}
