package indicator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// VWAPVariant selects the per-bar price fed into the cumulative sums.
type VWAPVariant string

const (
	VWAPClose    VWAPVariant = "close"
	VWAPTypical  VWAPVariant = "typical"  // (H+L+C)/3
	VWAPWeighted VWAPVariant = "weighted" // (H+L+2C)/4
)

// SessionReset selects when the cumulative sums are zeroed.
type SessionReset string

const (
	SessionNone    SessionReset = "none"
	SessionDaily   SessionReset = "daily"
	SessionWeekly  SessionReset = "weekly"
	SessionMonthly SessionReset = "monthly"
)

// VWAPOptions configures the Volume Weighted Average Price.
type VWAPOptions struct {
	Variant      VWAPVariant
	SessionReset SessionReset
}

// DefaultVWAPOptions returns the typical-price VWAP with no session reset.
func DefaultVWAPOptions() VWAPOptions {
	return VWAPOptions{Variant: VWAPTypical, SessionReset: SessionNone}
}

// VWAP is cumulative(price*volume) / cumulative(volume). Zero-volume bars
// contribute nothing to either sum; while cumulative volume is positive they
// re-emit the running average, and before any volume has been seen they emit
// nothing. Crossing a session boundary (day, ISO week, or month of the bar
// timestamp) zeroes both sums.
type VWAP struct {
	opts       VWAPOptions
	name       string
	sumPV      decimal.Decimal
	sumVol     decimal.Decimal
	sessionKey string
	inSession  bool
	processed  int
	ready      bool
}

// NewVWAP creates a VWAP streamer, validating the options first.
func NewVWAP(opts VWAPOptions) (*VWAP, error) {
	if opts.Variant == "" {
		opts.Variant = VWAPTypical
	}
	if opts.SessionReset == "" {
		opts.SessionReset = SessionNone
	}
	switch opts.Variant {
	case VWAPClose, VWAPTypical, VWAPWeighted:
	default:
		return nil, invalidParam("variant", string(opts.Variant), "one of close, typical, weighted")
	}
	switch opts.SessionReset {
	case SessionNone, SessionDaily, SessionWeekly, SessionMonthly:
	default:
		return nil, invalidParam("session_reset", string(opts.SessionReset), "one of none, daily, weekly, monthly")
	}
	return &VWAP{
		opts:   opts,
		name:   fmt.Sprintf("vwap_%s", opts.Variant),
		sumPV:  decimal.Zero,
		sumVol: decimal.Zero,
	}, nil
}

func (v *VWAP) Name() string { return v.name }

func (v *VWAP) RequiredPeriods() int { return 1 }

func (v *VWAP) Update(bar series.Bar) (*series.Result, error) {
	if bar.PriceOnly {
		return nil, volumeBarError()
	}
	if bar.Volume.IsNegative() {
		return nil, &series.ValidationError{Field: "volume", Value: bar.Volume.String(), Constraint: "must not be negative"}
	}
	v.processed++

	if key := v.bucket(bar.Timestamp); v.opts.SessionReset != SessionNone {
		if v.inSession && key != v.sessionKey {
			v.sumPV = decimal.Zero
			v.sumVol = decimal.Zero
		}
		v.sessionKey = key
		v.inSession = true
	}

	if !bar.Volume.IsZero() {
		v.sumPV = v.sumPV.Add(v.price(&bar).Mul(bar.Volume))
		v.sumVol = v.sumVol.Add(bar.Volume)
	}

	if v.sumVol.IsZero() {
		return nil, nil
	}
	v.ready = true

	return series.NewResult(v.sumPV.Div(v.sumVol), bar.Timestamp, v.metadata()), nil
}

func (v *VWAP) price(bar *series.Bar) decimal.Decimal {
	switch v.opts.Variant {
	case VWAPClose:
		return bar.Close
	case VWAPWeighted:
		return bar.High.Add(bar.Low).Add(dec.Two.Mul(bar.Close)).Div(dec.Four)
	default:
		return series.TypicalPrice(bar)
	}
}

// bucket maps a timestamp to its session identity under the reset mode.
func (v *VWAP) bucket(ts time.Time) string {
	switch v.opts.SessionReset {
	case SessionDaily:
		return ts.Format("2006-01-02")
	case SessionWeekly:
		year, week := ts.ISOWeek()
		return fmt.Sprintf("%d-w%02d", year, week)
	case SessionMonthly:
		return ts.Format("2006-01")
	default:
		return ""
	}
}

func (v *VWAP) Calculate(bars []series.Bar) ([]series.Result, error) {
	fresh, err := NewVWAP(v.opts)
	if err != nil {
		return nil, err
	}
	return runBatch(fresh, bars)
}

func (v *VWAP) Count() int { return v.processed }

func (v *VWAP) IsReady() bool { return v.ready }

func (v *VWAP) Reset() {
	v.sumPV = decimal.Zero
	v.sumVol = decimal.Zero
	v.sessionKey = ""
	v.inSession = false
	v.processed = 0
	v.ready = false
}

func (v *VWAP) metadata() map[string]interface{} {
	return map[string]interface{}{
		"indicator":     "vwap",
		"variant":       string(v.opts.Variant),
		"session_reset": string(v.opts.SessionReset),
	}
}

func (v *VWAP) Parameters() []Param {
	return []Param{
		{Name: "variant", Type: "enum", Default: "typical", Enum: []string{"close", "typical", "weighted"}, Description: "per-bar price"},
		{Name: "session_reset", Type: "enum", Default: "none", Enum: []string{"none", "daily", "weekly", "monthly"}, Description: "accumulator reset cadence"},
	}
}

func (v *VWAP) Outputs() OutputSpec { return scalarOutput("vwap") }

func vwapFromOptions(o Options) (Streamer, error) {
	opts := DefaultVWAPOptions()
	variant, err := o.stringOption("variant", string(opts.Variant))
	if err != nil {
		return nil, err
	}
	opts.Variant = VWAPVariant(variant)
	reset, err := o.stringOption("session_reset", string(opts.SessionReset))
	if err != nil {
		return nil, err
	}
	opts.SessionReset = SessionReset(reset)
	return NewVWAP(opts)
}
