package indicator

import (
	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// The unexported cores below are the smoothing recurrences shared by the
// indicator modules. Each one takes raw decimal values and reports whether it
// has warmed up; the owning module decides when to emit.

// smaCore keeps a FIFO window of the last period values and averages them.
type smaCore struct {
	period int
	values []decimal.Decimal
	sum    decimal.Decimal
}

func newSMACore(period int) *smaCore {
	return &smaCore{
		period: period,
		values: make([]decimal.Decimal, 0, period),
		sum:    decimal.Zero,
	}
}

func (c *smaCore) update(v decimal.Decimal) (decimal.Decimal, bool) {
	c.values = append(c.values, v)
	c.sum = c.sum.Add(v)
	if len(c.values) > c.period {
		c.sum = c.sum.Sub(c.values[0])
		copy(c.values, c.values[1:])
		c.values = c.values[:len(c.values)-1]
	}
	if len(c.values) < c.period {
		return decimal.Zero, false
	}
	return c.sum.Div(dec.FromInt(int64(c.period))), true
}

func (c *smaCore) reset() {
	c.values = c.values[:0]
	c.sum = decimal.Zero
}

// emaCore seeds with the simple mean of the first period values, then runs
// ema = alpha*x + (1-alpha)*ema_prev with alpha = 2/(period+1).
type emaCore struct {
	period int
	alpha  decimal.Decimal
	seed   []decimal.Decimal
	value  decimal.Decimal
	seeded bool
}

func newEMACore(period int) *emaCore {
	return &emaCore{
		period: period,
		alpha:  dec.Two.Div(dec.FromInt(int64(period + 1))),
		seed:   make([]decimal.Decimal, 0, period),
	}
}

func (c *emaCore) update(v decimal.Decimal) (decimal.Decimal, bool) {
	if !c.seeded {
		c.seed = append(c.seed, v)
		if len(c.seed) < c.period {
			return decimal.Zero, false
		}
		c.value = series.Mean(c.seed)
		c.seeded = true
		return c.value, true
	}
	c.value = v.Mul(c.alpha).Add(c.value.Mul(dec.One.Sub(c.alpha)))
	return c.value, true
}

func (c *emaCore) reset() {
	c.seed = c.seed[:0]
	c.value = decimal.Zero
	c.seeded = false
}

// wmaCore applies weights 1..period, ascending oldest to newest, divided by
// period*(period+1)/2.
type wmaCore struct {
	period  int
	values  []decimal.Decimal
	divisor decimal.Decimal
}

func newWMACore(period int) *wmaCore {
	n := int64(period)
	return &wmaCore{
		period:  period,
		values:  make([]decimal.Decimal, 0, period),
		divisor: dec.FromInt(n * (n + 1) / 2),
	}
}

func (c *wmaCore) update(v decimal.Decimal) (decimal.Decimal, bool) {
	c.values = append(c.values, v)
	if len(c.values) > c.period {
		copy(c.values, c.values[1:])
		c.values = c.values[:len(c.values)-1]
	}
	if len(c.values) < c.period {
		return decimal.Zero, false
	}
	weighted := decimal.Zero
	for i, val := range c.values {
		weighted = weighted.Add(val.Mul(dec.FromInt(int64(i + 1))))
	}
	return weighted.Div(c.divisor), true
}

func (c *wmaCore) reset() {
	c.values = c.values[:0]
}

// rmaCore is Wilder's running average: seeded by the first value, then
// rma = ((period-1)*rma_prev + x) / period.
type rmaCore struct {
	period int
	value  decimal.Decimal
	count  int
}

func newRMACore(period int) *rmaCore {
	return &rmaCore{period: period}
}

func (c *rmaCore) update(v decimal.Decimal) decimal.Decimal {
	if c.count == 0 {
		c.value = v
	} else {
		n := dec.FromInt(int64(c.period))
		c.value = n.Sub(dec.One).Mul(c.value).Add(v).Div(n)
	}
	c.count++
	return c.value
}

func (c *rmaCore) reset() {
	c.value = decimal.Zero
	c.count = 0
}
