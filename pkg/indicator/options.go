package indicator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// Options is the loosely-typed option map accepted by the dispatch facade.
// Recognized keys are decoded into the indicator's typed options; unknown
// keys are ignored. Parameterless indicators reject any keys at all.
type Options map[string]interface{}

func invalidParam(name string, value interface{}, expected string) error {
	return &series.InvalidParamsError{Param: name, Value: value, Expected: expected}
}

// intOption reads an integer option, accepting int and JSON float64 forms.
func (o Options) intOption(name string, def int) (int, error) {
	raw, ok := o[name]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, invalidParam(name, raw, "an integer")
		}
		return int(v), nil
	default:
		return 0, invalidParam(name, raw, "an integer")
	}
}

// decimalOption reads a decimal option from decimal, string, float64, or int.
func (o Options) decimalOption(name string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, ok := o[name]
	if !ok {
		return def, nil
	}
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, invalidParam(name, raw, "a decimal number")
		}
		return d, nil
	case float64:
		d, err := dec.FromFloat(v)
		if err != nil {
			return decimal.Zero, invalidParam(name, raw, "a finite decimal number")
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, invalidParam(name, raw, "a decimal number")
	}
}

// stringOption reads a string option.
func (o Options) stringOption(name string, def string) (string, error) {
	raw, ok := o[name]
	if !ok {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidParam(name, raw, "a string")
	}
	return s, nil
}

// sourceOption reads and validates a price source option.
func (o Options) sourceOption(def series.Source) (series.Source, error) {
	s, err := o.stringOption("source", string(def))
	if err != nil {
		return "", err
	}
	src := series.Source(s)
	if !src.Valid() {
		return "", invalidParam("source", s, "one of open, high, low, close")
	}
	return src, nil
}

// validatePeriod enforces the minimum period for an indicator.
func validatePeriod(name string, period, min int) error {
	if period < min {
		return invalidParam(name, period, fmt.Sprintf("an integer >= %d", min))
	}
	return nil
}

// validateThresholds enforces oversold < overbought.
func validateThresholds(oversold, overbought decimal.Decimal) error {
	if !oversold.LessThan(overbought) {
		return invalidParam("oversold", oversold.String(),
			fmt.Sprintf("a value below overbought (%s)", overbought.String()))
	}
	return nil
}

// requireEmpty rejects options for parameterless indicators.
func requireEmpty(name string, o Options) error {
	if len(o) > 0 {
		return invalidParam(name, fmt.Sprintf("%d option(s)", len(o)), "no options")
	}
	return nil
}
