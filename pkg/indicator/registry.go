package indicator

import (
	"sort"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// factory builds a configured streamer from a raw option map.
type factory func(Options) (Streamer, error)

// Descriptor is one catalog entry: the routing name, category, and the
// metadata tooling needs without constructing an instance.
type Descriptor struct {
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	Parameters []Param    `json:"parameters"`
	Outputs    OutputSpec `json:"outputs"`
	build      factory
}

// catalog routes indicator names to their modules. Names are the plain
// indicator identifiers, without parameter suffixes.
var catalog = map[string]Descriptor{
	"sma":        {Name: "sma", Category: CategoryTrend, build: smaFromOptions},
	"ema":        {Name: "ema", Category: CategoryTrend, build: emaFromOptions},
	"wma":        {Name: "wma", Category: CategoryTrend, build: wmaFromOptions},
	"hma":        {Name: "hma", Category: CategoryTrend, build: hmaFromOptions},
	"kama":       {Name: "kama", Category: CategoryTrend, build: kamaFromOptions},
	"macd":       {Name: "macd", Category: CategoryTrend, build: macdFromOptions},
	"rsi":        {Name: "rsi", Category: CategoryMomentum, build: rsiFromOptions},
	"stochastic": {Name: "stochastic", Category: CategoryMomentum, build: stochasticFromOptions},
	"williams_r": {Name: "williams_r", Category: CategoryMomentum, build: williamsRFromOptions},
	"cci":        {Name: "cci", Category: CategoryMomentum, build: cciFromOptions},
	"roc":        {Name: "roc", Category: CategoryMomentum, build: rocFromOptions},
	"momentum":   {Name: "momentum", Category: CategoryMomentum, build: momentumFromOptions},
	"atr":        {Name: "atr", Category: CategoryVolatility, build: atrFromOptions},
	"bollinger":  {Name: "bollinger", Category: CategoryVolatility, build: bollingerFromOptions},
	"stddev":     {Name: "stddev", Category: CategoryVolatility, build: stddevFromOptions},
	"volatility": {Name: "volatility", Category: CategoryVolatility, build: volatilityFromOptions},
	"obv":        {Name: "obv", Category: CategoryVolume, build: obvFromOptions},
	"vwap":       {Name: "vwap", Category: CategoryVolume, build: vwapFromOptions},
	"ad":         {Name: "ad", Category: CategoryVolume, build: adFromOptions},
	"cmf":        {Name: "cmf", Category: CategoryVolume, build: cmfFromOptions},
}

// Build constructs a configured streamer for the named indicator. Unknown
// names fail with InvalidParams; recognized options are validated by the
// module and unrecognized ones are ignored (except for the parameterless
// indicators, which reject any options).
func Build(name string, opts Options) (Streamer, error) {
	desc, ok := catalog[name]
	if !ok {
		return nil, &series.InvalidParamsError{Param: "indicator", Value: name, Expected: "a registered indicator name"}
	}
	return desc.build(opts)
}

// BuildBatch constructs the named indicator for batch use.
func BuildBatch(name string, opts Options) (Batch, error) {
	s, err := Build(name, opts)
	if err != nil {
		return nil, err
	}
	b, ok := s.(Batch)
	if !ok {
		return nil, &series.StreamStateError{Operation: "build", Reason: "indicator does not support batch calculation"}
	}
	return b, nil
}

// Calculate routes a batch calculation through the catalog.
func Calculate(name string, bars []series.Bar, opts Options) ([]series.Result, error) {
	b, err := BuildBatch(name, opts)
	if err != nil {
		return nil, err
	}
	return b.Calculate(bars)
}

// ValidateParams checks an option map without running any data through the
// indicator.
func ValidateParams(name string, opts Options) error {
	_, err := Build(name, opts)
	return err
}

// RequiredPeriods reports the minimum input length for the named indicator
// under the given options.
func RequiredPeriods(name string, opts Options) (int, error) {
	s, err := Build(name, opts)
	if err != nil {
		return 0, err
	}
	return s.RequiredPeriods(), nil
}

// Catalog returns all catalog entries with their metadata, sorted by name.
// Parameter and output descriptors come from a default-configured instance.
func Catalog() []Descriptor {
	out := make([]Descriptor, 0, len(catalog))
	for name, desc := range catalog {
		if inst, err := desc.build(Options{}); err == nil {
			desc.Parameters = inst.Parameters()
			desc.Outputs = inst.Outputs()
		}
		desc.Name = name
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered indicator names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
