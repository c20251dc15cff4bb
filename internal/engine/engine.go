package engine

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/ta-engine/pkg/indicator"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

var (
	barsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_bars_processed_total",
			Help: "Total number of bars processed by the engine",
		},
	)

	indicatorUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_indicator_updates_total",
			Help: "Total number of indicator updates emitted",
		},
		[]string{"indicator"},
	)

	updateErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_update_errors_total",
			Help: "Total number of indicator update errors",
		},
		[]string{"indicator"},
	)

	trackedSymbols = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_tracked_symbols",
			Help: "Number of symbols with live indicator state",
		},
	)
)

// Spec names one indicator configuration the engine runs for every symbol.
type Spec struct {
	Name    string
	Options indicator.Options
}

// DefaultSpecs returns one default-configured spec per registered indicator.
func DefaultSpecs() []Spec {
	names := indicator.Names()
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		specs = append(specs, Spec{Name: name})
	}
	return specs
}

// SpecsFor builds specs for the given indicator names, falling back to the
// full catalog when the list is empty.
func SpecsFor(names []string) ([]Spec, error) {
	if len(names) == 0 {
		return DefaultSpecs(), nil
	}
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		if err := indicator.ValidateParams(name, nil); err != nil {
			return nil, fmt.Errorf("unknown indicator %q: %w", name, err)
		}
		specs = append(specs, Spec{Name: name})
	}
	return specs, nil
}

// NamedResult pairs an emitted result with its indicator instance name.
type NamedResult struct {
	Indicator string        `json:"indicator"`
	Result    series.Result `json:"result"`
}

// OnResults is called after a bar produced at least one result for a symbol.
type OnResults func(symbol string, results []NamedResult)

// symbolState is the per-symbol streamer set.
type symbolState struct {
	streamers []indicator.Streamer
	latest    map[string]series.Result
}

// Engine feeds finalized bars into a per-symbol set of streaming indicators
// and fans out every emitted result. Symbols appear lazily on their first
// bar.
type Engine struct {
	specs          []Spec
	states         map[string]*symbolState
	onResults      OnResults
	rehydrateLimit int
	mu             sync.RWMutex
}

// New creates an engine running the given specs per symbol.
func New(specs []Spec) *Engine {
	return &Engine{
		specs:  specs,
		states: make(map[string]*symbolState),
	}
}

// SetRehydrateLimit caps how many trailing bars Rehydrate replays per
// symbol. Zero means no cap.
func (e *Engine) SetRehydrateLimit(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rehydrateLimit = n
}

// SetOnResults sets the fan-out callback.
func (e *Engine) SetOnResults(callback OnResults) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onResults = callback
}

// ProcessBar validates the bar, updates every indicator for its symbol, and
// invokes the callback with the emitted results.
func (e *Engine) ProcessBar(bar series.Bar) error {
	if bar.Symbol == "" {
		return fmt.Errorf("bar has no symbol")
	}
	if err := bar.Validate(); err != nil {
		return fmt.Errorf("invalid bar: %w", err)
	}

	e.mu.Lock()
	state, err := e.stateLocked(bar.Symbol)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	results := e.updateLocked(state, bar)
	callback := e.onResults
	e.mu.Unlock()

	barsProcessed.Inc()

	if callback != nil && len(results) > 0 {
		callback(bar.Symbol, results)
	}
	return nil
}

// Rehydrate replays historical bars for a symbol without invoking the
// callback, so a restarted worker converges to the same streaming state it
// had before. Bars must be in chronological order.
func (e *Engine) Rehydrate(symbol string, bars []series.Bar) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rehydrateLimit > 0 && len(bars) > e.rehydrateLimit {
		bars = bars[len(bars)-e.rehydrateLimit:]
	}

	state, err := e.stateLocked(symbol)
	if err != nil {
		return err
	}
	for i := range bars {
		bar := bars[i]
		bar.Symbol = symbol
		if err := bar.Validate(); err != nil {
			return fmt.Errorf("invalid bar at index %d: %w", i, err)
		}
		e.updateLocked(state, bar)
	}

	logger.Info("Rehydrated symbol state",
		logger.String("symbol", symbol),
		logger.Int("bars", len(bars)),
	)
	return nil
}

// stateLocked returns the symbol's state, building its streamers on first
// sight. Callers hold e.mu.
func (e *Engine) stateLocked(symbol string) (*symbolState, error) {
	if state, ok := e.states[symbol]; ok {
		return state, nil
	}

	state := &symbolState{
		streamers: make([]indicator.Streamer, 0, len(e.specs)),
		latest:    make(map[string]series.Result),
	}
	for _, spec := range e.specs {
		s, err := indicator.Build(spec.Name, spec.Options)
		if err != nil {
			return nil, fmt.Errorf("building %q for %s: %w", spec.Name, symbol, err)
		}
		state.streamers = append(state.streamers, s)
	}
	e.states[symbol] = state
	trackedSymbols.Set(float64(len(e.states)))
	return state, nil
}

// updateLocked feeds the bar to every streamer and collects emissions.
// Update errors are counted and logged but never stop the other indicators.
func (e *Engine) updateLocked(state *symbolState, bar series.Bar) []NamedResult {
	var results []NamedResult
	for _, s := range state.streamers {
		res, err := s.Update(bar)
		if err != nil {
			updateErrors.WithLabelValues(s.Name()).Inc()
			logger.Warn("Indicator update failed",
				logger.ErrorField(err),
				logger.String("indicator", s.Name()),
				logger.String("symbol", bar.Symbol),
			)
			continue
		}
		if res == nil {
			continue
		}
		indicatorUpdates.WithLabelValues(s.Name()).Inc()
		state.latest[s.Name()] = *res
		results = append(results, NamedResult{Indicator: s.Name(), Result: *res})
	}
	return results
}

// Latest returns the most recent result per indicator for a symbol.
func (e *Engine) Latest(symbol string) (map[string]series.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state, ok := e.states[symbol]
	if !ok {
		return nil, fmt.Errorf("symbol %s not found", symbol)
	}
	out := make(map[string]series.Result, len(state.latest))
	for name, res := range state.latest {
		out[name] = res
	}
	return out, nil
}

// Symbols returns all symbols with live state.
func (e *Engine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	symbols := make([]string, 0, len(e.states))
	for symbol := range e.states {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// SymbolCount returns the number of tracked symbols.
func (e *Engine) SymbolCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.states)
}

// ResetSymbol drops a symbol's state entirely.
func (e *Engine) ResetSymbol(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.states, symbol)
	trackedSymbols.Set(float64(len(e.states)))
}
