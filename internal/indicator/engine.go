package indicator

import (
	"errors"
	"fmt"
	"sync"
	"time"

	indicatorpkg "github.com/mohamedkhairy/market-finance/pkg/indicator"
	"github.com/mohamedkhairy/market-finance/pkg/logger"
	"github.com/mohamedkhairy/market-finance/pkg/models"
)

// CalculatorFactory is a function that creates a new calculator instance
type CalculatorFactory func() (indicatorpkg.Calculator, error)

// OnIndicatorsUpdated is called after a bar was applied. final is true for
// committed bars and false for previews of a forming bar.
type OnIndicatorsUpdated func(symbol string, indicators map[string]float64, final bool)

// Engine keeps indicator state per symbol. Finalized bars are committed,
// forming bars are previewed.
type Engine struct {
	indicatorRegistry   *IndicatorRegistry
	requiredIndicators  map[string]bool // empty = all
	symbolStates        map[string]*indicatorpkg.SymbolState
	onIndicatorsUpdated OnIndicatorsUpdated
	mu                  sync.RWMutex
	maxBars             int
}

// EngineConfig holds configuration for the indicator engine
type EngineConfig struct {
	MaxBars int // Maximum number of committed bars kept per symbol
}

// DefaultEngineConfig returns default configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxBars: 200,
	}
}

// NewEngine creates a new indicator engine
func NewEngine(config EngineConfig, registry *IndicatorRegistry) *Engine {
	if config.MaxBars < 1 {
		config.MaxBars = DefaultEngineConfig().MaxBars
	}
	return &Engine{
		indicatorRegistry:  registry,
		requiredIndicators: make(map[string]bool),
		symbolStates:       make(map[string]*indicatorpkg.SymbolState),
		maxBars:            config.MaxBars,
	}
}

// SetRequiredIndicators restricts which indicators new symbols get.
// An empty set means all registered indicators.
func (e *Engine) SetRequiredIndicators(required map[string]bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requiredIndicators = required
}

// GetRequiredIndicators returns the set of required indicators
func (e *Engine) GetRequiredIndicators() map[string]bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make(map[string]bool, len(e.requiredIndicators))
	for name, required := range e.requiredIndicators {
		result[name] = required
	}
	return result
}

// SetOnIndicatorsUpdated sets the callback function called after indicators are updated
func (e *Engine) SetOnIndicatorsUpdated(callback OnIndicatorsUpdated) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onIndicatorsUpdated = callback
}

func (e *Engine) stateFor(symbol string) *indicatorpkg.SymbolState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, exists := e.symbolStates[symbol]
	if exists {
		return state
	}

	state = indicatorpkg.NewSymbolState(symbol, e.maxBars)
	allIndicators := len(e.requiredIndicators) == 0
	for _, name := range e.indicatorRegistry.ListAvailable() {
		if !allIndicators && !e.requiredIndicators[name] {
			continue
		}

		factory, ok := e.indicatorRegistry.GetFactory(name)
		if !ok {
			continue
		}

		calc, err := factory()
		if err != nil {
			logger.Warn("Failed to create calculator",
				logger.String("name", name),
				logger.String("symbol", symbol),
				logger.ErrorField(err),
			)
			continue
		}
		state.AddCalculator(calc)
	}

	e.symbolStates[symbol] = state
	logger.TrackedSymbols.Set(float64(len(e.symbolStates)))
	logger.Debug("Tracking symbol",
		logger.String("symbol", symbol),
		logger.Strings("indicators", state.CalculatorNames()),
	)
	return state
}

func (e *Engine) validate(bar models.Bar) error {
	if err := bar.Validate(); err != nil {
		logger.BarsRejected.WithLabelValues(rejectReason(err)).Inc()
		return fmt.Errorf("invalid bar: %w", err)
	}
	return nil
}

func rejectReason(err error) string {
	for _, sentinel := range []error{
		models.ErrInvalidSymbol,
		models.ErrInvalidTimestamp,
		models.ErrInvalidBar,
		models.ErrInvalidPrice,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "other"
}

// ProcessBar commits a finalized bar.
func (e *Engine) ProcessBar(bar models.Bar) error {
	if err := e.validate(bar); err != nil {
		return err
	}

	state := e.stateFor(bar.Symbol)
	if err := state.Commit(bar); err != nil {
		return err
	}
	for _, name := range state.CalculatorNames() {
		logger.IndicatorCommits.WithLabelValues(name).Inc()
	}

	e.notify(bar.Symbol, state, true)
	return nil
}

// ProcessLiveBar previews a forming bar without advancing any indicator.
func (e *Engine) ProcessLiveBar(bar models.Bar) error {
	if err := e.validate(bar); err != nil {
		return err
	}

	state := e.stateFor(bar.Symbol)
	if err := state.Update(bar); err != nil {
		return err
	}
	for _, name := range state.CalculatorNames() {
		logger.IndicatorUpdates.WithLabelValues(name).Inc()
	}

	e.notify(bar.Symbol, state, false)
	return nil
}

// Rehydrate rebuilds a symbol's indicators from historical bars.
func (e *Engine) Rehydrate(symbol string, bars []models.Bar) error {
	for _, bar := range bars {
		if bar.Symbol != symbol {
			continue
		}
		if err := e.validate(bar); err != nil {
			return err
		}
	}

	start := time.Now()
	state := e.stateFor(symbol)
	if err := state.Rehydrate(bars); err != nil {
		return err
	}
	logger.RehydrateDuration.Observe(time.Since(start).Seconds())

	logger.Info("Rehydrated symbol",
		logger.String("symbol", symbol),
		logger.Int("bars", len(state.GetBars())),
		logger.Duration("took", time.Since(start)),
	)

	e.notify(symbol, state, true)
	return nil
}

func (e *Engine) notify(symbol string, state *indicatorpkg.SymbolState, final bool) {
	e.mu.RLock()
	callback := e.onIndicatorsUpdated
	e.mu.RUnlock()

	if callback == nil {
		return
	}
	if indicators := state.GetAllValues(); len(indicators) > 0 {
		callback(symbol, indicators, final)
	}
}

// Registry returns the registry new symbols draw their calculators from.
func (e *Engine) Registry() *IndicatorRegistry {
	return e.indicatorRegistry
}

// GetIndicators returns all indicator values for a symbol
func (e *Engine) GetIndicators(symbol string) (map[string]float64, error) {
	e.mu.RLock()
	state, exists := e.symbolStates[symbol]
	e.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("symbol %s not found", symbol)
	}
	return state.GetAllValues(), nil
}

// GetBars returns the committed bars window for a symbol
func (e *Engine) GetBars(symbol string) []models.Bar {
	e.mu.RLock()
	state, exists := e.symbolStates[symbol]
	e.mu.RUnlock()

	if !exists {
		return nil
	}
	return state.GetBars()
}

// GetAllSymbols returns a list of all symbols being tracked
func (e *Engine) GetAllSymbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	symbols := make([]string, 0, len(e.symbolStates))
	for symbol := range e.symbolStates {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// GetSymbolCount returns the number of symbols being tracked
func (e *Engine) GetSymbolCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.symbolStates)
}
