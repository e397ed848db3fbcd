package indicator

import (
	"fmt"
	"sync"
	"time"

	"github.com/mohamedkhairy/market-finance/pkg/models"
)

// SymbolState manages indicator state for a single symbol. Finalized bars are
// committed and kept in a rolling window; forming bars are only previewed.
type SymbolState struct {
	symbol      string
	mu          sync.RWMutex
	calculators map[string]Calculator
	bars        []models.Bar // rolling window of committed bars
	maxBars     int
	liveBar     *models.Bar
	lastUpdate  time.Time
}

// NewSymbolState creates a new symbol state with the specified maximum bars
func NewSymbolState(symbol string, maxBars int) *SymbolState {
	if maxBars < 1 {
		maxBars = 1
	}
	return &SymbolState{
		symbol:      symbol,
		calculators: make(map[string]Calculator),
		bars:        make([]models.Bar, 0, maxBars),
		maxBars:     maxBars,
	}
}

// Symbol returns the symbol this state tracks.
func (s *SymbolState) Symbol() string {
	return s.symbol
}

// AddCalculator adds a calculator to this symbol's state
func (s *SymbolState) AddCalculator(calc Calculator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calculators[calc.Name()] = calc
}

// RemoveCalculator removes a calculator from this symbol's state
func (s *SymbolState) RemoveCalculator(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.calculators, name)
}

// CalculatorNames returns the names of all registered calculators.
func (s *SymbolState) CalculatorNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.calculators))
	for name := range s.calculators {
		names = append(names, name)
	}
	return names
}

// Commit finalizes a bar on every calculator. Bars for other symbols are ignored.
func (s *SymbolState) Commit(bar models.Bar) error {
	if bar.Symbol != s.symbol {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.commitLocked(bar)
	s.liveBar = nil
	s.lastUpdate = bar.Time()
	return nil
}

func (s *SymbolState) commitLocked(bar models.Bar) {
	s.bars = append(s.bars, bar)
	if len(s.bars) > s.maxBars {
		copy(s.bars, s.bars[1:])
		s.bars = s.bars[:len(s.bars)-1]
	}

	for _, calc := range s.calculators {
		calc.Commit(bar)
	}
}

// Update previews a forming bar on every calculator. Bars for other symbols are ignored.
func (s *SymbolState) Update(bar models.Bar) error {
	if bar.Symbol != s.symbol {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, calc := range s.calculators {
		calc.Update(bar)
	}

	live := bar
	s.liveBar = &live
	s.lastUpdate = bar.Time()
	return nil
}

// GetValue retrieves the current value of an indicator output.
func (s *SymbolState) GetValue(name string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, calc := range s.calculators {
		if !calc.IsReady() {
			continue
		}
		if v, ok := calc.Values()[name]; ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("indicator %q not available for %s", name, s.symbol)
}

// GetAllValues returns all current outputs of ready calculators
func (s *SymbolState) GetAllValues() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string]float64)
	for _, calc := range s.calculators {
		if !calc.IsReady() {
			continue
		}
		for name, v := range calc.Values() {
			values[name] = v
		}
	}
	return values
}

// GetBars returns a copy of the committed bars window
func (s *SymbolState) GetBars() []models.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars := make([]models.Bar, len(s.bars))
	copy(bars, s.bars)
	return bars
}

// GetLiveBar returns the bar last previewed since the latest commit.
func (s *SymbolState) GetLiveBar() (models.Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.liveBar == nil {
		return models.Bar{}, false
	}
	return *s.liveBar, true
}

// GetLastUpdate returns the timestamp of the last committed or previewed bar
func (s *SymbolState) GetLastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastUpdate
}

// Reset clears all state (useful for rehydration)
func (s *SymbolState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
}

func (s *SymbolState) resetLocked() {
	s.bars = s.bars[:0]
	s.liveBar = nil
	for _, calc := range s.calculators {
		calc.Reset()
	}
	s.lastUpdate = time.Time{}
}

// Rehydrate resets the state and commits historical bars in order.
func (s *SymbolState) Rehydrate(bars []models.Bar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()

	var last int64
	for _, bar := range bars {
		if bar.Symbol != s.symbol {
			continue
		}
		if bar.Timestamp < last {
			return fmt.Errorf("rehydrate %s: bar at %d is older than %d", s.symbol, bar.Timestamp, last)
		}
		last = bar.Timestamp
		s.commitLocked(bar)
	}

	if last > 0 {
		s.lastUpdate = time.UnixMilli(last).UTC()
	}
	return nil
}
