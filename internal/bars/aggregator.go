package bars

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mohamedkhairy/market-finance/pkg/logger"
	"github.com/mohamedkhairy/market-finance/pkg/models"
)

// ErrStaleQuote is returned for a quote older than the symbol's live bar.
var ErrStaleQuote = errors.New("quote precedes the live bar")

// BarHandler receives bars emitted by the aggregator.
type BarHandler func(models.Bar) error

type emission struct {
	bar   models.Bar
	final bool
}

// Aggregator folds quotes into live bars of a fixed interval. Every quote
// emits the forming bar; crossing an interval boundary first emits the
// finalized previous bar. Handlers run synchronously and in order.
type Aggregator struct {
	mu          sync.RWMutex
	dispatch    sync.Mutex // serialises processing with handler delivery
	interval    models.Interval
	periodMs    int64
	liveBars    map[string]*models.LiveBar
	onBarFinal  BarHandler
	onBarUpdate BarHandler
}

// NewAggregator creates a new bar aggregator for a fixed-length interval
func NewAggregator(interval models.Interval) (*Aggregator, error) {
	d, ok := interval.Duration()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no fixed length", models.ErrUnknownInterval, interval)
	}
	return &Aggregator{
		interval: interval,
		periodMs: d.Milliseconds(),
		liveBars: make(map[string]*models.LiveBar),
	}, nil
}

// Interval returns the bar interval.
func (a *Aggregator) Interval() models.Interval {
	return a.interval
}

// SetOnBarFinal sets the handler called when a bar is finalized
func (a *Aggregator) SetOnBarFinal(handler BarHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onBarFinal = handler
}

// SetOnBarUpdate sets the handler called with the forming bar after every quote
func (a *Aggregator) SetOnBarUpdate(handler BarHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onBarUpdate = handler
}

func (a *Aggregator) periodStart(ts int64) int64 {
	return ts - ts%a.periodMs
}

// ProcessQuote folds a quote into its symbol's live bar
func (a *Aggregator) ProcessQuote(q *models.Quote) error {
	if q == nil {
		return nil
	}

	if err := q.Validate(); err != nil {
		logger.Warn("Invalid quote, skipping",
			logger.ErrorField(err),
			logger.String("symbol", q.Symbol),
		)
		return err
	}

	a.dispatch.Lock()
	defer a.dispatch.Unlock()

	start := a.periodStart(q.Timestamp)

	a.mu.Lock()
	pending := make([]emission, 0, 2)
	liveBar, exists := a.liveBars[q.Symbol]
	switch {
	case exists && start < liveBar.Timestamp:
		a.mu.Unlock()
		return fmt.Errorf("%w: %s quote at %d, live bar starts at %d", ErrStaleQuote, q.Symbol, q.Timestamp, liveBar.Timestamp)
	case exists && start == liveBar.Timestamp && q.Timestamp < liveBar.LastQuote:
		a.mu.Unlock()
		return fmt.Errorf("%w: %s quote at %d, last quote at %d", ErrStaleQuote, q.Symbol, q.Timestamp, liveBar.LastQuote)
	case exists && start > liveBar.Timestamp:
		pending = append(pending, emission{bar: liveBar.ToBar(), final: true})
		logger.Debug("Bar finalized",
			logger.String("symbol", q.Symbol),
			logger.Int64("timestamp", liveBar.Timestamp),
			logger.Float64("open", liveBar.Open),
			logger.Float64("close", liveBar.Close),
		)
		fallthrough
	case !exists:
		liveBar = &models.LiveBar{Symbol: q.Symbol, Timestamp: start}
		a.liveBars[q.Symbol] = liveBar
	}

	liveBar.Update(q)
	pending = append(pending, emission{bar: liveBar.ToBar()})
	onFinal, onUpdate := a.onBarFinal, a.onBarUpdate
	a.mu.Unlock()

	a.deliver(pending, onFinal, onUpdate)
	return nil
}

func (a *Aggregator) deliver(pending []emission, onFinal, onUpdate BarHandler) {
	for _, e := range pending {
		handler := onUpdate
		if e.final {
			handler = onFinal
		}
		if handler == nil {
			continue
		}
		if err := handler(e.bar); err != nil {
			logger.Warn("Bar handler failed",
				logger.String("symbol", e.bar.Symbol),
				logger.Bool("final", e.final),
				logger.ErrorField(err),
			)
		}
	}
}

// GetLiveBar returns a copy of the current live bar for a symbol
func (a *Aggregator) GetLiveBar(symbol string) *models.LiveBar {
	a.mu.RLock()
	defer a.mu.RUnlock()

	liveBar, exists := a.liveBars[symbol]
	if !exists {
		return nil
	}

	liveBarCopy := *liveBar
	return &liveBarCopy
}

// GetAllLiveBars returns copies of all current live bars
func (a *Aggregator) GetAllLiveBars() map[string]*models.LiveBar {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make(map[string]*models.LiveBar, len(a.liveBars))
	for symbol, liveBar := range a.liveBars {
		liveBarCopy := *liveBar
		result[symbol] = &liveBarCopy
	}
	return result
}

// FinalizeBar finalizes the live bar of a symbol, e.g. at session close
func (a *Aggregator) FinalizeBar(symbol string) (models.Bar, bool) {
	a.dispatch.Lock()
	defer a.dispatch.Unlock()

	a.mu.Lock()
	liveBar, exists := a.liveBars[symbol]
	if !exists {
		a.mu.Unlock()
		return models.Bar{}, false
	}
	bar := liveBar.ToBar()
	delete(a.liveBars, symbol)
	onFinal := a.onBarFinal
	a.mu.Unlock()

	a.deliver([]emission{{bar: bar, final: true}}, onFinal, nil)
	return bar, true
}

// FinalizeAllBars finalizes all current live bars (useful for shutdown)
func (a *Aggregator) FinalizeAllBars() []models.Bar {
	a.dispatch.Lock()
	defer a.dispatch.Unlock()

	a.mu.Lock()
	pending := make([]emission, 0, len(a.liveBars))
	finalized := make([]models.Bar, 0, len(a.liveBars))
	for _, liveBar := range a.liveBars {
		bar := liveBar.ToBar()
		finalized = append(finalized, bar)
		pending = append(pending, emission{bar: bar, final: true})
	}
	a.liveBars = make(map[string]*models.LiveBar)
	onFinal := a.onBarFinal
	a.mu.Unlock()

	a.deliver(pending, onFinal, nil)
	logger.Debug("Bars finalized on shutdown", logger.Int("count", len(finalized)))
	return finalized
}

// GetSymbolCount returns the number of symbols with active live bars
func (a *Aggregator) GetSymbolCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.liveBars)
}
