package indicator

import (
	"fmt"
)

// MACDValue is one MACD reading.
type MACDValue struct {
	Value     float64 `json:"value"`     // fast EMA - slow EMA
	Signal    float64 `json:"signal"`    // EMA of Value
	Histogram float64 `json:"histogram"` // Value - Signal
}

// MACD (moving average convergence/divergence) built from three EMAs. The
// signal EMA is fed the fast/slow difference, never the raw price.
type MACD struct {
	fast    EMA
	slow    EMA
	signal  EMA
	current MACDValue
}

// NewMACD creates a MACD with the given fast, slow and signal periods
// (commonly 12, 26, 9).
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) (*MACD, error) {
	for _, p := range []struct {
		name   string
		period int
	}{
		{"fast", fastPeriod},
		{"slow", slowPeriod},
		{"signal", signalPeriod},
	} {
		if p.period < 1 {
			return nil, fmt.Errorf("%w: MACD %s period must be at least 1, got %d", ErrInvalidPeriod, p.name, p.period)
		}
	}

	return &MACD{
		fast:   newEMA(fastPeriod),
		slow:   newEMA(slowPeriod),
		signal: newEMA(signalPeriod),
	}, nil
}

func (m *MACD) store(fast, slow, signal float64) MACDValue {
	m.current = MACDValue{
		Value:     fast - slow,
		Signal:    signal,
		Histogram: fast - slow - signal,
	}
	return m.current
}

// Current returns the last stored reading without recomputing.
func (m *MACD) Current() MACDValue {
	return m.current
}

// Update previews value on all three averages.
func (m *MACD) Update(value float64) MACDValue {
	fast := m.fast.Update(value)
	slow := m.slow.Update(value)
	signal := m.signal.Update(fast - slow)
	return m.store(fast, slow, signal)
}

// Commit finalizes value on all three averages.
func (m *MACD) Commit(value float64) MACDValue {
	fast := m.fast.Commit(value)
	slow := m.slow.Commit(value)
	signal := m.signal.Commit(fast - slow)
	return m.store(fast, slow, signal)
}

// UpdateBar previews the bar's close.
func (m *MACD) UpdateBar(bar ClosePricer) MACDValue { return m.Update(bar.ClosePrice()) }

// CommitBar finalizes the bar's close.
func (m *MACD) CommitBar(bar ClosePricer) MACDValue { return m.Commit(bar.ClosePrice()) }

// Reset returns the MACD to its freshly constructed state.
func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.current = MACDValue{}
}

// Clone returns an independent copy. The averages are held by value so a
// struct copy shares nothing.
func (m *MACD) Clone() *MACD {
	c := *m
	return &c
}

// Periods returns the fast, slow and signal periods.
func (m *MACD) Periods() (fast, slow, signal int) {
	return m.fast.period, m.slow.period, m.signal.period
}

// Name returns the indicator name (e.g., "macd_12_26_9").
func (m *MACD) Name() string {
	return fmt.Sprintf("macd_%d_%d_%d", m.fast.period, m.slow.period, m.signal.period)
}
