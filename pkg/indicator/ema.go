package indicator

import (
	"fmt"
)

// EMA is an incremental exponential moving average.
//
//	current = alpha*value + (1-alpha)*previous, alpha = 2/(period+1)
//
// previous is the committed baseline and only Commit moves it.
type EMA struct {
	period   int
	alpha    float64
	current  float64
	previous float64
}

// NewEMA creates a new EMA with the specified period
func NewEMA(period int) (*EMA, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: EMA period must be at least 1, got %d", ErrInvalidPeriod, period)
	}
	e := newEMA(period)
	return &e, nil
}

// newEMA assumes period was already validated.
func newEMA(period int) EMA {
	return EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (e *EMA) calculate(value float64) float64 {
	e.current = e.alpha*value + (1-e.alpha)*e.previous
	return e.current
}

// Current returns the most recently computed value (0 when fresh).
func (e *EMA) Current() float64 {
	return e.current
}

// Update previews value against the committed baseline.
func (e *EMA) Update(value float64) float64 {
	return e.calculate(value)
}

// Commit finalizes value. The baseline becomes the blended value and the
// returned value is the blend computed once more against that new baseline.
func (e *EMA) Commit(value float64) float64 {
	e.previous = e.calculate(value)
	return e.calculate(value)
}

// UpdateBar previews the bar's close.
func (e *EMA) UpdateBar(bar ClosePricer) float64 { return e.Update(bar.ClosePrice()) }

// CommitBar finalizes the bar's close.
func (e *EMA) CommitBar(bar ClosePricer) float64 { return e.Commit(bar.ClosePrice()) }

// Reset returns the EMA to its freshly constructed state.
func (e *EMA) Reset() {
	e.current = 0
	e.previous = 0
}

// Clone returns an independent copy.
func (e *EMA) Clone() *EMA {
	c := *e
	return &c
}

// Period returns the configured period.
func (e *EMA) Period() int { return e.period }

// Alpha returns the smoothing factor 2/(period+1).
func (e *EMA) Alpha() float64 { return e.alpha }

// Baseline returns the committed previous value.
func (e *EMA) Baseline() float64 { return e.previous }

// Name returns the indicator name (e.g., "ema_20").
func (e *EMA) Name() string {
	return fmt.Sprintf("ema_%d", e.period)
}
