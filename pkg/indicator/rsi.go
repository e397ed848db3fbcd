package indicator

import (
	"fmt"
	"math"
)

// FlatStepPolicy decides what the RSI averages see when a step has no gain
// (or no loss).
type FlatStepPolicy int

const (
	// SkipFlatSteps leaves an average untouched when its driver is zero.
	SkipFlatSteps FlatStepPolicy = iota
	// FeedFlatSteps always feeds both averages, zeros included.
	FeedFlatSteps
)

func (p FlatStepPolicy) String() string {
	if p == FeedFlatSteps {
		return "feed"
	}
	return "skip"
}

// ParseFlatStepPolicy parses "skip" or "feed".
func ParseFlatStepPolicy(s string) (FlatStepPolicy, error) {
	switch s {
	case "skip", "":
		return SkipFlatSteps, nil
	case "feed":
		return FeedFlatSteps, nil
	}
	return SkipFlatSteps, fmt.Errorf("unknown RSI flat step policy %q", s)
}

// RSIOption configures an RSI.
type RSIOption func(*RSI)

// WithFlatSteps sets the flat step policy (default SkipFlatSteps).
func WithFlatSteps(p FlatStepPolicy) RSIOption {
	return func(r *RSI) { r.flatSteps = p }
}

// RSI is the relative strength index over two EMAs of gains and losses.
//
// Gains and losses are derived from the indicator's own last two raw
// observations, not from the incoming value; the incoming value only becomes
// the new current observation.
type RSI struct {
	up        EMA
	down      EMA
	current   float64
	previous  float64
	flatSteps FlatStepPolicy
}

// NewRSI creates a new RSI with the specified period
func NewRSI(period int, opts ...RSIOption) (*RSI, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: RSI period must be at least 1, got %d", ErrInvalidPeriod, period)
	}

	r := &RSI{
		up:   newEMA(period),
		down: newEMA(period),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *RSI) gainLoss() (gain, loss float64) {
	return math.Max(r.current-r.previous, 0), math.Max(r.previous-r.current, 0)
}

func (r *RSI) feeds(v float64) bool {
	return v > 0 || r.flatSteps == FeedFlatSteps
}

// Current computes the RSI from the current average states. A 0/0 ratio
// counts as neutral (50) and a zero down average saturates at 100.
func (r *RSI) Current() float64 {
	rs := r.up.Current() / r.down.Current()
	if math.IsNaN(rs) {
		rs = 1
	}
	return 100 - 100/(1+rs)
}

// Update previews value. The averages are only previewed, but the raw
// current observation becomes value.
func (r *RSI) Update(value float64) float64 {
	gain, loss := r.gainLoss()
	if r.feeds(gain) {
		r.up.Update(gain)
	}
	if r.feeds(loss) {
		r.down.Update(loss)
	}
	r.current = value
	return r.Current()
}

// Commit finalizes the step between the last two observations and shifts
// value in as the new current observation.
func (r *RSI) Commit(value float64) float64 {
	gain, loss := r.gainLoss()
	if r.feeds(gain) {
		r.up.Commit(gain)
	}
	if r.feeds(loss) {
		r.down.Commit(loss)
	}
	r.previous = r.current
	r.current = value
	return r.Current()
}

// UpdateBar previews the bar's close.
func (r *RSI) UpdateBar(bar ClosePricer) float64 { return r.Update(bar.ClosePrice()) }

// CommitBar finalizes the bar's close.
func (r *RSI) CommitBar(bar ClosePricer) float64 { return r.Commit(bar.ClosePrice()) }

// Reset returns the RSI to its freshly constructed state, keeping options.
func (r *RSI) Reset() {
	r.up.Reset()
	r.down.Reset()
	r.current = 0
	r.previous = 0
}

// Clone returns an independent copy.
func (r *RSI) Clone() *RSI {
	c := *r
	return &c
}

// Observations returns the raw current and previous values.
func (r *RSI) Observations() (current, previous float64) {
	return r.current, r.previous
}

// Averages returns the current up and down averages.
func (r *RSI) Averages() (up, down float64) {
	return r.up.Current(), r.down.Current()
}

// Period returns the period of both averages.
func (r *RSI) Period() int { return r.up.period }

// FlatSteps returns the flat step policy.
func (r *RSI) FlatSteps() FlatStepPolicy { return r.flatSteps }

// Name returns the indicator name (e.g., "rsi_14").
func (r *RSI) Name() string {
	return fmt.Sprintf("rsi_%d", r.up.period)
}
