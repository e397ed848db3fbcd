package indicator

import "errors"

// ErrInvalidPeriod is returned by constructors given a period below 1.
var ErrInvalidPeriod = errors.New("invalid indicator period")

// ClosePricer is anything exposing a closing price (bars, live bars, quotes).
type ClosePricer interface {
	ClosePrice() float64
}

// OHLC is a ClosePricer that also carries the rest of the price range.
type OHLC interface {
	ClosePricer
	OpenPrice() float64
	HighPrice() float64
	LowPrice() float64
}

// Indicator is the two-mode protocol shared by every incremental indicator.
//
// Update previews the value for an input that may still change (a forming
// bar) and never moves the committed baseline. Commit finalizes an input and
// advances the baseline. The Bar variants read the close price and are
// bit-identical to calling the scalar method with it.
type Indicator[T any] interface {
	Current() T
	Update(value float64) T
	Commit(value float64) T
	UpdateBar(bar ClosePricer) T
	CommitBar(bar ClosePricer) T
	Reset()
}

var (
	_ Indicator[float64]   = (*EMA)(nil)
	_ Indicator[float64]   = (*RSI)(nil)
	_ Indicator[MACDValue] = (*MACD)(nil)
)
