package models

import (
	"fmt"
	"math"
	"time"

	"github.com/moznion/go-optional"
)

// Bar is one OHLC record over a unit of time. Timestamp is in milliseconds
// since the epoch and usually marks the period open.
type Bar struct {
	Symbol    string                  `json:"symbol"`
	Timestamp int64                   `json:"timestamp"`
	Open      float64                 `json:"open"`
	High      float64                 `json:"high"`
	Low       float64                 `json:"low"`
	Close     float64                 `json:"close"`
	Volume    optional.Option[uint64] `json:"volume"`
}

// NewBar builds a bar without volume.
func NewBar(symbol string, timestamp int64, open, high, low, closePrice float64) Bar {
	return Bar{
		Symbol:    symbol,
		Timestamp: timestamp,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    optional.None[uint64](),
	}
}

// WithVolume returns a copy of the bar carrying volume v.
func (b Bar) WithVolume(v uint64) Bar {
	b.Volume = optional.Some(v)
	return b
}

// ClosePrice returns the price at the end of the period.
func (b Bar) ClosePrice() float64 { return b.Close }

// OpenPrice returns the price at the start of the period.
func (b Bar) OpenPrice() float64 { return b.Open }

// HighPrice returns the highest price seen during the period.
func (b Bar) HighPrice() float64 { return b.High }

// LowPrice returns the lowest price seen during the period.
func (b Bar) LowPrice() float64 { return b.Low }

// VolumeOr returns the traded volume, or fallback when none was reported.
func (b Bar) VolumeOr(fallback uint64) uint64 {
	if b.Volume.IsNone() {
		return fallback
	}
	return b.Volume.Unwrap()
}

func (b Bar) TimestampMillis() int64  { return b.Timestamp }
func (b Bar) TimestampSeconds() int64 { return millisToSeconds(b.Timestamp) }
func (b Bar) Time() time.Time         { return millisToTime(b.Timestamp) }

// Validate validates a Bar
func (b Bar) Validate() error {
	if b.Symbol == "" {
		return ErrInvalidSymbol
	}
	if b.Timestamp <= 0 {
		return ErrInvalidTimestamp
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
	} {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s %v", ErrInvalidPrice, p.name, p.value)
		}
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	return nil
}

// LiveBar is a bar that is still being built from quotes.
type LiveBar struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"` // start of the period
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    uint64  `json:"volume"`
	Quotes    int     `json:"quotes"`
	LastQuote int64   `json:"last_quote"` // timestamp of the latest folded quote
}

// Update folds a quote into the live bar.
func (lb *LiveBar) Update(q *Quote) {
	if lb.Quotes == 0 {
		lb.Open = q.Price
		lb.High = q.Price
		lb.Low = q.Price
	}
	if q.Price > lb.High {
		lb.High = q.Price
	}
	if q.Price < lb.Low {
		lb.Low = q.Price
	}
	lb.Close = q.Price
	lb.Volume += q.Volume
	lb.Quotes++
	lb.LastQuote = q.Timestamp
}

// ToBar converts the live bar into a bar record.
func (lb *LiveBar) ToBar() Bar {
	return NewBar(lb.Symbol, lb.Timestamp, lb.Open, lb.High, lb.Low, lb.Close).WithVolume(lb.Volume)
}

func (lb *LiveBar) ClosePrice() float64     { return lb.Close }
func (lb *LiveBar) TimestampMillis() int64  { return lb.Timestamp }
func (lb *LiveBar) TimestampSeconds() int64 { return millisToSeconds(lb.Timestamp) }
func (lb *LiveBar) Time() time.Time         { return millisToTime(lb.Timestamp) }
