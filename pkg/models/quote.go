package models

import (
	"fmt"
	"strings"
	"time"
)

// TradingSession is the market session a quote occurred in.
type TradingSession int

const (
	PreMarket TradingSession = iota
	Regular
	AfterHours
	Other
)

func (s TradingSession) String() string {
	switch s {
	case PreMarket:
		return "premarket"
	case Regular:
		return "regular"
	case AfterHours:
		return "afterhours"
	default:
		return "other"
	}
}

// ParseTradingSession parses the String form of a session.
func ParseTradingSession(s string) (TradingSession, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "premarket", "pre":
		return PreMarket, nil
	case "regular":
		return Regular, nil
	case "afterhours", "post":
		return AfterHours, nil
	case "other":
		return Other, nil
	}
	return Other, fmt.Errorf("%w: %q", ErrUnknownSession, s)
}

// Quote is a symbol's price at a point in time.
type Quote struct {
	Symbol    string         `json:"symbol"`
	Timestamp int64          `json:"timestamp"`
	Session   TradingSession `json:"session"`
	Price     float64        `json:"price"`
	Volume    uint64         `json:"volume"` // daily or transactional, depending on the source
}

// ClosePrice returns the quoted price, letting a quote drive an indicator directly.
func (q *Quote) ClosePrice() float64 { return q.Price }

func (q *Quote) TimestampMillis() int64  { return q.Timestamp }
func (q *Quote) TimestampSeconds() int64 { return millisToSeconds(q.Timestamp) }
func (q *Quote) Time() time.Time         { return millisToTime(q.Timestamp) }

// Validate validates a Quote
func (q *Quote) Validate() error {
	if q.Symbol == "" {
		return ErrInvalidSymbol
	}
	if q.Price <= 0 {
		return ErrInvalidPrice
	}
	if q.Timestamp <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}
