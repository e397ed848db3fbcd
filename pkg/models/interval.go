package models

import (
	"fmt"
	"strings"
	"time"
)

// Interval is the period length used when requesting or building bars.
type Interval int

const (
	Interval1m Interval = iota
	Interval2m
	Interval5m
	Interval15m
	Interval30m
	Interval60m
	Interval90m
	Interval1d
	Interval5d
	Interval1mo
	Interval3mo
	Interval6mo
	Interval1y
	Interval2y
	Interval5y
	Interval10y
	IntervalYTD
	IntervalMax
)

var intervalNames = [...]string{
	Interval1m:  "1m",
	Interval2m:  "2m",
	Interval5m:  "5m",
	Interval15m: "15m",
	Interval30m: "30m",
	Interval60m: "60m",
	Interval90m: "90m",
	Interval1d:  "1d",
	Interval5d:  "5d",
	Interval1mo: "1mo",
	Interval3mo: "3mo",
	Interval6mo: "6mo",
	Interval1y:  "1y",
	Interval2y:  "2y",
	Interval5y:  "5y",
	Interval10y: "10y",
	IntervalYTD: "ytd",
	IntervalMax: "max",
}

// Intervals lists every interval in ascending order.
func Intervals() []Interval {
	out := make([]Interval, 0, len(intervalNames))
	for i := range intervalNames {
		out = append(out, Interval(i))
	}
	return out
}

func (i Interval) String() string {
	if i < 0 || int(i) >= len(intervalNames) {
		return fmt.Sprintf("Interval(%d)", int(i))
	}
	return intervalNames[i]
}

// IsIntraday reports whether the interval is shorter than a trading day.
func (i Interval) IsIntraday() bool {
	return i >= Interval1m && i <= Interval90m
}

// Duration returns the fixed length of the interval. Calendar based
// intervals (months, years, ytd, max) have none.
func (i Interval) Duration() (time.Duration, bool) {
	switch i {
	case Interval1m:
		return time.Minute, true
	case Interval2m:
		return 2 * time.Minute, true
	case Interval5m:
		return 5 * time.Minute, true
	case Interval15m:
		return 15 * time.Minute, true
	case Interval30m:
		return 30 * time.Minute, true
	case Interval60m:
		return time.Hour, true
	case Interval90m:
		return 90 * time.Minute, true
	case Interval1d:
		return 24 * time.Hour, true
	case Interval5d:
		return 5 * 24 * time.Hour, true
	}
	return 0, false
}

// ParseInterval parses the String form of an interval. "1h" is accepted for 60m.
func ParseInterval(s string) (Interval, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "1h" {
		return Interval60m, nil
	}
	for i, name := range intervalNames {
		if name == v {
			return Interval(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInterval, s)
}

func (i Interval) MarshalText() ([]byte, error) {
	if i < 0 || int(i) >= len(intervalNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownInterval, int(i))
	}
	return []byte(intervalNames[i]), nil
}

func (i *Interval) UnmarshalText(text []byte) error {
	parsed, err := ParseInterval(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
