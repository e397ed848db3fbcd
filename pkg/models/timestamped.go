package models

import "time"

// Timestamped is implemented by anything carrying a single millisecond
// timestamp since the Unix epoch.
type Timestamped interface {
	TimestampMillis() int64
	TimestampSeconds() int64
	Time() time.Time
}

// millisToSeconds truncates toward zero.
func millisToSeconds(ms int64) int64 {
	return ms / 1_000
}

// millisToTime converts to a UTC time, keeping the millisecond part.
func millisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
