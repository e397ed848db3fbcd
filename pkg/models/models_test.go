package models

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestBar_Validate(t *testing.T) {
	tests := []struct {
		name    string
		bar     Bar
		wantErr error
	}{
		{
			name: "valid bar",
			bar:  NewBar("AAPL", 1_700_000_000_000, 100, 105, 99, 103).WithVolume(1000),
		},
		{
			name:    "missing symbol",
			bar:     NewBar("", 1_700_000_000_000, 100, 105, 99, 103),
			wantErr: ErrInvalidSymbol,
		},
		{
			name:    "zero timestamp",
			bar:     NewBar("AAPL", 0, 100, 105, 99, 103),
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "high below low",
			bar:     NewBar("AAPL", 1_700_000_000_000, 100, 98, 99, 103),
			wantErr: ErrInvalidBar,
		},
		{
			name:    "nan open",
			bar:     NewBar("AAPL", 1_700_000_000_000, math.NaN(), 105, 99, 103),
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "nan high",
			bar:     NewBar("AAPL", 1_700_000_000_000, 100, math.NaN(), 99, 103),
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "infinite low",
			bar:     NewBar("AAPL", 1_700_000_000_000, 100, 105, math.Inf(-1), 103),
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "nan close",
			bar:     NewBar("AAPL", 1_700_000_000_000, 100, 105, 99, math.NaN()),
			wantErr: ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bar.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Bar.Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Bar.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBar_Volume(t *testing.T) {
	bar := NewBar("AAPL", 1, 1, 1, 1, 1)
	if bar.Volume.IsSome() {
		t.Error("NewBar should not carry volume")
	}
	if got := bar.VolumeOr(7); got != 7 {
		t.Errorf("VolumeOr() = %d, want fallback 7", got)
	}

	bar = bar.WithVolume(500)
	if got := bar.VolumeOr(7); got != 500 {
		t.Errorf("VolumeOr() = %d, want 500", got)
	}
}

func TestTimestamped(t *testing.T) {
	bar := NewBar("AAPL", 1_700_000_123_456, 1, 1, 1, 1)

	var ts Timestamped = bar
	if ts.TimestampMillis() != 1_700_000_123_456 {
		t.Errorf("TimestampMillis() = %d", ts.TimestampMillis())
	}
	if ts.TimestampSeconds() != 1_700_000_123 {
		t.Errorf("TimestampSeconds() = %d, want 1700000123", ts.TimestampSeconds())
	}

	got := ts.Time()
	if got.Location() != time.UTC {
		t.Errorf("Time() location = %v, want UTC", got.Location())
	}
	if got.Nanosecond() != 456*int(time.Millisecond) {
		t.Errorf("Time() nanoseconds = %d, want 456ms", got.Nanosecond())
	}
	if got.Unix() != 1_700_000_123 {
		t.Errorf("Time().Unix() = %d", got.Unix())
	}

	quote := &Quote{Symbol: "AAPL", Timestamp: 2_500, Price: 1}
	ts = quote
	if ts.TimestampSeconds() != 2 {
		t.Errorf("quote TimestampSeconds() = %d, want 2", ts.TimestampSeconds())
	}
}

func TestLiveBar_Update(t *testing.T) {
	lb := &LiveBar{Symbol: "AAPL", Timestamp: 60_000}

	for _, q := range []Quote{
		{Symbol: "AAPL", Timestamp: 60_100, Price: 100, Volume: 10},
		{Symbol: "AAPL", Timestamp: 60_200, Price: 104, Volume: 5},
		{Symbol: "AAPL", Timestamp: 60_300, Price: 98, Volume: 5},
		{Symbol: "AAPL", Timestamp: 60_400, Price: 101, Volume: 20},
	} {
		lb.Update(&q)
	}

	bar := lb.ToBar()
	if bar.Open != 100 || bar.High != 104 || bar.Low != 98 || bar.Close != 101 {
		t.Errorf("unexpected OHLC: %+v", bar)
	}
	if bar.VolumeOr(0) != 40 {
		t.Errorf("volume = %d, want 40", bar.VolumeOr(0))
	}
	if bar.Timestamp != 60_000 {
		t.Errorf("timestamp = %d, want period start", bar.Timestamp)
	}
	if lb.Quotes != 4 {
		t.Errorf("quotes = %d, want 4", lb.Quotes)
	}
	if lb.LastQuote != 60_400 {
		t.Errorf("last quote = %d, want 60400", lb.LastQuote)
	}
}

func TestQuote_Validate(t *testing.T) {
	tests := []struct {
		name    string
		quote   Quote
		wantErr bool
	}{
		{"valid quote", Quote{Symbol: "AAPL", Timestamp: 1, Price: 150.5, Session: Regular}, false},
		{"missing symbol", Quote{Timestamp: 1, Price: 150.5}, true},
		{"invalid price", Quote{Symbol: "AAPL", Timestamp: 1}, true},
		{"zero timestamp", Quote{Symbol: "AAPL", Price: 150.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.quote.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Quote.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTradingSession(t *testing.T) {
	for _, s := range []TradingSession{PreMarket, Regular, AfterHours, Other} {
		parsed, err := ParseTradingSession(s.String())
		if err != nil {
			t.Fatalf("ParseTradingSession(%q) failed: %v", s.String(), err)
		}
		if parsed != s {
			t.Errorf("ParseTradingSession(%q) = %v", s.String(), parsed)
		}
	}

	if _, err := ParseTradingSession("lunch"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("expected ErrUnknownSession, got %v", err)
	}
}

func TestInterval_StringAndIntraday(t *testing.T) {
	tests := []struct {
		interval Interval
		value    string
		intraday bool
	}{
		{Interval1m, "1m", true},
		{Interval2m, "2m", true},
		{Interval5m, "5m", true},
		{Interval15m, "15m", true},
		{Interval30m, "30m", true},
		{Interval60m, "60m", true},
		{Interval90m, "90m", true},
		{Interval1d, "1d", false},
		{Interval5d, "5d", false},
		{Interval1mo, "1mo", false},
		{Interval3mo, "3mo", false},
		{Interval6mo, "6mo", false},
		{Interval1y, "1y", false},
		{Interval2y, "2y", false},
		{Interval5y, "5y", false},
		{Interval10y, "10y", false},
		{IntervalYTD, "ytd", false},
		{IntervalMax, "max", false},
	}

	if len(tests) != len(Intervals()) {
		t.Fatalf("expected %d intervals, got %d", len(tests), len(Intervals()))
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if tt.interval.String() != tt.value {
				t.Errorf("String() = %q, want %q", tt.interval.String(), tt.value)
			}
			if tt.interval.IsIntraday() != tt.intraday {
				t.Errorf("IsIntraday() = %v, want %v", tt.interval.IsIntraday(), tt.intraday)
			}
			parsed, err := ParseInterval(tt.value)
			if err != nil || parsed != tt.interval {
				t.Errorf("ParseInterval(%q) = %v, %v", tt.value, parsed, err)
			}
		})
	}
}

func TestParseInterval(t *testing.T) {
	iv, err := ParseInterval(" 1H ")
	if err != nil || iv != Interval60m {
		t.Errorf("ParseInterval(1H) = %v, %v; want 60m", iv, err)
	}

	iv, err = ParseInterval("YTD")
	if err != nil || iv != IntervalYTD {
		t.Errorf("ParseInterval(YTD) = %v, %v", iv, err)
	}

	if _, err := ParseInterval("7m"); !errors.Is(err, ErrUnknownInterval) {
		t.Errorf("expected ErrUnknownInterval, got %v", err)
	}
}

func TestInterval_Duration(t *testing.T) {
	if d, ok := Interval15m.Duration(); !ok || d != 15*time.Minute {
		t.Errorf("15m Duration() = %v, %v", d, ok)
	}
	if d, ok := Interval1d.Duration(); !ok || d != 24*time.Hour {
		t.Errorf("1d Duration() = %v, %v", d, ok)
	}
	if _, ok := Interval1mo.Duration(); ok {
		t.Error("1mo should not have a fixed duration")
	}
}

func TestInterval_Text(t *testing.T) {
	text, err := Interval90m.MarshalText()
	if err != nil || string(text) != "90m" {
		t.Fatalf("MarshalText() = %q, %v", text, err)
	}

	var iv Interval
	if err := iv.UnmarshalText([]byte("5d")); err != nil || iv != Interval5d {
		t.Errorf("UnmarshalText(5d) = %v, %v", iv, err)
	}
	if err := iv.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown interval")
	}
}
