package indicator

import (
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
)

// candleSpacing separates synthetic candle periods; techan only needs them ordered.
const candleSpacing = time.Minute

// TechanCalculator evaluates a techan indicator over a bounded window of
// committed candles. Update evaluates the window plus the forming candle on
// a throw-away series, so previews never touch the committed candles.
type TechanCalculator struct {
	name    string
	build   func(*techan.TimeSeries) techan.Indicator
	window  int // candles kept
	warmup  int // candles needed before the value is meaningful
	candles []*techan.Candle
	seq     int64
	current float64
}

// NewTechanCalculator creates a calculator from a builder that wires a techan
// indicator onto a series.
func NewTechanCalculator(name string, build func(*techan.TimeSeries) techan.Indicator, window, warmup int) *TechanCalculator {
	return &TechanCalculator{
		name:    name,
		build:   build,
		window:  window,
		warmup:  warmup,
		candles: make([]*techan.Candle, 0, window+1),
	}
}

func (t *TechanCalculator) Name() string {
	return t.name
}

func (t *TechanCalculator) candle(bar ClosePricer) *techan.Candle {
	start := time.Unix(0, 0).UTC().Add(time.Duration(t.seq) * candleSpacing)
	candle := techan.NewCandle(techan.NewTimePeriod(start, candleSpacing))

	closePrice := bar.ClosePrice()
	open, high, low := closePrice, closePrice, closePrice
	if ohlc, ok := bar.(OHLC); ok {
		open, high, low = ohlc.OpenPrice(), ohlc.HighPrice(), ohlc.LowPrice()
	}

	candle.OpenPrice = big.NewDecimal(open)
	candle.MaxPrice = big.NewDecimal(high)
	candle.MinPrice = big.NewDecimal(low)
	candle.ClosePrice = big.NewDecimal(closePrice)
	return candle
}

func (t *TechanCalculator) evaluate(candles []*techan.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	series := techan.NewTimeSeries()
	for _, c := range candles {
		series.AddCandle(c)
	}
	return t.build(series).Calculate(series.LastIndex()).Float()
}

// Update previews a forming bar.
func (t *TechanCalculator) Update(bar ClosePricer) {
	probe := make([]*techan.Candle, len(t.candles), len(t.candles)+1)
	copy(probe, t.candles)
	probe = append(probe, t.candle(bar))
	t.current = t.evaluate(probe)
}

// Commit appends a finalized bar to the window.
func (t *TechanCalculator) Commit(bar ClosePricer) {
	t.candles = append(t.candles, t.candle(bar))
	t.seq++
	if len(t.candles) > t.window {
		copy(t.candles, t.candles[1:])
		t.candles = t.candles[:len(t.candles)-1]
	}
	t.current = t.evaluate(t.candles)
}

func (t *TechanCalculator) Values() map[string]float64 {
	return map[string]float64{t.name: t.current}
}

func (t *TechanCalculator) Reset() {
	t.candles = t.candles[:0]
	t.seq = 0
	t.current = 0
}

// IsReady returns true once enough candles were committed.
func (t *TechanCalculator) IsReady() bool {
	return len(t.candles) >= t.warmup
}

// BarsProcessed returns the number of candles in the window.
func (t *TechanCalculator) BarsProcessed() int {
	return len(t.candles)
}
