package indicator

import (
	"fmt"

	"github.com/sdcoffey/techan"
)

// NewTechanSMA creates a simple moving average over close prices named "sma_<period>".
func NewTechanSMA(period int) (Calculator, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: SMA period must be at least 1, got %d", ErrInvalidPeriod, period)
	}
	return NewTechanCalculator(
		fmt.Sprintf("sma_%d", period),
		func(series *techan.TimeSeries) techan.Indicator {
			return techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(series), period)
		},
		period,
		period,
	), nil
}

// NewTechanATR creates an average true range named "atr_<period>". True range
// needs the previous close, hence one extra candle of warmup.
func NewTechanATR(period int) (Calculator, error) {
	if period < 1 {
		return nil, fmt.Errorf("%w: ATR period must be at least 1, got %d", ErrInvalidPeriod, period)
	}
	return NewTechanCalculator(
		fmt.Sprintf("atr_%d", period),
		func(series *techan.TimeSeries) techan.Indicator {
			return techan.NewAverageTrueRangeIndicator(series, period)
		},
		period+1,
		period+1,
	), nil
}
