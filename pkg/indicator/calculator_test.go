package indicator

import (
	"errors"
	"testing"

	"github.com/mohamedkhairy/market-finance/pkg/models"
)

func TestCalculators_Names(t *testing.T) {
	ema, _ := NewEMACalculator(20)
	rsi, _ := NewRSICalculator(14)
	macd, _ := NewMACDCalculator(12, 26, 9)

	for calc, want := range map[Calculator]string{ema: "ema_20", rsi: "rsi_14", macd: "macd_12_26_9"} {
		if calc.Name() != want {
			t.Errorf("Expected name %q, got %q", want, calc.Name())
		}
		if calc.IsReady() {
			t.Errorf("%s should not be ready before any bar", want)
		}
	}
}

func TestCalculators_InvalidPeriod(t *testing.T) {
	if _, err := NewEMACalculator(0); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("EMA: expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := NewRSICalculator(-1); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("RSI: expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := NewMACDCalculator(12, 0, 9); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("MACD: expected ErrInvalidPeriod, got %v", err)
	}
}

func TestMACDCalculator_Values(t *testing.T) {
	calc, _ := NewMACDCalculator(7, 15, 9)
	bar := models.NewBar("AAPL", 60_000, 100, 100, 100, 100)

	calc.Commit(bar)
	calc.Update(models.NewBar("AAPL", 120_000, 50, 50, 50, 50))

	values := calc.Values()
	want := map[string]float64{
		"macd_7_15_9":           14.0625,
		"macd_7_15_9_signal":    6.0625,
		"macd_7_15_9_histogram": 8.0,
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("%s = %f, expected %f", k, values[k], v)
		}
	}
	if !calc.IsReady() {
		t.Error("Calculator should be ready after a bar")
	}
}

func TestEMACalculator_UpdateAndReset(t *testing.T) {
	calc, _ := NewEMACalculator(7)

	calc.Update(models.NewBar("AAPL", 60_000, 100, 100, 100, 100))
	if v := calc.Values()["ema_7"]; v != 25 {
		t.Errorf("Expected 25, got %f", v)
	}

	calc.Reset()
	if calc.IsReady() {
		t.Error("Calculator should not be ready after reset")
	}
	if v := calc.Values()["ema_7"]; v != 0 {
		t.Errorf("Expected 0 after reset, got %f", v)
	}
}

func TestRSICalculator_Options(t *testing.T) {
	skip, _ := NewRSICalculator(7)
	feed, _ := NewRSICalculator(7, WithFlatSteps(FeedFlatSteps))

	for _, c := range []float64{100, 110, 110, 110} {
		bar := models.NewBar("AAPL", 60_000, c, c, c, c)
		skip.Commit(bar)
		feed.Commit(bar)
	}

	if skip.Values()["rsi_7"] != 100 {
		t.Errorf("Skip policy keeps RSI saturated, got %f", skip.Values()["rsi_7"])
	}
	if feed.Values()["rsi_7"] != 100 {
		t.Errorf("Without losses RSI stays saturated under feed, got %f", feed.Values()["rsi_7"])
	}
}
