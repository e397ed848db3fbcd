package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/market-finance/internal/config"
)

func TestRegisterAllIndicators(t *testing.T) {
	registry := NewIndicatorRegistry()
	cfg := config.IndicatorConfig{
		EMAPeriods:   []int{9, 21},
		RSIPeriods:   []int{14},
		RSIFlatSteps: "feed",
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		SMAPeriods:   []int{20},
		ATRPeriods:   []int{14},
		VWAPMinutes:  []int{5, 60},
	}

	require.NoError(t, RegisterAllIndicators(registry, cfg))

	assert.Equal(t,
		[]string{"atr_14", "ema_21", "ema_9", "macd_12_26_9", "rsi_14", "sma_20", "vwap_1h", "vwap_5m"},
		registry.ListAvailable(),
	)

	macd, ok := registry.GetMetadata("macd_12_26_9")
	require.True(t, ok)
	assert.Equal(t, "core", macd.Type)
	assert.Equal(t, []string{"macd_12_26_9", "macd_12_26_9_histogram", "macd_12_26_9_signal"}, macd.Outputs)

	rsi, _ := registry.GetMetadata("rsi_14")
	assert.Equal(t, "feed", rsi.Parameters["flat_steps"])

	atr, _ := registry.GetMetadata("atr_14")
	assert.Equal(t, "techan", atr.Type)
	assert.Equal(t, "volatility", atr.Category)

	vwap, _ := registry.GetMetadata("vwap_1h")
	assert.Equal(t, "volume", vwap.Category)
	assert.Equal(t, 60, vwap.Parameters["window_minutes"])
}

func TestRegisterAllIndicators_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.RSIFlatSteps = "average"
	assert.Error(t, RegisterAllIndicators(NewIndicatorRegistry(), cfg))

	cfg = testConfig()
	cfg.EMAPeriods = []int{7, 7}
	assert.Error(t, RegisterAllIndicators(NewIndicatorRegistry(), cfg), "duplicate periods")

	cfg = testConfig()
	cfg.MACDSignal = 0
	assert.Error(t, RegisterAllIndicators(NewIndicatorRegistry(), cfg))
}
