package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	indicatorpkg "github.com/mohamedkhairy/market-finance/pkg/indicator"
	"github.com/mohamedkhairy/market-finance/pkg/logger"
)

type indicatorOutput struct {
	Symbol     string             `json:"symbol"`
	Bars       int                `json:"bars"`
	Indicators map[string]float64 `json:"indicators"`
}

func setCommandEnv(t *testing.T) {
	t.Helper()
	t.Cleanup(logger.Set(zap.NewNop()))

	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("INDICATOR_EMA_PERIODS", "7")
	t.Setenv("INDICATOR_RSI_PERIODS", "7")
	t.Setenv("INDICATOR_MACD_FAST", "7")
	t.Setenv("INDICATOR_MACD_SLOW", "15")
	t.Setenv("INDICATOR_MACD_SIGNAL", "9")
	t.Setenv("INDICATOR_SMA_PERIODS", "2")
	t.Setenv("INDICATOR_ATR_PERIODS", "2")
	t.Setenv("INDICATOR_VWAP_MINUTES", "5")
	t.Setenv("FEED_SYMBOLS", "")
	t.Setenv("FEED_INTERVAL", "1m")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runApp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run(context.Background(), append([]string{"indicator"}, args...)))
	return out.String()
}

func decodeOutput(t *testing.T, raw string) indicatorOutput {
	t.Helper()
	var out indicatorOutput
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

// committedEMA7 returns an EMA(7) after committing each close once.
func committedEMA7(t *testing.T, closes ...float64) float64 {
	t.Helper()
	ema, err := indicatorpkg.NewEMA(7)
	require.NoError(t, err)
	var v float64
	for _, c := range closes {
		v = ema.Commit(c)
	}
	return v
}

func TestReplayCommand(t *testing.T) {
	setCommandEnv(t)
	path := writeFile(t, "bars.csv", `timestamp,open,high,low,close,volume
60000,100,101,99,100,10
120000,100,101,99,100,10
180000,100,101,99,100,10
`)

	out := decodeOutput(t, runApp(t, "replay", "--file", path, "--symbol", "aapl"))

	assert.Equal(t, "AAPL", out.Symbol)
	assert.Equal(t, 3, out.Bars)
	assert.InDelta(t, committedEMA7(t, 100, 100, 100), out.Indicators["ema_7"], 1e-9)
	assert.InDelta(t, 68.359375, out.Indicators["ema_7"], 1e-9)
	assert.InDelta(t, 100, out.Indicators["sma_2"], 1e-9)
	assert.Contains(t, out.Indicators, "macd_7_15_9_signal")
}

func TestQuotesCommand_CommitsEachBucketOnce(t *testing.T) {
	setCommandEnv(t)
	// Four quotes in three one-minute buckets; the first bucket closes at 100.
	path := writeFile(t, "quotes.csv", `timestamp,price,volume
60000,90,5
60500,100,5
120000,100,5
180000,100,5
`)

	out := decodeOutput(t, runApp(t, "quotes", "--file", path, "--symbol", "AAPL", "--interval", "1m"))

	assert.Equal(t, 3, out.Bars)
	assert.InDelta(t, committedEMA7(t, 100, 100, 100), out.Indicators["ema_7"], 1e-9)
	// Typical prices (100+90+100)/3, 100, 100 weighted by volumes 10, 5, 5.
	assert.InDelta(t, (290.0/3*10+1000)/20, out.Indicators["vwap_5m"], 1e-9)
}

func TestQuotesCommand_WiderInterval(t *testing.T) {
	setCommandEnv(t)
	path := writeFile(t, "quotes.csv", `60000,100
120000,110
360000,120
`)

	out := decodeOutput(t, runApp(t, "quotes", "--file", path, "--symbol", "AAPL", "--interval", "5m"))

	// Buckets [0,5m) closes at 110 and [5m,10m) closes at 120.
	assert.Equal(t, 2, out.Bars)
	assert.InDelta(t, committedEMA7(t, 110, 120), out.Indicators["ema_7"], 1e-9)
}

func TestSymbolsCommand(t *testing.T) {
	nasdaq := writeFile(t, "nasdaqlisted.txt", `Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
QQQ|Invesco QQQ Trust, Series 1|G|N|N|100|Y|N
AAPL|Apple Inc. - Common Stock|Q|N|N|100|N|N
File Creation Time: 1015202608:31|||||||
`)
	other := writeFile(t, "otherlisted.txt", `ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol
SPY|SPDR S&P 500 ETF Trust|P|SPY|Y|100|N|SPY
File Creation Time: 1015202608:31|||||||
`)

	lines := strings.Split(strings.TrimSpace(runApp(t, "symbols", "--nasdaq", nasdaq, "--other", other)), "\n")
	assert.Equal(t, []string{
		"AAPL\tNASDAQ\tApple Inc. - Common Stock",
		"QQQ\tNASDAQ\tInvesco QQQ Trust, Series 1",
		"SPY\tNYSE Arca\tSPDR S&P 500 ETF Trust",
	}, lines)

	etfs := strings.Split(strings.TrimSpace(runApp(t, "symbols", "--nasdaq", nasdaq, "--other", other, "--etf")), "\n")
	assert.Len(t, etfs, 2)
}

func TestSymbolsCommand_RequiresAFile(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	assert.Error(t, app.Run(context.Background(), []string{"indicator", "symbols"}))
}
