package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/mohamedkhairy/market-finance/internal/bars"
	"github.com/mohamedkhairy/market-finance/internal/config"
	"github.com/mohamedkhairy/market-finance/internal/feed"
	"github.com/mohamedkhairy/market-finance/internal/indicator"
	"github.com/mohamedkhairy/market-finance/pkg/logger"
	"github.com/mohamedkhairy/market-finance/pkg/models"
	"github.com/mohamedkhairy/market-finance/pkg/securities"
)

// setup loads configuration, initializes the logger and builds an engine
// with every configured indicator registered.
func setup() (*config.Config, *indicator.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	registry := indicator.NewIndicatorRegistry()
	if err := indicator.RegisterAllIndicators(registry, cfg.Indicator); err != nil {
		return nil, nil, fmt.Errorf("failed to register indicators: %w", err)
	}
	logger.Info("Registered indicators",
		logger.Int("count", len(registry.ListAvailable())),
		logger.Strings("indicators", registry.ListAvailable()),
	)

	engine := indicator.NewEngine(indicator.EngineConfig{MaxBars: cfg.Indicator.MaxBars}, registry)
	return cfg, engine, nil
}

func intervalFlag(cmd *cli.Command, cfg *config.Config) (models.Interval, error) {
	if v := cmd.String("interval"); v != "" {
		return models.ParseInterval(v)
	}
	return cfg.Feed.ParsedInterval()
}

// output returns the writer of the root command (stdout unless overridden).
func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func printIndicators(w io.Writer, symbol string, bars int, values map[string]float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"symbol": symbol, "bars": bars, "indicators": values})
}

func replayAction(ctx context.Context, cmd *cli.Command) error {
	_, engine, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	symbol := strings.ToUpper(cmd.String("symbol"))
	f, err := os.Open(cmd.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	history, err := feed.ReadBarsCSV(f, symbol)
	if err != nil {
		return fmt.Errorf("failed to read bars: %w", err)
	}
	if err := engine.Rehydrate(symbol, history); err != nil {
		return fmt.Errorf("failed to replay bars: %w", err)
	}

	values, err := engine.GetIndicators(symbol)
	if err != nil {
		return err
	}
	return printIndicators(output(cmd), symbol, len(engine.GetBars(symbol)), values)
}

func quotesAction(ctx context.Context, cmd *cli.Command) error {
	cfg, engine, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	interval, err := intervalFlag(cmd, cfg)
	if err != nil {
		return err
	}
	aggregator, err := bars.NewAggregator(interval)
	if err != nil {
		return err
	}
	aggregator.SetOnBarFinal(engine.ProcessBar)
	aggregator.SetOnBarUpdate(engine.ProcessLiveBar)

	symbol := strings.ToUpper(cmd.String("symbol"))
	f, err := os.Open(cmd.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	quotes, err := feed.ReadQuotesCSV(f, symbol)
	if err != nil {
		return fmt.Errorf("failed to read quotes: %w", err)
	}

	var skipped int
	for i := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := aggregator.ProcessQuote(&quotes[i]); err != nil {
			skipped++
			logger.Warn("Skipping quote",
				logger.Int64("timestamp", quotes[i].Timestamp),
				logger.ErrorField(err),
			)
		}
	}
	// Delivered to engine.ProcessBar through the final-bar handler.
	aggregator.FinalizeAllBars()

	logger.Info("Quotes aggregated",
		logger.String("symbol", symbol),
		logger.String("interval", interval.String()),
		logger.Int("quotes", len(quotes)),
		logger.Int("skipped", skipped),
		logger.Int("bars", len(engine.GetBars(symbol))),
	)

	values, err := engine.GetIndicators(symbol)
	if err != nil {
		return err
	}
	return printIndicators(output(cmd), symbol, len(engine.GetBars(symbol)), values)
}

func streamAction(ctx context.Context, cmd *cli.Command) error {
	cfg, engine, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	interval, err := intervalFlag(cmd, cfg)
	if err != nil {
		return err
	}
	symbols := cmd.StringSlice("symbol")
	if len(symbols) == 0 {
		symbols = cfg.Feed.Symbols
	}
	if len(symbols) == 0 {
		return errors.New("no symbols: pass --symbol or set FEED_SYMBOLS")
	}

	engine.SetOnIndicatorsUpdated(func(symbol string, indicators map[string]float64, final bool) {
		if final {
			logger.Info("Bar committed", logger.String("symbol", symbol), logger.Values(indicators))
		} else {
			logger.Debug("Bar updated", logger.String("symbol", symbol), logger.Values(indicators))
		}
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	health := newStreamHealth()
	var wg sync.WaitGroup

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      setupHealthAndMetricsServer(engine, health),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting health and metrics server", logger.Int("port", cfg.Metrics.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health and metrics server failed", logger.ErrorField(err))
		}
	}()

	streamer := feed.NewKlineStreamer()
	for _, symbol := range symbols {
		symbol := strings.ToUpper(symbol)
		wg.Add(1)
		go func() {
			defer wg.Done()
			health.set(symbol, true)
			err := streamer.Stream(ctx, symbol, interval, engine)
			health.set(symbol, false)
			if err != nil {
				logger.Error("Kline stream ended", logger.String("symbol", symbol), logger.ErrorField(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down indicator stream")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown failed", logger.ErrorField(err))
	}

	wg.Wait()
	logger.Info("Indicator stream stopped")
	return nil
}

func symbolsAction(ctx context.Context, cmd *cli.Command) error {
	paths := map[string]func(io.Reader) ([]securities.Security, error){}
	if p := cmd.String("nasdaq"); p != "" {
		paths[p] = securities.ParseNasdaqListed
	}
	if p := cmd.String("other"); p != "" {
		paths[p] = securities.ParseOtherListed
	}
	if len(paths) == 0 {
		return errors.New("pass --nasdaq and/or --other")
	}

	dir := securities.NewDirectory()
	for path, parse := range paths {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		secs, err := parse(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		dir.Add(secs...)
	}

	etfOnly := cmd.Bool("etf")
	for _, sec := range dir.All() {
		if etfOnly && !sec.IsETF {
			continue
		}
		fmt.Fprintf(output(cmd), "%s\t%s\t%s\n", sec.Symbol, sec.Exchange, sec.Name)
	}
	return nil
}

// streamHealth tracks which symbol streams are connected.
type streamHealth struct {
	mu      sync.RWMutex
	running map[string]bool
}

func newStreamHealth() *streamHealth {
	return &streamHealth{running: make(map[string]bool)}
}

func (h *streamHealth) set(symbol string, running bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running[symbol] = running
}

// snapshot returns the stream states and whether all of them are up.
func (h *streamHealth) snapshot() (map[string]bool, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]bool, len(h.running))
	up := len(h.running) > 0
	for symbol, running := range h.running {
		out[symbol] = running
		up = up && running
	}
	return out, up
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
