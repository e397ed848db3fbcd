package feed

import (
	"context"
	"fmt"
	"strconv"

	binance "github.com/adshao/go-binance/v2"

	"github.com/mohamedkhairy/market-finance/pkg/logger"
	"github.com/mohamedkhairy/market-finance/pkg/models"
)

// BinanceInterval maps an interval to the Binance kline interval name.
func BinanceInterval(iv models.Interval) (string, error) {
	switch iv {
	case models.Interval1m, models.Interval5m, models.Interval15m, models.Interval30m, models.Interval1d:
		return iv.String(), nil
	case models.Interval60m:
		return "1h", nil
	}
	return "", fmt.Errorf("%w: %s is not a Binance kline interval", models.ErrUnknownInterval, iv)
}

func parsePrices(open, high, low, closePrice string) ([4]float64, error) {
	var out [4]float64
	for i, s := range []string{open, high, low, closePrice} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return out, fmt.Errorf("%w: price %q", ErrMalformedRecord, s)
		}
		out[i] = v
	}
	return out, nil
}

func klineBar(symbol string, openTime int64, open, high, low, closePrice, volume string) (models.Bar, error) {
	p, err := parsePrices(open, high, low, closePrice)
	if err != nil {
		return models.Bar{}, err
	}
	bar := models.NewBar(symbol, openTime, p[0], p[1], p[2], p[3])
	if volume != "" {
		vol, err := parseVolume(volume)
		if err != nil {
			return models.Bar{}, err
		}
		bar = bar.WithVolume(vol)
	}
	return bar, nil
}

// BarFromKline converts a historical REST kline. Klines carry no symbol.
func BarFromKline(symbol string, k *binance.Kline) (models.Bar, error) {
	if k == nil {
		return models.Bar{}, fmt.Errorf("%w: nil kline", ErrMalformedRecord)
	}
	return klineBar(symbol, k.OpenTime, k.Open, k.High, k.Low, k.Close, k.Volume)
}

// BarFromWsKline converts a streamed kline and reports whether it is final.
func BarFromWsKline(k binance.WsKline) (models.Bar, bool, error) {
	bar, err := klineBar(k.Symbol, k.StartTime, k.Open, k.High, k.Low, k.Close, k.Volume)
	if err != nil {
		return models.Bar{}, false, err
	}
	return bar, k.IsFinal, nil
}

// NewKlineHandler routes final klines to ProcessBar and forming ones to
// ProcessLiveBar. Conversion and processing errors go to onError.
func NewKlineHandler(p BarProcessor, onError func(error)) binance.WsKlineHandler {
	return func(event *binance.WsKlineEvent) {
		if event == nil {
			return
		}

		bar, final, err := BarFromWsKline(event.Kline)
		if err == nil {
			if final {
				err = p.ProcessBar(bar)
			} else {
				err = p.ProcessLiveBar(bar)
			}
		}
		if err != nil && onError != nil {
			onError(fmt.Errorf("kline %s@%d: %w", event.Kline.Symbol, event.Kline.StartTime, err))
		}
	}
}

type wsKlineServeFunc func(symbol, interval string, handler binance.WsKlineHandler, errHandler binance.ErrHandler) (doneC, stopC chan struct{}, err error)

// KlineStreamer streams Binance klines into a BarProcessor.
type KlineStreamer struct {
	serve wsKlineServeFunc
}

// NewKlineStreamer creates a streamer on the public Binance websocket.
func NewKlineStreamer() *KlineStreamer {
	return &KlineStreamer{serve: binance.WsKlineServe}
}

// Stream blocks until ctx is cancelled or the connection closes.
func (s *KlineStreamer) Stream(ctx context.Context, symbol string, interval models.Interval, p BarProcessor) error {
	binanceInterval, err := BinanceInterval(interval)
	if err != nil {
		return err
	}

	log := logger.WithSymbol(symbol)
	onError := func(err error) {
		logger.FeedErrors.WithLabelValues("binance").Inc()
		log.Warn("Kline stream error", logger.ErrorField(err))
	}

	doneC, stopC, err := s.serve(symbol, binanceInterval, NewKlineHandler(p, onError), onError)
	if err != nil {
		logger.FeedErrors.WithLabelValues("binance").Inc()
		return fmt.Errorf("binance kline stream %s@%s: %w", symbol, binanceInterval, err)
	}
	log.Info("Kline stream started", logger.String("interval", binanceInterval))

	select {
	case <-ctx.Done():
		close(stopC)
		<-doneC
		log.Info("Kline stream stopped")
		return nil
	case <-doneC:
		return fmt.Errorf("binance kline stream %s@%s closed", symbol, binanceInterval)
	}
}
