package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mohamedkhairy/market-finance/pkg/models"
)

// ReadBarsCSV parses rows of timestamp,open,high,low,close[,volume] where
// timestamp is in epoch milliseconds. A leading header row is skipped.
func ReadBarsCSV(r io.Reader, symbol string) ([]models.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var bars []models.Bar
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars: %w", err)
		}

		if line == 1 && isHeader(record) {
			continue
		}

		bar, err := parseBarRecord(record, symbol)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// ReadQuotesCSV parses rows of timestamp,price[,volume[,session]] with the
// timestamp in epoch milliseconds. Missing sessions default to regular.
func ReadQuotesCSV(r io.Reader, symbol string) ([]models.Quote, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var quotes []models.Quote
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read quotes: %w", err)
		}

		if line == 1 && isHeader(record) {
			continue
		}

		q, err := parseQuoteRecord(record, symbol)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func parseQuoteRecord(record []string, symbol string) (models.Quote, error) {
	if len(record) < 2 {
		return models.Quote{}, fmt.Errorf("%w: want at least 2 fields, got %d", ErrMalformedRecord, len(record))
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRecord, record[0])
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return models.Quote{}, fmt.Errorf("%w: price %q", ErrMalformedRecord, record[1])
	}

	q := models.Quote{Symbol: symbol, Timestamp: ts, Price: price, Session: models.Regular}
	if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
		if q.Volume, err = parseVolume(record[2]); err != nil {
			return models.Quote{}, err
		}
	}
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		if q.Session, err = models.ParseTradingSession(strings.TrimSpace(record[3])); err != nil {
			return models.Quote{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
		}
	}
	return q, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	return err != nil
}

func parseBarRecord(record []string, symbol string) (models.Bar, error) {
	if len(record) < 5 {
		return models.Bar{}, fmt.Errorf("%w: want at least 5 fields, got %d", ErrMalformedRecord, len(record))
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
	if err != nil {
		return models.Bar{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRecord, record[0])
	}

	var prices [4]float64
	for i := range prices {
		prices[i], err = strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return models.Bar{}, fmt.Errorf("%w: price %q", ErrMalformedRecord, record[i+1])
		}
	}

	bar := models.NewBar(symbol, ts, prices[0], prices[1], prices[2], prices[3])
	if len(record) > 5 && strings.TrimSpace(record[5]) != "" {
		vol, err := parseVolume(record[5])
		if err != nil {
			return models.Bar{}, err
		}
		bar = bar.WithVolume(vol)
	}
	return bar, nil
}

// parseVolume accepts integer or fractional volumes; fractions are truncated.
// NaN, negative and values beyond uint64 are rejected.
func parseVolume(s string) (uint64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || v < 0 || v >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: volume %q", ErrMalformedRecord, s)
	}
	return uint64(v), nil
}
