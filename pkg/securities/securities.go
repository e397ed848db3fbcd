// Package securities parses the NASDAQ Trader symbol directory files
// (nasdaqlisted.txt and otherlisted.txt) into a sorted directory.
package securities

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrMalformedDirectory is returned for rows with fewer columns than the file format defines.
var ErrMalformedDirectory = errors.New("malformed symbol directory")

// Exchange is the listing venue of a security.
type Exchange int

const (
	NASDAQ Exchange = iota
	NYSE
	NYSEAmerican
	NYSEArca
	CboeBZX
	IEX
)

func (e Exchange) String() string {
	switch e {
	case NASDAQ:
		return "NASDAQ"
	case NYSE:
		return "NYSE"
	case NYSEAmerican:
		return "NYSE American"
	case NYSEArca:
		return "NYSE Arca"
	case CboeBZX:
		return "Cboe BZX"
	case IEX:
		return "IEX"
	}
	return fmt.Sprintf("Exchange(%d)", int(e))
}

// exchangeFromCode maps the otherlisted.txt exchange column.
func exchangeFromCode(code string) (Exchange, bool) {
	switch code {
	case "A":
		return NYSEAmerican, true
	case "N":
		return NYSE, true
	case "P":
		return NYSEArca, true
	case "Z":
		return CboeBZX, true
	case "V":
		return IEX, true
	}
	return 0, false
}

// Security is one listed symbol.
type Security struct {
	Symbol   string
	Name     string
	Exchange Exchange
	IsETF    bool
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '|'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// readRows returns data rows, dropping the header and the
// "File Creation Time" trailer.
func readRows(r io.Reader, minFields int) ([][]string, error) {
	reader := newReader(r)

	var rows [][]string
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read directory: %w", err)
		}
		if line == 1 || strings.HasPrefix(record[0], "File Creation") {
			continue
		}
		if len(record) < minFields {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrMalformedDirectory, line, len(record), minFields)
		}
		rows = append(rows, record)
	}
}

// ParseNasdaqListed reads nasdaqlisted.txt:
// Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
// Test issues and securities with a non-normal financial status are skipped.
func ParseNasdaqListed(r io.Reader) ([]Security, error) {
	rows, err := readRows(r, 7)
	if err != nil {
		return nil, err
	}

	out := make([]Security, 0, len(rows))
	for _, row := range rows {
		if row[3] != "N" || row[4] != "N" {
			continue
		}
		out = append(out, Security{
			Symbol:   row[0],
			Name:     row[1],
			Exchange: NASDAQ,
			IsETF:    row[6] == "Y",
		})
	}
	return out, nil
}

// ParseOtherListed reads otherlisted.txt:
// ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol
// Test issues and unknown exchange codes are skipped.
func ParseOtherListed(r io.Reader) ([]Security, error) {
	rows, err := readRows(r, 7)
	if err != nil {
		return nil, err
	}

	out := make([]Security, 0, len(rows))
	for _, row := range rows {
		if row[6] != "N" {
			continue
		}
		exchange, ok := exchangeFromCode(row[2])
		if !ok {
			continue
		}
		out = append(out, Security{
			Symbol:   row[0],
			Name:     row[1],
			Exchange: exchange,
			IsETF:    row[4] == "Y",
		})
	}
	return out, nil
}

// Directory is a set of securities ordered by symbol. Not safe for
// concurrent mutation.
type Directory struct {
	bySymbol map[string]Security
	symbols  []string
}

func NewDirectory() *Directory {
	return &Directory{bySymbol: make(map[string]Security)}
}

// Add inserts or replaces securities by symbol.
func (d *Directory) Add(secs ...Security) {
	for _, s := range secs {
		if _, exists := d.bySymbol[s.Symbol]; !exists {
			i := sort.SearchStrings(d.symbols, s.Symbol)
			d.symbols = append(d.symbols, "")
			copy(d.symbols[i+1:], d.symbols[i:])
			d.symbols[i] = s.Symbol
		}
		d.bySymbol[s.Symbol] = s
	}
}

func (d *Directory) Get(symbol string) (Security, bool) {
	s, ok := d.bySymbol[symbol]
	return s, ok
}

func (d *Directory) Len() int {
	return len(d.symbols)
}

// Symbols returns the symbols in ascending order.
func (d *Directory) Symbols() []string {
	out := make([]string, len(d.symbols))
	copy(out, d.symbols)
	return out
}

// All returns the securities in symbol order.
func (d *Directory) All() []Security {
	out := make([]Security, 0, len(d.symbols))
	for _, sym := range d.symbols {
		out = append(out, d.bySymbol[sym])
	}
	return out
}
