package dataflows

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is one daily bar of price history.
type PricePoint struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// InstrumentMeta carries descriptive metadata about a symbol.
type InstrumentMeta struct {
	ShortName string `json:"short_name"`
	Currency  string `json:"currency"`
}

// CurrencySign returns the display sign for the instrument currency.
func (m InstrumentMeta) CurrencySign() string {
	if m.Currency == "EUR" {
		return "€"
	}
	return "$"
}

// NewsItem is one headline with its source link.
type NewsItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// DataBundle is the unit of caching: everything fetched for one
// (symbol, period) in a single pass. History is ordered oldest first.
type DataBundle struct {
	Symbol  string         `json:"symbol"`
	Period  Period         `json:"period"`
	History []PricePoint   `json:"history"`
	Meta    InstrumentMeta `json:"meta"`
	News    []NewsItem     `json:"news"`
}

// HasData reports whether the provider returned any price history.
// A bundle without history is still valid and cacheable: a delisted or
// too-new symbol will not grow data within the cache window.
func (b *DataBundle) HasData() bool {
	return b != nil && len(b.History) > 0
}

// Period is an enumerated lookback window for history requests.
type Period string

const (
	Period5D  Period = "5d"
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	PeriodMax Period = "max"
)

// Periods lists all supported lookback windows, shortest first.
var Periods = []Period{
	Period5D, Period1Mo, Period3Mo, Period6Mo,
	Period1Y, Period2Y, Period5Y, PeriodMax,
}

var periodLabels = map[Period]string{
	Period5D:  "5 Days",
	Period1Mo: "1 Month",
	Period3Mo: "3 Months",
	Period6Mo: "6 Months",
	Period1Y:  "1 Year",
	Period2Y:  "2 Years",
	Period5Y:  "5 Years",
	PeriodMax: "All History",
}

// Label returns the human-readable name of the period.
func (p Period) Label() string {
	if label, ok := periodLabels[p]; ok {
		return label
	}
	return string(p)
}

// Start returns the beginning of the lookback window relative to now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case Period5D:
		return now.AddDate(0, 0, -7)
	case Period1Mo:
		return now.AddDate(0, -1, 0)
	case Period3Mo:
		return now.AddDate(0, -3, 0)
	case Period6Mo:
		return now.AddDate(0, -6, 0)
	case Period1Y:
		return now.AddDate(-1, 0, 0)
	case Period2Y:
		return now.AddDate(-2, 0, 0)
	case Period5Y:
		return now.AddDate(-5, 0, 0)
	case PeriodMax:
		return time.Unix(0, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// ParsePeriod converts a period string to its enumerated value.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := periodLabels[p]; !ok {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// ValidateSymbol checks if a stock symbol is valid format
func ValidateSymbol(symbol string) error {
	symbol = NormalizeSymbol(symbol)
	if len(symbol) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 12 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	return nil
}

// NormalizeSymbol converts symbol to standard format
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}
