// Package summary reduces a fetched data bundle into the compact,
// deterministic digest that feeds the analysis prompt.
package summary

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dvega/stockboard/internal/dataflows"
)

// TrailingSessions bounds the price table to the most recent sessions.
const TrailingSessions = 30

// MaxHeadlines bounds how many news items reach the prompt.
const MaxHeadlines = 3

// NoNewsMarker is emitted instead of an empty news section so prompt
// consumers never see an ambiguous blank block.
const NoNewsMarker = "No recent news available."

var hundred = decimal.NewFromInt(100)

// Digest is the deterministic text reduction of one bundle.
type Digest struct {
	PriceTable string
	Headlines  string
}

// Build computes the digest for a bundle. It is a pure function of its
// input: same bundle, same digest.
func Build(bundle *dataflows.DataBundle) Digest {
	return Digest{
		PriceTable: priceTable(bundle.History),
		Headlines:  headlines(bundle.News),
	}
}

// Changes computes the day-over-day percentage change for each point.
// The earliest point has no predecessor and is recorded as zero.
func Changes(history []dataflows.PricePoint) []decimal.Decimal {
	changes := make([]decimal.Decimal, len(history))
	for i := 1; i < len(history); i++ {
		prev := history[i-1].Close
		if prev.IsZero() {
			continue
		}
		changes[i] = history[i].Close.Sub(prev).Div(prev).Mul(hundred)
	}
	return changes
}

func priceTable(history []dataflows.PricePoint) string {
	if len(history) == 0 {
		return "No price data available."
	}
	if len(history) > TrailingSessions {
		history = history[len(history)-TrailingSessions:]
	}

	changes := Changes(history)

	var sb strings.Builder
	sb.WriteString("Date        Close      Change\n")
	for i, point := range history {
		fmt.Fprintf(&sb, "%s  %9s  %+.2f%%\n",
			point.Date.Format("2006-01-02"),
			point.Close.StringFixed(2),
			changes[i].InexactFloat64())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func headlines(news []dataflows.NewsItem) string {
	if len(news) == 0 {
		return NoNewsMarker
	}
	if len(news) > MaxHeadlines {
		news = news[:MaxHeadlines]
	}

	lines := make([]string, 0, len(news))
	for _, item := range news {
		lines = append(lines, fmt.Sprintf("- %s (%s)", item.Title, item.Link))
	}
	return strings.Join(lines, "\n")
}
