package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/dvega/stockboard/internal/board"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6"))

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	downStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444"))

	warnStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B"))

	errStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444")).
		Bold(true)

	reportStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#10B981")).
		Padding(1, 2).
		Width(80)
)

func changeStyle(change decimal.Decimal) lipgloss.Style {
	if change.IsNegative() {
		return downStyle
	}
	return upStyle
}

func renderOverview(metrics []board.Metric) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Market Overview - %s", time.Now().Format("15:04:05"))))

	for _, m := range metrics {
		switch {
		case m.Err != nil:
			fmt.Println(errStyle.Render(fmt.Sprintf("  %-8s error: %v", m.Symbol, m.Err)))
		case m.NoData:
			fmt.Println(warnStyle.Render(fmt.Sprintf("  %-8s no data", m.Symbol)))
		default:
			line := fmt.Sprintf("  %-8s %-24s %s%-10s %+.2f (%+.2f%%)",
				m.Symbol,
				truncate(m.Name, 24),
				m.CurrencySign,
				m.Price.StringFixed(2),
				m.Delta.InexactFloat64(),
				m.DeltaPercent.InexactFloat64())
			fmt.Println(changeStyle(m.Delta).Render(line))
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
