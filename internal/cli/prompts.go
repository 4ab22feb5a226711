package cli

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/dvega/stockboard/internal/dataflows"
)

// pickSymbols lets the user choose which search results to track.
func pickSymbols(matches []dataflows.Match) ([]string, error) {
	labels := make([]string, len(matches))
	bySymbol := make(map[string]string, len(matches))
	for i, m := range matches {
		labels[i] = m.Label
		bySymbol[m.Label] = m.Symbol
	}

	var picked []string
	prompt := &survey.MultiSelect{
		Message: "Select symbols to add to your watchlist:",
		Options: labels,
	}
	if err := survey.AskOne(prompt, &picked); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(picked))
	for _, label := range picked {
		symbols = append(symbols, bySymbol[label])
	}
	return symbols, nil
}
