package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvega/stockboard/config"
	"github.com/dvega/stockboard/internal/advisor"
	"github.com/dvega/stockboard/internal/board"
	"github.com/dvega/stockboard/internal/dataflows"
	"github.com/dvega/stockboard/internal/portfolio"
	"github.com/dvega/stockboard/internal/summary"
)

// app bundles the long-lived services one process owns: the portfolio
// registry and the market data cache are shared by every command pass.
type app struct {
	cfg      *config.Config
	registry *portfolio.Registry
	board    *board.Board
	search   *dataflows.SearchClient
}

func newApp() *app {
	cfg := config.DefaultConfig()
	registry := portfolio.NewRegistry(cfg.Watchlist...)
	cache := dataflows.NewCache(dataflows.NewYahooClient(cfg.HTTPTimeout), cfg.CacheTTL)

	return &app{
		cfg:      cfg,
		registry: registry,
		board:    board.New(registry, cache, advisor.New(cfg)),
		search:   dataflows.NewSearchClient(cfg.HTTPTimeout),
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var a *app

	rootCmd := &cobra.Command{
		Use:   "stockboard",
		Short: "Track a stock portfolio with cached market data and AI analysis",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a = newApp()
		},
	}

	rootCmd.AddCommand(newWatchCmd(&a))
	rootCmd.AddCommand(newDetailCmd(&a))
	rootCmd.AddCommand(newAnalyzeCmd(&a))
	rootCmd.AddCommand(newSearchCmd(&a))

	return rootCmd
}

func newWatchCmd(a **app) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run overview passes over the watched portfolio",
		Long: "Resolves every watched symbol against the market data cache and prints " +
			"one metric row per symbol. With --interval the pass repeats on a timer; " +
			"the cache keeps repeated passes cheap.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := *a

			if app.registry.Len() == 0 {
				fmt.Println(warnStyle.Render("Your portfolio is empty. Seed it via STOCK_TICKERS."))
				return nil
			}

			renderOverview(app.board.Overview(ctx))
			if interval <= 0 {
				return nil
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					renderOverview(app.board.Overview(ctx))
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "re-run the pass on this interval (e.g. 5m); 0 runs once")
	return cmd
}

func newDetailCmd(a **app) *cobra.Command {
	var periodFlag string

	cmd := &cobra.Command{
		Use:   "detail SYMBOL",
		Short: "Show recent sessions and headlines for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := dataflows.ParsePeriod(periodFlag)
			if err != nil {
				return err
			}

			bundle, err := (*a).board.Detail(cmd.Context(), args[0], period)
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			renderDetail(bundle)
			return nil
		},
	}

	cmd.Flags().StringVar(&periodFlag, "period", string(dataflows.Period1Y), "lookback period (5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max)")
	return cmd
}

func newAnalyzeCmd(a **app) *cobra.Command {
	var periodFlag string

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Request an AI narrative recommendation for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := dataflows.ParsePeriod(periodFlag)
			if err != nil {
				return err
			}

			app := *a
			fmt.Printf("Reading market data and consulting %s...\n", app.cfg.LLMModel)

			text, err := app.board.Analyze(cmd.Context(), args[0], period)
			if err != nil {
				// Failures are display data, not process-fatal conditions.
				fmt.Println(errStyle.Render(err.Error()))
				return nil
			}
			fmt.Println(reportStyle.Render(text))
			return nil
		},
	}

	cmd.Flags().StringVar(&periodFlag, "period", string(dataflows.Period1Y), "lookback period for the technical data")
	return cmd
}

func newSearchCmd(a **app) *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Look up ticker symbols matching free text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := *a
			matches := app.search.Search(cmd.Context(), args[0])
			if len(matches) > searchDisplayLimit {
				matches = matches[:searchDisplayLimit]
			}
			if len(matches) == 0 {
				fmt.Println(warnStyle.Render("No results found."))
				return nil
			}

			if !pick {
				for _, m := range matches {
					fmt.Printf("  %s\n", m.Label)
				}
				return nil
			}

			symbols, err := pickSymbols(matches)
			if err != nil || len(symbols) == 0 {
				return err
			}
			for _, s := range symbols {
				if !app.registry.Add(s) {
					fmt.Println(warnStyle.Render(s + " is already on your list."))
				}
			}
			renderOverview(overviewFor(cmd.Context(), app, symbols))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "interactively add results to the watchlist and show their metrics")
	return cmd
}

// searchDisplayLimit truncates provider results for display; the client
// requests more than this so filtering still fills the list.
const searchDisplayLimit = 5

func overviewFor(ctx context.Context, app *app, symbols []string) []board.Metric {
	picked := portfolio.NewRegistry(symbols...)
	b := board.New(picked, app.board.Cache, app.board.Advisor)
	return b.Overview(ctx)
}

func renderDetail(bundle *dataflows.DataBundle) {
	title := fmt.Sprintf("%s - %s (%s)", bundle.Symbol, bundle.Meta.ShortName, bundle.Period.Label())
	fmt.Println(titleStyle.Render(title))

	if !bundle.HasData() {
		fmt.Println(warnStyle.Render("No price data for this symbol and period."))
		return
	}

	history := bundle.History
	if len(history) > 10 {
		history = history[len(history)-10:]
	}
	changes := summary.Changes(history)
	sign := bundle.Meta.CurrencySign()

	fmt.Println(headerStyle.Render("Date        Open      High      Low       Close     Change"))
	for i := len(history) - 1; i >= 0; i-- {
		p := history[i]
		line := fmt.Sprintf("%s  %s%-8s %s%-8s %s%-8s %s%-8s %+.2f%%",
			p.Date.Format("2006-01-02"),
			sign, p.Open.StringFixed(2),
			sign, p.High.StringFixed(2),
			sign, p.Low.StringFixed(2),
			sign, p.Close.StringFixed(2),
			changes[i].InexactFloat64())
		fmt.Println(changeStyle(changes[i]).Render(line))
	}

	fmt.Println(headerStyle.Render("Recent headlines"))
	fmt.Println(summary.Build(bundle).Headlines)
}
