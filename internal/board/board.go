// Package board runs one evaluation pass of the watched portfolio
// against the market data cache. The scheduling loop that re-invokes a
// pass (timer or user action) lives with the caller; repeated passes
// are cheap because the cache absorbs them.
package board

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvega/stockboard/internal/advisor"
	"github.com/dvega/stockboard/internal/dataflows"
	"github.com/dvega/stockboard/internal/portfolio"
)

// overviewPeriod is the short window the summary metrics derive from.
const overviewPeriod = dataflows.Period5D

// fetchTimeout caps how long one symbol may block a pass.
const fetchTimeout = 30 * time.Second

// Metric is one per-symbol row of an overview pass. Price and delta are
// computed from a single bundle so they are mutually consistent.
type Metric struct {
	Symbol       string
	Name         string
	CurrencySign string
	Price        decimal.Decimal
	Delta        decimal.Decimal
	DeltaPercent decimal.Decimal
	NoData       bool
	Err          error
}

// Board wires the portfolio registry to the cache and the advisor.
type Board struct {
	Registry *portfolio.Registry
	Cache    *dataflows.Cache
	Advisor  *advisor.Advisor
}

func New(registry *portfolio.Registry, cache *dataflows.Cache, adv *advisor.Advisor) *Board {
	return &Board{Registry: registry, Cache: cache, Advisor: adv}
}

// Overview resolves every watched symbol against the cache and returns
// one metric row per symbol, in portfolio order. A failing symbol
// yields a row with Err set; it never aborts the rest of the pass.
func (b *Board) Overview(ctx context.Context) []Metric {
	symbols := b.Registry.List()
	metrics := make([]Metric, len(symbols))

	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			metrics[i] = b.metric(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	return metrics
}

func (b *Board) metric(ctx context.Context, symbol string) Metric {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	bundle, err := b.Cache.Get(ctx, symbol, overviewPeriod)
	if err != nil {
		return Metric{Symbol: symbol, Err: err}
	}
	if !bundle.HasData() {
		return Metric{Symbol: symbol, Name: bundle.Meta.ShortName, NoData: true}
	}

	history := bundle.History
	current := history[len(history)-1].Close

	m := Metric{
		Symbol:       symbol,
		Name:         bundle.Meta.ShortName,
		CurrencySign: bundle.Meta.CurrencySign(),
		Price:        current,
	}

	if len(history) >= 2 {
		prev := history[len(history)-2].Close
		m.Delta = current.Sub(prev)
		if !prev.IsZero() {
			m.DeltaPercent = m.Delta.Div(prev).Mul(decimal.NewFromInt(100))
		}
	}
	return m
}

// Detail returns the bundle for one symbol over the chosen period,
// through the cache.
func (b *Board) Detail(ctx context.Context, symbol string, period dataflows.Period) (*dataflows.DataBundle, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	return b.Cache.Get(ctx, symbol, period)
}

// Analyze fetches the bundle for the period and requests a narrative
// recommendation for it. User-triggered, never automatic.
func (b *Board) Analyze(ctx context.Context, symbol string, period dataflows.Period) (string, error) {
	bundle, err := b.Detail(ctx, symbol, period)
	if err != nil {
		return "", err
	}
	return b.Advisor.Analyze(ctx, dataflows.NormalizeSymbol(symbol), bundle)
}
