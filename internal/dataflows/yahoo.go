package dataflows

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
)

const newsFeedBaseURL = "https://feeds.finance.yahoo.com"

// YahooClient retrieves market data from Yahoo Finance. It fetches the
// three facets of a bundle (history, metadata, news) in one call so a
// bundle is always internally consistent.
type YahooClient struct {
	news        *resty.Client
	newsBaseURL string
	now         func() time.Time
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(timeout time.Duration) *YahooClient {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0")

	return &YahooClient{
		news:        client,
		newsBaseURL: newsFeedBaseURL,
		now:         time.Now,
	}
}

// Fetch retrieves price history, instrument metadata and recent news for
// a symbol. History transport failures fail the whole fetch; metadata and
// news degrade softly so one noisy facet cannot poison the bundle. An
// empty history is not an error: the caller distinguishes absence of
// data from a failed fetch via DataBundle.HasData.
func (yc *YahooClient) Fetch(ctx context.Context, symbol string, period Period) (*DataBundle, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	history, err := yc.fetchHistory(symbol, period)
	if err != nil {
		return nil, err
	}

	meta, err := yc.fetchMeta(symbol)
	if err != nil {
		// Fall back to bare-symbol metadata; the history is still usable.
		meta = InstrumentMeta{ShortName: symbol, Currency: "USD"}
	}

	news, err := yc.fetchNews(ctx, symbol)
	if err != nil {
		news = nil
	}

	return &DataBundle{
		Symbol:  symbol,
		Period:  period,
		History: history,
		Meta:    meta,
		News:    news,
	}, nil
}

func (yc *YahooClient) fetchHistory(symbol string, period Period) ([]PricePoint, error) {
	end := yc.now()
	start := period.Start(end)

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	history := make([]PricePoint, 0)
	for iter.Next() {
		bar := iter.Bar()
		if bar.Open.IsZero() && bar.High.IsZero() && bar.Low.IsZero() && bar.Close.IsZero() {
			continue // null bars on holidays
		}
		history = append(history, PricePoint{
			Date:   time.Unix(int64(bar.Timestamp), 0),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	return history, nil
}

func (yc *YahooClient) fetchMeta(symbol string) (InstrumentMeta, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return InstrumentMeta{}, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	if q == nil {
		return InstrumentMeta{}, fmt.Errorf("no quote data for %s", symbol)
	}

	meta := InstrumentMeta{
		ShortName: q.ShortName,
		Currency:  q.CurrencyID,
	}
	if meta.ShortName == "" {
		meta.ShortName = symbol
	}
	if meta.Currency == "" {
		meta.Currency = "USD"
	}
	return meta, nil
}

// newsFeed mirrors the Yahoo Finance headline RSS layout.
type newsFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (yc *YahooClient) fetchNews(ctx context.Context, symbol string) ([]NewsItem, error) {
	resp, err := yc.news.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s":      symbol,
			"region": "US",
			"lang":   "en-US",
		}).
		Get(yc.newsBaseURL + "/rss/2.0/headline")
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch news for %s: status %d", symbol, resp.StatusCode())
	}

	var feed newsFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("parse news feed for %s: %w", symbol, err)
	}

	items := make([]NewsItem, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Title == "" {
			continue
		}
		items = append(items, NewsItem{Title: item.Title, Link: item.Link})
	}
	return items, nil
}
