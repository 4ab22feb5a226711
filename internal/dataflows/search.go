package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const searchBaseURL = "https://query2.finance.yahoo.com"

// quotesCount asks the provider for more rows than the UI shows so the
// caller can filter and still fill its display limit.
const quotesCount = 8

// Match pairs a display label with the raw ticker symbol.
type Match struct {
	Label  string
	Symbol string
}

// SearchClient looks up candidate ticker symbols for free-text input.
type SearchClient struct {
	client  *resty.Client
	baseURL string
}

// NewSearchClient creates a new symbol search client.
func NewSearchClient(timeout time.Duration) *SearchClient {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", "Mozilla/5.0")

	return &SearchClient{
		client:  client,
		baseURL: searchBaseURL,
	}
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
	} `json:"quotes"`
}

// Search queries the lookup service for symbols matching query.
// Queries shorter than two characters return nothing without touching
// the network, and any transport or parse failure degrades to an empty
// result set: search is never fatal to the caller.
func (sc *SearchClient) Search(ctx context.Context, query string) []Match {
	if len(query) < 2 {
		return nil
	}

	resp, err := sc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           query,
			"quotesCount": fmt.Sprintf("%d", quotesCount),
			"newsCount":   "0",
		}).
		Get(sc.baseURL + "/v1/finance/search")
	if err != nil || resp.StatusCode() != 200 {
		return nil
	}

	var parsed searchResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil
	}

	matches := make([]Match, 0, len(parsed.Quotes))
	for _, q := range parsed.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		label := q.Symbol
		if name != "" {
			label = fmt.Sprintf("%s - %s", q.Symbol, name)
		}
		matches = append(matches, Match{Label: label, Symbol: q.Symbol})
	}
	return matches
}
