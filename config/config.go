package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Watchlist seeds the portfolio at startup.
	Watchlist []string `json:"watchlist"`

	// Generation backend. APIKey is required for analysis requests;
	// BaseURL and Model have OpenAI-compatible defaults.
	LLMAPIKey  string `json:"llm_api_key"`
	LLMBaseURL string `json:"llm_base_url"`
	LLMModel   string `json:"llm_model"`

	// CacheTTL bounds upstream request volume per (symbol, period).
	CacheTTL time.Duration `json:"cache_ttl"`

	// HTTPTimeout applies to the search and news HTTP clients.
	HTTPTimeout time.Duration `json:"http_timeout"`
}

// DefaultWatchlist mirrors the stock set the dashboard started with.
var DefaultWatchlist = []string{
	"GOOGL", "NVDA", "TSM", "ORCL", "ACMR", "RNMBF", "BAYN.DE", "EOAN.DE",
}

func DefaultConfig() *Config {
	cfg := &Config{
		Watchlist:   append([]string(nil), DefaultWatchlist...),
		LLMBaseURL:  "https://api.openai.com/v1",
		LLMModel:    "gpt-4o-mini",
		CacheTTL:    5 * time.Minute,
		HTTPTimeout: 30 * time.Second,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("STOCK_TICKERS"); val != "" {
		var list []string
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		if len(list) > 0 {
			c.Watchlist = list
		}
	}

	if val := os.Getenv("LLM_API_KEY"); val != "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("LLM_BASE_URL"); val != "" {
		c.LLMBaseURL = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}

	if val := os.Getenv("HTTP_TIMEOUT_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
			c.HTTPTimeout = time.Duration(secs) * time.Second
		}
	}
}
