package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("STOCK_TICKERS", "")
	t.Setenv("LLM_API_KEY", "")

	cfg := DefaultConfig()
	if len(cfg.Watchlist) == 0 {
		t.Fatal("expected non-empty default watchlist")
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache TTL, got %v", cfg.CacheTTL)
	}
	if cfg.LLMBaseURL == "" {
		t.Fatal("expected a default LLM base URL")
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("STOCK_TICKERS", "AAPL, msft ,")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "test-model")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")

	cfg := DefaultConfig()
	if len(cfg.Watchlist) != 2 || cfg.Watchlist[0] != "AAPL" || cfg.Watchlist[1] != "msft" {
		t.Fatalf("unexpected watchlist: %v", cfg.Watchlist)
	}
	if cfg.LLMAPIKey != "sk-test" {
		t.Fatalf("expected API key override, got %q", cfg.LLMAPIKey)
	}
	if cfg.LLMModel != "test-model" {
		t.Fatalf("expected model override, got %q", cfg.LLMModel)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.HTTPTimeout)
	}
}
