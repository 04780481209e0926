// Package psx provides a client for the Pakistan Stock Exchange data portal.
package psx

import (
	"os"
	"time"
)

// Config holds configuration for the PSX data portal client.
type Config struct {
	BaseURL    string        // Base URL of the data portal (e.g., "https://dps.psx.com.pk")
	HistoryURL string        // Endpoint serving per-company price history as JSON
	UserAgent  string        // User-Agent header sent with every request
	Timeout    time.Duration // HTTP request timeout
}

// LoadConfig loads PSX client configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:    os.Getenv("PSX_BASE_URL"),
		HistoryURL: os.Getenv("PSX_HISTORY_URL"),
		UserAgent:  os.Getenv("PSX_USER_AGENT"),
		Timeout:    30 * time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://dps.psx.com.pk"
	}
	if cfg.HistoryURL == "" {
		cfg.HistoryURL = "https://www.investorslounge.com/Default/SendPostRequest"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"
	}
	return cfg
}
