package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Scraper.ProductCount < 1 {
		return fmt.Errorf("scraper.product_count must be >= 1, got %d", cfg.Scraper.ProductCount)
	}
	if cfg.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper.request_timeout must be > 0")
	}
	if cfg.Scraper.RequestDelay < 0 {
		return fmt.Errorf("scraper.request_delay must be >= 0")
	}
	if cfg.Scraper.Fetcher != "browser" && cfg.Scraper.Fetcher != "http" {
		return fmt.Errorf("scraper.fetcher must be 'browser' or 'http', got %q", cfg.Scraper.Fetcher)
	}
	if cfg.Scraper.MaxRetries < 0 {
		return fmt.Errorf("scraper.max_retries must be >= 0, got %d", cfg.Scraper.MaxRetries)
	}
	if cfg.Scraper.MaxBodySize <= 0 {
		return fmt.Errorf("scraper.max_body_size must be > 0")
	}
	if cfg.Scraper.CategoryURL != "" {
		if err := ValidateURL(cfg.Scraper.CategoryURL); err != nil {
			return fmt.Errorf("scraper.category_url: %w", err)
		}
	}

	switch cfg.LLM.Provider {
	case "openai", "ollama", "custom", "mock":
	default:
		return fmt.Errorf("llm.provider must be openai/ollama/custom/mock, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Provider == "ollama" && cfg.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint is required for the ollama provider")
	}
	if cfg.LLM.Provider == "custom" && cfg.LLM.Endpoint == "" {
		return fmt.Errorf("llm.endpoint is required for the custom provider")
	}
	if cfg.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be >= 1, got %d", cfg.LLM.MaxTokens)
	}

	if cfg.Enrich.MaxRetries < 0 {
		return fmt.Errorf("enrich.max_retries must be >= 0, got %d", cfg.Enrich.MaxRetries)
	}

	if cfg.Compare.TopN < 2 {
		return fmt.Errorf("compare.top_n must be >= 2, got %d", cfg.Compare.TopN)
	}
	if cfg.Compare.CriteriaCount < 1 {
		return fmt.Errorf("compare.criteria_count must be >= 1, got %d", cfg.Compare.CriteriaCount)
	}
	if cfg.Compare.CachePath == "" {
		return fmt.Errorf("compare.cache_path must not be empty")
	}

	if cfg.Storage.Backend != "none" && cfg.Storage.Backend != "mongo" {
		return fmt.Errorf("storage.backend must be 'none' or 'mongo', got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "mongo" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for the mongo backend")
	}
	if cfg.Storage.ScrapedPath == "" || cfg.Storage.ProcessedPath == "" {
		return fmt.Errorf("storage.scraped_path and storage.processed_path must not be empty")
	}

	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("api.port must be 1-65535, got %d", cfg.API.Port)
	}
	if cfg.API.DefaultLimit < 1 {
		return fmt.Errorf("api.default_limit must be >= 1, got %d", cfg.API.DefaultLimit)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks if a URL string is usable for scraping.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
