package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	// Best effort: a missing .env is fine.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("SHELFLIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("shelflift")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".shelflift"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Conventional provider key env vars take over when the config carries
	// no key of its own.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Storage.MongoURI == "" {
		cfg.Storage.MongoURI = os.Getenv("MONGODB_URI")
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scraper.source", cfg.Scraper.Source)
	v.SetDefault("scraper.base_url", cfg.Scraper.BaseURL)
	v.SetDefault("scraper.category_url", cfg.Scraper.CategoryURL)
	v.SetDefault("scraper.category", cfg.Scraper.Category)
	v.SetDefault("scraper.product_count", cfg.Scraper.ProductCount)
	v.SetDefault("scraper.fetcher", cfg.Scraper.Fetcher)
	v.SetDefault("scraper.headless", cfg.Scraper.Headless)
	v.SetDefault("scraper.stealth", cfg.Scraper.Stealth)
	v.SetDefault("scraper.request_timeout", cfg.Scraper.RequestTimeout)
	v.SetDefault("scraper.request_delay", cfg.Scraper.RequestDelay)
	v.SetDefault("scraper.max_retries", cfg.Scraper.MaxRetries)
	v.SetDefault("scraper.scroll_passes", cfg.Scraper.ScrollPasses)
	v.SetDefault("scraper.user_agent", cfg.Scraper.UserAgent)
	v.SetDefault("scraper.max_body_size", cfg.Scraper.MaxBodySize)

	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.endpoint", cfg.LLM.Endpoint)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	v.SetDefault("llm.temperature", cfg.LLM.Temperature)
	v.SetDefault("llm.request_timeout", cfg.LLM.RequestTimeout)

	v.SetDefault("enrich.max_retries", cfg.Enrich.MaxRetries)

	v.SetDefault("compare.top_n", cfg.Compare.TopN)
	v.SetDefault("compare.criteria_count", cfg.Compare.CriteriaCount)
	v.SetDefault("compare.cache_path", cfg.Compare.CachePath)

	v.SetDefault("storage.scraped_path", cfg.Storage.ScrapedPath)
	v.SetDefault("storage.processed_path", cfg.Storage.ProcessedPath)
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)
	v.SetDefault("storage.mongo_collection", cfg.Storage.MongoCollection)

	v.SetDefault("api.host", cfg.API.Host)
	v.SetDefault("api.port", cfg.API.Port)
	v.SetDefault("api.default_limit", cfg.API.DefaultLimit)
	v.SetDefault("api.cors_origin", cfg.API.CORSOrigin)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
