package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for shelflift.
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm"`
	Enrich  EnrichConfig  `mapstructure:"enrich"  yaml:"enrich"`
	Compare CompareConfig `mapstructure:"compare" yaml:"compare"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ScraperConfig controls the product scraper.
type ScraperConfig struct {
	Source         string        `mapstructure:"source"          yaml:"source"`
	BaseURL        string        `mapstructure:"base_url"        yaml:"base_url"`
	CategoryURL    string        `mapstructure:"category_url"    yaml:"category_url"`
	Category       string        `mapstructure:"category"        yaml:"category"`
	ProductCount   int           `mapstructure:"product_count"   yaml:"product_count"`

	// Fetcher selects how pages are retrieved: "browser" renders them in
	// headless Chromium, "http" fetches raw HTML for page variants that
	// render server side.
	Fetcher string `mapstructure:"fetcher" yaml:"fetcher"`

	Headless       bool          `mapstructure:"headless"        yaml:"headless"`
	Stealth        bool          `mapstructure:"stealth"         yaml:"stealth"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	RequestDelay   time.Duration `mapstructure:"request_delay"   yaml:"request_delay"`
	MaxRetries     int           `mapstructure:"max_retries"     yaml:"max_retries"`
	ScrollPasses   int           `mapstructure:"scroll_passes"   yaml:"scroll_passes"`
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
	MaxBodySize    int64         `mapstructure:"max_body_size"   yaml:"max_body_size"`
}

// LLMConfig controls the text-generation capability.
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"        yaml:"provider"`
	Endpoint       string        `mapstructure:"endpoint"        yaml:"endpoint"`
	Model          string        `mapstructure:"model"           yaml:"model"`
	APIKey         string        `mapstructure:"api_key"         yaml:"api_key"`
	MaxTokens      int           `mapstructure:"max_tokens"      yaml:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"     yaml:"temperature"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// EnrichConfig controls marketing-copy generation.
type EnrichConfig struct {
	// MaxRetries bounds regeneration attempts per field before the fixed
	// fallback text is substituted.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// CompareConfig controls the comparison engine.
type CompareConfig struct {
	TopN          int    `mapstructure:"top_n"          yaml:"top_n"`
	CriteriaCount int    `mapstructure:"criteria_count" yaml:"criteria_count"`
	CachePath     string `mapstructure:"cache_path"     yaml:"cache_path"`
}

// StorageConfig controls catalog persistence.
type StorageConfig struct {
	ScrapedPath   string `mapstructure:"scraped_path"   yaml:"scraped_path"`
	ProcessedPath string `mapstructure:"processed_path" yaml:"processed_path"`

	// Backend selects an optional mirror for enriched products: "none" or
	// "mongo".
	Backend         string `mapstructure:"backend"          yaml:"backend"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// APIConfig controls the read-only REST API.
type APIConfig struct {
	Host         string `mapstructure:"host"          yaml:"host"`
	Port         int    `mapstructure:"port"          yaml:"port"`
	DefaultLimit int    `mapstructure:"default_limit" yaml:"default_limit"`
	CORSOrigin   string `mapstructure:"cors_origin"   yaml:"cors_origin"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Source:         "BestBuy",
			BaseURL:        "https://www.bestbuy.ca",
			CategoryURL:    "https://www.bestbuy.ca/en-ca/category/laptops-macbooks/20352",
			Category:       "laptop",
			ProductCount:   10,
			Fetcher:        "browser",
			Headless:       true,
			Stealth:        true,
			RequestTimeout: 45 * time.Second,
			RequestDelay:   2 * time.Second,
			MaxRetries:     3,
			ScrollPasses:   5,
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			MaxBodySize:    10 * 1024 * 1024, // 10MB
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			MaxTokens:      256,
			Temperature:    0.7,
			RequestTimeout: 120 * time.Second,
		},
		Enrich: EnrichConfig{
			MaxRetries: 2,
		},
		Compare: CompareConfig{
			TopN:          3,
			CriteriaCount: 5,
			CachePath:     "./data/product_comparison.json",
		},
		Storage: StorageConfig{
			ScrapedPath:     "./data/scraped_products.json",
			ProcessedPath:   "./data/processed_products.json",
			Backend:         "none",
			MongoDatabase:   "shelflift",
			MongoCollection: "products",
		},
		API: APIConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			DefaultLimit: 10,
			CORSOrigin:   "*",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
