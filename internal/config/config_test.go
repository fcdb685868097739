package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "BestBuy", cfg.Scraper.Source)
	assert.Equal(t, 10, cfg.Scraper.ProductCount)
	assert.Equal(t, "browser", cfg.Scraper.Fetcher)
	assert.True(t, cfg.Scraper.Headless)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.Enrich.MaxRetries)
	assert.Equal(t, 3, cfg.Compare.TopN)
	assert.Equal(t, 5, cfg.Compare.CriteriaCount)
	assert.Equal(t, "none", cfg.Storage.Backend)
	assert.Equal(t, 8000, cfg.API.Port)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelflift.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scraper:
  product_count: 5
  category: tablet
llm:
  provider: mock
compare:
  criteria_count: 7
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Scraper.ProductCount)
	assert.Equal(t, "tablet", cfg.Scraper.Category)
	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.Equal(t, 7, cfg.Compare.CriteriaCount)
	// Unset keys keep their defaults.
	assert.Equal(t, 3, cfg.Compare.TopN)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, Validate(DefaultConfig()))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero product count", func(c *Config) { c.Scraper.ProductCount = 0 }},
		{"unknown fetcher", func(c *Config) { c.Scraper.Fetcher = "curl" }},
		{"unknown llm provider", func(c *Config) { c.LLM.Provider = "bard" }},
		{"ollama without endpoint", func(c *Config) { c.LLM.Provider = "ollama"; c.LLM.Endpoint = "" }},
		{"top_n below two", func(c *Config) { c.Compare.TopN = 1 }},
		{"zero criteria", func(c *Config) { c.Compare.CriteriaCount = 0 }},
		{"empty cache path", func(c *Config) { c.Compare.CachePath = "" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }},
		{"mongo without uri", func(c *Config) { c.Storage.Backend = "mongo"; c.Storage.MongoURI = "" }},
		{"bad api port", func(c *Config) { c.API.Port = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad category url", func(c *Config) { c.Scraper.CategoryURL = "ftp://example.com" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://www.bestbuy.ca/en-ca/category/laptops/20352"))
	assert.Error(t, ValidateURL("not a url at all://"))
	assert.Error(t, ValidateURL("ftp://example.com"))
	assert.Error(t, ValidateURL("https://"))
}
