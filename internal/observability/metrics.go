package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters across the scrape, enrich and compare
// stages.
type Metrics struct {
	// Scrape metrics
	ProductsScraped atomic.Int64
	ProductsSkipped atomic.Int64
	PagesFetched    atomic.Int64
	FetchRetries    atomic.Int64

	// Enrichment metrics
	ProductsEnriched atomic.Int64
	EnrichSkipped    atomic.Int64
	EnrichFallbacks  atomic.Int64

	// Generation metrics
	GenerationCalls    atomic.Int64
	GenerationFailures atomic.Int64

	// Comparison metrics
	ComparisonsGenerated atomic.Int64
	ComparisonCacheHits  atomic.Int64

	// API metrics
	APIRequests atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"shelflift_products_scraped_total", "Total products scraped", m.ProductsScraped.Load()},
		{"shelflift_products_skipped_total", "Total product pages skipped after retries", m.ProductsSkipped.Load()},
		{"shelflift_pages_fetched_total", "Total pages fetched", m.PagesFetched.Load()},
		{"shelflift_fetch_retries_total", "Total page fetch retries", m.FetchRetries.Load()},
		{"shelflift_products_enriched_total", "Total products enriched", m.ProductsEnriched.Load()},
		{"shelflift_enrich_skipped_total", "Total products skipped as already enriched", m.EnrichSkipped.Load()},
		{"shelflift_enrich_fallbacks_total", "Total enrichment fields degraded to fallback text", m.EnrichFallbacks.Load()},
		{"shelflift_generation_calls_total", "Total text-generation calls", m.GenerationCalls.Load()},
		{"shelflift_generation_failures_total", "Total failed text-generation calls", m.GenerationFailures.Load()},
		{"shelflift_comparisons_generated_total", "Total comparison documents generated", m.ComparisonsGenerated.Load()},
		{"shelflift_comparison_cache_hits_total", "Total comparison requests served from cache", m.ComparisonCacheHits.Load()},
		{"shelflift_api_requests_total", "Total API requests served", m.APIRequests.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer starts the metrics HTTP server.
func (m *Metrics) StartServer(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	addr := fmt.Sprintf(":%d", port)
	m.logger.Info("metrics server starting", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			m.logger.Error("metrics server error", "error", err)
		}
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"products_scraped":      m.ProductsScraped.Load(),
		"products_skipped":      m.ProductsSkipped.Load(),
		"pages_fetched":         m.PagesFetched.Load(),
		"fetch_retries":         m.FetchRetries.Load(),
		"products_enriched":     m.ProductsEnriched.Load(),
		"enrich_skipped":        m.EnrichSkipped.Load(),
		"enrich_fallbacks":      m.EnrichFallbacks.Load(),
		"generation_calls":      m.GenerationCalls.Load(),
		"generation_failures":   m.GenerationFailures.Load(),
		"comparisons_generated": m.ComparisonsGenerated.Load(),
		"comparison_cache_hits": m.ComparisonCacheHits.Load(),
		"api_requests":          m.APIRequests.Load(),
	}
}
