package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"shelflift/internal/catalog"
	"shelflift/internal/compare"
	"shelflift/internal/config"
	"shelflift/internal/enrich"
	"shelflift/internal/observability"
	"shelflift/internal/types"
)

// ProductSource produces raw catalog records. Implemented by the scraper;
// tests substitute fixed catalogs.
type ProductSource interface {
	Run(ctx context.Context) ([]types.Product, error)
}

// Mirror replicates the enriched catalog to a secondary backend.
type Mirror interface {
	Upsert(ctx context.Context, products []types.Product) error
}

// Options selects which pipeline stages run.
type Options struct {
	SkipScrape  bool
	SkipEnrich  bool
	SkipCompare bool
	Refresh     bool
}

// Runner executes the scrape, enrich and compare stages against the shared
// catalog stores.
type Runner struct {
	cfg         *config.Config
	source      ProductSource
	enricher    *enrich.Enricher
	engine      *compare.Engine
	scraped     *catalog.Store
	processed   *catalog.Store
	comparisons *compare.Store
	mirror      Mirror
	cleaner     *Cleaner
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewRunner wires a pipeline. source and mirror may be nil: a nil source
// makes Scrape fail fast, a nil mirror disables catalog mirroring.
func NewRunner(cfg *config.Config, source ProductSource, enricher *enrich.Enricher, engine *compare.Engine,
	scraped, processed *catalog.Store, comparisons *compare.Store, mirror Mirror,
	metrics *observability.Metrics, logger *slog.Logger) *Runner {

	return &Runner{
		cfg:         cfg,
		source:      source,
		enricher:    enricher,
		engine:      engine,
		scraped:     scraped,
		processed:   processed,
		comparisons: comparisons,
		mirror:      mirror,
		cleaner:     NewDefaultCleaner(logger),
		metrics:     metrics,
		logger:      logger.With("component", "pipeline"),
	}
}

// Run executes the selected stages in order.
func (r *Runner) Run(ctx context.Context, opts Options) error {
	if !opts.SkipScrape {
		if _, err := r.Scrape(ctx); err != nil {
			return fmt.Errorf("scrape stage: %w", err)
		}
	}
	if !opts.SkipEnrich {
		if _, err := r.Enrich(ctx); err != nil {
			return fmt.Errorf("enrich stage: %w", err)
		}
	}
	if !opts.SkipCompare {
		if _, err := r.Compare(ctx, opts.Refresh); err != nil {
			return fmt.Errorf("compare stage: %w", err)
		}
	}
	return nil
}

// Scrape collects products from the configured source and persists the raw
// catalog.
func (r *Runner) Scrape(ctx context.Context) ([]types.Product, error) {
	if r.source == nil {
		return nil, fmt.Errorf("no product source configured")
	}

	products, err := r.source.Run(ctx)
	if err != nil {
		return nil, err
	}

	cleaned, err := r.cleaner.Apply(products)
	if err != nil {
		return nil, err
	}
	if dropped := len(products) - len(cleaned); dropped > 0 {
		r.metrics.ProductsSkipped.Add(int64(dropped))
		r.logger.Info("products dropped by cleaning", "count", dropped)
	}
	products = cleaned

	if err := r.scraped.Save(products); err != nil {
		return nil, err
	}

	r.metrics.ProductsScraped.Add(int64(len(products)))
	r.logger.Info("scrape stage complete", "products", len(products))
	return products, nil
}

// Enrich generates marketing copy for every product in the catalog and
// persists the enriched copy. Products that already carry copy are passed
// through untouched, so re-runs only fill gaps.
func (r *Runner) Enrich(ctx context.Context) ([]types.Product, error) {
	products, err := r.loadCatalog()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, types.ErrCatalogNotFound
	}

	enriched := make([]types.Product, 0, len(products))
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.IsEnriched() {
			r.metrics.EnrichSkipped.Add(1)
			enriched = append(enriched, p)
			continue
		}

		out := r.enricher.Enrich(ctx, p)
		r.metrics.ProductsEnriched.Add(1)
		if out.Summary == enrich.FallbackSummary || out.Tagline == enrich.FallbackTagline {
			r.metrics.EnrichFallbacks.Add(1)
		}
		enriched = append(enriched, out)
	}

	if err := r.processed.Save(enriched); err != nil {
		return nil, err
	}

	if r.mirror != nil {
		if err := r.mirror.Upsert(ctx, enriched); err != nil {
			// Mirroring is best effort; the file catalog stays authoritative.
			r.logger.Error("catalog mirror failed", "error", err)
		}
	}

	r.logger.Info("enrich stage complete", "products", len(enriched))
	return enriched, nil
}

// Compare produces the comparison document, serving the cached artifact
// unless refresh is set.
func (r *Runner) Compare(ctx context.Context, refresh bool) (*types.ComparisonDocument, error) {
	generated := false
	doc, err := r.comparisons.GetOrGenerate(ctx, refresh, func(ctx context.Context) (*types.ComparisonDocument, error) {
		generated = true
		products, err := r.loadCatalog()
		if err != nil {
			return nil, err
		}
		return r.engine.Run(ctx, products)
	})
	if err != nil {
		return nil, err
	}

	if generated {
		r.metrics.ComparisonsGenerated.Add(1)
	} else {
		r.metrics.ComparisonCacheHits.Add(1)
	}
	return doc, nil
}

// Get implements the API's comparison source.
func (r *Runner) Get(ctx context.Context, refresh bool) (*types.ComparisonDocument, error) {
	return r.Compare(ctx, refresh)
}

// loadCatalog prefers the enriched catalog over raw scraper output.
func (r *Runner) loadCatalog() ([]types.Product, error) {
	products, err := r.processed.Load()
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return products, nil
	}
	return r.scraped.Load()
}
