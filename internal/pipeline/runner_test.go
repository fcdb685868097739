package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelflift/internal/catalog"
	"shelflift/internal/compare"
	"shelflift/internal/config"
	"shelflift/internal/enrich"
	"shelflift/internal/llm"
	"shelflift/internal/observability"
	"shelflift/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubSource struct {
	products []types.Product
	err      error
}

func (s *stubSource) Run(context.Context) ([]types.Product, error) {
	return s.products, s.err
}

type stubMirror struct {
	upserts int
	err     error
}

func (m *stubMirror) Upsert(_ context.Context, products []types.Product) error {
	m.upserts += len(products)
	return m.err
}

func rawCatalog() []types.Product {
	return []types.Product{
		{ID: "p1", Title: "Laptop Alpha", Rating: "4.8", Description: "Thin and light."},
		{ID: "p2", Title: "Laptop Beta", Rating: "4.5"},
		{ID: "p3", Title: "Laptop Gamma", Rating: "4.0"},
		{ID: "p4", Title: "Laptop Delta", Rating: types.NotRated},
	}
}

type runnerFixture struct {
	runner    *Runner
	scraped   *catalog.Store
	processed *catalog.Store
	mirror    *stubMirror
	metrics   *observability.Metrics
}

func newRunnerFixture(t *testing.T, source ProductSource) *runnerFixture {
	t.Helper()
	dir := t.TempDir()
	logger := testLogger()
	gen := llm.NewMockGenerator()
	cfg := config.DefaultConfig()

	scraped := catalog.NewStore(filepath.Join(dir, "scraped.json"), logger)
	processed := catalog.NewStore(filepath.Join(dir, "processed.json"), logger)
	comparisons := compare.NewStore(filepath.Join(dir, "comparison.json"), logger)
	mirror := &stubMirror{}
	metrics := observability.NewMetrics(logger)

	runner := NewRunner(cfg, source,
		enrich.New(gen, cfg.Enrich, logger),
		compare.NewEngine(gen, cfg.Compare, logger),
		scraped, processed, comparisons, mirror, metrics, logger)

	return &runnerFixture{runner: runner, scraped: scraped, processed: processed, mirror: mirror, metrics: metrics}
}

func TestRunnerFullPipeline(t *testing.T) {
	f := newRunnerFixture(t, &stubSource{products: rawCatalog()})

	require.NoError(t, f.runner.Run(context.Background(), Options{}))

	scraped, err := f.scraped.Load()
	require.NoError(t, err)
	assert.Len(t, scraped, 4)

	processed, err := f.processed.Load()
	require.NoError(t, err)
	require.Len(t, processed, 4)
	for _, p := range processed {
		assert.True(t, p.IsEnriched(), "product %s not enriched", p.ID)
	}

	doc, err := f.runner.Compare(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, doc.Products, 3)

	assert.Equal(t, int64(4), f.metrics.ProductsScraped.Load())
	assert.Equal(t, int64(4), f.metrics.ProductsEnriched.Load())
	assert.Equal(t, 4, f.mirror.upserts)
}

func TestRunnerSkipFlags(t *testing.T) {
	f := newRunnerFixture(t, &stubSource{err: errors.New("should not scrape")})
	require.NoError(t, f.processed.Save(enrichedFixture()))

	err := f.runner.Run(context.Background(), Options{SkipScrape: true, SkipEnrich: true})
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.metrics.ProductsScraped.Load())
	assert.Equal(t, int64(0), f.metrics.ProductsEnriched.Load())
	assert.Equal(t, int64(1), f.metrics.ComparisonsGenerated.Load())
}

func TestRunnerScrapeFailureAborts(t *testing.T) {
	f := newRunnerFixture(t, &stubSource{err: errors.New("browser crashed")})

	err := f.runner.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape stage")
}

func TestRunnerEnrichSkipsAlreadyEnriched(t *testing.T) {
	f := newRunnerFixture(t, nil)
	require.NoError(t, f.processed.Save(enrichedFixture()))

	products, err := f.runner.Enrich(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)

	assert.Equal(t, int64(3), f.metrics.EnrichSkipped.Load())
	assert.Equal(t, int64(0), f.metrics.ProductsEnriched.Load())
}

func TestRunnerEnrichEmptyCatalog(t *testing.T) {
	f := newRunnerFixture(t, nil)

	_, err := f.runner.Enrich(context.Background())
	assert.ErrorIs(t, err, types.ErrCatalogNotFound)
}

func TestRunnerCompareUsesCache(t *testing.T) {
	f := newRunnerFixture(t, nil)
	require.NoError(t, f.processed.Save(enrichedFixture()))

	first, err := f.runner.Compare(context.Background(), false)
	require.NoError(t, err)

	second, err := f.runner.Compare(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), f.metrics.ComparisonsGenerated.Load())
	assert.Equal(t, int64(1), f.metrics.ComparisonCacheHits.Load())
}

func TestRunnerCompareRefreshRegenerates(t *testing.T) {
	f := newRunnerFixture(t, nil)
	require.NoError(t, f.processed.Save(enrichedFixture()))

	_, err := f.runner.Compare(context.Background(), false)
	require.NoError(t, err)
	_, err = f.runner.Compare(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, int64(2), f.metrics.ComparisonsGenerated.Load())
}

func TestRunnerCompareInsufficientCatalog(t *testing.T) {
	f := newRunnerFixture(t, nil)
	require.NoError(t, f.processed.Save(enrichedFixture()[:2]))

	_, err := f.runner.Compare(context.Background(), false)

	var insufficient *types.InsufficientDataError
	require.True(t, errors.As(err, &insufficient))
}

func TestRunnerMirrorFailureIsNonFatal(t *testing.T) {
	f := newRunnerFixture(t, nil)
	f.mirror.err = errors.New("mongo down")
	require.NoError(t, f.scraped.Save(rawCatalog()))

	_, err := f.runner.Enrich(context.Background())
	require.NoError(t, err)

	processed, err := f.processed.Load()
	require.NoError(t, err)
	assert.Len(t, processed, 4)
}

func enrichedFixture() []types.Product {
	return []types.Product{
		{ID: "p1", Title: "Laptop Alpha", Rating: "4.8", Summary: "s", Tagline: "t", Highlights: []string{"h"}},
		{ID: "p2", Title: "Laptop Beta", Rating: "4.5", Summary: "s", Tagline: "t", Highlights: []string{"h"}},
		{ID: "p3", Title: "Laptop Gamma", Rating: "4.0", Summary: "s", Tagline: "t", Highlights: []string{"h"}},
	}
}
