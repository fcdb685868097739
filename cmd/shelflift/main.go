package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shelflift/internal/api"
	"shelflift/internal/catalog"
	"shelflift/internal/compare"
	"shelflift/internal/config"
	"shelflift/internal/enrich"
	"shelflift/internal/llm"
	"shelflift/internal/observability"
	"shelflift/internal/pipeline"
	"shelflift/internal/scraper"
)

var (
	cfgFile      string
	verbose      bool
	useMock      bool
	refresh      bool
	skipScrape   bool
	skipEnrich   bool
	skipCompare  bool
	startAPI     bool
	productCount int
	categoryURL  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "shelflift",
		Short: "Shelflift — product scraping, marketing copy and comparison engine",
		Long: `Shelflift scrapes e-commerce product catalogs, enriches them with
LLM-generated marketing copy, compares the top-rated products, and serves
the results over a read-only REST API.

Stages:
  • scrape   — collect products from a category page (headless browser)
  • enrich   — generate summary, tagline and highlights per product
  • compare  — criteria-based comparison of the top-rated products
  • serve    — REST API over the catalog and comparison results
  • run      — all of the above in sequence`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&useMock, "use-mock", false, "use the mock text generator (no API key needed)")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(enrichCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape products from the configured category page",
		RunE:  runScrape,
	}
	cmd.Flags().IntVarP(&productCount, "count", "n", 0, "number of products to scrape (0 = config default)")
	cmd.Flags().StringVar(&categoryURL, "category-url", "", "category listing URL to scrape")
	return cmd
}

func enrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Generate marketing copy for the scraped catalog",
		RunE:  runEnrich,
	}
}

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the top-rated products in the catalog",
		RunE:  runCompare,
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "regenerate even if a cached comparison exists")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and comparison over a REST API",
		RunE:  runServe,
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: scrape, enrich, compare",
		RunE:  runPipeline,
	}
	cmd.Flags().BoolVar(&skipScrape, "skip-scrape", false, "skip the scrape stage")
	cmd.Flags().BoolVar(&skipEnrich, "skip-enrich", false, "skip the enrich stage")
	cmd.Flags().BoolVar(&skipCompare, "skip-compare", false, "skip the compare stage")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "regenerate the comparison even if cached")
	cmd.Flags().BoolVar(&startAPI, "serve", false, "start the REST API after the pipeline completes")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("shelflift %s\n", config.Version)
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Scraper:\n")
			fmt.Printf("  Source:           %s\n", cfg.Scraper.Source)
			fmt.Printf("  Category URL:     %s\n", cfg.Scraper.CategoryURL)
			fmt.Printf("  Product Count:    %d\n", cfg.Scraper.ProductCount)
			fmt.Printf("  Fetcher:          %s\n", cfg.Scraper.Fetcher)
			fmt.Printf("  Headless:         %v\n", cfg.Scraper.Headless)
			fmt.Printf("  Stealth:          %v\n", cfg.Scraper.Stealth)
			fmt.Printf("\nLLM:\n")
			fmt.Printf("  Provider:         %s\n", cfg.LLM.Provider)
			fmt.Printf("  Model:            %s\n", cfg.LLM.Model)
			fmt.Printf("  Max Tokens:       %d\n", cfg.LLM.MaxTokens)
			fmt.Printf("\nCompare:\n")
			fmt.Printf("  Top N:            %d\n", cfg.Compare.TopN)
			fmt.Printf("  Criteria Count:   %d\n", cfg.Compare.CriteriaCount)
			fmt.Printf("  Cache Path:       %s\n", cfg.Compare.CachePath)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Scraped Path:     %s\n", cfg.Storage.ScrapedPath)
			fmt.Printf("  Processed Path:   %s\n", cfg.Storage.ProcessedPath)
			fmt.Printf("  Backend:          %s\n", cfg.Storage.Backend)
			fmt.Printf("\nAPI:\n")
			fmt.Printf("  Address:          %s:%d\n", cfg.API.Host, cfg.API.Port)
			fmt.Printf("  Default Limit:    %d\n", cfg.API.DefaultLimit)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:          %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:             %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	app, err := newApp(cfg, logger, true)
	if err != nil {
		return err
	}
	defer app.close()

	products, err := app.runner.Scrape(ctx)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	fmt.Printf("Scraped %d products to %s\n", len(products), cfg.Storage.ScrapedPath)
	return nil
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	app, err := newApp(cfg, logger, false)
	if err != nil {
		return err
	}
	defer app.close()

	products, err := app.runner.Enrich(ctx)
	if err != nil {
		return fmt.Errorf("enrich: %w", err)
	}
	fmt.Printf("Enriched %d products to %s\n", len(products), cfg.Storage.ProcessedPath)
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	app, err := newApp(cfg, logger, false)
	if err != nil {
		return err
	}
	defer app.close()

	doc, err := app.runner.Compare(ctx, refresh)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	winner := doc.WinnerEntry()
	fmt.Printf("Compared %d products across %d criteria\n", len(doc.Products), len(doc.Criteria))
	fmt.Printf("Winner: %s (slot %d)\n", winner.Title, doc.OverallWinnerSlot)
	if doc.Degraded {
		fmt.Println("Note: no criterion produced a usable verdict; winner defaulted to the top-rated product.")
	}
	fmt.Printf("Saved to %s\n", cfg.Compare.CachePath)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	app, err := newApp(cfg, logger, false)
	if err != nil {
		return err
	}
	defer app.close()

	return app.serve(ctx, cfg, logger)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	app, err := newApp(cfg, logger, !skipScrape)
	if err != nil {
		return err
	}
	defer app.close()

	opts := pipeline.Options{
		SkipScrape:  skipScrape,
		SkipEnrich:  skipEnrich,
		SkipCompare: skipCompare,
		Refresh:     refresh,
	}
	if err := app.runner.Run(ctx, opts); err != nil {
		return err
	}
	fmt.Println("Pipeline complete.")

	if startAPI {
		return app.serve(ctx, cfg, logger)
	}
	return nil
}

// app bundles the wired pipeline and everything that needs closing.
type app struct {
	runner  *pipeline.Runner
	metrics *observability.Metrics
	closers []func() error
}

// newApp wires the generator, stores, stages and optional extras from
// configuration. withScraper controls whether a headless browser is
// launched; stages that never scrape should not pay for one.
func newApp(cfg *config.Config, logger *slog.Logger, withScraper bool) (*app, error) {
	a := &app{metrics: observability.NewMetrics(logger)}

	gen := newGenerator(cfg, a.metrics, logger)

	var source pipeline.ProductSource
	if withScraper {
		var fetcher scraper.PageFetcher
		if cfg.Scraper.Fetcher == "http" {
			hf := scraper.NewHTTPFetcher(cfg.Scraper, logger)
			a.closers = append(a.closers, hf.Close)
			fetcher = hf
		} else {
			browser, err := scraper.NewBrowser(cfg.Scraper, logger)
			if err != nil {
				return nil, fmt.Errorf("start browser: %w", err)
			}
			a.closers = append(a.closers, browser.Close)
			fetcher = browser
		}
		source = scraper.New(fetcher, cfg.Scraper, a.metrics, logger)
	}

	var mirror pipeline.Mirror
	if cfg.Storage.Backend == "mongo" {
		m, err := catalog.NewMongoMirror(cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		a.closers = append(a.closers, m.Close)
		mirror = m
	}

	scraped := catalog.NewStore(cfg.Storage.ScrapedPath, logger)
	processed := catalog.NewStore(cfg.Storage.ProcessedPath, logger)
	comparisons := compare.NewStore(cfg.Compare.CachePath, logger)

	a.runner = pipeline.NewRunner(cfg, source,
		enrich.New(gen, cfg.Enrich, logger),
		compare.NewEngine(gen, cfg.Compare, logger),
		scraped, processed, comparisons, mirror, a.metrics, logger)
	return a, nil
}

func (a *app) serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Metrics.Enabled {
		if err := a.metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	scraped := catalog.NewStore(cfg.Storage.ScrapedPath, logger)
	processed := catalog.NewStore(cfg.Storage.ProcessedPath, logger)
	server := api.NewServer(cfg.API, processed, scraped, a.runner, a.metrics, logger)
	return server.Run(ctx)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// newGenerator picks the text-generation backend. The mock generator is
// used when requested by flag or configured as the provider.
func newGenerator(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) llm.Generator {
	if useMock || cfg.LLM.Provider == string(llm.ProviderMock) {
		logger.Info("using mock text generator")
		return llm.NewMockGenerator()
	}
	return llm.NewClient(cfg.LLM, metrics, logger)
}

// setup loads configuration, applies CLI overrides and builds the logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if productCount > 0 {
		cfg.Scraper.ProductCount = productCount
	}
	if categoryURL != "" {
		cfg.Scraper.CategoryURL = categoryURL
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(cfg), nil
}

// setupLogger creates the structured logger per the logging config, with
// --verbose forcing debug level.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	out := os.Stderr
	if cfg.Logging.Output == "stdout" {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
