package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"shelflift/internal/config"
	"shelflift/internal/observability"
	"shelflift/internal/types"
)

// PageFetcher renders a page and returns its HTML. Implemented by Browser;
// tests substitute canned pages.
type PageFetcher interface {
	FetchHTML(ctx context.Context, pageURL string) (string, error)
}

// Scraper walks a category listing page and the product detail pages behind
// it, producing raw catalog records.
type Scraper struct {
	fetcher PageFetcher
	cfg     config.ScraperConfig
	metrics *observability.Metrics
	logger  *slog.Logger
	sleep   func(time.Duration)
}

// New creates a Scraper over the given page fetcher. metrics may be nil.
func New(fetcher PageFetcher, cfg config.ScraperConfig, metrics *observability.Metrics, logger *slog.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With("component", "scraper"),
		sleep:   time.Sleep,
	}
}

// Run scrapes the configured category and returns up to ProductCount
// products. A failed detail page is retried, then skipped; only a failed or
// empty listing page aborts the run.
func (s *Scraper) Run(ctx context.Context) ([]types.Product, error) {
	s.logger.Info("scraping category", "url", s.cfg.CategoryURL, "want", s.cfg.ProductCount)

	links, err := s.collectLinks(ctx)
	if err != nil {
		return nil, err
	}
	if len(links) > s.cfg.ProductCount && s.cfg.ProductCount > 0 {
		links = links[:s.cfg.ProductCount]
	}
	s.logger.Info("product links collected", "count", len(links))

	products := make([]types.Product, 0, len(links))
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return products, err
		}
		if i > 0 {
			s.sleep(RandomDelay(s.cfg.RequestDelay))
		}

		p, err := s.scrapeProduct(ctx, link)
		if err != nil {
			s.logger.Warn("product page skipped", "url", link, "error", err)
			continue
		}
		products = append(products, p)
		s.logger.Info("product scraped", "id", p.ID, "title", p.Title, "rating", p.Rating)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("no products scraped from %s", s.cfg.CategoryURL)
	}
	return products, nil
}

func (s *Scraper) collectLinks(ctx context.Context) ([]string, error) {
	html, err := s.fetcher.FetchHTML(ctx, s.cfg.CategoryURL)
	if err != nil {
		return nil, fmt.Errorf("fetch category page: %w", err)
	}
	if s.metrics != nil {
		s.metrics.PagesFetched.Add(1)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse category page: %w", err)
	}

	links := ExtractProductLinks(doc, s.cfg.BaseURL)
	if len(links) == 0 {
		return nil, fmt.Errorf("no product links found on %s", s.cfg.CategoryURL)
	}
	return links, nil
}

// scrapeProduct fetches and extracts one detail page, retrying transient
// failures up to the configured limit.
func (s *Scraper) scrapeProduct(ctx context.Context, link string) (types.Product, error) {
	attempts := s.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if s.metrics != nil {
				s.metrics.FetchRetries.Add(1)
			}
			s.logger.Warn("retrying product page", "url", link, "attempt", attempt)
			s.sleep(RandomDelay(s.cfg.RequestDelay))
		}

		html, err := s.fetcher.FetchHTML(ctx, link)
		if err != nil {
			lastErr = err
			var fetchErr *types.FetchError
			if errors.As(err, &fetchErr) && !fetchErr.IsRetryable() {
				break
			}
			continue
		}
		if s.metrics != nil {
			s.metrics.PagesFetched.Add(1)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			lastErr = err
			continue
		}

		p := ExtractProduct(doc, link)
		if p.Title == "" {
			lastErr = fmt.Errorf("no title extracted from %s", link)
			continue
		}
		p.Category = s.cfg.Category
		p.Source = s.cfg.Source
		return p, nil
	}
	return types.Product{}, lastErr
}
