package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"shelflift/internal/config"
	"shelflift/internal/types"
)

// Browser renders pages in headless Chromium via Rod. Best Buy listing pages
// are client-rendered and lazy-load products on scroll, so plain HTTP
// fetching sees an empty grid.
type Browser struct {
	browser      *rod.Browser
	cfg          config.ScraperConfig
	logger       *slog.Logger
	scrollPasses int
}

// NewBrowser launches Chromium and connects to it.
func NewBrowser(cfg config.ScraperConfig, logger *slog.Logger) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	scrollPasses := cfg.ScrollPasses
	if scrollPasses <= 0 {
		scrollPasses = 1
	}

	b := &Browser{
		browser:      browser,
		cfg:          cfg,
		logger:       logger.With("component", "browser"),
		scrollPasses: scrollPasses,
	}
	b.logger.Info("browser ready", "headless", cfg.Headless, "stealth", cfg.Stealth)
	return b, nil
}

// FetchHTML navigates to a URL, waits for it to settle, scrolls to trigger
// lazy loading, and returns the rendered HTML.
func (b *Browser) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	page, err := b.newPage()
	if err != nil {
		return "", &types.FetchError{URL: pageURL, Err: err, Retryable: true}
	}
	defer page.Close()

	page = page.Context(ctx)

	if ua := b.cfg.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			b.logger.Warn("failed to set user agent", "error", err)
		}
	}

	timeout := b.cfg.RequestTimeout
	if err := page.Timeout(timeout).Navigate(pageURL); err != nil {
		return "", &types.FetchError{URL: pageURL, Err: err, Retryable: true}
	}
	if err := page.Timeout(timeout).WaitStable(300 * time.Millisecond); err != nil {
		b.logger.Warn("page stability timeout, continuing", "url", pageURL, "error", err)
	}

	b.scroll(page)

	html, err := page.HTML()
	if err != nil {
		return "", &types.FetchError{URL: pageURL, Err: err, Retryable: true}
	}

	b.logger.Debug("browser fetch complete", "url", pageURL, "size", len(html))
	return html, nil
}

// scroll performs the configured number of viewport-height scroll passes,
// pausing between each so lazy-loaded products can render.
func (b *Browser) scroll(page *rod.Page) {
	for i := 0; i < b.scrollPasses; i++ {
		if _, err := page.Eval("() => window.scrollBy(0, window.innerHeight)"); err != nil {
			b.logger.Warn("scroll eval failed", "pass", i+1, "error", err)
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err := page.WaitStable(300 * time.Millisecond); err != nil {
		b.logger.Warn("post-scroll stability timeout", "error", err)
	}
}

func (b *Browser) newPage() (*rod.Page, error) {
	if b.cfg.Stealth {
		return stealth.Page(b.browser)
	}
	return b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

// Close shuts down the browser.
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}
