package scraper

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"shelflift/internal/config"
	"shelflift/internal/types"
)

// HTTPFetcher retrieves pages over plain HTTP, selected with
// scraper.fetcher: http. It is the fast path for page variants that render
// server side; the browser fetcher covers the rest.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    *slog.Logger
}

// NewHTTPFetcher creates an HTTP fetcher.
func NewHTTPFetcher(cfg config.ScraperConfig, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				// Decompression handled below so brotli works too.
				DisableCompression: true,
			},
			Timeout: cfg.RequestTimeout,
		},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodySize,
		logger:    logger.With("component", "http_fetcher"),
	}
}

// Fetch retrieves a page body. Errors carry a Retryable flag: rate limits,
// 5xx responses and transient network failures warrant a retry, everything
// else does not.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-CA,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err, Retryable: isRetryableError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &types.FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
			Retryable:  true,
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &types.FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	var reader io.Reader = resp.Body
	if f.maxBody > 0 {
		reader = io.LimitReader(reader, f.maxBody)
	}
	reader, err = decompressReader(resp, reader)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.FetchError{URL: pageURL, Err: err, Retryable: true}
	}

	f.logger.Debug("fetch complete",
		"url", pageURL,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)
	return body, nil
}

// FetchHTML satisfies PageFetcher, so the HTTP fetcher slots in wherever
// the browser does.
func (f *HTTPFetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	body, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// decompressReader wraps a reader with the decompressor matching the
// response's Content-Encoding (gzip, deflate, or brotli).
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableError reports whether a network error warrants a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNRESET) || errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return true
		}
	}
	return false
}

// RandomDelay returns a delay around base (±25%) to avoid a fixed request
// cadence.
func RandomDelay(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	jitter := float64(base) * 0.25
	return base + time.Duration(rand.Float64()*2*jitter-jitter)
}
