package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"shelflift/internal/catalog"
	"shelflift/internal/config"
	"shelflift/internal/observability"
	"shelflift/internal/types"
)

// ComparisonSource produces the comparison document on demand, regenerating
// when refresh is set.
type ComparisonSource interface {
	Get(ctx context.Context, refresh bool) (*types.ComparisonDocument, error)
}

// Server exposes the product catalog and comparison results over a
// read-only REST API.
type Server struct {
	mux        *http.ServeMux
	cfg        config.APIConfig
	processed  *catalog.Store
	scraped    *catalog.Store
	comparison ComparisonSource
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the API server over the two catalog stores. The
// comparison source may be nil, in which case /comparison reports the
// feature unavailable.
func NewServer(cfg config.APIConfig, processed, scraped *catalog.Store, comparison ComparisonSource, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		cfg:        cfg,
		processed:  processed,
		scraped:    scraped,
		comparison: comparison,
		metrics:    metrics,
		logger:     logger.With("component", "api_server"),
	}
	s.registerRoutes()
	return s
}

// Handler returns the routing handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("API server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /products", s.handleProducts)
	s.mux.HandleFunc("GET /products/{id}", s.handleProduct)
	s.mux.HandleFunc("GET /products/category/{category}", s.handleCategory)
	s.mux.HandleFunc("GET /comparison", s.handleComparison)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.countRequest()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"service": "shelflift",
		"version": config.Version,
		"endpoints": map[string]string{
			"/products":                     "list products (query: limit, offset, category)",
			"/products/{id}":                "get one product",
			"/products/category/{category}": "list products in a category",
			"/comparison":                   "top-rated product comparison (query: refresh)",
			"/api/health":                   "health check",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.countRequest()
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	s.countRequest()

	products, source, err := s.loadCatalog()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}

	if category := r.URL.Query().Get("category"); category != "" {
		products = catalog.FilterByCategory(products, category)
	}

	total := len(products)
	limit := s.queryInt(r, "limit", s.cfg.DefaultLimit)
	offset := s.queryInt(r, "offset", 0)
	products = paginate(products, limit, offset)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"metadata": map[string]any{
			"total":  total,
			"count":  len(products),
			"limit":  limit,
			"offset": offset,
			"source": source,
		},
		"products": products,
	})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	s.countRequest()

	products, _, err := s.loadCatalog()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}

	p, ok := catalog.FindByID(products, r.PathValue("id"))
	if !ok {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	s.countRequest()

	products, source, err := s.loadCatalog()
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}

	category := r.PathValue("category")
	matched := catalog.FilterByCategory(products, category)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"metadata": map[string]any{
			"total":    len(matched),
			"category": category,
			"source":   source,
		},
		"products": matched,
	})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	s.countRequest()

	if s.comparison == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "comparison not available"})
		return
	}

	refresh := false
	switch r.URL.Query().Get("refresh") {
	case "1", "true", "yes":
		refresh = true
	}

	doc, err := s.comparison.Get(r.Context(), refresh)
	if err != nil {
		var insufficient *types.InsufficientDataError
		if errors.As(err, &insufficient) {
			s.errorResponse(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// loadCatalog prefers the enriched catalog and falls back to raw scraper
// output when no enriched copy exists yet.
func (s *Server) loadCatalog() ([]types.Product, string, error) {
	products, err := s.processed.Load()
	if err != nil {
		return nil, "", err
	}
	if len(products) > 0 {
		return products, "processed", nil
	}

	products, err = s.scraped.Load()
	if err != nil {
		return nil, "", err
	}
	return products, "scraped", nil
}

func (s *Server) queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func paginate(products []types.Product, limit, offset int) []types.Product {
	if offset >= len(products) {
		return []types.Product{}
	}
	products = products[offset:]
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products
}

func (s *Server) countRequest() {
	if s.metrics != nil {
		s.metrics.APIRequests.Add(1)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	s.logger.Error("request failed", "status", status, "error", err)
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if s.cfg.CORSOrigin != "" {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
