package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shelflift/internal/types"
)

// Store persists a product catalog as a single JSON array on disk. Two
// catalogs exist in practice: the raw scraper output and the enriched copy;
// both share this store.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store for the catalog at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With("component", "catalog_store"),
	}
}

// Path returns the catalog location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a catalog file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the catalog. A missing file yields an empty catalog, not an
// error, so a first run and an empty catalog look the same to callers.
func (s *Store) Load() ([]types.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("catalog file absent", "path", s.path)
			return []types.Product{}, nil
		}
		return nil, &types.StorageError{Backend: "file", Err: err}
	}

	var products []types.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, &types.StorageError{Backend: "file", Err: fmt.Errorf("decode %s: %w", s.path, err)}
	}

	s.logger.Debug("catalog loaded", "path", s.path, "products", len(products))
	return products, nil
}

// Save writes the catalog atomically via a temp file rename in the target
// directory.
func (s *Store) Save(products []types.Product) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &types.StorageError{Backend: "file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}

	s.logger.Info("catalog saved", "path", s.path, "products", len(products))
	return nil
}

// FindByID returns the product with the given ID from a loaded catalog.
func FindByID(products []types.Product, id string) (types.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return types.Product{}, false
}

// FilterByCategory returns the products whose category matches, case-folded.
func FilterByCategory(products []types.Product, category string) []types.Product {
	matched := make([]types.Product, 0)
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			matched = append(matched, p)
		}
	}
	return matched
}
