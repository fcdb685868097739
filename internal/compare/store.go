package compare

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shelflift/internal/types"
)

// Store caches comparison documents as a single JSON artifact on disk.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a Store writing to path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With("component", "comparison_store"),
	}
}

// Path returns the artifact location.
func (s *Store) Path() string {
	return s.path
}

// GetOrGenerate returns the cached document when one exists and refresh is
// false; otherwise it invokes generate and persists the result. The artifact
// is only written after full assembly, so a failed run never leaves a
// partial document and a stale one survives until its replacement is ready.
func (s *Store) GetOrGenerate(ctx context.Context, refresh bool, generate func(context.Context) (*types.ComparisonDocument, error)) (*types.ComparisonDocument, error) {
	if !refresh {
		doc, err := s.Load()
		if err == nil {
			s.logger.Debug("serving cached comparison", "path", s.path)
			return doc, nil
		}
		if !errors.Is(err, types.ErrNoComparison) {
			return nil, err
		}
	}

	doc, err := generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads the cached document. ErrNoComparison is returned when no
// artifact exists yet.
func (s *Store) Load() (*types.ComparisonDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrNoComparison
		}
		return nil, &types.StorageError{Backend: "file", Err: err}
	}

	var doc types.ComparisonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &types.StorageError{Backend: "file", Err: fmt.Errorf("decode %s: %w", s.path, err)}
	}
	return &doc, nil
}

// Save writes the document atomically: a temp file in the target directory
// is renamed into place, so readers never observe a torn write.
func (s *Store) Save(doc *types.ComparisonDocument) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &types.StorageError{Backend: "file", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".comparison-*.json")
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

	s.logger.Info("comparison saved", "path", s.path, "bytes", len(data))
	return nil
}
