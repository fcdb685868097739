package catalog

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelflift/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleCatalog() []types.Product {
	return []types.Product{
		{ID: "p1", Title: "Laptop Alpha", Rating: "4.8", Category: "laptop", Features: []string{"16GB RAM"}},
		{ID: "p2", Title: "Laptop Beta", Rating: "4.5", Category: "laptop"},
		{ID: "p3", Title: "Tablet Gamma", Rating: types.NotRated, Category: "tablet"},
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "catalog.json"), testLogger())

	products := sampleCatalog()
	require.NoError(t, store.Save(products))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, products, loaded)
}

func TestStoreLoadMissingFileIsEmptyCatalog(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.json"), testLogger())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.False(t, store.Exists())
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("[{broken"), 0o644))

	store := NewStore(path, testLogger())
	_, err := store.Load()
	require.Error(t, err)

	var storageErr *types.StorageError
	assert.True(t, errors.As(err, &storageErr))
}

func TestStoreSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "catalog.json")
	store := NewStore(path, testLogger())

	require.NoError(t, store.Save(sampleCatalog()))
	assert.True(t, store.Exists())
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "catalog.json"), testLogger())

	require.NoError(t, store.Save(sampleCatalog()))
	require.NoError(t, store.Save(sampleCatalog()[:1]))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestFindByID(t *testing.T) {
	products := sampleCatalog()

	p, ok := FindByID(products, "p2")
	require.True(t, ok)
	assert.Equal(t, "Laptop Beta", p.Title)

	_, ok = FindByID(products, "missing")
	assert.False(t, ok)
}

func TestFilterByCategory(t *testing.T) {
	products := sampleCatalog()

	laptops := FilterByCategory(products, "Laptop")
	assert.Len(t, laptops, 2)

	tablets := FilterByCategory(products, "tablet")
	require.Len(t, tablets, 1)
	assert.Equal(t, "p3", tablets[0].ID)

	assert.Empty(t, FilterByCategory(products, "phone"))
}
