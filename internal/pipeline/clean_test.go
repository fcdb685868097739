package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelflift/internal/types"
)

func TestDefaultCleanerSanitizesAndTrims(t *testing.T) {
	cleaner := NewDefaultCleaner(testLogger())

	products, err := cleaner.Apply([]types.Product{{
		ID:          "p1",
		Title:       "  Laptop&nbsp;Alpha <b>14\"</b>  ",
		Description: "<p>Thin   and\nlight.</p>",
		Features:    []string{" 16GB&amp;more "},
		Price:       "$1,299.99",
	}})
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, `Laptop Alpha 14"`, p.Title)
	assert.Equal(t, "Thin and light.", p.Description)
	assert.Equal(t, []string{"16GB&more"}, p.Features)
	assert.Equal(t, "1299.99", p.Price)
}

func TestCleanerDropsUntitledProducts(t *testing.T) {
	cleaner := NewDefaultCleaner(testLogger())

	products, err := cleaner.Apply([]types.Product{
		{ID: "p1", Title: "Kept"},
		{ID: "p2", Title: "   "},
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
}

func TestCleanerDedupesByID(t *testing.T) {
	cleaner := NewDefaultCleaner(testLogger())

	products, err := cleaner.Apply([]types.Product{
		{ID: "p1", Title: "First"},
		{ID: "p1", Title: "Duplicate"},
		{ID: "p2", Title: "Second"},
	})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "First", products[0].Title)
	assert.Equal(t, "Second", products[1].Title)
}

func TestPriceNormalizeEuropeanFormat(t *testing.T) {
	mw := NewPriceNormalizeMiddleware()

	p := &types.Product{Price: "1.299,99 €"}
	p, err := mw.Process(p)
	require.NoError(t, err)
	assert.Equal(t, "1299.99", p.Price)
}

func TestPriceNormalizeKeepsEmptyPrice(t *testing.T) {
	mw := NewPriceNormalizeMiddleware()

	p := &types.Product{}
	p, err := mw.Process(p)
	require.NoError(t, err)
	assert.Empty(t, p.Price)
}

func TestCleanerEmptyChainPassesThrough(t *testing.T) {
	cleaner := NewCleaner(testLogger())

	in := []types.Product{{ID: "p1", Title: "  untouched  "}}
	products, err := cleaner.Apply(in)
	require.NoError(t, err)
	assert.Equal(t, in, products)
}
