package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelflift/internal/types"
)

const listingHTML = `<html><body>
<div data-automation="product-list-item">
  <a href="/en-ca/product/laptop-alpha/100">Laptop Alpha</a>
</div>
<div data-automation="product-list-item">
  <a href="/en-ca/product/laptop-beta/200">Laptop Beta</a>
</div>
<div data-automation="product-list-item">
  <a href="/en-ca/product/laptop-alpha/100">Laptop Alpha again</a>
</div>
<a href="#reviews">Reviews</a>
<a href="mailto:help@example.com">Contact</a>
</body></html>`

const detailHTML = `<html><body>
<h1 data-automation="product-title">Laptop Alpha 14"</h1>
<span data-automation="product-price">$1,299.99</span>
<span data-automation="rating-score">4.8</span>
<div data-automation="product-description">A thin and light laptop for everyday work.</div>
<div data-automation="key-specs">
  <ul>
    <li>16GB RAM</li>
    <li>1TB SSD</li>
    <li></li>
  </ul>
</div>
</body></html>`

// An older page generation: CSS-module classes, microdata price, no rating.
const legacyDetailHTML = `<html><body>
<h1 class="title_3a6Uh">Laptop Beta 15"</h1>
<div class="productDescription_2WBlx"><div>A bigger screen for less.</div></div>
<span itemprop="price" content="899.99"></span>
</body></html>`

func parseHTML(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func TestExtractProductLinks(t *testing.T) {
	doc := parseHTML(t, listingHTML)

	links := ExtractProductLinks(doc, "https://www.bestbuy.ca")

	require.Len(t, links, 2)
	assert.Equal(t, "https://www.bestbuy.ca/en-ca/product/laptop-alpha/100", links[0])
	assert.Equal(t, "https://www.bestbuy.ca/en-ca/product/laptop-beta/200", links[1])
}

func TestExtractProductLinksSkipsSecondaryAnchors(t *testing.T) {
	doc := parseHTML(t, `<html><body>
<div class="x-productListItem">
  <a href="/en-ca/product/tablet-gamma/300">Tablet Gamma</a>
  <a href="/en-ca/cart/add/300">Add to cart</a>
</div>
</body></html>`)

	links := ExtractProductLinks(doc, "https://www.bestbuy.ca")

	// Only the tile's primary link counts.
	require.Len(t, links, 1)
	assert.Equal(t, "https://www.bestbuy.ca/en-ca/product/tablet-gamma/300", links[0])
}

func TestExtractProductLinksFallsBackWithoutContainers(t *testing.T) {
	doc := parseHTML(t, `<html><body>
<a itemprop="url" href="/deals/phone-delta/400">Phone Delta</a>
</body></html>`)

	links := ExtractProductLinks(doc, "https://www.bestbuy.ca")

	require.Len(t, links, 1)
	assert.Equal(t, "https://www.bestbuy.ca/deals/phone-delta/400", links[0])
}

func TestExtractProductLinksEmptyPage(t *testing.T) {
	doc := parseHTML(t, "<html><body><p>nothing here</p></body></html>")
	assert.Empty(t, ExtractProductLinks(doc, "https://www.bestbuy.ca"))
}

func TestExtractProduct(t *testing.T) {
	doc := parseHTML(t, detailHTML)

	p := ExtractProduct(doc, "https://www.bestbuy.ca/en-ca/product/laptop-alpha/100")

	assert.Equal(t, `Laptop Alpha 14"`, p.Title)
	assert.Equal(t, "A thin and light laptop for everyday work.", p.Description)
	assert.Equal(t, []string{"16GB RAM", "1TB SSD"}, p.Features)
	assert.Equal(t, "4.8", p.Rating)
	assert.Equal(t, "$1,299.99", p.Price)
	assert.NotEmpty(t, p.ID)
}

func TestExtractProductLegacyPage(t *testing.T) {
	doc := parseHTML(t, legacyDetailHTML)

	p := ExtractProduct(doc, "https://www.bestbuy.ca/en-ca/product/laptop-beta/200")

	assert.Equal(t, `Laptop Beta 15"`, p.Title)
	assert.Equal(t, "A bigger screen for less.", p.Description)
	assert.Equal(t, types.NotRated, p.Rating)
	// Price falls back to the schema.org microdata.
	assert.Equal(t, "899.99", p.Price)
}

func TestExtractProductBarePage(t *testing.T) {
	doc := parseHTML(t, "<html><body><h1>Mystery Gadget</h1></body></html>")

	p := ExtractProduct(doc, "https://example.com/p/1")

	assert.Equal(t, "Mystery Gadget", p.Title)
	assert.Empty(t, p.Description)
	assert.Empty(t, p.Features)
	assert.Equal(t, types.NotRated, p.Rating)
}

func TestProductIDStable(t *testing.T) {
	a := productID("https://example.com/p/1")
	b := productID("https://example.com/p/1")
	c := productID("https://example.com/p/2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "p-"))
}
