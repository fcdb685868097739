package scraper

// Selector fallback chains for Best Buy Canada pages. The storefront ships
// several frontend generations at once, so every field carries the selectors
// observed across them, tried in order. Keep the data-automation variants
// first: they survive CSS-module class renames.

var listingItemSelectors = []string{
	"div[data-automation='product-list-item']",
	".x-productListItem",
	".productItemContainer_E8SSw",
}

var productLinkSelectors = []string{
	"a[href*='/en-ca/product/']",
	"a[itemprop='url']",
	".x-productListItem a[href]",
}

var titleSelectors = []string{
	"h1[data-automation='product-title']",
	"h1.title_3a6Uh",
	"h1",
}

var descriptionSelectors = []string{
	"div[data-automation='product-description']",
	".productDescription_2WBlx div",
	"#product-description",
}

var featureSelectors = []string{
	"div[data-automation='key-specs'] li",
	".modelInformation_1ZG9l li",
	"#product-details li",
}

var ratingSelectors = []string{
	"span[data-automation='rating-score']",
	"meta[itemprop='ratingValue']",
	".ratingScore_2tbCr",
}

var priceSelectors = []string{
	"span[data-automation='product-price']",
	"div[data-automation='product-pricing'] span",
	".price_FHDfG",
}

// priceXPath is the last-resort price lookup when none of the CSS chains
// match, aimed at the schema.org microdata some page variants still emit.
const priceXPath = "//*[@itemprop='price']"
