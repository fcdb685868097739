package scraper

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"shelflift/internal/types"
)

// ExtractProductLinks pulls product detail URLs out of a category listing
// page, resolved against baseURL and deduplicated in document order. Listing
// item containers are tried first, taking the primary link of each item so
// secondary anchors (cart, reviews) inside a tile are skipped; page variants
// with no recognizable containers fall back to document-wide link selectors.
func ExtractProductLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	for _, container := range listingItemSelectors {
		items := doc.Find(container)
		if items.Length() == 0 {
			continue
		}

		seen := make(map[string]bool)
		var links []string
		items.Each(func(_ int, item *goquery.Selection) {
			href, ok := item.Find("a[href]").First().Attr("href")
			if !ok {
				return
			}
			if abs, ok := resolveLink(base, href); ok && !seen[abs] {
				seen[abs] = true
				links = append(links, abs)
			}
		})
		if len(links) > 0 {
			return links
		}
	}

	for _, selector := range productLinkSelectors {
		seen := make(map[string]bool)
		var links []string

		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			if abs, ok := resolveLink(base, href); ok && !seen[abs] {
				seen[abs] = true
				links = append(links, abs)
			}
		})
		if len(links) > 0 {
			return links
		}
	}
	return nil
}

// resolveLink turns an href into an absolute http(s) URL with the fragment
// dropped.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}

// ExtractProduct builds a product record from a detail page. Missing fields
// degrade to empty values or the NotRated sentinel rather than failing the
// page: a product with only a title is still worth keeping.
func ExtractProduct(doc *goquery.Document, pageURL string) types.Product {
	p := types.Product{
		ID:     productID(pageURL),
		URL:    pageURL,
		Title:  firstText(doc, titleSelectors),
		Rating: types.NotRated,
	}

	p.Description = firstText(doc, descriptionSelectors)
	p.Features = allText(doc, featureSelectors)
	p.Price = firstText(doc, priceSelectors)

	if rating := extractRating(doc); rating != "" {
		p.Rating = rating
	}
	if p.Price == "" {
		p.Price = priceFromMicrodata(doc)
	}
	return p
}

func extractRating(doc *goquery.Document) string {
	for _, selector := range ratingSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			return text
		}
	}
	return ""
}

// priceFromMicrodata re-parses the document with an XPath query against
// schema.org price annotations. goquery and htmlquery both wrap x/net/html,
// so rendering back through the node tree is cheap enough for a fallback.
func priceFromMicrodata(doc *goquery.Document) string {
	root := documentNode(doc)
	if root == nil {
		return ""
	}
	node, err := htmlquery.Query(root, priceXPath)
	if err != nil || node == nil {
		return ""
	}
	if content := strings.TrimSpace(htmlquery.SelectAttr(node, "content")); content != "" {
		return content
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}

func documentNode(doc *goquery.Document) *html.Node {
	if len(doc.Nodes) == 0 {
		return nil
	}
	return doc.Nodes[0]
}

// firstText returns the trimmed text of the first selector chain entry that
// matches a non-empty element.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// allText returns the trimmed text of every element matched by the first
// selector chain entry that matches anything.
func allText(doc *goquery.Document, selectors []string) []string {
	for _, selector := range selectors {
		var values []string
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if text := strings.TrimSpace(sel.Text()); text != "" {
				values = append(values, text)
			}
		})
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// productID derives a stable identifier from the product URL, so re-scrapes
// of the same page produce the same record.
func productID(pageURL string) string {
	h := fnv.New64a()
	h.Write([]byte(pageURL))
	return fmt.Sprintf("p-%016x", h.Sum64())
}
