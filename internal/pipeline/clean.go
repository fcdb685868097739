package pipeline

import (
	"html"
	"log/slog"
	"regexp"
	"strings"

	"shelflift/internal/types"
)

// Middleware transforms a scraped product before it reaches the catalog.
// Return nil to drop the product.
type Middleware interface {
	Name() string
	Process(p *types.Product) (*types.Product, error)
}

// Cleaner chains middleware over freshly scraped products.
type Cleaner struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// NewCleaner creates an empty Cleaner.
func NewCleaner(logger *slog.Logger) *Cleaner {
	return &Cleaner{
		logger: logger.With("component", "cleaner"),
	}
}

// NewDefaultCleaner returns the chain applied after every scrape: strip
// markup artifacts, trim whitespace, normalize prices, drop untitled
// products, dedupe by ID.
func NewDefaultCleaner(logger *slog.Logger) *Cleaner {
	c := NewCleaner(logger)
	c.Use(NewSanitizeMiddleware())
	c.Use(&TrimMiddleware{})
	c.Use(NewPriceNormalizeMiddleware())
	c.Use(&RequireTitleMiddleware{})
	c.Use(NewDedupMiddleware())
	return c
}

// Use appends a middleware to the chain.
func (c *Cleaner) Use(mw Middleware) {
	c.middlewares = append(c.middlewares, mw)
	c.logger.Debug("middleware added", "name", mw.Name(), "position", len(c.middlewares))
}

// Apply runs every product through the chain, discarding dropped ones.
func (c *Cleaner) Apply(products []types.Product) ([]types.Product, error) {
	kept := make([]types.Product, 0, len(products))
	for i := range products {
		p := products[i]
		current := &p

		for _, mw := range c.middlewares {
			result, err := mw.Process(current)
			if err != nil {
				return nil, err
			}
			if result == nil {
				c.logger.Debug("product dropped", "stage", mw.Name(), "id", p.ID)
				current = nil
				break
			}
			current = result
		}
		if current != nil {
			kept = append(kept, *current)
		}
	}
	return kept, nil
}

// SanitizeMiddleware strips residual HTML tags and entities from scraped
// text fields and collapses runs of whitespace.
type SanitizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewSanitizeMiddleware() *SanitizeMiddleware {
	return &SanitizeMiddleware{
		stripRe: regexp.MustCompile(`<[^>]*>`),
	}
}

func (m *SanitizeMiddleware) Name() string { return "sanitize" }

func (m *SanitizeMiddleware) Process(p *types.Product) (*types.Product, error) {
	p.Title = m.clean(p.Title)
	p.Description = m.clean(p.Description)
	for i, f := range p.Features {
		p.Features[i] = m.clean(f)
	}
	return p, nil
}

func (m *SanitizeMiddleware) clean(s string) string {
	if s == "" {
		return s
	}
	cleaned := m.stripRe.ReplaceAllString(s, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// TrimMiddleware trims whitespace from every string field.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(p *types.Product) (*types.Product, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Rating = strings.TrimSpace(p.Rating)
	p.Price = strings.TrimSpace(p.Price)
	for i, f := range p.Features {
		p.Features[i] = strings.TrimSpace(f)
	}
	return p, nil
}

// PriceNormalizeMiddleware reduces scraped price text to a plain numeric
// string, handling both US and European thousand separators.
type PriceNormalizeMiddleware struct {
	stripRe *regexp.Regexp
}

func NewPriceNormalizeMiddleware() *PriceNormalizeMiddleware {
	return &PriceNormalizeMiddleware{
		stripRe: regexp.MustCompile(`[^0-9.,\-]`),
	}
}

func (m *PriceNormalizeMiddleware) Name() string { return "price_normalize" }

func (m *PriceNormalizeMiddleware) Process(p *types.Product) (*types.Product, error) {
	if p.Price == "" {
		return p, nil
	}

	numeric := m.stripRe.ReplaceAllString(p.Price, "")
	if strings.Contains(numeric, ",") {
		lastComma := strings.LastIndex(numeric, ",")
		lastDot := strings.LastIndex(numeric, ".")
		if lastComma > lastDot {
			// European: 1.234,56
			numeric = strings.ReplaceAll(numeric, ".", "")
			numeric = strings.Replace(numeric, ",", ".", 1)
		} else {
			// US: 1,234.56
			numeric = strings.ReplaceAll(numeric, ",", "")
		}
	}
	if numeric != "" {
		p.Price = numeric
	}
	return p, nil
}

// RequireTitleMiddleware drops products without a title; they cannot be
// enriched or compared meaningfully.
type RequireTitleMiddleware struct{}

func (m *RequireTitleMiddleware) Name() string { return "require_title" }

func (m *RequireTitleMiddleware) Process(p *types.Product) (*types.Product, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, nil
	}
	return p, nil
}

// DedupMiddleware drops products whose ID was already seen.
type DedupMiddleware struct {
	seen map[string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[string]struct{})}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(p *types.Product) (*types.Product, error) {
	key := p.ID
	if key == "" {
		key = p.URL
	}
	if _, exists := m.seen[key]; exists {
		return nil, nil
	}
	m.seen[key] = struct{}{}
	return p, nil
}
