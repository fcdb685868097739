package types

import (
	"strconv"
	"strings"
)

// NotRated is the sentinel the scraper emits when a product page carries no
// rating widget.
const NotRated = "Not rated"

// Product represents a single scraped catalog entry. The scraper populates
// the raw fields; the enricher appends Summary, Tagline and Highlights.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Features    []string `json:"features"`

	// Rating is kept as scraped: a numeric string ("4.8"), malformed text,
	// or the NotRated sentinel. Use ParsedRating for sorting.
	Rating string `json:"rating"`

	Category string `json:"category,omitempty"`
	Price    string `json:"price,omitempty"`
	URL      string `json:"url,omitempty"`
	Source   string `json:"source,omitempty"`

	// Derived marketing copy, empty until enrichment runs.
	Summary    string   `json:"summary,omitempty"`
	Tagline    string   `json:"tagline,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

// IsEnriched reports whether all derived fields are already populated.
// Enrichment is skipped for such products; stale copy is never refreshed
// automatically.
func (p *Product) IsEnriched() bool {
	return p.Summary != "" && p.Tagline != "" && len(p.Highlights) > 0
}

// ParsedRating coerces the raw rating string to a float. The second return
// is false for missing, malformed, or sentinel ratings.
func (p *Product) ParsedRating() (float64, bool) {
	return ParseRating(p.Rating)
}

// ParseRating extracts a numeric rating from a scraped rating string.
// Accepts plain numbers ("4.8") and prefixed forms ("4.8 out of 5 stars").
func ParseRating(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, NotRated) {
		return 0, false
	}
	// Take the leading numeric token so "4.8 out of 5" parses as 4.8.
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
