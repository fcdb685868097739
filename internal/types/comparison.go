package types

import "time"

// ComparisonSize is the number of products placed side by side. Slot numbers
// throughout the comparison engine are 1-based positions into this triple.
const ComparisonSize = 3

// Criterion is a single comparison question produced by the criteria
// generator. Index is 1-based generation order and acts as the stable key.
type Criterion struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Verdict is the resolved outcome of one criterion. WinnerSlot is nil when
// no winner could be parsed from the model output; such verdicts are kept
// for display but excluded from the aggregation tally.
type Verdict struct {
	CriterionIndex int    `json:"criterion_index"`
	WinnerSlot     *int   `json:"winner_slot"`
	Rationale      string `json:"rationale"`
}

// Resolved reports whether a winner was parsed for this verdict.
func (v *Verdict) Resolved() bool { return v.WinnerSlot != nil }

// ComparisonEntry is the subset of product fields embedded in a persisted
// comparison document.
type ComparisonEntry struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Rating  string `json:"rating"`
	Summary string `json:"summary,omitempty"`
	Tagline string `json:"tagline,omitempty"`
}

// ComparisonDocument is the top-level persisted comparison artifact. It is
// assembled from scratch on each full run and treated as immutable once
// written, until an explicit refresh.
type ComparisonDocument struct {
	Products []ComparisonEntry `json:"products"`
	Criteria []Criterion       `json:"criteria"`
	Verdicts []Verdict         `json:"verdicts"`

	// OverallWinnerSlot is the slot with the most criterion wins; ties
	// resolve to the lower slot (the higher-rated product).
	OverallWinnerSlot int `json:"overall_winner_slot"`

	// Degraded is set when every verdict was unresolved and the overall
	// winner defaulted to slot 1.
	Degraded bool `json:"degraded,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// WinnerEntry returns the product entry in the overall winning slot.
func (d *ComparisonDocument) WinnerEntry() ComparisonEntry {
	i := d.OverallWinnerSlot - 1
	if i < 0 || i >= len(d.Products) {
		return ComparisonEntry{}
	}
	return d.Products[i]
}

// NewComparisonEntry projects a product into its comparison subset.
func NewComparisonEntry(p Product) ComparisonEntry {
	return ComparisonEntry{
		ID:      p.ID,
		Title:   p.Title,
		Rating:  p.Rating,
		Summary: p.Summary,
		Tagline: p.Tagline,
	}
}
