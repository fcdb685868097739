package compare

import (
	"time"

	"shelflift/internal/types"
)

// Aggregate tallies resolved verdicts into the final comparison document.
// Each resolved verdict is one vote for its winner slot; unresolved verdicts
// are recorded but carry no vote. Ties break toward the lowest slot, i.e.
// the higher-rated product. When no verdict resolved at all, slot 1 wins and
// the document is marked degraded.
func Aggregate(products []types.Product, criteria []types.Criterion, verdicts []types.Verdict, now time.Time) *types.ComparisonDocument {
	tally := make(map[int]int, len(products))
	resolved := 0
	for _, v := range verdicts {
		if v.Resolved() {
			tally[*v.WinnerSlot]++
			resolved++
		}
	}

	winner := 1
	degraded := resolved == 0
	if !degraded {
		best := -1
		for slot := 1; slot <= len(products); slot++ {
			if tally[slot] > best {
				best = tally[slot]
				winner = slot
			}
		}
	}

	entries := make([]types.ComparisonEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, types.NewComparisonEntry(p))
	}

	return &types.ComparisonDocument{
		Products:          entries,
		Criteria:          criteria,
		Verdicts:          verdicts,
		OverallWinnerSlot: winner,
		Degraded:          degraded,
		GeneratedAt:       now.UTC(),
	}
}
