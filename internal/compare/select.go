package compare

import (
	"sort"

	"shelflift/internal/types"
)

// unratedPriority sorts below every real rating so unrated products are only
// selected when nothing better exists.
const unratedPriority = -1.0

// SelectTop returns the n highest-rated products in descending rating order.
// Products with missing, malformed, or "Not rated" ratings get the lowest
// sort priority. The sort is stable, so ties and unrated runs keep their
// catalog order and selection is reproducible on identical input.
//
// An InsufficientDataError is returned when the catalog holds fewer than n
// products at all, regardless of how many have valid ratings.
func SelectTop(products []types.Product, n int) ([]types.Product, error) {
	if n <= 0 {
		n = types.ComparisonSize
	}
	if len(products) < n {
		return nil, &types.InsufficientDataError{Need: n, Have: len(products)}
	}

	ranked := make([]types.Product, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(i, j int) bool {
		return sortRating(ranked[i]) > sortRating(ranked[j])
	})

	return ranked[:n], nil
}

func sortRating(p types.Product) float64 {
	v, ok := p.ParsedRating()
	if !ok {
		return unratedPriority
	}
	return v
}
