package compare

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"shelflift/internal/llm"
	"shelflift/internal/types"
)

const criteriaSystem = "You are a product analyst who designs fair, specific comparison criteria for consumer products."

// listPrefix matches residual numbering or bullet prefixes models add
// despite being asked for unnumbered lines.
var listPrefix = regexp.MustCompile(`^(\d+[.)]\s*|[-•*]\s*)`)

// CriteriaGenerator asks the model for a fixed number of comparison
// questions about a product triple.
type CriteriaGenerator struct {
	gen    llm.Generator
	count  int
	logger *slog.Logger
}

// NewCriteriaGenerator creates a CriteriaGenerator producing count criteria.
func NewCriteriaGenerator(gen llm.Generator, count int, logger *slog.Logger) *CriteriaGenerator {
	return &CriteriaGenerator{
		gen:    gen,
		count:  count,
		logger: logger.With("component", "criteria_generator"),
	}
}

// Generate produces exactly the configured number of criteria. A short or
// malformed response gets one retry; after that the run fails with a
// CriteriaCountError carrying the count actually received — the document is
// never padded with fabricated criteria.
func (g *CriteriaGenerator) Generate(ctx context.Context, products []types.Product) ([]types.Criterion, error) {
	prompt := g.prompt(products)

	criteria, ok := llm.Attempt(ctx, 2, g.logger, "criteria",
		func(ctx context.Context) ([]types.Criterion, error) {
			response, err := g.gen.Generate(ctx, prompt, criteriaSystem)
			if err != nil {
				return nil, &types.GenerationError{Op: "criteria", Err: err}
			}
			return ParseCriteria(response), nil
		},
		func(criteria []types.Criterion) bool { return len(criteria) == g.count },
	)
	if !ok {
		return nil, &types.CriteriaCountError{Want: g.count, Got: len(criteria)}
	}

	g.logger.Debug("criteria generated", "count", len(criteria))
	return criteria, nil
}

func (g *CriteriaGenerator) prompt(products []types.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are %d products being considered by a shopper:\n\n", len(products))
	for i, p := range products {
		fmt.Fprintf(&b, "Product %d: %s\n", i+1, p.Title)
		if p.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", p.Description)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b,
		"Generate exactly %d comparison criteria for choosing between these products. "+
			"Write each criterion as a question, one per line, with no numbering or bullets.",
		g.count,
	)
	return b.String()
}

// ParseCriteria splits a criteria response into trimmed, non-empty lines,
// stripping any residual numbering or bullet prefixes, and indexes the
// results 1-based in order of appearance.
func ParseCriteria(response string) []types.Criterion {
	var criteria []types.Criterion
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimSpace(listPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		criteria = append(criteria, types.Criterion{
			Index: len(criteria) + 1,
			Text:  line,
		})
	}
	return criteria
}
