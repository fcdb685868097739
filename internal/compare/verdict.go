package compare

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shelflift/internal/llm"
	"shelflift/internal/types"
)

const verdictSystem = "You are a product analyst who gives direct, well-reasoned verdicts when comparing consumer products."

// Resolver asks the model which product in the selected triple best
// satisfies a single criterion.
type Resolver struct {
	gen    llm.Generator
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(gen llm.Generator, logger *slog.Logger) *Resolver {
	return &Resolver{
		gen:    gen,
		logger: logger.With("component", "criterion_resolver"),
	}
}

// Resolve produces the verdict for one criterion. Resolution failures never
// abort the run: a generation error or a response with no recognizable
// winner phrase yields an unresolved verdict (nil slot) that is recorded for
// display but excluded from the aggregation tally. Calls are independent per
// criterion and safe to issue concurrently.
func (r *Resolver) Resolve(ctx context.Context, criterion types.Criterion, products []types.Product) types.Verdict {
	verdict := types.Verdict{CriterionIndex: criterion.Index}

	response, err := r.gen.Generate(ctx, r.prompt(criterion, products), verdictSystem)
	if err != nil {
		r.logger.Warn("verdict generation failed", "criterion", criterion.Index, "error", err)
		return verdict
	}

	slot, rationale := ParseVerdict(response, len(products))
	if slot == 0 {
		r.logger.Warn("no winner phrase in verdict response", "criterion", criterion.Index)
		verdict.Rationale = strings.TrimSpace(response)
		return verdict
	}

	verdict.WinnerSlot = &slot
	verdict.Rationale = rationale
	return verdict
}

func (r *Resolver) prompt(criterion types.Criterion, products []types.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Criterion: %s\n\n", criterion.Text)
	for i, p := range products {
		fmt.Fprintf(&b, "Product %d: %s\n", i+1, p.Title)
		if p.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", p.Description)
		}
		for _, f := range p.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b,
		"Which of the products above best satisfies this criterion? "+
			"Start your answer by naming the winner as \"Product 1\", \"Product 2\" or \"Product 3\", "+
			"then give a 2-3 sentence rationale.",
	)
	return b.String()
}

// ParseVerdict finds the winning slot by the earliest case-insensitive
// occurrence of "Product 1".."Product N" in the response. It returns 0 when
// no such phrase appears. The rationale is the response with the sentence
// containing the winner declaration removed, or the full response when that
// extraction would be ambiguous.
//
// First occurrence is a deliberate preservation of existing behavior: a
// rationale that mentions a losing product before naming the winner will
// mis-parse.
func ParseVerdict(response string, slots int) (int, string) {
	lower := foldASCII(response)

	winner := 0
	first := -1
	for slot := 1; slot <= slots; slot++ {
		phrase := fmt.Sprintf("product %d", slot)
		if idx := strings.Index(lower, phrase); idx >= 0 && (first < 0 || idx < first) {
			first = idx
			winner = slot
		}
	}
	if winner == 0 {
		return 0, strings.TrimSpace(response)
	}

	return winner, stripDeclaration(response, first)
}

// stripDeclaration removes the sentence containing the winner phrase at
// byte offset idx. If removal would leave nothing, the full text stands.
func stripDeclaration(response string, idx int) string {
	start := strings.LastIndexAny(response[:idx], ".!?\n")
	end := strings.IndexAny(response[idx:], ".!?\n")
	if end < 0 {
		end = len(response)
	} else {
		end = idx + end + 1
	}

	before := strings.TrimSpace(response[:start+1])
	after := strings.TrimSpace(response[end:])

	rationale := strings.TrimSpace(before + " " + after)
	if rationale == "" {
		return strings.TrimSpace(response)
	}
	return rationale
}

// foldASCII lowercases ASCII letters only. Unlike strings.ToLower it never
// changes byte length, so indexes into the folded copy are valid in the
// original even when the response carries runes like U+212A whose Unicode
// lowercase form is a different size. The winner phrase itself is ASCII.
func foldASCII(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
