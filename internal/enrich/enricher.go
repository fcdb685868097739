package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shelflift/internal/config"
	"shelflift/internal/llm"
	"shelflift/internal/types"
)

// Fallback literals substituted after retries are exhausted. Generation
// failures degrade to these; they never abort a batch.
const (
	FallbackSummary   = "Product summary unavailable."
	FallbackTagline   = "Product tagline unavailable."
	FallbackHighlight = "Product highlights unavailable."
)

const (
	summarySystem = "You are an experienced marketing specialist. Your task is to maximize sales for the product."
	taglineSystem = "You are a marketing copywriter who creates catchy taglines and compelling product highlights."
)

// Enricher generates marketing copy (summary, tagline, highlights) for
// scraped products. It is a pure transform over product records; the only
// side effect is invoking the generation capability.
type Enricher struct {
	gen        llm.Generator
	maxRetries int
	logger     *slog.Logger
}

// New creates an Enricher.
func New(gen llm.Generator, cfg config.EnrichConfig, logger *slog.Logger) *Enricher {
	return &Enricher{
		gen:        gen,
		maxRetries: cfg.MaxRetries,
		logger:     logger.With("component", "enricher"),
	}
}

// Enrich returns a copy of the product with summary, tagline and highlights
// populated. Products that already carry all three are returned unchanged
// (idempotence guard; stale copy is never refreshed here). Enrich never
// fails: exhausted retries degrade to fixed fallback text.
func (e *Enricher) Enrich(ctx context.Context, p types.Product) types.Product {
	if p.IsEnriched() {
		e.logger.Info("product already enriched, skipping", "id", p.ID)
		return p
	}

	description := orPlaceholder(p.Description, "No description provided.")
	features := formatFeatures(p.Features)

	e.logger.Info("generating summary", "id", p.ID)
	summary, ok := llm.Attempt(ctx, e.maxRetries+1, e.logger, "summary",
		func(ctx context.Context) (string, error) {
			return e.gen.Generate(ctx, summaryPrompt(description, features), summarySystem)
		},
		validSummary,
	)
	if !ok {
		e.logger.Error("summary generation degraded to fallback", "id", p.ID, "retries", e.maxRetries)
		summary = FallbackSummary
	}
	p.Summary = summary

	e.logger.Info("generating tagline and highlights", "id", p.ID)
	result, ok := llm.Attempt(ctx, e.maxRetries+1, e.logger, "tagline_highlights",
		func(ctx context.Context) (TaglineResult, error) {
			return e.generateTaglineHighlights(ctx, description, features, p.Title)
		},
		TaglineResult.Complete,
	)
	if !ok {
		// Keep whatever was recovered; substitute fallbacks per field.
		if result.Tagline == "" {
			e.logger.Error("tagline generation degraded to fallback", "id", p.ID, "retries", e.maxRetries)
			result.Tagline = FallbackTagline
		}
		if len(result.Highlights) == 0 {
			e.logger.Error("highlights generation degraded to fallback", "id", p.ID, "retries", e.maxRetries)
			result.Highlights = []string{FallbackHighlight}
		}
	}
	p.Tagline = result.Tagline
	p.Highlights = result.Highlights

	e.logger.Debug("enrichment complete",
		"id", p.ID,
		"summary_len", len(p.Summary),
		"tagline_len", len(p.Tagline),
		"highlights", len(p.Highlights),
	)
	return p
}

func (e *Enricher) generateTaglineHighlights(ctx context.Context, description, features, title string) (TaglineResult, error) {
	response, err := e.gen.Generate(ctx, taglinePrompt(description, features, title), taglineSystem)
	if err != nil {
		return TaglineResult{}, err
	}
	result := ParseTaglineHighlights(response)
	if result.Tagline == "" && len(result.Highlights) == 0 && strings.TrimSpace(response) != "" {
		result = SalvageTaglineHighlights(response)
	}
	return result, nil
}

func summaryPrompt(description, features string) string {
	return fmt.Sprintf(
		"Please generate a concise 2-3 sentence summary to use on a marketing website, based on the following information.\n"+
			"Product description: %s\n"+
			"Key features:\n%s",
		description, features,
	)
}

func taglinePrompt(description, features, title string) string {
	if title == "" {
		title = "the product"
	}
	return fmt.Sprintf(
		"Based on the following product, generate:\n"+
			"1. A catchy, concise tagline (no more than 10 words) that incorporates the product title %q.\n"+
			"2. A bulleted list of highlights covering the most compelling features and advantages.\n"+
			"Product description: %s\n"+
			"Key features:\n%s\n\n"+
			"IMPORTANT: Format your response with:\n"+
			"Tagline: followed by the tagline\n"+
			"Highlights: a bulleted list using '-' at the start of each bullet point.",
		title, description, features,
	)
}

// validSummary rejects empty output and responses that are error text
// masquerading as content.
func validSummary(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !strings.HasPrefix(strings.ToLower(s), "error")
}
