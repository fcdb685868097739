package compare

import (
	"context"
	"log/slog"
	"time"

	"shelflift/internal/config"
	"shelflift/internal/llm"
	"shelflift/internal/types"
)

// Engine runs a full comparison: select the top-rated products, generate
// criteria, resolve a verdict per criterion, aggregate.
type Engine struct {
	criteria *CriteriaGenerator
	resolver *Resolver
	topN     int
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates a comparison engine from configuration.
func NewEngine(gen llm.Generator, cfg config.CompareConfig, logger *slog.Logger) *Engine {
	return &Engine{
		criteria: NewCriteriaGenerator(gen, cfg.CriteriaCount, logger),
		resolver: NewResolver(gen, logger),
		topN:     cfg.TopN,
		logger:   logger.With("component", "compare_engine"),
		now:      time.Now,
	}
}

// Run compares the top-rated products from the catalog and returns the
// assembled document. It fails only on selection (too few products) or
// criteria generation; individual verdict failures degrade per criterion
// instead of aborting the run.
func (e *Engine) Run(ctx context.Context, products []types.Product) (*types.ComparisonDocument, error) {
	top, err := SelectTop(products, e.topN)
	if err != nil {
		return nil, err
	}
	e.logger.Info("selected products for comparison", "count", len(top))

	criteria, err := e.criteria.Generate(ctx, top)
	if err != nil {
		return nil, err
	}

	verdicts := make([]types.Verdict, 0, len(criteria))
	for _, c := range criteria {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.logger.Info("resolving criterion", "index", c.Index, "text", c.Text)
		verdicts = append(verdicts, e.resolver.Resolve(ctx, c, top))
	}

	doc := Aggregate(top, criteria, verdicts, e.now())
	if doc.Degraded {
		e.logger.Warn("no verdicts resolved, comparison degraded", "winner_slot", doc.OverallWinnerSlot)
	} else {
		e.logger.Info("comparison complete", "winner_slot", doc.OverallWinnerSlot)
	}
	return doc, nil
}
