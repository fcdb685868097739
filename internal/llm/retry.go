package llm

import (
	"context"
	"log/slog"
)

// Attempt runs fn until valid accepts its result or attempts are exhausted.
// attempts counts total invocations, so retries = attempts - 1. The second
// return reports whether a valid result was obtained; on failure the last
// result (possibly the zero value) is returned so callers can salvage it.
//
// Every generation call site goes through this combinator so that retry and
// degradation semantics stay uniform.
func Attempt[T any](ctx context.Context, attempts int, logger *slog.Logger, op string,
	fn func(context.Context) (T, error), valid func(T) bool) (T, bool) {

	var last T
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			logger.Warn("generation attempt aborted", "op", op, "error", err)
			return last, false
		}
		if i > 0 {
			logger.Warn("retrying generation", "op", op, "attempt", i+1)
		}

		result, err := fn(ctx)
		if err != nil {
			logger.Warn("generation attempt failed", "op", op, "attempt", i+1, "error", err)
			continue
		}
		last = result
		if valid(result) {
			return result, true
		}
		logger.Warn("generation result rejected", "op", op, "attempt", i+1)
	}

	return last, false
}

// NonEmpty is the validity check for plain-text generations.
func NonEmpty(s string) bool { return s != "" }
