package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAttemptSucceedsFirstTry(t *testing.T) {
	calls := 0
	result, ok := Attempt(context.Background(), 3, testLogger(), "test",
		func(context.Context) (string, error) {
			calls++
			return "hello", nil
		}, NonEmpty)

	require.True(t, ok)
	assert.Equal(t, "hello", result)
	assert.Equal(t, 1, calls)
}

func TestAttemptRetriesOnError(t *testing.T) {
	calls := 0
	result, ok := Attempt(context.Background(), 3, testLogger(), "test",
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("transient")
			}
			return "recovered", nil
		}, NonEmpty)

	require.True(t, ok)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 3, calls)
}

func TestAttemptRetriesOnInvalidResult(t *testing.T) {
	calls := 0
	_, ok := Attempt(context.Background(), 2, testLogger(), "test",
		func(context.Context) (string, error) {
			calls++
			return "", nil
		}, NonEmpty)

	assert.False(t, ok)
	assert.Equal(t, 2, calls)
}

func TestAttemptReturnsLastResultOnExhaustion(t *testing.T) {
	result, ok := Attempt(context.Background(), 2, testLogger(), "test",
		func(context.Context) (string, error) {
			return "partial", nil
		},
		func(string) bool { return false })

	assert.False(t, ok)
	// Callers can salvage the rejected result.
	assert.Equal(t, "partial", result)
}

func TestAttemptStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, ok := Attempt(ctx, 5, testLogger(), "test",
		func(context.Context) (string, error) {
			calls++
			cancel()
			return "", errors.New("failed")
		}, NonEmpty)

	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestAttemptClampsAttempts(t *testing.T) {
	calls := 0
	_, ok := Attempt(context.Background(), 0, testLogger(), "test",
		func(context.Context) (string, error) {
			calls++
			return "x", nil
		}, NonEmpty)

	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}
