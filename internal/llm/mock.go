package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockGenerator produces canned responses shaped like real model output. It
// backs the --use-mock flag so the pipeline can run end to end without an
// API key, and keeps output deterministic for a given instance.
type MockGenerator struct {
	mu       sync.Mutex
	verdicts int
}

// NewMockGenerator creates a mock text-generation capability.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate routes on recognizable prompt fragments and returns a plausible
// response for that call site.
func (m *MockGenerator) Generate(_ context.Context, prompt, _ string) (string, error) {
	lower := strings.ToLower(prompt)

	switch {
	case strings.Contains(lower, "comparison criteria"):
		return strings.Join([]string{
			"Which product offers the best overall performance for its price?",
			"Which product has the most useful set of features?",
			"Which product is best suited for everyday portability?",
			"Which product offers the best display and build quality?",
			"Which product represents the best long-term value?",
		}, "\n"), nil

	case strings.Contains(lower, "tagline"):
		return "Tagline: Power that keeps up with you.\n" +
			"Highlights:\n" +
			"- Fast performance for work and play\n" +
			"- All-day battery life\n" +
			"- Lightweight design that travels well", nil

	case strings.Contains(lower, "which of the products"):
		m.mu.Lock()
		slot := m.verdicts%3 + 1
		m.verdicts++
		m.mu.Unlock()
		return fmt.Sprintf("Product %d is the winner here. It combines the strongest "+
			"specifications with the best value, and its feature set addresses this "+
			"criterion more directly than the alternatives.", slot), nil

	default:
		return "A dependable pick that balances performance, battery life and " +
			"price. Its feature set covers everyday needs without compromise, " +
			"making it an easy recommendation.", nil
	}
}

// ScriptedGenerator replays a fixed sequence of responses. Primarily for
// tests that need exact control over model output; a response of "" paired
// with a non-nil Err simulates a transport failure.
type ScriptedGenerator struct {
	mu        sync.Mutex
	Responses []string
	Errs      []error
	calls     int
}

// Generate returns the next scripted response. Once the script is exhausted
// the last response repeats.
func (s *ScriptedGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	s.calls++

	if i < len(s.Errs) && s.Errs[i] != nil {
		return "", s.Errs[i]
	}
	if len(s.Responses) == 0 {
		return "", nil
	}
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	return s.Responses[i], nil
}

// Calls reports how many times Generate has been invoked.
func (s *ScriptedGenerator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
