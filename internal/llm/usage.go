package llm

import (
	"sync"

	"github.com/jurasovic-andreja/ceps-analyzer/internal/model"
)

// UsageTracker accumulates generative API usage across concurrent
// calls. One tracker lives on the client for the duration of a run;
// every agent's calls land in the same counters.
//
// Design decision: A plain mutex rather than atomics because the three
// counters must move together. A snapshot taken mid-run has to be
// internally consistent (total equals prompt plus completion).
type UsageTracker struct {
	mu               sync.Mutex
	calls            int
	promptTokens     int
	completionTokens int
}

// NewUsageTracker returns a tracker with all counters at zero.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Record adds one call's token counts and returns the call ordinal,
// starting at 1. Counters only ever increase.
func (t *UsageTracker) Record(promptTokens, completionTokens int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls++
	t.promptTokens += promptTokens
	t.completionTokens += completionTokens
	return t.calls
}

// Snapshot returns a consistent copy of the counters.
func (t *UsageTracker) Snapshot() model.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	return model.Usage{
		Calls:            t.calls,
		PromptTokens:     t.promptTokens,
		CompletionTokens: t.completionTokens,
		TotalTokens:      t.promptTokens + t.completionTokens,
	}
}
