package agentsight

import (
	"sync"

	"github.com/agentsight/agentsight-go/pkg/model"
)

// tokenAccumulator holds the cumulative token counters for one tracker.
// It distinguishes "never used" from "all zero" via the created flag.
// Counters survive flushes: reset exists but is not called from the flush
// path, matching the accumulate-for-tracker-lifetime behavior callers rely
// on when summing usage across turns.
type tokenAccumulator struct {
	mu      sync.Mutex
	created bool
	usage   model.TokenUsage
}

func (a *tokenAccumulator) add(prompt, completion, total, embedding uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.created = true
	a.usage.PromptTokens += prompt
	a.usage.CompletionTokens += completion
	a.usage.TotalTokens += total
	a.usage.EmbeddingTokens += embedding
}

func (a *tokenAccumulator) snapshot() (model.TokenUsage, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usage, a.created
}

func (a *tokenAccumulator) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage = model.TokenUsage{}
}
