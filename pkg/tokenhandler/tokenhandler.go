// Package tokenhandler feeds token usage from LLM client responses into a
// conversation tracker.
package tokenhandler

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"

	"github.com/agentsight/agentsight-go/pkg/agentsight"
)

// FromOpenAI records the usage block of an OpenAI chat completion
// response.
func FromOpenAI(t *agentsight.Tracker, usage openai.Usage) {
	t.TrackTokenUsage(
		uint64(usage.PromptTokens),
		uint64(usage.CompletionTokens),
		uint64(usage.TotalTokens),
		0,
	)
}

// FromOpenAIEmbedding records the usage block of an OpenAI embedding
// response. Embedding calls report prompt tokens only; those count toward
// the embedding counter.
func FromOpenAIEmbedding(t *agentsight.Tracker, usage openai.Usage) {
	t.TrackTokenUsage(0, 0, uint64(usage.TotalTokens), uint64(usage.PromptTokens))
}

// FromAnthropic records the usage block of an Anthropic message response.
// The total is derived since the API does not report one.
func FromAnthropic(t *agentsight.Tracker, usage anthropic.Usage) {
	in := uint64(usage.InputTokens)
	out := uint64(usage.OutputTokens)
	t.TrackTokenUsage(in, out, in+out, 0)
}
