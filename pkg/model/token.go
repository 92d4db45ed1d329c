package model

// TokenUsage holds cumulative token counters for one tracker instance.
// Counters accumulate for the lifetime of the tracker; they are not reset
// when tracked data is flushed.
type TokenUsage struct {
	PromptTokens     uint64 `json:"prompt_tokens"`
	CompletionTokens uint64 `json:"completion_tokens"`
	TotalTokens      uint64 `json:"total_tokens"`
	EmbeddingTokens  uint64 `json:"embedding_tokens"`
}

// Map returns the wire representation used in the token_usage action item.
func (u TokenUsage) Map() map[string]any {
	return map[string]any{
		"prompt_tokens":     u.PromptTokens,
		"completion_tokens": u.CompletionTokens,
		"total_tokens":      u.TotalTokens,
		"embedding_tokens":  u.EmbeddingTokens,
	}
}
