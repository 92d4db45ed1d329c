package tokenhandler

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsight/agentsight-go/pkg/agentsight"
	"github.com/agentsight/agentsight-go/pkg/logger"
)

func newTracker(t *testing.T) *agentsight.Tracker {
	t.Helper()
	tracker, err := agentsight.NewTracker(
		agentsight.WithAPIKey("ags_0123456789abcdef0123456789abcdef_abc123"),
		agentsight.WithLogger(logger.Nop()),
	)
	require.NoError(t, err)
	return tracker
}

func TestFromOpenAI(t *testing.T) {
	tracker := newTracker(t)

	FromOpenAI(tracker, openai.Usage{
		PromptTokens:     120,
		CompletionTokens: 40,
		TotalTokens:      160,
	})

	usage, created := tracker.GetTokenUsage()
	require.True(t, created)
	assert.Equal(t, uint64(120), usage.PromptTokens)
	assert.Equal(t, uint64(40), usage.CompletionTokens)
	assert.Equal(t, uint64(160), usage.TotalTokens)
	assert.Zero(t, usage.EmbeddingTokens)
}

func TestFromOpenAIEmbedding(t *testing.T) {
	tracker := newTracker(t)

	FromOpenAIEmbedding(tracker, openai.Usage{
		PromptTokens: 30,
		TotalTokens:  30,
	})

	usage, created := tracker.GetTokenUsage()
	require.True(t, created)
	assert.Equal(t, uint64(30), usage.EmbeddingTokens)
	assert.Equal(t, uint64(30), usage.TotalTokens)
	assert.Zero(t, usage.PromptTokens)
}

func TestFromAnthropic(t *testing.T) {
	tracker := newTracker(t)

	FromAnthropic(tracker, anthropic.Usage{
		InputTokens:  200,
		OutputTokens: 75,
	})

	usage, created := tracker.GetTokenUsage()
	require.True(t, created)
	assert.Equal(t, uint64(200), usage.PromptTokens)
	assert.Equal(t, uint64(75), usage.CompletionTokens)
	assert.Equal(t, uint64(275), usage.TotalTokens)
}
