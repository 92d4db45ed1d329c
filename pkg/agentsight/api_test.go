package agentsight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsight/agentsight-go/pkg/logger"
	"github.com/agentsight/agentsight-go/pkg/model"
	"github.com/agentsight/agentsight-go/pkg/transport"
)

func newTestAPI(t *testing.T, endpoint string) *API {
	t.Helper()
	api, err := NewAPI(
		WithAPIKey(testAPIKey),
		WithEndpoint(endpoint),
		WithLogger(logger.Nop()),
	)
	require.NoError(t, err)
	return api
}

func TestFetchConversations(t *testing.T) {
	store, srv := newMockBackend(t)
	store.GetOrCreate("conv_1", map[string]any{"customer_id": "cust-a", "device": "mobile"})
	store.GetOrCreate("conv_2", map[string]any{"customer_id": "cust-b"})
	api := newTestAPI(t, srv.URL)

	resp, err := api.FetchConversations(context.Background(), model.FetchFilter{})
	require.NoError(t, err)
	assert.Equal(t, float64(2), resp["count"])

	resp, err = api.FetchConversations(context.Background(), model.FetchFilter{CustomerID: "cust-a"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), resp["count"])

	results := resp["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "conv_1", results[0].(map[string]any)["conversation_id"])
}

func TestFetchConversationsPagination(t *testing.T) {
	store, srv := newMockBackend(t)
	for i := 0; i < 5; i++ {
		store.GetOrCreate(string(rune('a'+i)), nil)
	}
	api := newTestAPI(t, srv.URL)

	resp, err := api.FetchConversations(context.Background(), model.FetchFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, float64(5), resp["count"])
	assert.Len(t, resp["results"].([]any), 2)
}

func TestFetchConversationByPK(t *testing.T) {
	store, srv := newMockBackend(t)
	conv := store.GetOrCreate("conv_1", nil)
	api := newTestAPI(t, srv.URL)

	resp, err := api.FetchConversation(context.Background(), conv.PK)
	require.NoError(t, err)
	assert.Equal(t, "conv_1", resp["conversation_id"])

	_, err = api.FetchConversation(context.Background(), 999)
	assert.ErrorIs(t, err, transport.ErrNotFound)
}

func TestFetchConversationByID(t *testing.T) {
	store, srv := newMockBackend(t)
	conv := store.GetOrCreate("conv_1", nil)
	api := newTestAPI(t, srv.URL)

	resp, err := api.FetchConversationByID(context.Background(), "conv_1")
	require.NoError(t, err)
	assert.Equal(t, float64(conv.PK), resp["id"])

	_, err = api.FetchConversationByID(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingConversationID)

	_, err = api.FetchConversationByID(context.Background(), "conv_missing")
	assert.ErrorIs(t, err, transport.ErrNotFound)
}

func TestFetchConversationAttachments(t *testing.T) {
	store, srv := newMockBackend(t)
	conv := store.GetOrCreate("conv_1", nil)
	store.AddRecord("conv_1", "attachments", "", map[string]any{"mode": "base64"})
	store.AddRecord("conv_1", "question", "", map[string]any{"content": "hi"})
	api := newTestAPI(t, srv.URL)

	resp, err := api.FetchConversationAttachments(context.Background(), conv.PK)
	require.NoError(t, err)
	assert.Equal(t, float64(1), resp["count"])
}
