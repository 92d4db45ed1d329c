package agentsight

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsight/agentsight-go/internal/mockapi"
	"github.com/agentsight/agentsight-go/pkg/logger"
	"github.com/agentsight/agentsight-go/pkg/model"
	"github.com/agentsight/agentsight-go/pkg/transport"
)

func newMockBackend(t *testing.T) (*mockapi.Store, *httptest.Server) {
	t.Helper()
	store := mockapi.NewStore()
	srv := httptest.NewServer(mockapi.NewRouter(store, logger.Nop(), mockapi.RouterConfig{
		RateLimitRequests: 10000,
	}))
	t.Cleanup(srv.Close)
	return store, srv
}

func newTestManager(t *testing.T, endpoint string) *ConversationManager {
	t.Helper()
	mgr, err := NewConversationManager(
		WithAPIKey(testAPIKey),
		WithEndpoint(endpoint),
		WithLogger(logger.Nop()),
	)
	require.NoError(t, err)
	return mgr
}

func TestSubmitFeedback(t *testing.T) {
	store, srv := newMockBackend(t)
	store.GetOrCreate("conv_1", nil)
	mgr := newTestManager(t, srv.URL)

	resp, err := mgr.SubmitFeedback(context.Background(), "conv_1", model.SentimentPositive, "great answer", "widget")
	require.NoError(t, err)
	assert.Equal(t, "positive", resp["sentiment"])
	assert.Equal(t, "great answer", resp["comment"])
}

func TestSubmitFeedbackValidation(t *testing.T) {
	_, srv := newMockBackend(t)
	mgr := newTestManager(t, srv.URL)
	ctx := context.Background()

	_, err := mgr.SubmitFeedback(ctx, "", model.SentimentPositive, "", "")
	assert.ErrorIs(t, err, ErrMissingConversationID)

	_, err = mgr.SubmitFeedback(ctx, "conv_1", "ecstatic", "", "")
	assert.ErrorIs(t, err, ErrInvalidConversationData)

	_, err = mgr.SubmitFeedback(ctx, "conv_1", model.SentimentNegative, strings.Repeat("x", 5001), "")
	assert.ErrorIs(t, err, ErrInvalidConversationData)
}

func TestRenameConversation(t *testing.T) {
	store, srv := newMockBackend(t)
	store.GetOrCreate("conv_1", nil)
	mgr := newTestManager(t, srv.URL)

	resp, err := mgr.RenameConversation(context.Background(), "conv_1", "Billing question")
	require.NoError(t, err)
	assert.Equal(t, "Billing question", resp["name"])

	_, err = mgr.RenameConversation(context.Background(), "conv_1", "")
	assert.ErrorIs(t, err, ErrInvalidConversationData)

	_, err = mgr.RenameConversation(context.Background(), "conv_1", strings.Repeat("x", 256))
	assert.ErrorIs(t, err, ErrInvalidConversationData)
}

func TestMarkAndUnmarkConversation(t *testing.T) {
	store, srv := newMockBackend(t)
	store.GetOrCreate("conv_1", nil)
	mgr := newTestManager(t, srv.URL)

	resp, err := mgr.MarkConversation(context.Background(), "conv_1", true)
	require.NoError(t, err)
	assert.Equal(t, true, resp["is_marked"])

	resp, err = mgr.MarkConversation(context.Background(), "conv_1", false)
	require.NoError(t, err)
	assert.Equal(t, false, resp["is_marked"])
}

func TestDeleteConversationIsSoft(t *testing.T) {
	store, srv := newMockBackend(t)
	store.GetOrCreate("conv_1", nil)
	mgr := newTestManager(t, srv.URL)

	resp, err := mgr.DeleteConversation(context.Background(), "conv_1")
	require.NoError(t, err)
	assert.Equal(t, true, resp["deleted"])

	// A deleted conversation no longer resolves.
	_, err = mgr.MarkConversation(context.Background(), "conv_1", true)
	assert.ErrorIs(t, err, transport.ErrNotFound)
}

func TestUpdateConversation(t *testing.T) {
	store, srv := newMockBackend(t)
	store.GetOrCreate("conv_1", nil)
	mgr := newTestManager(t, srv.URL)

	name := "Renamed"
	device := "desktop"
	resp, err := mgr.UpdateConversation(context.Background(), "conv_1", model.ConversationUpdate{
		Name:   &name,
		Device: &device,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp["name"])
	assert.Equal(t, "desktop", resp["device"])

	_, err = mgr.UpdateConversation(context.Background(), "conv_1", model.ConversationUpdate{})
	assert.ErrorIs(t, err, ErrInvalidConversationData)
}

func TestManagerUnknownConversation(t *testing.T) {
	_, srv := newMockBackend(t)
	mgr := newTestManager(t, srv.URL)

	_, err := mgr.RenameConversation(context.Background(), "conv_missing", "name")
	assert.ErrorIs(t, err, transport.ErrNotFound)
}
