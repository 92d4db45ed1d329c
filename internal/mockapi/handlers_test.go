package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsight/agentsight-go/pkg/logger"
)

const testAPIKey = "ags_0123456789abcdef0123456789abcdef_abc123"

func newTestServer(t *testing.T) (*Store, *httptest.Server) {
	t.Helper()
	store := NewStore()
	srv := httptest.NewServer(NewRouter(store, logger.Nop(), RouterConfig{
		RateLimitRequests: 10000,
	}))
	t.Cleanup(srv.Close)
	return store, srv
}

func doJSON(t *testing.T, method, url string, body map[string]any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Api-Key "+testAPIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestAuthRequired(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/conversations/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/conversations/", nil)
	req.Header.Set("Authorization", "Api-Key wrong-shape")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthNeedsNoAuth(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateConversationGetOrCreate(t *testing.T) {
	_, srv := newTestServer(t)

	resp, first := doJSON(t, http.MethodPost, srv.URL+"/api/conversations/", map[string]any{
		"conversation_id": "conv_1",
		"environment":     "production",
		"is_used":         true,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, first["id"])

	// Repeating the call returns the same record.
	_, second := doJSON(t, http.MethodPost, srv.URL+"/api/conversations/", map[string]any{
		"conversation_id": "conv_1",
	})
	assert.Equal(t, first["id"], second["id"])
}

func TestTrackEndpoints(t *testing.T) {
	store, srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/track/", map[string]any{
		"conversation_id": "conv_1",
		"content":         "hello",
		"sender":          "end_user",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/track/", map[string]any{
		"conversation_id": "conv_1",
		"content":         "hi back",
		"sender":          "agent",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/action_logs/", map[string]any{
		"conversation_id": "conv_1",
		"action_name":     "search",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/buttons/", map[string]any{
		"conversation_id": "conv_1",
		"button_event":    "click",
		"label":           "Yes",
		"value":           "yes",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	conv, err := store.Lookup("conv_1")
	require.NoError(t, err)
	assert.Len(t, store.Records(conv.PK, "question"), 1)
	assert.Len(t, store.Records(conv.PK, "answer"), 1)
	assert.Len(t, store.Records(conv.PK, ""), 4)
}

func TestTrackValidation(t *testing.T) {
	_, srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/track/", map[string]any{
		"conversation_id": "conv_1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["detail"], "content")

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/buttons/", map[string]any{
		"conversation_id": "conv_1",
		"button_event":    "click",
		"label":           "Yes",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMultipartAttachments(t *testing.T) {
	store, srv := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("conversation", "conv_1"))
	require.NoError(t, w.WriteField("mode", "form_data"))
	require.NoError(t, w.WriteField("sender", "end_user"))
	part, err := w.CreateFormFile("attachment_0", "doc.txt")
	require.NoError(t, err)
	part.Write([]byte("file contents"))
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/attachments/", &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Api-Key "+testAPIKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	conv, err := store.Lookup("conv_1")
	require.NoError(t, err)
	records := store.Records(conv.PK, "attachments")
	require.Len(t, records, 1)
}

func TestConversationLifecycle(t *testing.T) {
	store, srv := newTestServer(t)
	conv := store.GetOrCreate("conv_1", nil)
	base := srv.URL + "/api/conversations/"
	pkPath := base + strconv.Itoa(conv.PK)

	resp, body := doJSON(t, http.MethodPatch, pkPath+"/rename/", map[string]any{"name": "Support chat"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Support chat", body["name"])

	resp, body = doJSON(t, http.MethodPatch, pkPath+"/mark/", map[string]any{"is_marked": true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_marked"])

	resp, body = doJSON(t, http.MethodGet, base+"lookup/?conversation_id=conv_1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(conv.PK), body["id"])

	resp, _ = doJSON(t, http.MethodDelete, pkPath+"/delete/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Deleted conversations disappear from lookups and listings.
	resp, _ = doJSON(t, http.MethodGet, base+"lookup/?conversation_id=conv_1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])

	resp, body = doJSON(t, http.MethodGet, base+"?include_deleted=true", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])
}

func TestFeedbackEndpoint(t *testing.T) {
	store, srv := newTestServer(t)
	store.GetOrCreate("conv_1", nil)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/conversation-feedbacks/", map[string]any{
		"conversation_id": "conv_1",
		"sentiment":       "negative",
		"comment":         "did not help",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "negative", body["sentiment"])

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/conversation-feedbacks/", map[string]any{
		"conversation_id": "conv_1",
		"sentiment":       "ecstatic",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/conversation-feedbacks/", map[string]any{
		"conversation_id": "conv_missing",
		"sentiment":       "positive",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

