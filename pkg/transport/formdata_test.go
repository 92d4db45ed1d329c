package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsight/agentsight-go/pkg/model"
)

func TestSendFormDataPayload(t *testing.T) {
	type part struct {
		filename string
		mimeType string
		content  string
	}
	var (
		gotFields map[string]string
		gotParts  map[string]part
	)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))

		gotFields = map[string]string{}
		for name := range r.MultipartForm.Value {
			gotFields[name] = r.FormValue(name)
		}
		gotParts = map[string]part{}
		for name, headers := range r.MultipartForm.File {
			hdr := headers[0]
			f, err := hdr.Open()
			require.NoError(t, err)
			content, err := io.ReadAll(f)
			require.NoError(t, err)
			f.Close()
			gotParts[name] = part{
				filename: hdr.Filename,
				mimeType: hdr.Header.Get("Content-Type"),
				content:  string(content),
			}
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": "att-1"})
	}))

	resp, err := client.SendFormDataPayload(context.Background(),
		[]model.Attachment{
			{Filename: "notes.txt", MimeType: "text/plain", Raw: []byte("note body")},
			{Raw: []byte("anonymous text")},
		},
		"conv_1", model.SenderUser,
		map[string]any{"channel": "web"},
	)
	require.NoError(t, err)
	assert.Equal(t, "att-1", resp["id"])

	assert.Equal(t, "conv_1", gotFields["conversation"])
	assert.Equal(t, "end_user", gotFields["sender"])
	assert.Equal(t, "form_data", gotFields["mode"])
	assert.NotEmpty(t, gotFields["timestamp"])
	assert.JSONEq(t, `{"channel":"web"}`, gotFields["metadata"])

	require.Len(t, gotParts, 2)
	first := gotParts["attachment_0"]
	assert.Equal(t, "notes.txt", first.filename)
	assert.Equal(t, "text/plain", first.mimeType)
	assert.Equal(t, "note body", first.content)

	// Missing filename and mime type are derived from the content.
	second := gotParts["attachment_1"]
	assert.Equal(t, "text_1.txt", second.filename)
	assert.Equal(t, "text/plain", second.mimeType)
	assert.Equal(t, "anonymous text", second.content)
}

func TestSendFormDataPayloadDefaultSender(t *testing.T) {
	var gotSender string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotSender = r.FormValue("sender")
		w.WriteHeader(http.StatusOK)
	}))

	_, err := client.SendFormDataPayload(context.Background(),
		[]model.Attachment{{Raw: []byte("x")}}, "conv_1", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "end_user", gotSender)
}
