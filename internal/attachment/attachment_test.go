package attachment

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentsight/agentsight-go/pkg/model"
)

func validBase64Attachment() model.Attachment {
	return model.Attachment{
		Filename: "report.txt",
		MimeType: "text/plain",
		Data:     base64.StdEncoding.EncodeToString([]byte("hello world")),
	}
}

func TestProcessBase64(t *testing.T) {
	processed, err := Process([]model.Attachment{validBase64Attachment()}, model.AttachmentModeBase64)
	require.NoError(t, err)
	require.Len(t, processed, 1)
	assert.Equal(t, "report.txt", processed[0].Filename)
	assert.Empty(t, processed[0].Raw)
}

func TestProcessBase64Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Attachment)
		want   string
	}{
		{"missing filename", func(a *model.Attachment) { a.Filename = "" }, "filename"},
		{"missing mime type", func(a *model.Attachment) { a.MimeType = "" }, "mime_type"},
		{"missing data", func(a *model.Attachment) { a.Data = "" }, "data"},
		{"bad base64", func(a *model.Attachment) { a.Data = "not-base64!!" }, "base64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := validBase64Attachment()
			tt.mutate(&att)
			_, err := Process([]model.Attachment{att}, model.AttachmentModeBase64)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProcessFormData(t *testing.T) {
	processed, err := Process([]model.Attachment{
		{Raw: []byte{0x89, 0x50, 0x4e, 0x47}},
	}, model.AttachmentModeFormData)
	require.NoError(t, err)
	require.Len(t, processed, 1)

	_, err = Process([]model.Attachment{{Filename: "empty.bin"}}, model.AttachmentModeFormData)
	assert.Error(t, err)
}

func TestProcessEmptyList(t *testing.T) {
	_, err := Process(nil, model.AttachmentModeBase64)
	assert.Error(t, err)
}

func TestDetectMimeType(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	assert.Equal(t, "image/png", DetectMimeType(png))
	assert.Equal(t, "text/plain", DetectMimeType([]byte("just some text")))
}

func TestFilenameForMimeType(t *testing.T) {
	assert.Equal(t, "image_0.jpg", FilenameForMimeType("image/jpeg", 0))
	assert.Equal(t, "text_2.txt", FilenameForMimeType("text/plain", 2))
	assert.Equal(t, "attachment_1.bin", FilenameForMimeType("invalid", 1))
}

func TestResolveFillsMissingFields(t *testing.T) {
	att := Resolve(model.Attachment{Raw: []byte("plain text body")}, 0)
	assert.Equal(t, "text/plain", att.MimeType)
	assert.Equal(t, "text_0.txt", att.Filename)

	keep := Resolve(model.Attachment{
		Filename: "keep.csv",
		MimeType: "text/csv",
		Raw:      []byte("a,b"),
	}, 1)
	assert.Equal(t, "keep.csv", keep.Filename)
	assert.Equal(t, "text/csv", keep.MimeType)
}
