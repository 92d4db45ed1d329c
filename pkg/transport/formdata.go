package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"go.uber.org/zap"

	"github.com/agentsight/agentsight-go/internal/attachment"
	"github.com/agentsight/agentsight-go/pkg/model"
)

// SendFormDataPayload sends binary attachments as a multipart form request.
// Missing filenames and mime types are derived from the attachment content.
func (c *Client) SendFormDataPayload(
	ctx context.Context,
	attachments []model.Attachment,
	conversationID string,
	sender model.Sender,
	metadata map[string]any,
) (map[string]any, error) {
	if sender == "" {
		sender = model.SenderUser
	}

	encodedMetadata, err := json.Marshal(FormatMetadata(metadata))
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	c.logger.Debug("sending attachments form-data payload",
		zap.Int("attachments", len(attachments)))

	// The body is rebuilt per attempt: a consumed multipart reader cannot
	// be replayed.
	buildBody := func() (*bytes.Buffer, string, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)

		fields := map[string]string{
			"timestamp":    isoTimestamp(),
			"conversation": conversationID,
			"sender":       string(sender),
			"mode":         string(model.AttachmentModeFormData),
			"metadata":     string(encodedMetadata),
		}
		for name, value := range fields {
			if err := w.WriteField(name, value); err != nil {
				return nil, "", err
			}
		}

		for i, att := range attachments {
			att = attachment.Resolve(att, i)
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachment_%d"; filename=%q`, i, att.Filename))
			header.Set("Content-Type", att.MimeType)
			part, err := w.CreatePart(header)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(att.Raw); err != nil {
				return nil, "", err
			}
		}

		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return &buf, w.FormDataContentType(), nil
	}

	return c.doWithRetries(ctx, "attachments", c.cfg.Timeout*3, func(reqCtx context.Context) (*http.Request, error) {
		body, contentType, err := buildBody()
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.Endpoint+endpointPath("attachments"), body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
}
