// Package attachment validates and shapes attachment payloads before they
// are buffered for sending.
package attachment

import (
	"encoding/base64"
	"fmt"

	"github.com/agentsight/agentsight-go/pkg/model"
)

// Process validates attachments for the given mode and returns the shaped
// wire form. In base64 mode every attachment needs a filename, a mime type
// and a valid base64 string. In form_data mode only binary content is
// required; filename and mime type are filled in at send time when absent.
func Process(attachments []model.Attachment, mode model.AttachmentMode) ([]model.Attachment, error) {
	if len(attachments) == 0 {
		return nil, fmt.Errorf("attachments list cannot be empty")
	}

	processed := make([]model.Attachment, 0, len(attachments))
	for i, att := range attachments {
		switch mode {
		case model.AttachmentModeBase64:
			if att.Filename == "" {
				return nil, fmt.Errorf("attachment %d has invalid or empty filename", i+1)
			}
			if att.MimeType == "" {
				return nil, fmt.Errorf("attachment %d has invalid or empty mime_type", i+1)
			}
			if att.Data == "" {
				return nil, fmt.Errorf("attachment %d missing required key: data", i+1)
			}
			if _, err := base64.StdEncoding.DecodeString(att.Data); err != nil {
				return nil, fmt.Errorf("attachment %d %q has invalid base64 data", i+1, att.Filename)
			}
			processed = append(processed, model.Attachment{
				Filename: att.Filename,
				MimeType: att.MimeType,
				Data:     att.Data,
			})

		case model.AttachmentModeFormData:
			if len(att.Raw) == 0 {
				return nil, fmt.Errorf("attachment %d missing required key: data", i+1)
			}
			processed = append(processed, model.Attachment{
				Filename: att.Filename,
				MimeType: att.MimeType,
				Raw:      att.Raw,
			})

		default:
			return nil, fmt.Errorf("invalid mode: %s", mode)
		}
	}
	return processed, nil
}

// Resolve fills in a missing mime type and filename for a form_data
// attachment. The index keeps generated filenames unique within a batch.
func Resolve(att model.Attachment, index int) model.Attachment {
	if att.MimeType == "" {
		att.MimeType = DetectMimeType(att.Raw)
	}
	if att.Filename == "" {
		att.Filename = FilenameForMimeType(att.MimeType, index)
	}
	return att
}
