// Package model defines data structures shared by the AgentSight SDK.
package model

// Kind is the tag distinguishing buffered item types.
type Kind string

const (
	KindConversation Kind = "conversation"
	KindQuestion     Kind = "question"
	KindAnswer       Kind = "answer"
	KindAttachments  Kind = "attachments"
	KindAction       Kind = "action"
	KindButton       Kind = "button"
)

// Kinds lists every buffered item kind.
func Kinds() []Kind {
	return []Kind{
		KindConversation,
		KindQuestion,
		KindAnswer,
		KindAttachments,
		KindAction,
		KindButton,
	}
}

// Sender identifies who produced a message or attachment.
type Sender string

const (
	SenderUser  Sender = "end_user"
	SenderAgent Sender = "agent"
)

// AttachmentMode selects how attachments are transmitted.
type AttachmentMode string

const (
	// AttachmentModeBase64 sends attachments inline as a JSON payload.
	AttachmentModeBase64 AttachmentMode = "base64"
	// AttachmentModeFormData sends attachments as a multipart form request.
	AttachmentModeFormData AttachmentMode = "form_data"
)

// Environment selects where tracked data is stored server-side.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

// TrackedItem is one buffered event in a conversation's append-only log.
// Items are immutable once appended; ordering is significant.
type TrackedItem struct {
	Kind      Kind           `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Clone returns a deep copy of the item.
func (it TrackedItem) Clone() TrackedItem {
	return TrackedItem{
		Kind:      it.Kind,
		Timestamp: it.Timestamp,
		Data:      cloneMap(it.Data),
	}
}

// CloneItems deep-copies a tracked item sequence.
func CloneItems(items []TrackedItem) []TrackedItem {
	out := make([]TrackedItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []Attachment:
		out := make([]Attachment, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// Attachment is a single file supplied to TrackAttachments.
//
// In base64 mode Data must hold a base64-encoded string and Filename and
// MimeType are required. In form_data mode Raw holds the binary content and
// Filename/MimeType are derived when absent.
type Attachment struct {
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data,omitempty"`
	Raw      []byte `json:"-"`
}
