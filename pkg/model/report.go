package model

// Summary holds per-kind delivery counts for one flush.
type Summary struct {
	Questions   int `json:"questions"`
	Answers     int `json:"answers"`
	Attachments int `json:"attachments"`
	Actions     int `json:"actions"`
	Buttons     int `json:"buttons"`
	Errors      int `json:"errors"`
}

// ItemResult is the delivery outcome of one buffered item.
type ItemResult struct {
	Index     int            `json:"index"`
	Kind      Kind           `json:"type"`
	Timestamp string         `json:"timestamp"`
	Success   bool           `json:"success"`
	Response  map[string]any `json:"response,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// FlushReport is returned by SendTrackedData. Items preserve the original
// append order; a caller must inspect Summary.Errors to detect partial
// failure since the flush call itself does not fail on per-item errors.
type FlushReport struct {
	Items   []ItemResult `json:"items"`
	Summary Summary      `json:"summary"`
}

// ItemPreview is a read-only view of one buffered item, attached by
// GetTrackedDataSummary for debugging and introspection.
type ItemPreview struct {
	Kind      Kind           `json:"type"`
	Timestamp string         `json:"timestamp"`
	Preview   map[string]any `json:"preview"`
	Data      map[string]any `json:"data"`
}

// BufferSummary is the non-draining snapshot of a conversation's buffer.
type BufferSummary struct {
	ConversationID string        `json:"conversation_id"`
	Items          []ItemPreview `json:"items"`
	Total          int           `json:"total"`
}
