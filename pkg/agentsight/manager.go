package agentsight

import (
	"context"
	"fmt"
	"net/url"

	"github.com/agentsight/agentsight-go/pkg/model"
	"github.com/agentsight/agentsight-go/pkg/transport"
)

const (
	maxFeedbackCommentLen = 5000
	maxConversationName   = 255
)

// ConversationManager performs write operations on existing conversations:
// feedback, renaming, marking, soft deletion and partial updates.
type ConversationManager struct {
	client *transport.Client
}

// NewConversationManager creates a management client.
func NewConversationManager(opts ...Option) (*ConversationManager, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &ConversationManager{client: newTransport(o.cfg, o.logger)}, nil
}

// SubmitFeedback records end-user feedback for a conversation. Comment is
// optional and limited to 5000 characters.
func (m *ConversationManager) SubmitFeedback(ctx context.Context, conversationID string, sentiment model.Sentiment, comment, source string) (map[string]any, error) {
	if conversationID == "" {
		return nil, ErrMissingConversationID
	}
	if !sentiment.Valid() {
		return nil, fmt.Errorf("%w: invalid sentiment %q", ErrInvalidConversationData, sentiment)
	}
	if len(comment) > maxFeedbackCommentLen {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidConversationData, maxFeedbackCommentLen)
	}

	data := map[string]any{
		"conversation_id": conversationID,
		"sentiment":       string(sentiment),
	}
	if comment != "" {
		data["comment"] = comment
	}
	if source != "" {
		data["source"] = source
	}
	return m.client.Post(ctx, "/api/conversation-feedbacks/", data)
}

// RenameConversation sets a conversation's display name (at most 255
// characters).
func (m *ConversationManager) RenameConversation(ctx context.Context, conversationID, name string) (map[string]any, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidConversationData)
	}
	if len(name) > maxConversationName {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidConversationData, maxConversationName)
	}

	pk, err := m.resolveConversationPK(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return m.client.Patch(ctx, fmt.Sprintf("/api/conversations/%d/rename/", pk), map[string]any{
		"name": name,
	})
}

// MarkConversation flags or unflags a conversation.
func (m *ConversationManager) MarkConversation(ctx context.Context, conversationID string, marked bool) (map[string]any, error) {
	pk, err := m.resolveConversationPK(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return m.client.Patch(ctx, fmt.Sprintf("/api/conversations/%d/mark/", pk), map[string]any{
		"is_marked": marked,
	})
}

// DeleteConversation soft-deletes a conversation. The backend keeps the
// record and excludes it from listings unless include_deleted is requested.
func (m *ConversationManager) DeleteConversation(ctx context.Context, conversationID string) (map[string]any, error) {
	pk, err := m.resolveConversationPK(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return m.client.Delete(ctx, fmt.Sprintf("/api/conversations/%d/delete/", pk))
}

// UpdateConversation applies a partial update; nil fields in update are
// left untouched.
func (m *ConversationManager) UpdateConversation(ctx context.Context, conversationID string, update model.ConversationUpdate) (map[string]any, error) {
	data := map[string]any{}
	if update.Name != nil {
		data["name"] = *update.Name
	}
	if update.IsMarked != nil {
		data["is_marked"] = *update.IsMarked
	}
	if update.CustomerID != nil {
		data["customer_id"] = *update.CustomerID
	}
	if update.Device != nil {
		data["device"] = *update.Device
	}
	if update.Language != nil {
		data["language"] = *update.Language
	}
	if update.Metadata != nil {
		data["metadata"] = update.Metadata
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidConversationData)
	}

	pk, err := m.resolveConversationPK(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return m.client.Patch(ctx, fmt.Sprintf("/api/conversations/%d/update/", pk), data)
}

// resolveConversationPK maps a client-side conversation id to the backend's
// numeric primary key.
func (m *ConversationManager) resolveConversationPK(ctx context.Context, conversationID string) (int, error) {
	if conversationID == "" {
		return 0, ErrMissingConversationID
	}

	params := url.Values{}
	params.Set("conversation_id", conversationID)
	resp, err := m.client.Get(ctx, "/api/conversations/lookup/", params)
	if err != nil {
		return 0, err
	}

	switch id := resp["id"].(type) {
	case float64:
		return int(id), nil
	case int:
		return id, nil
	default:
		return 0, fmt.Errorf("conversation lookup returned no id for %q", conversationID)
	}
}
