package agentsight

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/agentsight/agentsight-go/pkg/model"
	"github.com/agentsight/agentsight-go/pkg/transport"
)

// API is the read side of the AgentSight backend: fetching conversations
// and their attachments. It shares the tracker's configuration options.
type API struct {
	client *transport.Client
}

// NewAPI creates a fetch client.
func NewAPI(opts ...Option) (*API, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &API{client: newTransport(o.cfg, o.logger)}, nil
}

// FetchConversations lists conversations matching the filter. Zero-valued
// filter fields are omitted from the query.
func (a *API) FetchConversations(ctx context.Context, filter model.FetchFilter) (map[string]any, error) {
	return a.client.Get(ctx, "/api/conversations/", filterValues(filter))
}

// FetchConversation fetches one conversation by its numeric primary key.
func (a *API) FetchConversation(ctx context.Context, pk int) (map[string]any, error) {
	return a.client.Get(ctx, fmt.Sprintf("/api/conversations/%d/", pk), nil)
}

// FetchConversationByID fetches one conversation by its client-side
// conversation id.
func (a *API) FetchConversationByID(ctx context.Context, conversationID string) (map[string]any, error) {
	if conversationID == "" {
		return nil, ErrMissingConversationID
	}
	params := url.Values{}
	params.Set("conversation_id", conversationID)
	return a.client.Get(ctx, "/api/conversations/lookup/", params)
}

// FetchConversationAttachments lists the attachments recorded for a
// conversation.
func (a *API) FetchConversationAttachments(ctx context.Context, pk int) (map[string]any, error) {
	return a.client.Get(ctx, fmt.Sprintf("/api/conversations/%d/attachments/", pk), nil)
}

func filterValues(filter model.FetchFilter) url.Values {
	params := url.Values{}
	setStr := func(key, val string) {
		if val != "" {
			params.Set(key, val)
		}
	}
	setBool := func(key string, val *bool) {
		if val != nil {
			params.Set(key, strconv.FormatBool(*val))
		}
	}

	setStr("action_name", filter.ActionName)
	setStr("conversation_id", filter.ConversationID)
	setStr("customer_id", filter.CustomerID)
	setStr("customer_ip_address", filter.CustomerIPAddress)
	setStr("device", filter.Device)
	setBool("has_messages", filter.HasMessages)
	setStr("language", filter.Language)
	setStr("message_contains", filter.MessageContains)
	if filter.Page > 0 {
		params.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(filter.PageSize))
	}
	setStr("started_at_after", filter.StartedAtAfter)
	setStr("started_at_before", filter.StartedAtBefore)
	setBool("is_marked", filter.IsMarked)
	setStr("name", filter.Name)
	setBool("include_deleted", filter.IncludeDeleted)
	setStr("metadata", filter.Metadata)
	setBool("has_feedback", filter.HasFeedback)
	setStr("feedback_sentiment", string(filter.FeedbackSentiment))
	setStr("feedback_source", filter.FeedbackSource)
	return params
}
