package model

// ConversationParams carries the optional attributes of a conversation
// passed to InitializeConversation and GetOrCreateConversation.
type ConversationParams struct {
	CustomerID        string         `json:"customer_id,omitempty"`
	CustomerIPAddress string         `json:"customer_ip_address,omitempty"`
	Device            string         `json:"device,omitempty"`
	Source            string         `json:"source,omitempty"`
	Language          string         `json:"language,omitempty"`
	Environment       Environment    `json:"environment,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// Sentiment is an end-user feedback sentiment.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether the sentiment is one of the known values.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// ConversationUpdate carries the fields of a partial conversation update.
// Nil fields are left untouched.
type ConversationUpdate struct {
	Name       *string        `json:"name,omitempty"`
	IsMarked   *bool          `json:"is_marked,omitempty"`
	CustomerID *string        `json:"customer_id,omitempty"`
	Device     *string        `json:"device,omitempty"`
	Language   *string        `json:"language,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// FetchFilter narrows FetchConversations results. Zero values are omitted
// from the query.
type FetchFilter struct {
	ActionName        string
	ConversationID    string
	CustomerID        string
	CustomerIPAddress string
	Device            string
	HasMessages       *bool
	Language          string
	MessageContains   string
	Page              int
	PageSize          int
	StartedAtAfter    string
	StartedAtBefore   string
	IsMarked          *bool
	Name              string
	IncludeDeleted    *bool
	Metadata          string
	HasFeedback       *bool
	FeedbackSentiment Sentiment
	FeedbackSource    string
}
