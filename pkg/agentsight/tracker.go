// Package agentsight is the client SDK for tracking chatbot and AI agent
// conversations with AgentSight. Events are buffered in memory per
// conversation and flushed as an ordered batch with SendTrackedData.
package agentsight

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentsight/agentsight-go/internal/attachment"
	"github.com/agentsight/agentsight-go/internal/buffer"
	"github.com/agentsight/agentsight-go/internal/config"
	"github.com/agentsight/agentsight-go/internal/validate"
	"github.com/agentsight/agentsight-go/pkg/logger"
	"github.com/agentsight/agentsight-go/pkg/metrics"
	"github.com/agentsight/agentsight-go/pkg/model"
	"github.com/agentsight/agentsight-go/pkg/transport"
)

// Tracker buffers conversation events in memory and flushes them to the
// AgentSight API. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex // guards cfg and client
	cfg    *config.Config
	client *transport.Client

	buf    *buffer.Buffer
	tokens *tokenAccumulator
	logger *logger.Logger
}

// NewTracker creates a conversation tracker. Configuration is read from
// AGENTSIGHT_* environment variables and overridden by options; a missing
// or malformed API key fails construction.
func NewTracker(opts ...Option) (*Tracker, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		cfg:    o.cfg,
		client: newTransport(o.cfg, o.logger),
		buf:    buffer.New(),
		tokens: &tokenAccumulator{},
		logger: o.logger,
	}

	t.logger.Info("conversation tracker initialized")
	return t, nil
}

func newTransport(cfg *config.Config, log *logger.Logger) *transport.Client {
	return transport.New(transport.Config{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}, log)
}

// Configure applies new options to an existing tracker and re-validates the
// configuration. The buffer and token counters are left untouched.
func (t *Tracker) Configure(opts ...Option) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	o := &options{cfg: t.cfg, logger: t.logger}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.cfg.Validate(); err != nil {
		return err
	}
	t.logger = o.logger
	t.client = newTransport(t.cfg, t.logger)
	t.logger.Info("conversation tracker reconfigured")
	return nil
}

// ConversationID returns the tracker's current conversation id, which may
// be empty if none was configured and nothing has been tracked yet.
func (t *Tracker) ConversationID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.ConversationID
}

// SetConversationID makes id the tracker's current conversation.
func (t *Tracker) SetConversationID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cfg.ConversationID = id
}

// generateConversationID returns a fresh client-side conversation id.
func generateConversationID() string {
	u := uuid.New()
	return "conv_" + hex.EncodeToString(u[:])[:12]
}

// resolveConversationID decides which conversation a buffer operation
// targets: an explicit id is adopted as current; otherwise the current id
// is reused; otherwise a new id is generated and adopted. The adopt and the
// subsequent buffer ensure are not one atomic unit, so two racing
// first-time calls without an explicit id can target two generated ids;
// this mirrors the tracker's documented behavior rather than papering over
// it with a stronger guarantee.
func (t *Tracker) resolveConversationID(explicit string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if explicit != "" {
		t.cfg.ConversationID = explicit
		return explicit
	}
	if t.cfg.ConversationID != "" {
		return t.cfg.ConversationID
	}
	id := generateConversationID()
	t.cfg.ConversationID = id
	return id
}

func (t *Tracker) environment(override model.Environment) model.Environment {
	t.mu.Lock()
	defer t.mu.Unlock()
	if override != "" {
		return override
	}
	if t.cfg.Environment != "" {
		return t.cfg.Environment
	}
	return model.EnvironmentProduction
}

func (t *Tracker) transportClient() *transport.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client
}

// TrackHumanMessage buffers a question from the end user.
func (t *Tracker) TrackHumanMessage(content string, metadata map[string]any) error {
	convID := t.resolveConversationID("")
	data := map[string]any{
		"content":         content,
		"sender":          string(model.SenderUser),
		"conversation_id": convID,
		"metadata":        orEmpty(metadata),
	}
	if !validate.Content(data) {
		return ErrInvalidQuestionData
	}

	t.buf.Append(convID, model.KindQuestion, data)
	metrics.RecordTrackedItem(string(model.KindQuestion))
	t.logger.Info("stored question", zap.String("conversation_id", convID))
	return nil
}

// TrackAgentMessage buffers an answer from the agent.
func (t *Tracker) TrackAgentMessage(content string, metadata map[string]any) error {
	convID := t.resolveConversationID("")
	data := map[string]any{
		"content":         content,
		"sender":          string(model.SenderAgent),
		"conversation_id": convID,
		"metadata":        orEmpty(metadata),
	}
	if !validate.Content(data) {
		return ErrInvalidAnswerData
	}

	t.buf.Append(convID, model.KindAnswer, data)
	metrics.RecordTrackedItem(string(model.KindAnswer))
	t.logger.Info("stored answer", zap.String("conversation_id", convID))
	return nil
}

// TrackAttachments validates attachments for the given mode and buffers
// them. An empty mode defaults to base64; an empty sender defaults to the
// end user.
func (t *Tracker) TrackAttachments(attachments []model.Attachment, sender model.Sender, metadata map[string]any, mode model.AttachmentMode) error {
	if mode == "" {
		mode = model.AttachmentModeBase64
	}
	switch mode {
	case model.AttachmentModeBase64, model.AttachmentModeFormData:
	default:
		return fmt.Errorf("%w: invalid mode %q, must be %q or %q",
			ErrInvalidAttachment, mode, model.AttachmentModeBase64, model.AttachmentModeFormData)
	}
	if sender == "" {
		sender = model.SenderUser
	}

	processed, err := attachment.Process(attachments, mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
	}

	convID := t.resolveConversationID("")
	data := map[string]any{
		"attachments":     processed,
		"metadata":        orEmpty(metadata),
		"mode":            string(mode),
		"sender":          string(sender),
		"conversation_id": convID,
	}

	t.buf.Append(convID, model.KindAttachments, data)
	metrics.RecordTrackedItem(string(model.KindAttachments))
	t.logger.Info("stored attachments",
		zap.String("conversation_id", convID),
		zap.Int("count", len(processed)))
	return nil
}

// Action describes a tracked agent action. Name is required; the remaining
// fields are sent only when set.
type Action struct {
	Name       string
	StartedAt  string
	EndedAt    string
	DurationMS *int64
	ToolsUsed  map[string]any
	Response   string
	ErrorMsg   string
	Metadata   map[string]any
}

// TrackAction buffers an action performed during the conversation.
func (t *Tracker) TrackAction(action Action) error {
	if action.Name == "" {
		return fmt.Errorf("%w: action name cannot be empty", ErrInvalidConversationData)
	}

	convID := t.resolveConversationID("")
	data := map[string]any{
		"action_name":     action.Name,
		"conversation_id": convID,
		"metadata":        orEmpty(action.Metadata),
	}
	if action.StartedAt != "" {
		data["started_at"] = action.StartedAt
	}
	if action.EndedAt != "" {
		data["ended_at"] = action.EndedAt
	}
	if action.DurationMS != nil {
		data["duration_ms"] = *action.DurationMS
	}
	if action.ToolsUsed != nil {
		data["tools_used"] = action.ToolsUsed
	}
	if action.Response != "" {
		data["response"] = action.Response
	}
	if action.ErrorMsg != "" {
		data["error_msg"] = action.ErrorMsg
	}

	t.buf.Append(convID, model.KindAction, data)
	metrics.RecordTrackedItem(string(model.KindAction))
	t.logger.Info("stored action",
		zap.String("conversation_id", convID),
		zap.String("action_name", action.Name))
	return nil
}

// TrackButton buffers a button click. Event, label and value are all
// required.
func (t *Tracker) TrackButton(buttonEvent, label, value string, metadata map[string]any) error {
	if buttonEvent == "" {
		return fmt.Errorf("%w: button event cannot be empty", ErrInvalidConversationData)
	}
	if label == "" {
		return fmt.Errorf("%w: button label cannot be empty", ErrInvalidConversationData)
	}
	if value == "" {
		return fmt.Errorf("%w: button value cannot be empty", ErrInvalidConversationData)
	}

	convID := t.resolveConversationID("")
	data := map[string]any{
		"button_event":    buttonEvent,
		"label":           label,
		"value":           value,
		"conversation_id": convID,
		"metadata":        orEmpty(metadata),
	}

	t.buf.Append(convID, model.KindButton, data)
	metrics.RecordTrackedItem(string(model.KindButton))
	t.logger.Info("stored button click",
		zap.String("conversation_id", convID),
		zap.String("label", label))
	return nil
}

// TrackTokenUsage adds to the tracker's cumulative token counters. The
// counters are materialized into a synthetic token_usage action on the next
// flush; they are not reset by flushing.
func (t *Tracker) TrackTokenUsage(prompt, completion, total, embedding uint64) {
	t.tokens.add(prompt, completion, total, embedding)
	metrics.RecordTokens(prompt, completion, total, embedding)
}

// GetTokenUsage returns the current token counters. The second return value
// is false when no usage was ever tracked.
func (t *Tracker) GetTokenUsage() (model.TokenUsage, bool) {
	return t.tokens.snapshot()
}

// ResetTokenUsage zeroes the token counters. Flushing does not call this;
// counters accumulate across flushes unless the caller resets them.
func (t *Tracker) ResetTokenUsage() {
	t.tokens.reset()
}

// GetOrCreateConversation buffers a conversation item that the backend
// resolves to an existing conversation or creates on flush. The id becomes
// the tracker's current conversation.
func (t *Tracker) GetOrCreateConversation(conversationID string, params model.ConversationParams) error {
	if conversationID == "" {
		return ErrMissingConversationID
	}

	convID := t.resolveConversationID(conversationID)
	data := conversationData(convID, params, true, t.environment(params.Environment))

	t.buf.Append(convID, model.KindConversation, data)
	metrics.RecordTrackedItem(string(model.KindConversation))
	t.logger.Info("stored conversation for get or create", zap.String("conversation_id", convID))
	return nil
}

// InitializeConversation creates a conversation on the backend right away,
// unlike the tracking methods which only buffer data for a later flush.
func (t *Tracker) InitializeConversation(ctx context.Context, conversationID string, params model.ConversationParams) (map[string]any, error) {
	if conversationID == "" {
		return nil, ErrMissingConversationID
	}

	data := conversationData(conversationID, params, false, t.environment(params.Environment))
	return t.transportClient().SendPayload(ctx, "conversation", data)
}

func conversationData(conversationID string, params model.ConversationParams, isUsed bool, env model.Environment) map[string]any {
	data := map[string]any{
		"conversation_id": conversationID,
		"environment":     string(env),
		"is_used":         isUsed,
		"metadata":        orEmpty(params.Metadata),
	}
	if params.CustomerID != "" {
		data["customer_id"] = params.CustomerID
	}
	if params.CustomerIPAddress != "" {
		data["customer_ip_address"] = params.CustomerIPAddress
	}
	if params.Device != "" {
		data["device"] = params.Device
	}
	if params.Source != "" {
		data["source"] = params.Source
	}
	if params.Language != "" {
		data["language"] = params.Language
	}
	return data
}

func orEmpty(metadata map[string]any) map[string]any {
	if metadata == nil {
		return map[string]any{}
	}
	return metadata
}
