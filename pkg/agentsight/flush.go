package agentsight

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agentsight/agentsight-go/internal/buffer"
	"github.com/agentsight/agentsight-go/pkg/metrics"
	"github.com/agentsight/agentsight-go/pkg/model"
	"github.com/agentsight/agentsight-go/pkg/transport"
)

// tokenUsageActionName marks the synthetic action item that carries the
// cumulative token counters in a flushed batch.
const tokenUsageActionName = "token_usage"

// SendTrackedData flushes the current conversation's buffered items to the
// API in append order. The buffer is drained atomically before any network
// request: concurrent flushes race for the same batch and exactly one wins;
// the losers get ErrNoDataToSend. Per-item delivery failures are recorded
// in the report and do not stop the remaining items.
func (t *Tracker) SendTrackedData(ctx context.Context) (*model.FlushReport, error) {
	// A tracker with no current id adopts a generated one before the drain;
	// the id is observable afterward even though the flush itself finds
	// nothing to send.
	convID := t.resolveConversationID("")

	var (
		detached []model.TrackedItem
		ok       bool
	)
	t.buf.WithLock(func(tx *buffer.Tx) {
		if usage, created := t.tokens.snapshot(); created && tx.Len(convID) > 0 {
			tx.Splice(convID, model.TrackedItem{
				Kind:      model.KindAction,
				Timestamp: buffer.Timestamp(),
				Data: map[string]any{
					"action_name":     tokenUsageActionName,
					"conversation_id": convID,
					"metadata":        usage.Map(),
				},
			})
			metrics.RecordTrackedItem(string(model.KindAction))
		}
		detached, ok = tx.DetachAndClear(convID)
	})
	if !ok {
		return nil, ErrNoDataToSend
	}
	metrics.RecordDrained(len(detached))

	t.logger.Info("sending tracked data",
		zap.String("conversation_id", convID),
		zap.Int("items", len(detached)))

	report := &model.FlushReport{Items: make([]model.ItemResult, 0, len(detached))}
	client := t.transportClient()

	// Conversation id assigned by the server, threaded into every item that
	// follows the conversation item in the batch.
	var serverConversationID any

	for i, item := range detached {
		result := model.ItemResult{
			Index:     i,
			Kind:      item.Kind,
			Timestamp: item.Timestamp,
		}

		data := item.Data
		data["timestamp"] = item.Timestamp
		if item.Kind != model.KindConversation {
			// Explicit null until the server has assigned an id.
			data["conversation"] = serverConversationID
		}

		start := time.Now()
		resp, err := t.sendItem(ctx, client, item.Kind, data, serverConversationID)
		elapsed := time.Since(start).Seconds()

		if err != nil {
			result.Error = err.Error()
			report.Summary.Errors++
			metrics.RecordSend(string(item.Kind), "error", elapsed)
			t.logger.Warn("failed to send tracked item",
				zap.String("conversation_id", convID),
				zap.String("type", string(item.Kind)),
				zap.Int("index", i),
				zap.Error(err))
			report.Items = append(report.Items, result)
			continue
		}

		result.Success = true
		result.Response = resp
		metrics.RecordSend(string(item.Kind), "success", elapsed)

		switch item.Kind {
		case model.KindConversation:
			if id, found := resp["id"]; found {
				serverConversationID = id
			}
		case model.KindQuestion:
			report.Summary.Questions++
		case model.KindAnswer:
			report.Summary.Answers++
		case model.KindAttachments:
			report.Summary.Attachments++
		case model.KindAction:
			report.Summary.Actions++
		case model.KindButton:
			report.Summary.Buttons++
		}
		report.Items = append(report.Items, result)
	}

	status := "success"
	if report.Summary.Errors > 0 {
		status = "partial"
	}
	metrics.RecordFlush(status)
	t.logger.Info("tracked data sent",
		zap.String("conversation_id", convID),
		zap.Int("items", len(report.Items)),
		zap.Int("errors", report.Summary.Errors))
	return report, nil
}

func (t *Tracker) sendItem(ctx context.Context, client *transport.Client, kind model.Kind, data map[string]any, serverConversationID any) (map[string]any, error) {
	if kind == model.KindAttachments && data["mode"] == string(model.AttachmentModeFormData) {
		attachments, _ := data["attachments"].([]model.Attachment)
		metadata, _ := data["metadata"].(map[string]any)
		sender := model.Sender(stringValue(data["sender"]))

		convID := stringValue(data["conversation_id"])
		if serverConversationID != nil {
			convID = fmt.Sprint(serverConversationID)
		}
		return client.SendFormDataPayload(ctx, attachments, convID, sender, metadata)
	}
	return client.SendPayload(ctx, string(kind), data)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// GetTrackedDataSummary returns a non-draining view of the current
// conversation's buffer with a short human-readable preview per item. A
// conversation with nothing buffered yields an empty summary, not an error.
func (t *Tracker) GetTrackedDataSummary() (*model.BufferSummary, error) {
	convID := t.ConversationID()

	items, ok := t.buf.Snapshot(convID)
	if !ok {
		return &model.BufferSummary{
			ConversationID: convID,
			Items:          []model.ItemPreview{},
		}, nil
	}

	summary := &model.BufferSummary{
		ConversationID: convID,
		Items:          make([]model.ItemPreview, 0, len(items)),
		Total:          len(items),
	}
	for _, item := range items {
		summary.Items = append(summary.Items, model.ItemPreview{
			Kind:      item.Kind,
			Timestamp: item.Timestamp,
			Preview:   previewFor(item),
			Data:      item.Data,
		})
	}
	return summary, nil
}

const previewContentLimit = 80

func previewFor(item model.TrackedItem) map[string]any {
	preview := map[string]any{}
	switch item.Kind {
	case model.KindQuestion, model.KindAnswer:
		content := stringValue(item.Data["content"])
		if len(content) > previewContentLimit {
			content = content[:previewContentLimit] + "..."
		}
		preview["content"] = content
		preview["sender"] = item.Data["sender"]
	case model.KindAttachments:
		attachments, _ := item.Data["attachments"].([]model.Attachment)
		names := make([]string, 0, len(attachments))
		for _, att := range attachments {
			names = append(names, att.Filename)
		}
		preview["count"] = len(attachments)
		preview["filenames"] = names
		preview["mode"] = item.Data["mode"]
	case model.KindAction:
		preview["action_name"] = item.Data["action_name"]
	case model.KindButton:
		preview["label"] = item.Data["label"]
		preview["button_event"] = item.Data["button_event"]
	case model.KindConversation:
		preview["conversation_id"] = item.Data["conversation_id"]
		preview["is_used"] = item.Data["is_used"]
	}
	return preview
}
