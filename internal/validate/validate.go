// Package validate holds the pure per-kind payload checks applied before
// buffering and before sending.
package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingConversationID is returned whenever a payload lacks a non-empty
// conversation_id field.
var ErrMissingConversationID = errors.New("conversation ID is required and cannot be empty")

func field(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(s)
}

// ConversationID checks that data carries a non-empty conversation_id.
func ConversationID(data map[string]any) error {
	if field(data, "conversation_id") == "" {
		return ErrMissingConversationID
	}
	return nil
}

// Content reports whether data carries non-empty message content.
func Content(data map[string]any) bool {
	return field(data, "content") != ""
}

// ConversationData checks a question/answer payload: conversation_id plus
// either a content field or a question/answer pair.
func ConversationData(data map[string]any) error {
	if err := ConversationID(data); err != nil {
		return err
	}
	hasContent := Content(data) ||
		(field(data, "question") != "" && field(data, "answer") != "")
	if !hasContent {
		return errors.New("invalid conversation data provided")
	}
	return nil
}

// ActionData checks an action payload: conversation_id plus action_name.
func ActionData(data map[string]any) error {
	if err := ConversationID(data); err != nil {
		return err
	}
	if field(data, "action_name") == "" {
		return errors.New("invalid action data provided")
	}
	return nil
}

// ButtonData checks a button payload: conversation_id plus button_event,
// label and value.
func ButtonData(data map[string]any) error {
	if err := ConversationID(data); err != nil {
		return err
	}
	if field(data, "button_event") == "" || field(data, "label") == "" || field(data, "value") == "" {
		return errors.New("invalid button data provided")
	}
	return nil
}
