package agentsight

import (
	"errors"

	"github.com/agentsight/agentsight-go/internal/config"
	"github.com/agentsight/agentsight-go/internal/validate"
)

var (
	// ErrNoDataToSend is returned by SendTrackedData when nothing is
	// buffered for the conversation.
	ErrNoDataToSend = errors.New("no tracked data found for conversation")

	// ErrInvalidQuestionData is returned when a human message has no content.
	ErrInvalidQuestionData = errors.New("invalid question data provided")

	// ErrInvalidAnswerData is returned when an agent message has no content.
	ErrInvalidAnswerData = errors.New("invalid answer data provided")

	// ErrInvalidConversationData is returned for invalid action, button or
	// conversation payloads.
	ErrInvalidConversationData = errors.New("invalid conversation data provided")

	// ErrInvalidAttachment is returned when attachment data fails
	// validation or is too large.
	ErrInvalidAttachment = errors.New("invalid attachment data provided")

	// ErrMissingConversationID is returned when a payload lacks a
	// conversation id.
	ErrMissingConversationID = validate.ErrMissingConversationID

	// ErrNoAPIKey is returned when a client is constructed without an
	// API key.
	ErrNoAPIKey = config.ErrNoAPIKey
)

// InvalidAPIKeyError is returned when the configured API key does not match
// the expected shape.
type InvalidAPIKeyError = config.InvalidAPIKeyError
