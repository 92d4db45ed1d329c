package agentsight

import (
	"time"

	"github.com/agentsight/agentsight-go/internal/config"
	"github.com/agentsight/agentsight-go/pkg/logger"
	"github.com/agentsight/agentsight-go/pkg/model"
)

type options struct {
	cfg    *config.Config
	logger *logger.Logger
}

// Option configures a Tracker, API or ConversationManager.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(o *options) { o.cfg.APIKey = apiKey }
}

// WithEndpoint sets the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.cfg.Endpoint = endpoint }
}

// WithAppURL sets the dashboard URL used in error messages.
func WithAppURL(appURL string) Option {
	return func(o *options) { o.cfg.AppURL = appURL }
}

// WithConversationID sets the tracker's current conversation id.
func WithConversationID(conversationID string) Option {
	return func(o *options) { o.cfg.ConversationID = conversationID }
}

// WithEnvironment sets the environment tracked data is stored under.
func WithEnvironment(env model.Environment) Option {
	return func(o *options) { o.cfg.Environment = env }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.cfg.Timeout = timeout }
}

// WithMaxRetries sets the HTTP retry attempt cap.
func WithMaxRetries(maxRetries int) Option {
	return func(o *options) { o.cfg.MaxRetries = maxRetries }
}

// WithLogLevel sets the log level of the client's default logger.
func WithLogLevel(level string) Option {
	return func(o *options) { o.cfg.LogLevel = level }
}

// WithLogger replaces the client's logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.logger = log }
}

func newOptions(opts []Option) (*options, error) {
	o := &options{cfg: config.Load()}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.logger == nil {
		log, err := logger.New(o.cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		o.logger = log
	}
	return o, nil
}
