// Package transport performs authenticated HTTP calls against the
// AgentSight API with bounded retries and exponential backoff.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/agentsight/agentsight-go/internal/validate"
	"github.com/agentsight/agentsight-go/pkg/logger"
)

// Config holds transport configuration.
type Config struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the authenticated HTTP client for the AgentSight API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logger.Logger
}

// New creates a transport client. Zero Timeout and MaxRetries fall back to
// 15 seconds and 3 attempts.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: log,
	}
}

// Endpoint returns the configured API base URL.
func (c *Client) Endpoint() string {
	return c.cfg.Endpoint
}

func endpointPath(kind string) string {
	switch kind {
	case "full", "question", "answer":
		return "/api/track/"
	case "action":
		return "/api/action_logs/"
	case "button":
		return "/api/buttons/"
	case "attachments":
		return "/api/attachments/"
	case "conversation":
		return "/api/conversations/"
	}
	return "/"
}

func validatePayload(kind string, data map[string]any) error {
	switch kind {
	case "full", "question", "answer":
		return validate.ConversationData(data)
	case "action":
		return validate.ActionData(data)
	case "button":
		return validate.ButtonData(data)
	case "attachments", "conversation":
		// Attachment contents are validated when tracked.
		return validate.ConversationID(data)
	}
	return fmt.Errorf("unknown payload kind: %s", kind)
}

// SendPayload validates and posts a kind-routed JSON payload. A server
// timestamp field is injected into every payload. API errors (4xx/5xx) are
// returned without retrying; transport-level failures are retried with
// exponential backoff before a *NetworkError is returned.
func (c *Client) SendPayload(ctx context.Context, kind string, data map[string]any) (map[string]any, error) {
	if err := validatePayload(kind, data); err != nil {
		return nil, err
	}

	payload := make(map[string]any, len(data)+1)
	payload["timestamp"] = isoTimestamp()
	for k, v := range data {
		payload[k] = v
	}
	if md, ok := payload["metadata"]; ok {
		payload["metadata"] = FormatMetadata(md)
	}

	timeout := c.cfg.Timeout
	if kind == "attachments" {
		timeout = c.cfg.Timeout * 2
	}

	c.logger.Debug("sending payload", zap.String("kind", kind))

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	return c.doWithRetries(ctx, kind, timeout, func(reqCtx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.Endpoint+endpointPath(kind), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// Get performs an authenticated GET request. Errors are returned to the
// caller directly; only transport-level failures are retried.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	return c.request(ctx, http.MethodGet, path, params, nil)
}

// Post performs an authenticated JSON POST request.
func (c *Client) Post(ctx context.Context, path string, data map[string]any) (map[string]any, error) {
	return c.request(ctx, http.MethodPost, path, nil, data)
}

// Patch performs an authenticated JSON PATCH request.
func (c *Client) Patch(ctx context.Context, path string, data map[string]any) (map[string]any, error) {
	return c.request(ctx, http.MethodPatch, path, nil, data)
}

// Delete performs an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (map[string]any, error) {
	return c.request(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) request(ctx context.Context, method, path string, params url.Values, data map[string]any) (map[string]any, error) {
	var body []byte
	if data != nil {
		var err error
		body, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	target := c.cfg.Endpoint + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	return c.doWithRetries(ctx, strings.ToLower(method), c.cfg.Timeout, func(reqCtx context.Context) (*http.Request, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(reqCtx, method, target, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	})
}

// doWithRetries runs the request up to MaxRetries times with exponential
// backoff. API errors abort the retry loop immediately.
func (c *Client) doWithRetries(ctx context.Context, requestType string, timeout time.Duration, build func(context.Context) (*http.Request, error)) (map[string]any, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	var out map[string]any
	attempt := 0

	operation := func() error {
		attempt++
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := build(reqCtx)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Api-Key "+c.cfg.APIKey)

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warn("request failed, retrying",
				zap.String("request_type", requestType),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			out = map[string]any{}
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &out); err != nil {
					return backoff.Permanent(fmt.Errorf("failed to decode %s response: %w", requestType, err))
				}
			}
			return nil
		}

		if resp.StatusCode >= 400 {
			apiErr := newAPIError(requestType, resp.StatusCode, raw)
			c.logger.Error("API error", zap.String("request_type", requestType), zap.Int("status", resp.StatusCode))
			return backoff.Permanent(apiErr)
		}

		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, requestType)
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), uint64(c.cfg.MaxRetries-1)))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Attempts: attempt, Err: err}
	}
	return out, nil
}

// newAPIError decodes an error body and flattens field validation errors
// into a single message.
func newAPIError(requestType string, status int, raw []byte) *APIError {
	var errorData map[string]any
	message := strings.TrimSpace(string(raw))
	if len(raw) > 0 && json.Unmarshal(raw, &errorData) == nil {
		if detail, ok := errorData["detail"].(string); ok {
			message = detail
		} else {
			parts := make([]string, 0, len(errorData))
			keys := make([]string, 0, len(errorData))
			for k := range errorData {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, field := range keys {
				switch v := errorData[field].(type) {
				case []any:
					strs := make([]string, len(v))
					for i, e := range v {
						strs[i] = fmt.Sprintf("%v", e)
					}
					parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(strs, ", ")))
				default:
					parts = append(parts, fmt.Sprintf("%s: %v", field, v))
				}
			}
			message = strings.Join(parts, "; ")
		}
	}
	if message == "" {
		message = "unknown error"
	}

	return &APIError{
		StatusCode:   status,
		ResponseData: errorData,
		Message:      fmt.Sprintf("API error for %s (%d): %s", requestType, status, message),
	}
}

// FormatMetadata normalizes metadata for the wire: keys become strings,
// nested structures are stringified, nils become empty strings.
func FormatMetadata(metadata any) map[string]any {
	md, ok := metadata.(map[string]any)
	if !ok || md == nil {
		return map[string]any{}
	}
	formatted := make(map[string]any, len(md))
	for key, value := range md {
		switch v := value.(type) {
		case nil:
			formatted[key] = ""
		case map[string]any, []any:
			encoded, err := json.Marshal(v)
			if err != nil {
				formatted[key] = fmt.Sprintf("%v", v)
				continue
			}
			formatted[key] = string(encoded)
		default:
			formatted[key] = v
		}
	}
	return formatted
}

func isoTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
