package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://slack.com/api"

// SlackClient talks to the Slack Web API with a bot token.
type SlackClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// SlackOption adjusts a SlackClient during construction.
type SlackOption func(*SlackClient)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(url string) SlackOption {
	return func(c *SlackClient) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) SlackOption {
	return func(c *SlackClient) { c.client = client }
}

// NewSlackClient builds a Web API client authenticated with the bot token.
func NewSlackClient(token string, logger *slog.Logger, opts ...SlackOption) *SlackClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &SlackClient{
		baseURL: defaultBaseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

func (c *SlackClient) PostMessage(ctx context.Context, channel, text string) (string, error) {
	resp, err := c.call(ctx, "chat.postMessage", map[string]any{
		"channel": channel,
		"text":    text,
	})
	if err != nil {
		return "", err
	}
	return resp.TS, nil
}

func (c *SlackClient) PostInThread(ctx context.Context, channel, threadID, text string) error {
	_, err := c.call(ctx, "chat.postMessage", map[string]any{
		"channel":   channel,
		"text":      text,
		"thread_ts": threadID,
	})
	return err
}

func (c *SlackClient) AddReaction(ctx context.Context, channel, ts, name string) error {
	_, err := c.call(ctx, "reactions.add", map[string]any{
		"channel":   channel,
		"timestamp": ts,
		"name":      name,
	})
	return err
}

func (c *SlackClient) PinMessage(ctx context.Context, channel, ts string) error {
	_, err := c.call(ctx, "pins.add", map[string]any{
		"channel":   channel,
		"timestamp": ts,
	})
	return err
}

func (c *SlackClient) OpenView(ctx context.Context, triggerID string, view any) error {
	_, err := c.call(ctx, "views.open", map[string]any{
		"trigger_id": triggerID,
		"view":       view,
	})
	return err
}

func (c *SlackClient) call(ctx context.Context, method string, payload map[string]any) (apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return apiResponse{}, fmt.Errorf("chat: encode %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return apiResponse{}, fmt.Errorf("chat: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("chat: call %s: %w", method, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return apiResponse{}, fmt.Errorf("chat: decode %s response: %w", method, err)
	}
	if !parsed.OK {
		c.logger.ErrorContext(ctx, "slack api call failed", "method", method, "error", parsed.Error)
		return parsed, fmt.Errorf("chat: %s: %s", method, parsed.Error)
	}
	return parsed, nil
}
