// Package openai implements llm.Client against OpenAI-compatible
// chat-completions endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/oauth2"

	"nutricoach-backend/internal/llm"
	"nutricoach-backend/internal/shared/telemetry"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 4 << 20
	maxErrorBody    = 512
)

// Client implements llm.Client for a single endpoint.
type Client struct {
	endpoint   llm.Endpoint
	httpClient *http.Client
}

// NewClient constructs a client for the endpoint. Bearer credentials are
// attached by an oauth2 static token transport only when the endpoint has a key.
func NewClient(endpoint llm.Endpoint) (*Client, error) {
	if strings.TrimSpace(endpoint.URL) == "" {
		return nil, fmt.Errorf("llm %s: url is required", endpoint.Name)
	}
	if strings.TrimSpace(endpoint.Model) == "" {
		return nil, fmt.Errorf("llm %s: model is required", endpoint.Name)
	}
	if endpoint.Timeout <= 0 {
		endpoint.Timeout = defaultTimeout
	}

	var transport http.RoundTripper = http.DefaultTransport
	if key := strings.TrimSpace(endpoint.APIKey); key != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key, TokenType: "Bearer"}),
			Base:   http.DefaultTransport,
		}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Transport: transport},
	}, nil
}

// Endpoint returns the endpoint settings without the credential.
func (c *Client) Endpoint() llm.Endpoint {
	ep := c.endpoint
	ep.APIKey = ""
	return ep
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// Complete performs exactly one chat-completion call.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.endpoint.Timeout)
	defer cancel()

	model := c.endpoint.Model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := c.endpoint.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: c.endpoint.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", c.fail(0, "", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL, bytes.NewReader(payload))
	if err != nil {
		return "", c.fail(0, "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.fail(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", c.fail(resp.StatusCode, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail(resp.StatusCode, truncate(string(body), maxErrorBody), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", c.fail(0, "", fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return "", c.fail(0, "", errors.New("response missing choices"))
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", c.fail(0, "", errors.New("response empty content"))
	}

	fields := map[string]any{
		"endpoint": c.endpoint.Name,
		"model":    model,
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
	return content, nil
}

func (c *Client) fail(status int, body string, err error) error {
	return &llm.UpstreamError{
		Endpoint:   c.endpoint.Name,
		StatusCode: status,
		Body:       body,
		Timeout:    isTimeout(err),
		Err:        err,
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

var _ llm.Client = (*Client)(nil)
