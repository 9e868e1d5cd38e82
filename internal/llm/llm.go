// Package llm defines the chat-completion contract shared by the primary and
// fallback model endpoints.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Roles used in chat messages.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one chat-completion call. Model and MaxTokens override the
// endpoint defaults when set.
type Request struct {
	Messages  []Message
	Model     string
	MaxTokens int
}

// Client sends one chat-completion request and returns the raw reply text.
// Implementations make exactly one attempt.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Endpoint describes an OpenAI-compatible chat-completions provider.
type Endpoint struct {
	Name        string
	URL         string
	APIKey      string
	Model       string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// Configured reports whether the endpoint has enough settings to be called.
func (e Endpoint) Configured() bool {
	return e.URL != "" && e.Model != ""
}

// UpstreamError describes a failed provider call: transport failure, non-2xx
// status, or an empty reply.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Timeout    bool
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("llm %s: timeout: %v", e.Endpoint, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("llm %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("llm %s: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("llm %s: upstream failure", e.Endpoint)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrNotConfigured is wrapped by Unconfigured clients.
var ErrNotConfigured = errors.New("llm endpoint not configured")

// Unconfigured stands in for an endpoint with missing credentials or URL.
// Every call fails, so callers degrade to the next tier.
type Unconfigured struct {
	Name string
}

func (u Unconfigured) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", &UpstreamError{Endpoint: u.Name, Err: ErrNotConfigured}
}
