package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"nutricoach-backend/internal/llm"
)

func newTestClient(t *testing.T, url, key string) *Client {
	t.Helper()
	temp := 0.4
	c, err := NewClient(llm.Endpoint{
		Name:        "primary",
		URL:         url,
		APIKey:      key,
		Model:       "gpt-4o",
		Temperature: &temp,
		MaxTokens:   3000,
		Timeout:     2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestCompleteSendsRequestAndReturnsContent(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"a\":1}"}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "sk-test")
	out, err := c.Complete(context.Background(), llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
		MaxTokens: 2000,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"a":1}` {
		t.Fatalf("expected content, got %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o" {
		t.Fatalf("expected model gpt-4o, got %q", gotBody.Model)
	}
	if gotBody.MaxTokens != 2000 {
		t.Fatalf("expected request max_tokens override 2000, got %d", gotBody.MaxTokens)
	}
	if gotBody.Temperature == nil || *gotBody.Temperature != 0.4 {
		t.Fatalf("expected temperature 0.4, got %v", gotBody.Temperature)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Content != "hi" {
		t.Fatalf("unexpected messages: %+v", gotBody.Messages)
	}
}

func TestCompleteWithoutKeySendsNoAuthorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "")
	if _, err := c.Complete(context.Background(), llm.Request{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestCompleteFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: 500},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", wantStatus: 429},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, "k").Complete(context.Background(), llm.Request{})
			var upErr *llm.UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if upErr.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, upErr.StatusCode)
			}
			if upErr.Endpoint != "primary" {
				t.Fatalf("expected endpoint primary, got %q", upErr.Endpoint)
			}
		})
	}
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(llm.Endpoint{Name: "fallback", URL: srv.URL, Model: "llama3:8b", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Complete(context.Background(), llm.Request{})
	var upErr *llm.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !upErr.Timeout {
		t.Fatalf("expected timeout flag, got %+v", upErr)
	}
}

func TestNewClientValidatesEndpoint(t *testing.T) {
	if _, err := NewClient(llm.Endpoint{Name: "primary", Model: "m"}); err == nil {
		t.Fatalf("expected error for missing url")
	}
	if _, err := NewClient(llm.Endpoint{Name: "primary", URL: "http://x"}); err == nil {
		t.Fatalf("expected error for missing model")
	}
	c, err := NewClient(llm.Endpoint{Name: "primary", URL: "http://x", Model: "m", APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Endpoint().Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %s", c.Endpoint().Timeout)
	}
	if c.Endpoint().APIKey != "" {
		t.Fatalf("expected Endpoint() to omit the key")
	}
}

func TestCompleteModelOverride(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, "k")
	if _, err := c.Complete(context.Background(), llm.Request{Model: "gpt-4o-mini"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotBody.Model != "gpt-4o-mini" {
		t.Fatalf("expected model override, got %q", gotBody.Model)
	}
	if gotBody.MaxTokens != 3000 {
		t.Fatalf("expected endpoint max_tokens 3000, got %d", gotBody.MaxTokens)
	}
}

func TestErrorBodyTruncatedOnRuneBoundary(t *testing.T) {
	// "é" is two bytes; an odd prefix puts byte 512 inside one.
	body := "x" + strings.Repeat("é", 400)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, "k").Complete(context.Background(), llm.Request{})
	var upErr *llm.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if !utf8.ValidString(upErr.Body) {
		t.Fatalf("expected valid UTF-8 body, got %q", upErr.Body)
	}
	if len(upErr.Body) != maxErrorBody-1 {
		t.Fatalf("expected %d bytes, got %d", maxErrorBody-1, len(upErr.Body))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "abcdef", max: 3, want: "abc"},
		{in: "aé", max: 2, want: "a"},
		{in: "日本", max: 4, want: "日"},
		{in: "日本", max: 2, want: ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
