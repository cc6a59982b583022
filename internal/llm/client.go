// Package llm provides a chat-completions client for OpenAI-compatible APIs.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	requestTimeout = 60 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

// ErrNoAPIKey indicates no API key was configured.
var ErrNoAPIKey = errors.New("llm: missing API key (set OPENAI_API_KEY)")

// APIError wraps a failure reported by the completion service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm: API error: %s", e.Message)
}

// Request describes one chat completion call.
type Request struct {
	Model       string
	Message     string
	MaxTokens   int
	Temperature float64
}

// Completion is the service's reply with its authoritative token usage.
type Completion struct {
	Reply            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer is the external completion capability a chat session talks to.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a completion client. An empty baseURL uses the OpenAI
// endpoint; keys are validated at call time so construction never fails.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResp struct {
	Choices []struct {
		Message chatMsg `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one user message and returns the reply plus usage counts.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	body, err := json.Marshal(chatReq{
		Model:       req.Model,
		Messages:    []chatMsg{{Role: "user", Content: req.Message}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("llm: reading response: %w", err)
	}

	var out chatResp
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("llm: parsing response: %w", err)
	}

	if out.Error.Message != "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: out.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if len(out.Choices) == 0 {
		return nil, &APIError{Message: "no choices in response"}
	}

	return &Completion{
		Reply:            out.Choices[0].Message.Content,
		PromptTokens:     out.Usage.PromptTokens,
		CompletionTokens: out.Usage.CompletionTokens,
		TotalTokens:      out.Usage.TotalTokens,
	}, nil
}
