package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient sends a system prompt plus conversation to the model and
// returns the assistant's reply.
type ChatClient interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
}

// Config holds model API settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewChatClient builds a client against the Anthropic Messages API.
func NewChatClient(config Config) (ChatClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing Anthropic API key")
	}
	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	model := config.Model
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &anthropicClient{
		apiKey:    config.APIKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

type anthropicClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

func (c *anthropicClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	// The API accepts only user/assistant turns; system text travels in
	// its own field.
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "user" || m.Role == "assistant" {
			turns = append(turns, m)
		}
	}
	if len(turns) == 0 {
		return "", fmt.Errorf("no user messages to send")
	}

	type reqBody struct {
		Model     string    `json:"model"`
		System    string    `json:"system,omitempty"`
		Messages  []Message `json:"messages"`
		MaxTokens int       `json:"max_tokens"`
	}
	raw, err := json.Marshal(reqBody{
		Model:     c.model,
		System:    system,
		Messages:  turns,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("model http %d: %s", resp.StatusCode, string(respRaw))
	}

	type contentBlock struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	type respBody struct {
		Content []contentBlock `json:"content"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	var b strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("model response missing text content")
	}
	return b.String(), nil
}

// MockChatClient is a canned-response client for tests.
type MockChatClient struct {
	Response string
	Error    error

	// Captured from the last call.
	LastSystem   string
	LastMessages []Message
}

func (m *MockChatClient) Complete(_ context.Context, system string, messages []Message) (string, error) {
	m.LastSystem = system
	m.LastMessages = messages
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "Reversal rates are uniform at ~10.8% across states.", nil
}
