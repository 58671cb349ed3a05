package openai

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

	"valuate_backend/internal/config"
)

const defaultTimeout = 60 * time.Second

// ErrAPIKeyMissing is returned when the completion service credential is not
// configured. It is a configuration error and is never retried.
var ErrAPIKeyMissing = errors.New("openai: api key is not configured")

// RequestError marks upstream client errors (HTTP 400/401/403). The retry
// policy re-raises these immediately instead of backing off.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("openai: request rejected (status %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// UpstreamError covers every other upstream failure (timeouts, 5xx, rate
// limits). These are considered transient and eligible for retry.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("openai: upstream error (status %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// ImageURL references an image by URI. The image is never fetched locally;
// the completion service resolves it.
type ImageURL struct {
	URL string `json:"url"`
}

// ContentPart is one block of a multi-part user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ChatMessage is a role-tagged message. Content is either a plain string
// (system messages) or a []ContentPart (multimodal user messages), matching
// the chat completions wire format.
type ChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// SystemMessage builds a system-role instruction message.
func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: "system", Content: text}
}

// ImageMessage builds a user message pairing a text label with an image URI.
func ImageMessage(label, url string) ChatMessage {
	return ChatMessage{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: label},
			{Type: "image_url", ImageURL: &ImageURL{URL: url}},
		},
	}
}

type completionRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible chat completions endpoint. It is
// stateless apart from the credential and safe for concurrent use; the app
// constructs one instance at startup and injects it where needed.
type Client struct {
	cfg        config.AIConfig
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(cfg config.AIConfig, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete submits the message list with the given output token budget and
// returns the raw text of the first choice. One outbound call per invocation.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage, maxTokens int) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", ErrAPIKeyMissing
	}

	reqBody := completionRequest{
		Model:     c.cfg.Model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return "", &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("openai: api error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("openai: completion returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
