package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"valuate_backend/internal/config"
)

func completionPayload(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
	}
}

func TestClientComplete(t *testing.T) {
	var gotBody completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("unexpected authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if err := json.NewEncoder(w).Encode(completionPayload(`{"ok":true}`)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(config.AIConfig{BaseURL: server.URL, APIKey: "test-key", Model: "gpt-4o"})
	messages := []ChatMessage{
		SystemMessage("grade this"),
		ImageMessage("Question Paper:", "https://example.com/qp.png"),
	}
	out, err := client.Complete(context.Background(), messages, 2000)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("unexpected content %q", out)
	}
	if gotBody.Model != "gpt-4o" {
		t.Fatalf("expected model forwarded, got %q", gotBody.Model)
	}
	if gotBody.MaxTokens != 2000 {
		t.Fatalf("expected max_tokens 2000, got %d", gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotBody.Messages))
	}
}

func TestClientCompleteMissingKey(t *testing.T) {
	client := NewClient(config.AIConfig{BaseURL: "http://localhost:0", Model: "gpt-4o"})
	_, err := client.Complete(context.Background(), []ChatMessage{SystemMessage("hi")}, 100)
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", err)
	}
}

func TestClientCompleteClientErrorClassification(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"message":"rejected"}}`))
		}))

		client := NewClient(config.AIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
		_, err := client.Complete(context.Background(), []ChatMessage{SystemMessage("hi")}, 100)
		server.Close()

		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("status %d: expected *RequestError, got %v", status, err)
		}
		if reqErr.StatusCode != status {
			t.Fatalf("expected status %d recorded, got %d", status, reqErr.StatusCode)
		}
		if Retryable(err) {
			t.Fatalf("status %d must not be retryable", status)
		}
	}
}

func TestClientCompleteServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	}))
	defer server.Close()

	client := NewClient(config.AIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
	_, err := client.Complete(context.Background(), []ChatMessage{SystemMessage("hi")}, 100)

	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if !Retryable(err) {
		t.Fatal("5xx responses must be retryable")
	}
}

func TestClientCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client := NewClient(config.AIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
	_, err := client.Complete(context.Background(), []ChatMessage{SystemMessage("hi")}, 100)
	if err == nil {
		t.Fatal("expected an error for empty choices")
	}
	if !Retryable(err) {
		t.Fatal("empty choices should be treated as transient")
	}
}
