package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
)

type chatRequestBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func chatServer(t *testing.T, reply string, seen *chatRequestBody) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-llm",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
		})
	}))
}

func newTestCompleter(url string) *Completer {
	return NewCompleter(&CompleterConfig{
		Config: Config{APIKey: "test-key", BaseURL: url, Model: "test-llm", Provider: "test"},
	})
}

func TestCompleter_Complete(t *testing.T) {
	var seen chatRequestBody
	server := chatServer(t, "semantic", &seen)
	defer server.Close()

	ctx, usage := domain.NewContextWithUsage(context.Background())
	got, err := newTestCompleter(server.URL).Complete(ctx, domain.CompletionRequest{
		System: "You route queries.",
		Prompt: "running shoes",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "semantic" {
		t.Errorf("reply = %q, want %q", got, "semantic")
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != "system" || seen.Messages[1].Content != "running shoes" {
		t.Errorf("unexpected messages: %+v", seen.Messages)
	}
	if seen.ResponseFormat != nil {
		t.Errorf("expected no response_format for plain request, got %+v", seen.ResponseFormat)
	}
	if usage.LLMCalls() != 1 {
		t.Errorf("LLMCalls = %d, want 1", usage.LLMCalls())
	}
}

func TestCompleter_JSONMode(t *testing.T) {
	var seen chatRequestBody
	server := chatServer(t, `{"brand":"Nike"}`, &seen)
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), domain.CompletionRequest{
		Prompt: "nike shoes",
		JSON:   true,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if seen.ResponseFormat == nil || seen.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response_format, got %+v", seen.ResponseFormat)
	}
	if len(seen.Messages) != 1 {
		t.Errorf("expected only the user message without a system prompt, got %d", len(seen.Messages))
	}
}

func TestCompleter_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), domain.CompletionRequest{Prompt: "x"})
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Fatalf("expected ErrLLMUnavailable, got %v", err)
	}
}
