package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	os.Exit(m.Run())
}

func fakeGemini(t *testing.T, status int, embedding []float32, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":{"code":503,"message":"unavailable","status":"UNAVAILABLE"}}`))
			return
		}
		switch {
		case strings.Contains(r.URL.Path, "mbedContent"):
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": []map[string]any{{"values": embedding}},
			})
		case strings.Contains(r.URL.Path, ":generateContent"):
			json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{{
					"content": map[string]any{
						"role":  "model",
						"parts": []map[string]any{{"text": reply}},
					},
					"finishReason": "STOP",
				}},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestEmbedder_Embed(t *testing.T) {
	server := fakeGemini(t, http.StatusOK, []float32{0.5, 0.25, 0.125}, "")
	defer server.Close()

	emb, err := NewEmbedder(context.Background(), &EmbedderConfig{
		Config:   Config{APIKey: "test-key", BaseURL: server.URL},
		Model:    "text-embedding-004",
		TaskType: TaskRetrievalQuery,
	})
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}

	res, err := emb.Embed(context.Background(), "running shoes")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(res.Embedding) != 3 || res.Embedding[0] != 0.5 {
		t.Errorf("unexpected embedding: %v", res.Embedding)
	}
}

func TestEmbedder_WithTaskType(t *testing.T) {
	emb := &Embedder{model: "m", taskType: TaskRetrievalQuery}
	doc := emb.WithTaskType(TaskRetrievalDocument)
	if doc.taskType != TaskRetrievalDocument {
		t.Errorf("taskType = %q", doc.taskType)
	}
	if emb.taskType != TaskRetrievalQuery {
		t.Error("WithTaskType must not mutate the receiver")
	}
}

func TestEmbedder_ProviderError(t *testing.T) {
	server := fakeGemini(t, http.StatusServiceUnavailable, nil, "")
	defer server.Close()

	emb, err := NewEmbedder(context.Background(), &EmbedderConfig{
		Config: Config{APIKey: "test-key", BaseURL: server.URL},
		Model:  "text-embedding-004",
	})
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}

	_, err = emb.Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestCompleter_Complete(t *testing.T) {
	server := fakeGemini(t, http.StatusOK, nil, "structured")
	defer server.Close()

	c, err := NewCompleter(context.Background(), &CompleterConfig{
		Config: Config{APIKey: "test-key", BaseURL: server.URL},
		Model:  "gemini-2.0-flash",
	})
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}

	ctx, usage := domain.NewContextWithUsage(context.Background())
	got, err := c.Complete(ctx, domain.CompletionRequest{System: "route", Prompt: "nike under 100", JSON: true})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "structured" {
		t.Errorf("reply = %q", got)
	}
	if usage.LLMCalls() != 1 {
		t.Errorf("LLMCalls = %d, want 1", usage.LLMCalls())
	}
}

func TestCompleter_EmptyReply(t *testing.T) {
	server := fakeGemini(t, http.StatusOK, nil, "")
	defer server.Close()

	c, err := NewCompleter(context.Background(), &CompleterConfig{
		Config: Config{APIKey: "test-key", BaseURL: server.URL},
		Model:  "gemini-2.0-flash",
	})
	if err != nil {
		t.Fatalf("NewCompleter: %v", err)
	}

	_, err = c.Complete(context.Background(), domain.CompletionRequest{Prompt: "x"})
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Fatalf("expected ErrLLMUnavailable, got %v", err)
	}
}
