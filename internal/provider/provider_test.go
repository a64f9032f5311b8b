package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/config"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/db"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type memCache struct {
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (c *memCache) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func ollamaServer(t *testing.T, calls *atomic.Int32, seenInput *atomic.Value) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			Input string `json:"input"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if seenInput != nil {
			seenInput.Store(body.Input)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"m","embeddings":[[1,0,0]]}`))
	}))
}

// --- Tests ---

func TestEmbedder_QueryChainUsesCacheAndInstruction(t *testing.T) {
	var calls atomic.Int32
	var seen atomic.Value
	server := ollamaServer(t, &calls, &seen)
	defer server.Close()

	cfg := config.EmbeddingConfig{
		Provider:         config.ProviderOllama,
		Model:            "nomic-embed-text",
		Dimensions:       3,
		BaseURL:          server.URL,
		QueryInstruction: "search_query: ",
	}
	cache := &memCache{data: map[string][]byte{}}

	emb, err := Embedder(context.Background(), cfg, Query, cache, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("Embedder: %v", err)
	}
	if _, ok := emb.(*domain.InstructionEmbedder); !ok {
		t.Fatalf("expected instruction decorator outermost, got %T", emb)
	}

	for range 2 {
		res, err := emb.Embed(context.Background(), "running shoes")
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		if len(res.Embedding) != 3 {
			t.Fatalf("expected 3 dims, got %d", len(res.Embedding))
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected second call served from cache, provider hit %d times", calls.Load())
	}
	if got := seen.Load(); got != "search_query: running shoes" {
		t.Errorf("provider input = %v", got)
	}
}

func TestEmbedder_DocumentSideSkipsCache(t *testing.T) {
	var calls atomic.Int32
	server := ollamaServer(t, &calls, nil)
	defer server.Close()

	cfg := config.EmbeddingConfig{Provider: config.ProviderOllama, Model: "m", Dimensions: 3, BaseURL: server.URL}
	cache := &memCache{data: map[string][]byte{}}

	emb, err := Embedder(context.Background(), cfg, Document, cache, time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("Embedder: %v", err)
	}
	for range 2 {
		if _, err := emb.Embed(context.Background(), "doc"); err != nil {
			t.Fatalf("Embed: %v", err)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("expected provider hit twice, got %d", calls.Load())
	}
	if len(cache.data) != 0 {
		t.Errorf("document embeddings must not be cached, got %d keys", len(cache.data))
	}
}

func TestEmbedder_Providers(t *testing.T) {
	for _, p := range []string{config.ProviderOpenAI, config.ProviderGemini, config.ProviderOllama} {
		t.Run(p, func(t *testing.T) {
			cfg := config.EmbeddingConfig{Provider: p, Model: "m", Dimensions: 8, APIKey: "k", BaseURL: "http://127.0.0.1:1"}
			if _, err := Embedder(context.Background(), cfg, Query, nil, 0, zap.NewNop()); err != nil {
				t.Fatalf("Embedder(%s): %v", p, err)
			}
		})
	}

	if _, err := Embedder(context.Background(), config.EmbeddingConfig{Provider: "voyage"}, Query, nil, 0, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestCompleter_Providers(t *testing.T) {
	for _, p := range []string{config.ProviderOpenAI, config.ProviderGemini, config.ProviderOllama} {
		t.Run(p, func(t *testing.T) {
			cfg := config.LLMConfig{Provider: p, Model: "m", APIKey: "k", BaseURL: "http://127.0.0.1:1"}
			if _, err := Completer(context.Background(), cfg, zap.NewNop()); err != nil {
				t.Fatalf("Completer(%s): %v", p, err)
			}
		})
	}

	if _, err := Completer(context.Background(), config.LLMConfig{Provider: "jina"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestSide_String(t *testing.T) {
	if Query.String() != "query" || Document.String() != "document" {
		t.Errorf("unexpected side names: %s, %s", Query, Document)
	}
}
