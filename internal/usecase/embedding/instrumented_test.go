package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
)

// --- Mocks ---

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

type mockCompleter struct {
	reply string
	err   error
}

func (m *mockCompleter) Complete(_ context.Context, _ domain.CompletionRequest) (string, error) {
	return m.reply, m.err
}

// --- Tests ---

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
}

func TestInstrumentedEmbedder_RecordsTurnUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2},
		TotalTokens: 100,
	}}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := p.Embed(ctx, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Embed(ctx, "again"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.EmbeddingTokens() != 200 {
		t.Errorf("EmbeddingTokens = %d, want 200", usage.EmbeddingTokens())
	}
}

func TestInstrumentedEmbedder_ErrorLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.New(core))

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if logs.FilterMessage("Embedding request failed").Len() != 1 {
		t.Errorf("expected one error log entry, got %d", logs.Len())
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	inner := &mockEmbedder{healthErr: errors.New("down")}
	p := NewInstrumentedEmbedder(inner, "test", "test-model", zap.NewNop())

	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error to propagate")
	}
}

func TestInstrumentedCompleter(t *testing.T) {
	c := NewInstrumentedCompleter(&mockCompleter{reply: "semantic"}, "test", "llm", zap.NewNop())
	got, err := c.Complete(context.Background(), domain.CompletionRequest{Prompt: "q"})
	if err != nil || got != "semantic" {
		t.Fatalf("Complete = %q, %v", got, err)
	}

	failing := NewInstrumentedCompleter(&mockCompleter{err: domain.ErrLLMUnavailable}, "test", "llm", zap.NewNop())
	if _, err := failing.Complete(context.Background(), domain.CompletionRequest{}); !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Fatalf("expected ErrLLMUnavailable, got %v", err)
	}
	if err := failing.HealthCheck(context.Background()); err != nil {
		t.Errorf("completer without health support should report healthy, got %v", err)
	}
}
