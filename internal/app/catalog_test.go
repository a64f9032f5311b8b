package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/config"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
)

// --- Mocks ---

type plainEmbedder struct{}

func (plainEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

type checkedEmbedder struct {
	plainEmbedder
	err error
}

func (c checkedEmbedder) HealthCheck(context.Context) error { return c.err }

// --- Tests ---

func TestOpenCatalog_MemoryWithSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	seed := []byte(`products:
  - id: 1
    name: Air Zoom Pegasus 40
    brand: Nike
    category: Running Shoes
    description: Responsive running shoe
    price: 129.99
  - id: 2
    name: Classic Leather
    brand: Reebok
    category: Lifestyle
    description: Soft leather sneaker
`)
	if err := os.WriteFile(path, seed, 0o600); err != nil {
		t.Fatal(err)
	}

	cat, closeFn, err := OpenCatalog(context.Background(), config.CatalogConfig{
		Driver: config.CatalogMemory, Dimensions: 8, SeedFile: path,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenCatalog: %v", err)
	}
	defer closeFn()

	n, _ := cat.Count(context.Background())
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if cat.Dimensions() != 8 {
		t.Errorf("Dimensions = %d", cat.Dimensions())
	}
	if err := cat.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenCatalog_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.CatalogConfig
	}{
		{"unknown driver", config.CatalogConfig{Driver: "sqlite", Dimensions: 8}},
		{"missing seed", config.CatalogConfig{Driver: config.CatalogMemory, Dimensions: 8, SeedFile: "/nonexistent/seed.yaml"}},
		{"zero dimensions", config.CatalogConfig{Driver: config.CatalogMemory}},
		{"postgres without dsn", config.CatalogConfig{Driver: config.CatalogPostgres, Dimensions: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, closeFn, err := OpenCatalog(context.Background(), tt.cfg, zap.NewNop())
			if err == nil {
				t.Fatal("expected error")
			}
			closeFn()
		})
	}
}

func TestOpenCache_Disabled(t *testing.T) {
	store, err := OpenCache(context.Background(), config.CacheConfig{}, 0)
	if err != nil || store != nil {
		t.Fatalf("disabled cache = %v, %v", store, err)
	}
}

func TestEmbeddingHealth(t *testing.T) {
	if err := (EmbeddingHealth{Embedder: plainEmbedder{}}).HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health endpoint: %v", err)
	}
	down := errors.New("503")
	err := (EmbeddingHealth{Embedder: checkedEmbedder{err: down}}).HealthCheck(context.Background())
	if !errors.Is(err, down) {
		t.Errorf("expected provider error, got %v", err)
	}
}
