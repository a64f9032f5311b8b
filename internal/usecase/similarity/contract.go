package similarity

import (
	"context"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
)

// Catalog is the read-only vector side of the product store.
type Catalog interface {
	Nearest(ctx context.Context, vec []float32, k int) ([]result.Item, error)
	Dimensions() int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
