package ingest

import (
	"context"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
)

// Catalog is the write side of the product store.
type Catalog interface {
	Count(ctx context.Context) (int, error)
	ListWithoutEmbedding(ctx context.Context) ([]product.Product, error)
	SaveEmbedding(ctx context.Context, e product.Embedding) error
	Dimensions() int
}

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
