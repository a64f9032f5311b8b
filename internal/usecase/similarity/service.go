// Package similarity ranks catalog products by embedding distance to a query.
package similarity

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/request"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
)

// Service runs nearest-neighbour search over product embeddings.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	catalog Catalog
	embed   Embedder
}

// New creates a similarity service.
func New(catalog Catalog, embed Embedder) *Service {
	return &Service{catalog: catalog, embed: embed}
}

// Search embeds the query and returns at most TopK items, best first.
// Provider failures wrap domain.ErrEmbeddingUnavailable; an empty catalog yields an empty slice.
func (s *Service) Search(ctx context.Context, req request.Request) ([]result.Item, error) {
	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if len(emb.Embedding) == 0 {
		return nil, fmt.Errorf("vectorize query: empty vector: %w", domain.ErrEmbeddingUnavailable)
	}

	if dims := s.catalog.Dimensions(); dims > 0 && dims != len(emb.Embedding) {
		return nil, fmt.Errorf("search: %w", domain.NewDimensionMismatch(len(emb.Embedding), dims))
	}

	items, err := s.catalog.Nearest(ctx, emb.Embedding, req.TopK())
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}

	rank(items)
	if len(items) > req.TopK() {
		items = items[:req.TopK()]
	}
	if items == nil {
		items = []result.Item{}
	}
	return items, nil
}

// rank orders by score descending, then product id ascending.
func rank(items []result.Item) {
	slices.SortStableFunc(items, func(a, b result.Item) int {
		sa, _ := a.Score()
		sb, _ := b.Score()
		if c := cmp.Compare(sb, sa); c != 0 {
			return c
		}
		return cmp.Compare(a.Product().ID, b.Product().ID)
	})
}
