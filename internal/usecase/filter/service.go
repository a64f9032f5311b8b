// Package filter serves structured attribute queries over the catalog.
package filter

import (
	"context"
	"fmt"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
)

// Catalog is the read-only attribute side of the product store.
type Catalog interface {
	Filter(ctx context.Context, c filter.Criteria) ([]product.Product, error)
}

// Service matches products against AND-combined criteria.
type Service struct {
	catalog Catalog
}

// New creates a filter service.
func New(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Filter returns every matching product, unscored, in store order.
// No match is an empty slice, not an error.
func (s *Service) Filter(ctx context.Context, c filter.Criteria) ([]result.Item, error) {
	products, err := s.catalog.Filter(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", c, err)
	}

	items := make([]result.Item, len(products))
	for i, p := range products {
		items[i] = result.NewUnscored(p)
	}
	return items, nil
}
