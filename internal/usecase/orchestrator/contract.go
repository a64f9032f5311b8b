package orchestrator

import (
	"context"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/request"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/strategy"
)

// Classifier routes a query and extracts filter criteria from it.
type Classifier interface {
	Classify(ctx context.Context, query string) (strategy.Strategy, error)
	Extract(ctx context.Context, query string) (filter.Criteria, error)
}

// Similarity runs embedding search.
type Similarity interface {
	Search(ctx context.Context, req request.Request) ([]result.Item, error)
}

// Filter runs structured attribute matching.
type Filter interface {
	Filter(ctx context.Context, c filter.Criteria) ([]result.Item, error)
}

// Composer writes the reply from a formatted results block.
type Composer interface {
	Compose(ctx context.Context, query, results string) (string, error)
}
