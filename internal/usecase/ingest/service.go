// Package ingest embeds catalog products that have no embedding yet.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/batch"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
)

// Report is the outcome of one run.
type Report struct {
	batch.Summary
	Results []batch.Result
}

// Service runs ingestion on a bounded worker pool.
type Service struct {
	catalog Catalog
	embed   Embedder
	pool    *ants.Pool
	logger  *zap.Logger
}

// New creates a service with the given number of workers. Call Release when done.
func New(catalog Catalog, embed Embedder, workers int, logger *zap.Logger) (*Service, error) {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Service{catalog: catalog, embed: embed, pool: pool, logger: logger}, nil
}

// Release stops the worker pool.
func (s *Service) Release() { s.pool.Release() }

// Run embeds every product without an embedding. A failure for one product is
// logged and counted; it never stops the others. Rerunning skips finished products.
func (s *Service) Run(ctx context.Context) (Report, error) {
	total, err := s.catalog.Count(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("count products: %w", err)
	}
	pending, err := s.catalog.ListWithoutEmbedding(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list pending products: %w", err)
	}

	s.logger.Info("Ingestion started",
		zap.Int("total", total),
		zap.Int("pending", len(pending)),
		zap.Int("workers", s.pool.Cap()),
	)

	// Each task writes only its own slot.
	results := make([]batch.Result, len(pending))
	var wg sync.WaitGroup
	for i := range pending {
		p := pending[i]
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			results[i] = s.embedOne(ctx, p)
		})
		if err != nil {
			wg.Done()
			results[i] = batch.NewFailed(p.ID, fmt.Errorf("submit: %w", err))
		}
	}
	wg.Wait()

	for _, r := range results {
		metrics.IngestedTotal.WithLabelValues(string(r.Status())).Inc()
	}

	rep := Report{Summary: batch.Summarize(total, results), Results: results}
	s.logger.Info("Ingestion finished",
		zap.Int("total", rep.Total),
		zap.Int("embedded", rep.Embedded),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
	)
	return rep, nil
}

func (s *Service) embedOne(ctx context.Context, p product.Product) batch.Result {
	res := s.process(ctx, p)
	if err := res.Err(); err != nil {
		s.logger.Warn("Product ingestion failed", zap.Int64("product_id", p.ID), zap.Error(err))
	}
	return res
}

func (s *Service) process(ctx context.Context, p product.Product) batch.Result {
	if err := ctx.Err(); err != nil {
		return batch.NewFailed(p.ID, err)
	}

	doc := product.DocumentText(p)
	out, err := s.embed.Embed(ctx, doc)
	if err != nil {
		return batch.NewFailed(p.ID, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err))
	}
	if got, want := len(out.Embedding), s.catalog.Dimensions(); got != want {
		return batch.NewFailed(p.ID, domain.NewDimensionMismatch(got, want))
	}

	e, err := product.NewEmbedding(p.ID, out.Embedding, doc)
	if err != nil {
		return batch.NewFailed(p.ID, err)
	}
	if err := s.catalog.SaveEmbedding(ctx, e); err != nil {
		return batch.NewFailed(p.ID, fmt.Errorf("save embedding: %w", err))
	}
	return batch.NewEmbedded(p.ID, out.TotalTokens)
}
