// Package app wires configuration into stores and providers for the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/config"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/db/postgres"
	dbRedis "github.com/duylongpro99/rag-agentic-ecommerce/internal/db/redis"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
	productrepo "github.com/duylongpro99/rag-agentic-ecommerce/internal/repository/product"
)

// Catalog is everything the binaries need from a product store.
type Catalog interface {
	Dimensions() int
	Nearest(ctx context.Context, vec []float32, k int) ([]result.Item, error)
	Filter(ctx context.Context, c filter.Criteria) ([]product.Product, error)
	Count(ctx context.Context) (int, error)
	ListWithoutEmbedding(ctx context.Context) ([]product.Product, error)
	SaveEmbedding(ctx context.Context, e product.Embedding) error
	Insert(ctx context.Context, products []product.Product) (int, error)
	Ping(ctx context.Context) error
}

var (
	_ Catalog = (*productrepo.Memory)(nil)
	_ Catalog = (*pgCatalog)(nil)
)

// pgCatalog adds the pool ping to the Postgres repository.
type pgCatalog struct {
	*productrepo.Postgres
	store *postgres.Store
}

func (c *pgCatalog) Ping(ctx context.Context) error { return c.store.Ping(ctx) }

// OpenCatalog opens the configured catalog driver. The returned close func is never nil.
// The memory driver loads cfg.SeedFile when set.
func OpenCatalog(ctx context.Context, cfg config.CatalogConfig, logger *zap.Logger) (Catalog, func(), error) {
	switch cfg.Driver {
	case config.CatalogMemory:
		var products []product.Product
		if cfg.SeedFile != "" {
			var err error
			if products, err = productrepo.LoadSeed(cfg.SeedFile); err != nil {
				return nil, func() {}, err
			}
		}
		cat, err := productrepo.NewMemory(cfg.Dimensions, products)
		if err != nil {
			return nil, func() {}, fmt.Errorf("memory catalog: %w", err)
		}
		logger.Info("Using in-memory catalog", zap.Int("products", len(products)))
		return cat, func() {}, nil

	case config.CatalogPostgres:
		store, err := postgres.New(ctx, postgres.Config{DSN: cfg.DSN, MaxConns: cfg.MaxConns})
		if err != nil {
			return nil, func() {}, fmt.Errorf("postgres: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, func() {}, fmt.Errorf("catalog not ready: %w", err)
		}
		if err := store.Migrate(ctx, cfg.Dimensions); err != nil {
			store.Close()
			return nil, func() {}, fmt.Errorf("migrate: %w", err)
		}
		repo, err := productrepo.NewPostgres(ctx, store.Pool())
		if err != nil {
			store.Close()
			return nil, func() {}, err
		}
		if repo.Dimensions() != cfg.Dimensions {
			store.Close()
			return nil, func() {}, fmt.Errorf("catalog: %w",
				domain.NewDimensionMismatch(cfg.Dimensions, repo.Dimensions()))
		}
		logger.Info("Connected to catalog database", zap.Int("dimensions", repo.Dimensions()))
		return &pgCatalog{Postgres: repo, store: store}, store.Close, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// OpenCache connects the query embedding cache. It returns nil when the cache is disabled.
func OpenCache(ctx context.Context, cfg config.CacheConfig, readiness time.Duration) (*dbRedis.Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.Addrs, Password: cfg.Password})
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return store, nil
}

// EmbeddingHealth adapts an embedder to the health check contract.
// Embedders without a health endpoint always pass.
type EmbeddingHealth struct {
	Embedder domain.Embedder
}

// HealthCheck probes the provider when it supports it.
func (h EmbeddingHealth) HealthCheck(ctx context.Context) error {
	if hc, ok := h.Embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
