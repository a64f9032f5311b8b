package productfinder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/app"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/config"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	domproduct "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/request"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/classify"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/compose"
	filteruc "github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/filter"
	healthuc "github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/health"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/ingest"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/orchestrator"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/similarity"
)

const (
	defaultReadinessTimeout = 10
	defaultIngestWorkers    = 4
	defaultStepTimeout      = 60 * time.Second
)

// Internal interfaces for substitution in tests.
type chatUseCase interface {
	Chat(ctx context.Context, query string) (orchestrator.Reply, error)
}

type similarityUseCase interface {
	Search(ctx context.Context, req request.Request) ([]result.Item, error)
}

type filterUseCase interface {
	Filter(ctx context.Context, c filter.Criteria) ([]result.Item, error)
}

type ingestUseCase interface {
	Run(ctx context.Context) (ingest.Report, error)
}

// Client is the product finder SDK entry point. It is safe for concurrent use.
type Client struct {
	closeCatalog func()
	release      func()

	topK      int
	chatSvc   chatUseCase
	simSvc    similarityUseCase
	filterSvc filterUseCase
	ingestSvc ingestUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. With WithProducts the catalog lives in memory and is
// embedded before New returns; with WithPostgres it is opened and migrated.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		topK:          request.DefaultTopK,
		ingestWorkers: defaultIngestWorkers,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("productfinder: embedder required (use WithEmbedder)")
	}
	if cfg.completer == nil {
		return nil, errors.New("productfinder: completer required (use WithCompleter)")
	}
	if cfg.dimensions <= 0 {
		return nil, errors.New("productfinder: embedding dimensions required (use WithDimensions or WithPostgres)")
	}
	if cfg.dsn != "" && len(cfg.products) > 0 {
		return nil, errors.New("productfinder: WithPostgres and WithProducts are exclusive")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	catCfg := config.CatalogConfig{
		Driver:           config.CatalogMemory,
		Dimensions:       cfg.dimensions,
		ReadinessTimeout: defaultReadinessTimeout,
	}
	if cfg.dsn != "" {
		catCfg.Driver = config.CatalogPostgres
		catCfg.DSN = cfg.dsn
	}
	catalog, closeCatalog, err := app.OpenCatalog(ctx, catCfg, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("productfinder: open catalog: %w", err)
	}

	if len(cfg.products) > 0 {
		products := make([]domproduct.Product, len(cfg.products))
		for i, p := range cfg.products {
			products[i] = productToDomain(p)
		}
		if _, err := catalog.Insert(ctx, products); err != nil {
			closeCatalog()
			return nil, fmt.Errorf("productfinder: load products: %w", err)
		}
	}

	c, err := wireClient(catalog, closeCatalog, cfg, obs)
	if err != nil {
		closeCatalog()
		return nil, err
	}

	if cfg.dsn == "" {
		rep, err := c.Ingest(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
		if rep.Failed > 0 {
			c.Close()
			return nil, fmt.Errorf("productfinder: %d of %d products could not be embedded: %w",
				rep.Failed, rep.Total, ErrEmbeddingUnavailable)
		}
	}
	return c, nil
}

func wireClient(catalog app.Catalog, closeCatalog func(), cfg *clientConfig, obs *observer) (*Client, error) {
	emb := &embedderAdapter{inner: cfg.embedder}
	llm := &completerAdapter{inner: cfg.completer}

	ingestSvc, err := ingest.New(catalog, emb, cfg.ingestWorkers, nil)
	if err != nil {
		return nil, fmt.Errorf("productfinder: %w", err)
	}

	simSvc := similarity.New(catalog, emb)
	filterSvc := filteruc.New(catalog)
	chatSvc := orchestrator.New(
		classify.New(llm), simSvc, filterSvc, compose.New(llm),
		orchestrator.Config{TopK: cfg.topK, StepTimeout: defaultStepTimeout},
		nil,
	)

	return &Client{
		closeCatalog: closeCatalog,
		release:      ingestSvc.Release,
		topK:         cfg.topK,
		chatSvc:      chatSvc,
		simSvc:       simSvc,
		filterSvc:    filterSvc,
		ingestSvc:    ingestSvc,
		healthSvc:    healthuc.New(catalog, healthuc.WithEmbedding(app.EmbeddingHealth{Embedder: emb})),
		obs:          obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
	if c.closeCatalog != nil {
		c.closeCatalog()
	}
}

// Chat answers one shopping query. Conversation history is the caller's concern.
func (c *Client) Chat(ctx context.Context, query string) (reply Reply, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("chat", start, err, "strategy", reply.Strategy, "results", len(reply.Items))
	}()

	r, err := c.chatSvc.Chat(ctx, query)
	if err != nil {
		return Reply{}, fmt.Errorf("chat: %w", err)
	}
	return replyFromDomain(r), nil
}

// SemanticSearch returns up to topK products closest to query, best first.
// topK <= 0 uses the client default.
func (c *Client) SemanticSearch(ctx context.Context, query string, topK int) (items []Item, err error) {
	start := time.Now()
	defer func() { c.obs.observe("semantic_search", start, err, "results", len(items)) }()

	if topK <= 0 {
		topK = c.topK
	}
	req, err := request.New(query, topK)
	if err != nil {
		return nil, err
	}
	found, err := c.simSvc.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return itemsFromDomain(found), nil
}

// Filter returns every product matching all present criteria, in catalog order.
func (c *Client) Filter(ctx context.Context, crit Criteria) (items []Item, err error) {
	start := time.Now()
	defer func() { c.obs.observe("filter", start, err, "results", len(items)) }()

	fc, err := filter.NewCriteria(crit.Brand, crit.Category, crit.NameContains, crit.MinPrice, crit.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	found, err := c.filterSvc.Filter(ctx, fc)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return itemsFromDomain(found), nil
}

// Ingest embeds catalog products that have no embedding yet.
func (c *Client) Ingest(ctx context.Context) (rep IngestReport, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("ingest", start, err, "embedded", rep.Embedded, "failed", rep.Failed)
	}()

	r, err := c.ingestSvc.Run(ctx)
	if err != nil {
		return IngestReport{}, fmt.Errorf("ingest: %w", err)
	}
	return IngestReport{Total: r.Total, Embedded: r.Embedded, Skipped: r.Skipped, Failed: r.Failed}, nil
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck delegates when the caller's embedder exposes one.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// completerAdapter wraps public Completer to satisfy internal domain.Completer.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	out, err := a.inner.Complete(ctx, CompletionRequest{System: req.System, Prompt: req.Prompt, JSON: req.JSON})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	domain.UsageFromContext(ctx).AddLLMCall()
	return out, nil
}
