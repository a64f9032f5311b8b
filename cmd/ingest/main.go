// Command ingest embeds catalog products that have no embedding yet.
// It is the only writer of the catalog.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/app"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/config"
	logpkg "github.com/duylongpro99/rag-agentic-ecommerce/internal/logger"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/provider"
	productrepo "github.com/duylongpro99/rag-agentic-ecommerce/internal/repository/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/ingest"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/version"
)

func main() {
	seed := flag.Bool("seed", false, "insert the seed catalog when the products table is empty")
	seedFile := flag.String("seed-file", "", "seed catalog path (default: catalog.seed_file)")
	flag.Parse()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ingestion",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("workers", cfg.Ingest.Workers),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	if cfg.Catalog.Driver != config.CatalogPostgres {
		logger.Fatal("Ingestion needs a persistent catalog", zap.String("driver", cfg.Catalog.Driver))
	}

	catalog, closeCatalog, err := app.OpenCatalog(ctx, cfg.Catalog, logger)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer closeCatalog()

	if *seed {
		path := *seedFile
		if path == "" {
			path = cfg.Catalog.SeedFile
		}
		if err := seedCatalog(ctx, catalog, path, logger); err != nil {
			logger.Fatal("Failed to seed catalog", zap.Error(err))
		}
	}

	embedder, err := provider.Embedder(ctx, cfg.Embedding, provider.Document, nil, 0, logger)
	if err != nil {
		logger.Fatal("Failed to create document embedder", zap.Error(err))
	}

	svc, err := ingest.New(catalog, embedder, cfg.Ingest.Workers, logger)
	if err != nil {
		logger.Fatal("Failed to create ingestion service", zap.Error(err))
	}
	defer svc.Release()

	rep, err := svc.Run(ctx)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}
	if rep.Failed > 0 {
		logger.Error("Ingestion finished with failures", zap.Int("failed", rep.Failed))
		os.Exit(1)
	}
}

func seedCatalog(ctx context.Context, catalog app.Catalog, path string, logger *zap.Logger) error {
	n, err := catalog.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Catalog not empty, skipping seed", zap.Int("products", n))
		return nil
	}
	if path == "" {
		logger.Warn("No seed file configured")
		return nil
	}
	products, err := productrepo.LoadSeed(path)
	if err != nil {
		return err
	}
	inserted, err := catalog.Insert(ctx, products)
	if err != nil {
		return err
	}
	logger.Info("Seeded catalog", zap.Int("products", inserted), zap.String("file", path))
	return nil
}
