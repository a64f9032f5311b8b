package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/app"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/config"
	logpkg "github.com/duylongpro99/rag-agentic-ecommerce/internal/logger"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/provider"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/tracing"
	chiTransport "github.com/duylongpro99/rag-agentic-ecommerce/internal/transport/chi"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/classify"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/compose"
	filteruc "github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/filter"
	healthuc "github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/health"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/ingest"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/orchestrator"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/similarity"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting productfinder API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_driver", cfg.Catalog.Driver),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
		Enabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterPipelineMetrics()

	catalog, closeCatalog, err := app.OpenCatalog(ctx, cfg.Catalog, logger)
	if err != nil {
		logger.Fatal("Failed to open catalog", zap.Error(err))
	}
	defer closeCatalog()

	readiness := time.Duration(cfg.Catalog.ReadinessTimeout) * time.Second
	cacheStore, err := app.OpenCache(ctx, cfg.Cache, readiness)
	if err != nil {
		logger.Fatal("Failed to open embedding cache", zap.Error(err))
	}
	// Pass a nil interface, not a typed nil pointer, when the cache is off.
	var cache provider.Cache
	var cachePinger healthuc.Pinger
	if cacheStore != nil {
		defer cacheStore.Close()
		cache = cacheStore
		cachePinger = cacheStore
	}

	queryEmbedder, err := provider.Embedder(ctx, cfg.Embedding, provider.Query, cache,
		time.Duration(cfg.Cache.TTLSec)*time.Second, logger)
	if err != nil {
		logger.Fatal("Failed to create query embedder", zap.Error(err))
	}
	llm, err := provider.Completer(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", catalog.Dimensions()),
		zap.String("llm_model", cfg.LLM.Model),
	)

	// The memory catalog starts without embeddings.
	if cfg.Catalog.Driver == config.CatalogMemory {
		if err := embedCatalog(ctx, cfg, catalog, logger); err != nil {
			logger.Fatal("Failed to embed in-memory catalog", zap.Error(err))
		}
	}

	simSvc := similarity.New(catalog, queryEmbedder)
	filterSvc := filteruc.New(catalog)
	chat := orchestrator.New(
		classify.New(llm),
		simSvc,
		filterSvc,
		compose.New(llm),
		orchestrator.Config{
			TopK:        cfg.Pipeline.TopK,
			StepTimeout: time.Duration(cfg.Pipeline.StepTimeoutSec) * time.Second,
		},
		logger,
	)

	healthOpts := []healthuc.Option{
		healthuc.WithEmbedding(app.EmbeddingHealth{Embedder: queryEmbedder}),
		healthuc.WithLogger(logger),
	}
	if cachePinger != nil {
		healthOpts = append(healthOpts, healthuc.WithCache(cachePinger))
	}
	healthSvc := healthuc.New(catalog, healthOpts...)

	server := chiTransport.NewServer(chat, simSvc, filterSvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func embedCatalog(ctx context.Context, cfg config.Config, catalog app.Catalog, logger *zap.Logger) error {
	docEmbedder, err := provider.Embedder(ctx, cfg.Embedding, provider.Document, nil, 0, logger)
	if err != nil {
		return err
	}
	svc, err := ingest.New(catalog, docEmbedder, cfg.Ingest.Workers, logger)
	if err != nil {
		return err
	}
	defer svc.Release()

	rep, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if rep.Failed > 0 {
		logger.Warn("Some products were not embedded", zap.Int("failed", rep.Failed))
	}
	return nil
}
