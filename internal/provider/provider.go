// Package provider selects Embedder and Completer implementations from configuration.
package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/config"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/repository/embcache"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/transport/gemini"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/transport/ollama"
	openaiTransport "github.com/duylongpro99/rag-agentic-ecommerce/internal/transport/openai"
	embeddinguc "github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/embedding"
)

// Side selects the query-time or ingestion-time embedding chain.
type Side uint8

// Embedding sides.
const (
	Query Side = iota + 1
	Document
)

func (s Side) String() string {
	if s == Document {
		return "document"
	}
	return "query"
}

// Cache is the key-value store backing the query embedding cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Embedder assembles the decorator chain: base -> Cached (query side) -> Instrumented -> Instruction.
// cache may be nil.
func Embedder(ctx context.Context, cfg config.EmbeddingConfig, side Side, cache Cache, cacheTTL time.Duration, logger *zap.Logger) (domain.Embedder, error) {
	base, err := baseEmbedder(ctx, cfg, side, logger)
	if err != nil {
		return nil, err
	}

	var embedder domain.Embedder = base
	if cache != nil && side == Query {
		namespace := fmt.Sprintf("%s:%s:%d", cfg.Provider, cfg.Model, cfg.Dimensions)
		embedder = embcache.New(base, cache, namespace, cacheTTL, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, logger)

	instruction := cfg.QueryInstruction
	if side == Document {
		instruction = cfg.DocumentInstruction
	}
	// Outermost so the cache key covers the instruction.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction), nil
	}
	return embedder, nil
}

func baseEmbedder(ctx context.Context, cfg config.EmbeddingConfig, side Side, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	case config.ProviderGemini:
		task := gemini.TaskRetrievalQuery
		if side == Document {
			task = gemini.TaskRetrievalDocument
		}
		emb, err := gemini.NewEmbedder(ctx, &gemini.EmbedderConfig{
			Config:     gemini.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Logger: logger},
			Model:      cfg.Model,
			TaskType:   task,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini embedder: %w", err)
		}
		return emb, nil
	case config.ProviderOllama:
		c, err := ollama.New(&ollama.Config{BaseURL: cfg.BaseURL, Model: cfg.Model, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("ollama embedder: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// Completer builds the instrumented LLM used for routing, extraction and composition.
func Completer(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (domain.Completer, error) {
	var base domain.Completer
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			Config: openaiTransport.Config{
				APIKey:   cfg.APIKey,
				BaseURL:  cfg.BaseURL,
				Model:    cfg.Model,
				Provider: cfg.Provider,
				Logger:   logger,
			},
			Temperature: cfg.Temperature,
		})
	case config.ProviderGemini:
		c, err := gemini.NewCompleter(ctx, &gemini.CompleterConfig{
			Config:      gemini.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Logger: logger},
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini completer: %w", err)
		}
		base = c
	case config.ProviderOllama:
		c, err := ollama.New(&ollama.Config{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("ollama completer: %w", err)
		}
		base = c
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	return embeddinguc.NewInstrumentedCompleter(base, cfg.Provider, cfg.Model, logger), nil
}
