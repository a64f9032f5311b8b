// Package gemini adapts the Google GenAI SDK to the embedding and completion contracts.
package gemini

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
)

const provider = "gemini"

// Task types understood by the embedding endpoint.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// Config holds Gemini API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Logger  *zap.Logger
}

func newClient(ctx context.Context, cfg *Config) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return client, nil
}

// Embedder vectorizes text with a Gemini embedding model.
type Embedder struct {
	client     *genai.Client
	model      string
	taskType   string
	dimensions int
	logger     *zap.Logger
}

// EmbedderConfig holds embedding model settings.
type EmbedderConfig struct {
	Config
	Model      string
	TaskType   string
	Dimensions int
}

// NewEmbedder creates a Gemini embedder.
func NewEmbedder(ctx context.Context, cfg *EmbedderConfig) (*Embedder, error) {
	client, err := newClient(ctx, &cfg.Config)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		client:     client,
		model:      cfg.Model,
		taskType:   cfg.TaskType,
		dimensions: cfg.Dimensions,
		logger:     logger,
	}, nil
}

// WithTaskType returns a copy of the embedder using another task type on the same client.
func (e *Embedder) WithTaskType(taskType string) *Embedder {
	cp := *e
	cp.taskType = taskType
	return &cp
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	cfg := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		cfg.OutputDimensionality = genai.Ptr(int32(e.dimensions))
	}

	start := time.Now()
	resp, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("gemini embed: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: resp.Embeddings[0].Values}, nil
}

// HealthCheck fetches the model metadata.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.Models.Get(ctx, e.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", e.model, err)
	}
	return nil
}

// Completer generates text with a Gemini model.
type Completer struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// CompleterConfig holds generation model settings.
type CompleterConfig struct {
	Config
	Model       string
	Temperature float32
}

// NewCompleter creates a Gemini completer.
func NewCompleter(ctx context.Context, cfg *CompleterConfig) (*Completer, error) {
	client, err := newClient(ctx, &cfg.Config)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Completer{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Complete implements domain.Completer.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	domain.UsageFromContext(ctx).AddLLMCall()
	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), cfg)
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(provider, c.model, "error").Inc()
		return "", fmt.Errorf("gemini generate: %v: %w", err, domain.ErrLLMUnavailable)
	}

	text := resp.Text()
	if text == "" {
		metrics.LLMRequestsTotal.WithLabelValues(provider, c.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrLLMUnavailable)
	}

	metrics.LLMRequestsTotal.WithLabelValues(provider, c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(provider, c.model).Observe(duration.Seconds())

	c.logger.Debug("Completion finished",
		zap.String("provider", provider),
		zap.String("model", c.model),
		zap.Duration("duration", duration),
	)
	return text, nil
}

// HealthCheck fetches the model metadata.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.Models.Get(ctx, c.model, nil); err != nil {
		return fmt.Errorf("get model %s: %w", c.model, err)
	}
	return nil
}
