// Package ollama adapts a local Ollama server to the embedding and completion contracts.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
)

const provider = "ollama"

// DefaultBaseURL is the address of a stock local Ollama install.
const DefaultBaseURL = "http://localhost:11434"

// Config holds Ollama connection and model settings.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float32
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client embeds and completes through one Ollama server.
type Client struct {
	api         *api.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// New creates an Ollama client bound to a single model.
func New(cfg *Config) (*Client, error) {
	raw := cfg.BaseURL
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", raw, err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		api:         api.NewClient(u, httpClient),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Embed implements domain.Embedder.
func (c *Client) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	resp, err := c.api.Embed(ctx, &api.EmbedRequest{Model: c.model, Input: text})
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, c.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, c.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embed: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, c.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, c.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, c.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, c.model).Observe(duration.Seconds())
	if resp.PromptEvalCount > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(provider, c.model, "prompt").Add(float64(resp.PromptEvalCount))
		metrics.EmbeddingTokensTotal.WithLabelValues(provider, c.model, "total").Add(float64(resp.PromptEvalCount))
	}

	return domain.EmbeddingResult{
		Embedding:    resp.Embeddings[0],
		PromptTokens: resp.PromptEvalCount,
		TotalTokens:  resp.PromptEvalCount,
	}, nil
}

// Complete implements domain.Completer with a single non-streamed chat call.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	messages := make([]api.Message, 0, 2)
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	stream := false
	chatReq := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
		Options:  map[string]any{"temperature": c.temperature},
	}
	if req.JSON {
		chatReq.Format = json.RawMessage(`"json"`)
	}

	domain.UsageFromContext(ctx).AddLLMCall()
	start := time.Now()

	var out strings.Builder
	err := c.api.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(provider, c.model, "error").Inc()
		return "", fmt.Errorf("ollama chat: %v: %w", err, domain.ErrLLMUnavailable)
	}

	metrics.LLMRequestsTotal.WithLabelValues(provider, c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(provider, c.model).Observe(duration.Seconds())

	c.logger.Debug("Completion finished",
		zap.String("provider", provider),
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("reply_len", out.Len()),
	)
	return out.String(), nil
}

// HealthCheck pings the Ollama server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}
