// Package classify turns a raw query into a retrieval strategy and, for
// structured queries, into filter criteria. Both steps are single LLM calls.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/strategy"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/llmtext"
)

// Service asks the LLM for routing labels and filter JSON.
type Service struct {
	llm domain.Completer
}

// New creates a classifier.
func New(llm domain.Completer) *Service {
	return &Service{llm: llm}
}

// Classify returns the strategy for query. On any failure it returns
// strategy.Default together with an error wrapping domain.ErrClassificationAmbiguous,
// so the caller can log the recovery and carry on.
func (s *Service) Classify(ctx context.Context, query string) (strategy.Strategy, error) {
	out, err := s.llm.Complete(ctx, domain.CompletionRequest{
		System: classifySystem,
		Prompt: classifyPrompt(query),
	})
	if err != nil {
		return strategy.Default, fmt.Errorf("%w: %w", domain.ErrClassificationAmbiguous, err)
	}
	return strategy.ParseOrDefault(llmtext.StripReasoning(out))
}

// extraction mirrors the five recognised filter keys. Pointers keep null and absent apart from zero.
type extraction struct {
	Brand        *string  `json:"brand"`
	Category     *string  `json:"category"`
	MinPrice     *float64 `json:"min_price"`
	MaxPrice     *float64 `json:"max_price"`
	NameContains *string  `json:"name_contains"`
}

// Extract converts query into filter criteria. Every failure, including an
// LLM error, wraps domain.ErrFilterExtractionFailed.
func (s *Service) Extract(ctx context.Context, query string) (filter.Criteria, error) {
	out, err := s.llm.Complete(ctx, domain.CompletionRequest{
		System: extractSystem,
		Prompt: extractPrompt(query),
		JSON:   true,
	})
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: %w", domain.ErrFilterExtractionFailed, err)
	}
	return ParseCriteria(out)
}

// ParseCriteria decodes LLM output into filter criteria. Reasoning blocks,
// code fences and prose around the first JSON object are tolerated; unknown
// keys and wrongly typed values are not.
func ParseCriteria(raw string) (filter.Criteria, error) {
	obj, ok := llmtext.ExtractJSONObject(llmtext.StripReasoning(raw))
	if !ok {
		return filter.Criteria{}, fmt.Errorf("%w: no JSON object in reply", domain.ErrFilterExtractionFailed)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.DisallowUnknownFields()
	var ex extraction
	if err := dec.Decode(&ex); err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: %w", domain.ErrFilterExtractionFailed, err)
	}

	c, err := filter.NewCriteria(deref(ex.Brand), deref(ex.Category), deref(ex.NameContains), ex.MinPrice, ex.MaxPrice)
	if err != nil {
		return filter.Criteria{}, fmt.Errorf("%w: %w", domain.ErrFilterExtractionFailed, err)
	}
	return c, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
