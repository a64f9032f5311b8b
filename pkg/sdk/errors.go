package productfinder

import "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                = domain.ErrNotFound
	ErrInvalidQuery            = domain.ErrInvalidQuery
	ErrEmbeddingUnavailable    = domain.ErrEmbeddingUnavailable
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrDimensionMismatch       = domain.ErrDimensionMismatch
	ErrLLMUnavailable          = domain.ErrLLMUnavailable
	ErrClassificationAmbiguous = domain.ErrClassificationAmbiguous
	ErrFilterExtractionFailed  = domain.ErrFilterExtractionFailed
	ErrCompositionFailed       = domain.ErrCompositionFailed
)
