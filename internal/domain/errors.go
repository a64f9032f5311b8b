package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals an empty or oversized user query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEmbeddingUnavailable signals that the embedding provider could not vectorize text.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrEmbeddingProviderError signals an error response from the embedding provider.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrDimensionMismatch signals that query and stored vectors differ in length.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrLLMUnavailable signals a failed text-completion call.
	ErrLLMUnavailable = errors.New("llm unavailable")
	// ErrClassificationAmbiguous signals a classifier answer outside the known labels.
	ErrClassificationAmbiguous = errors.New("classification ambiguous")
	// ErrFilterExtractionFailed signals extracted filter JSON that does not fit the criteria schema.
	ErrFilterExtractionFailed = errors.New("filter extraction failed")
	// ErrCompositionFailed signals that no reply could be composed for the turn.
	ErrCompositionFailed = errors.New("composition failed")
)

// DimensionMismatchError wraps ErrDimensionMismatch with both lengths.
type DimensionMismatchError struct {
	Query  int
	Stored int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: query has %d dimensions, catalog stores %d", ErrDimensionMismatch.Error(), e.Query, e.Stored)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(query, stored int) error {
	return &DimensionMismatchError{Query: query, Stored: stored}
}
