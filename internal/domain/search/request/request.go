package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
)

// Query limits.
const (
	// MaxQueryLength is the maximum allowed query length in characters.
	MaxQueryLength = 4096
	DefaultTopK    = 5
	MaxTopK        = 100
)

// Request is a validated similarity query.
type Request struct {
	query string
	topK  int
}

// New validates and normalizes a similarity query.
// topK <= 0 selects DefaultTopK; values above MaxTopK are clamped.
func New(query string, topK int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	return Request{query: query, topK: topK}, nil
}

// Query returns the trimmed query text.
func (r *Request) Query() string { return r.query }

// TopK returns the number of results to return.
func (r *Request) TopK() int { return r.topK }
