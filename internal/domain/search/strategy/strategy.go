// Package strategy defines the closed set of retrieval strategies a query can be routed to.
package strategy

import (
	"fmt"
	"strings"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
)

// Strategy is one of Semantic, Structured or Both. The zero value is invalid.
type Strategy uint8

const (
	invalid Strategy = iota
	// Semantic routes free-text descriptive intent to similarity search.
	Semantic
	// Structured routes explicit attribute constraints to the filter engine.
	Structured
	// Both marks mixed intent. It is served by similarity search alone.
	Both
)

// Default is used whenever the classifier answer cannot be parsed.
const Default = Semantic

// String returns the wire label.
func (s Strategy) String() string {
	switch s {
	case Semantic:
		return "semantic"
	case Structured:
		return "structured"
	case Both:
		return "both"
	default:
		return "invalid"
	}
}

// IsValid reports whether s is one of the three strategies.
func (s Strategy) IsValid() bool { return s >= Semantic && s <= Both }

// Parse normalizes a raw label and maps it to a Strategy.
// Surrounding whitespace, quotes, markdown emphasis and trailing punctuation are ignored.
// Anything else wraps domain.ErrClassificationAmbiguous.
func Parse(raw string) (Strategy, error) {
	label := strings.ToLower(strings.TrimSpace(raw))
	label = strings.Trim(label, "\"'`*_.!:;, \t\r\n")
	switch label {
	case "semantic":
		return Semantic, nil
	case "structured":
		return Structured, nil
	case "both":
		return Both, nil
	default:
		return invalid, fmt.Errorf("%w: %q", domain.ErrClassificationAmbiguous, truncate(raw, 64))
	}
}

// ParseOrDefault parses raw and falls back to Default. The error is returned
// alongside the fallback so callers can log and count the recovery.
func ParseOrDefault(raw string) (Strategy, error) {
	s, err := Parse(raw)
	if err != nil {
		return Default, err
	}
	return s, nil
}

// Match dispatches on s. Every branch must be supplied; an invalid strategy
// takes the Default branch.
func Match[T any](s Strategy, semantic, structured, both func() T) T {
	switch s {
	case Structured:
		return structured()
	case Both:
		return both()
	default:
		return semantic()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
