package compose

import (
	"fmt"
	"strings"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
)

// Empty-result notes for the two retrieval routes.
const (
	noSimilarityResults = "No products found matching your query."
	noFilterResults     = "No products found matching the specified criteria."
)

// FormatSimilarity renders similarity hits, including the score, as the text block handed to the LLM.
func FormatSimilarity(query string, items []result.Item) string {
	if len(items) == 0 {
		return noSimilarityResults
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d products matching '%s':\n\n", len(items), query)
	for i := range items {
		writeItem(&b, &items[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatFilter renders structured filter hits.
func FormatFilter(items []result.Item) string {
	if len(items) == 0 {
		return noFilterResults
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d products matching your criteria:\n\n", len(items))
	for i := range items {
		writeItem(&b, &items[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeItem(b *strings.Builder, it *result.Item) {
	p := it.Product()
	fmt.Fprintf(b, "• %s by %s\n", p.Name, p.Brand)
	fmt.Fprintf(b, "  Category: %s\n", p.Category)
	if p.HasPrice() {
		fmt.Fprintf(b, "  Price: $%s\n", p.PriceString())
	} else {
		b.WriteString("  Price: not listed\n")
	}
	fmt.Fprintf(b, "  Description: %s\n", p.Description)
	if p.Usage != "" {
		fmt.Fprintf(b, "  Ideal for: %s\n", p.Usage)
	}
	if score, ok := it.Score(); ok {
		fmt.Fprintf(b, "  Similarity: %.2f\n", score)
	}
	b.WriteString("\n")
}
