package productfinder

import (
	domproduct "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/orchestrator"
)

// Product is a catalog entry. Price is nil when unknown.
// A zero ID is assigned by the in-memory catalog.
type Product struct {
	ID          int64
	Name        string
	Brand       string
	Category    string
	Description string
	Usage       string
	Price       *float64
	ImageURL    string
}

// Item is one retrieved product. Score is set for similarity results only.
type Item struct {
	Product
	Score    float64
	HasScore bool
}

// Criteria are structured filter fields. Empty strings and nil bounds are absent.
type Criteria struct {
	Brand        string
	Category     string
	NameContains string
	MinPrice     *float64
	MaxPrice     *float64
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Response  string
	Strategy  string   // semantic, structured, both
	Route     string   // similarity, filter
	Items     []Item
	Fallbacks []string // recovered degradations
}

// IngestReport counts ingestion outcomes.
type IngestReport struct {
	Total    int
	Embedded int
	Skipped  int
	Failed   int
}

func productToDomain(p Product) domproduct.Product {
	return domproduct.Product{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
		Usage:       p.Usage,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	}
}

func productFromDomain(p domproduct.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Category:    p.Category,
		Description: p.Description,
		Usage:       p.Usage,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	}
}

func itemsFromDomain(items []result.Item) []Item {
	out := make([]Item, len(items))
	for i := range items {
		score, ok := items[i].Score()
		out[i] = Item{Product: productFromDomain(items[i].Product()), Score: score, HasScore: ok}
	}
	return out
}

func replyFromDomain(r orchestrator.Reply) Reply {
	out := Reply{
		Response: r.Response,
		Strategy: r.Strategy.String(),
		Route:    string(r.Route),
		Items:    itemsFromDomain(r.Items),
	}
	for _, f := range r.Fallbacks {
		out.Fallbacks = append(out.Fallbacks, string(f))
	}
	return out
}
