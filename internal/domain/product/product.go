// Package product defines the read-only catalog entities.
package product

import (
	"errors"
	"fmt"
	"strconv"
)

// Product is a catalog row. Price is nil when unknown.
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

// HasPrice reports whether the product carries a known price.
func (p Product) HasPrice() bool { return p.Price != nil }

// PriceString renders the price with two decimals, or "N/A" when unknown.
func (p Product) PriceString() string {
	if p.Price == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*p.Price, 'f', 2, 64)
}

// DocumentText is the canonical text embedded for a product at ingestion time.
func DocumentText(p Product) string {
	return fmt.Sprintf("Product: %s. Brand: %s. Category: %s. Description: %s. Ideal for: %s. Price: $%s",
		p.Name, p.Brand, p.Category, p.Description, p.Usage, p.PriceString())
}

// Embedding is a stored vector for one product together with the text it was computed from.
type Embedding struct {
	productID    int64
	vector       []float32
	documentText string
}

// NewEmbedding validates and builds a product embedding.
func NewEmbedding(productID int64, vector []float32, documentText string) (Embedding, error) {
	if productID <= 0 {
		return Embedding{}, fmt.Errorf("product id must be positive, got %d", productID)
	}
	if len(vector) == 0 {
		return Embedding{}, errors.New("embedding vector is empty")
	}
	return Embedding{productID: productID, vector: vector, documentText: documentText}, nil
}

// ProductID returns the owning product id.
func (e *Embedding) ProductID() int64 { return e.productID }

// Vector returns the embedding vector.
func (e *Embedding) Vector() []float32 { return e.vector }

// Dimensions returns the vector length.
func (e *Embedding) Dimensions() int { return len(e.vector) }

// DocumentText returns the embedded source text.
func (e *Embedding) DocumentText() string { return e.documentText }
