package result

import (
	"math"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
)

// Item is a single retrieval hit. Similarity hits carry a score; filter hits do not.
type Item struct {
	product  product.Product
	score    float64
	hasScore bool
}

// NewScored creates a similarity hit with score = 1 - cosine distance.
// A NaN score (undefined cosine of a zero-norm vector) is stored as 0.
func NewScored(p product.Product, score float64) Item {
	if math.IsNaN(score) {
		score = 0
	}
	return Item{product: p, score: score, hasScore: true}
}

// NewUnscored creates a structured filter hit.
func NewUnscored(p product.Product) Item {
	return Item{product: p}
}

// Product returns the matched product.
func (i *Item) Product() product.Product { return i.product }

// Score returns the similarity score and whether one is present.
func (i *Item) Score() (float64, bool) { return i.score, i.hasScore }
