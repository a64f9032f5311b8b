package product

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	domproduct "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
)

// Memory is an in-process catalog with exact cosine search. It serves tests,
// the SDK and the memory catalog driver. Reads may run concurrently with ingestion.
type Memory struct {
	dims int

	mu         sync.RWMutex
	products   []domproduct.Product // id order
	embeddings map[int64][][]float32
}

// NewMemory creates a catalog with fixed embedding width dims.
func NewMemory(dims int, products []domproduct.Product) (*Memory, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dims)
	}
	m := &Memory{dims: dims, embeddings: make(map[int64][][]float32)}
	if _, err := m.Insert(context.Background(), products); err != nil {
		return nil, err
	}
	return m, nil
}

// Dimensions returns the stored embedding width.
func (m *Memory) Dimensions() int { return m.dims }

// Nearest scans every stored embedding.
func (m *Memory) Nearest(_ context.Context, vec []float32, k int) ([]result.Item, error) {
	if len(vec) != m.dims {
		return nil, domain.NewDimensionMismatch(len(vec), m.dims)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	type hit struct {
		p        domproduct.Product
		distance float64
	}
	hits := make([]hit, 0, len(m.embeddings))
	for _, p := range m.products {
		vecs, ok := m.embeddings[p.ID]
		if !ok {
			continue
		}
		best := 2.0
		for _, v := range vecs {
			best = min(best, cosineDistance(vec, v))
		}
		hits = append(hits, hit{p: p, distance: best})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].p.ID < hits[j].p.ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	items := make([]result.Item, len(hits))
	for i, h := range hits {
		items[i] = result.NewScored(h.p, 1-h.distance)
	}
	return items, nil
}

// Filter evaluates c against every product in id order.
func (m *Memory) Filter(_ context.Context, c filter.Criteria) ([]domproduct.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domproduct.Product{}
	for _, p := range m.products {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListWithoutEmbedding returns products that have no stored embedding yet.
func (m *Memory) ListWithoutEmbedding(_ context.Context) ([]domproduct.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domproduct.Product{}
	for _, p := range m.products {
		if _, ok := m.embeddings[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SaveEmbedding stores one embedding for an existing product.
func (m *Memory) SaveEmbedding(_ context.Context, e domproduct.Embedding) error {
	if e.Dimensions() != m.dims {
		return domain.NewDimensionMismatch(e.Dimensions(), m.dims)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.find(e.ProductID()); !ok {
		return fmt.Errorf("product %d: %w", e.ProductID(), domain.ErrNotFound)
	}
	m.embeddings[e.ProductID()] = append(m.embeddings[e.ProductID()], slices.Clone(e.Vector()))
	return nil
}

// Ping always succeeds; the catalog lives in process.
func (m *Memory) Ping(context.Context) error { return nil }

// Count returns the number of catalog products.
func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.products), nil
}

// Insert adds products. A zero ID is assigned the next free id.
// Either every product is added or none is.
func (m *Memory) Insert(_ context.Context, products []domproduct.Product) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next int64
	taken := make(map[int64]bool, len(m.products)+len(products))
	for _, p := range m.products {
		next = max(next, p.ID)
		taken[p.ID] = true
	}
	for _, p := range products {
		next = max(next, p.ID)
	}

	staged := make([]domproduct.Product, 0, len(products))
	for _, p := range products {
		if p.ID == 0 {
			next++
			p.ID = next
		}
		if taken[p.ID] {
			return 0, fmt.Errorf("product %d already exists", p.ID)
		}
		if p.Price != nil && *p.Price < 0 {
			return 0, fmt.Errorf("product %d: negative price", p.ID)
		}
		taken[p.ID] = true
		staged = append(staged, p)
	}

	m.products = append(m.products, staged...)
	slices.SortFunc(m.products, func(a, b domproduct.Product) int { return cmp.Compare(a.ID, b.ID) })
	return len(staged), nil
}

func (m *Memory) find(id int64) (int, bool) {
	return slices.BinarySearchFunc(m.products, id, func(p domproduct.Product, id int64) int {
		return cmp.Compare(p.ID, id)
	})
}
