package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	productrepo "github.com/duylongpro99/rag-agentic-ecommerce/internal/repository/product"
)

func ptr(f float64) *float64 { return &f }

func catalog(t *testing.T) *productrepo.Memory {
	t.Helper()
	m, err := productrepo.NewMemory(3, []product.Product{
		{ID: 1, Name: "Air Zoom Pegasus", Brand: "Nike", Category: "Running Shoes", Price: ptr(89.99)},
		{ID: 2, Name: "Air Max 270", Brand: "Nike", Category: "Lifestyle", Price: ptr(150)},
		{ID: 3, Name: "Ultraboost", Brand: "Adidas", Category: "Running Shoes", Price: ptr(100)},
		{ID: 4, Name: "Mystery Sneaker", Brand: "NIKE Lab", Category: "Running Shoes", Price: nil},
	})
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	return m
}

func mustCriteria(t *testing.T, brand, category, name string, minP, maxP *float64) filter.Criteria {
	t.Helper()
	c, err := filter.NewCriteria(brand, category, name, minP, maxP)
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}
	return c
}

func ids(t *testing.T, svc *Service, c filter.Criteria) []int64 {
	t.Helper()
	items, err := svc.Filter(context.Background(), c)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := it.Score(); ok {
			t.Errorf("filter results must not carry a score")
		}
		out = append(out, it.Product().ID)
	}
	return out
}

func equal(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter(t *testing.T) {
	svc := New(catalog(t))

	tests := []struct {
		name     string
		criteria filter.Criteria
		want     []int64
	}{
		{"empty criteria returns whole catalog", mustCriteria(t, "", "", "", nil, nil), []int64{1, 2, 3, 4}},
		{"nike under 100", mustCriteria(t, "Nike", "", "", nil, ptr(100)), []int64{1}},
		{"brand is case-insensitive substring", mustCriteria(t, "nike", "", "", nil, nil), []int64{1, 2, 4}},
		{"inclusive bounds", mustCriteria(t, "", "", "", ptr(100), ptr(150)), []int64{2, 3}},
		{"null price excluded by min bound", mustCriteria(t, "", "running", "", ptr(0), nil), []int64{1, 3}},
		{"name contains", mustCriteria(t, "", "", "air", nil, nil), []int64{1, 2}},
		{"min above max matches nothing", mustCriteria(t, "", "", "", ptr(200), ptr(10)), []int64{}},
		{"no match", mustCriteria(t, "Puma", "", "", nil, nil), []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(t, svc, tt.criteria); !equal(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

type failingCatalog struct{ err error }

func (f failingCatalog) Filter(context.Context, filter.Criteria) ([]product.Product, error) {
	return nil, f.err
}

func TestFilter_StoreError(t *testing.T) {
	boom := errors.New("pool closed")
	svc := New(failingCatalog{err: boom})

	if _, err := svc.Filter(context.Background(), filter.Criteria{}); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
