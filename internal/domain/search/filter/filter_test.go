package filter

import (
	"math"
	"strings"
	"testing"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
)

func ptr(f float64) *float64 { return &f }

func mustCriteria(t *testing.T, brand, category, name string, minP, maxP *float64) Criteria {
	t.Helper()
	c, err := NewCriteria(brand, category, name, minP, maxP)
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}
	return c
}

func TestNewCriteria_TrimsAndCopies(t *testing.T) {
	maxP := 100.0
	c := mustCriteria(t, "  Nike ", "", "", nil, &maxP)
	maxP = 5

	if c.Brand() != "Nike" {
		t.Errorf("Brand() = %q", c.Brand())
	}
	if *c.MaxPrice() != 100 {
		t.Errorf("MaxPrice() = %v, want copy of 100", *c.MaxPrice())
	}
}

func TestNewCriteria_Invalid(t *testing.T) {
	tests := []struct {
		name string
		minP *float64
		maxP *float64
	}{
		{"negative min", ptr(-1), nil},
		{"nan max", nil, ptr(math.NaN())},
		{"inf min", ptr(math.Inf(1)), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCriteria("", "", "", tt.minP, tt.maxP); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewCriteria_LengthCountsCharacters(t *testing.T) {
	// 200 characters, 500 bytes
	brand := strings.Repeat("\u0110\u1ea1", 100)
	if _, err := NewCriteria(brand, "", "", nil, nil); err != nil {
		t.Fatalf("multi-byte brand within limit rejected: %v", err)
	}

	long := strings.Repeat("\u0103", MaxFieldLength+1)
	for i := 0; i < 5; i++ {
		_, err := NewCriteria(long, long, "", nil, nil)
		if err == nil || !strings.HasPrefix(err.Error(), "brand too long") {
			t.Fatalf("expected brand reported first, got %v", err)
		}
	}
}

func TestCriteria_IsEmpty(t *testing.T) {
	if !mustCriteria(t, " ", "", "", nil, nil).IsEmpty() {
		t.Error("whitespace-only criteria should be empty")
	}
	if mustCriteria(t, "", "", "", ptr(0), nil).IsEmpty() {
		t.Error("zero min price is a constraint")
	}
}

func TestCriteria_Matches(t *testing.T) {
	shoes := product.Product{ID: 1, Name: "Running Shoes Pro", Brand: "Nike", Category: "Footwear", Price: ptr(129.99)}
	cheap := product.Product{ID: 2, Name: "Trail Runner", Brand: "NIKE Outdoor", Category: "Footwear", Price: ptr(89.5)}
	unpriced := product.Product{ID: 3, Name: "Sample Sneaker", Brand: "Nike", Category: "Footwear"}

	tests := []struct {
		name string
		c    Criteria
		p    product.Product
		want bool
	}{
		{"empty matches all", Criteria{}, unpriced, true},
		{"brand case-insensitive substring", mustCriteria(t, "nike", "", "", nil, nil), cheap, true},
		{"category mismatch", mustCriteria(t, "", "electronics", "", nil, nil), shoes, false},
		{"name substring", mustCriteria(t, "", "", "shoes", nil, nil), shoes, true},
		{"max inclusive", mustCriteria(t, "", "", "", nil, ptr(129.99)), shoes, true},
		{"min inclusive", mustCriteria(t, "", "", "", ptr(129.99), nil), shoes, true},
		{"above max", mustCriteria(t, "nike", "", "", nil, ptr(100)), shoes, false},
		{"below max", mustCriteria(t, "nike", "", "", nil, ptr(100)), cheap, true},
		{"null price excluded by min", mustCriteria(t, "", "", "", ptr(0), nil), unpriced, false},
		{"null price excluded by max", mustCriteria(t, "", "", "", nil, ptr(1000)), unpriced, false},
		{"null price kept without bounds", mustCriteria(t, "nike", "", "", nil, nil), unpriced, true},
		{"inverted bounds match nothing", mustCriteria(t, "", "", "", ptr(200), ptr(100)), shoes, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Matches(tt.p); got != tt.want {
				t.Errorf("Matches() = %v, want %v (criteria %s)", got, tt.want, tt.c)
			}
		})
	}
}

func TestCriteria_String(t *testing.T) {
	c := mustCriteria(t, "Nike", "", "", nil, ptr(100))
	if got := c.String(); got != `{brand~"Nike" AND price<=100}` {
		t.Errorf("String() = %s", got)
	}
	if got := (Criteria{}).String(); got != "{}" {
		t.Errorf("empty String() = %s", got)
	}
}
