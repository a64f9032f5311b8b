package filter

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
)

// MaxFieldLength bounds every string criterion.
const MaxFieldLength = 256

// Criteria is a sparse set of attribute constraints combined with AND.
// An empty string or nil bound means "no constraint on this field".
type Criteria struct {
	brand        string
	category     string
	nameContains string
	minPrice     *float64
	maxPrice     *float64
}

// NewCriteria validates and creates Criteria. Strings are trimmed;
// price bounds must be finite and non-negative. minPrice > maxPrice is allowed
// and simply matches nothing.
func NewCriteria(brand, category, nameContains string, minPrice, maxPrice *float64) (Criteria, error) {
	c := Criteria{
		brand:        strings.TrimSpace(brand),
		category:     strings.TrimSpace(category),
		nameContains: strings.TrimSpace(nameContains),
	}
	for _, f := range [...]struct{ key, v string }{
		{"brand", c.brand},
		{"category", c.category},
		{"name_contains", c.nameContains},
	} {
		if utf8.RuneCountInString(f.v) > MaxFieldLength {
			return Criteria{}, fmt.Errorf("%s too long (max %d chars)", f.key, MaxFieldLength)
		}
	}
	if err := validBound("min_price", minPrice); err != nil {
		return Criteria{}, err
	}
	if err := validBound("max_price", maxPrice); err != nil {
		return Criteria{}, err
	}
	c.minPrice = copyBound(minPrice)
	c.maxPrice = copyBound(maxPrice)
	return c, nil
}

func validBound(key string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Errorf("%s must be a finite number", key)
	}
	if *v < 0 {
		return fmt.Errorf("%s must be non-negative, got %v", key, *v)
	}
	return nil
}

func copyBound(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// Brand returns the brand substring constraint.
func (c Criteria) Brand() string { return c.brand }

// Category returns the category substring constraint.
func (c Criteria) Category() string { return c.category }

// NameContains returns the name substring constraint.
func (c Criteria) NameContains() string { return c.nameContains }

// MinPrice returns the inclusive lower price bound, or nil.
func (c Criteria) MinPrice() *float64 { return c.minPrice }

// MaxPrice returns the inclusive upper price bound, or nil.
func (c Criteria) MaxPrice() *float64 { return c.maxPrice }

// HasPriceBound reports whether any price bound is set.
func (c Criteria) HasPriceBound() bool { return c.minPrice != nil || c.maxPrice != nil }

// IsEmpty reports whether no constraint is set.
func (c Criteria) IsEmpty() bool {
	return c.brand == "" && c.category == "" && c.nameContains == "" && !c.HasPriceBound()
}

// Matches evaluates the criteria against a product.
// Products without a price never satisfy a price-bounded query.
func (c Criteria) Matches(p product.Product) bool {
	if !containsFold(p.Brand, c.brand) ||
		!containsFold(p.Category, c.category) ||
		!containsFold(p.Name, c.nameContains) {
		return false
	}
	if !c.HasPriceBound() {
		return true
	}
	if p.Price == nil {
		return false
	}
	if c.minPrice != nil && *p.Price < *c.minPrice {
		return false
	}
	if c.maxPrice != nil && *p.Price > *c.maxPrice {
		return false
	}
	return true
}

// String renders the set constraints for logs.
func (c Criteria) String() string {
	var parts []string
	if c.brand != "" {
		parts = append(parts, fmt.Sprintf("brand~%q", c.brand))
	}
	if c.category != "" {
		parts = append(parts, fmt.Sprintf("category~%q", c.category))
	}
	if c.nameContains != "" {
		parts = append(parts, fmt.Sprintf("name~%q", c.nameContains))
	}
	if c.minPrice != nil {
		parts = append(parts, fmt.Sprintf("price>=%v", *c.minPrice))
	}
	if c.maxPrice != nil {
		parts = append(parts, fmt.Sprintf("price<=%v", *c.maxPrice))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " AND ") + "}"
}

func containsFold(field, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), strings.ToLower(sub))
}
