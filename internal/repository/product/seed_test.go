package product

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestParseSeed(t *testing.T) {
	data := []byte(`
products:
  - id: 1
    name: Yoga Mat Premium
    brand: Lululemon
    price: 78.99
  - name: Gift Card
`)
	got, err := ParseSeed(data)
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	if got[0].Price == nil || *got[0].Price != 78.99 {
		t.Errorf("price not parsed: %v", got[0].Price)
	}
	if got[1].Price != nil {
		t.Error("missing price must stay nil")
	}
}

func TestParseSeed_MissingName(t *testing.T) {
	if _, err := ParseSeed([]byte("products:\n  - brand: Nike\n")); err == nil {
		t.Fatal("expected error for product without name")
	}
}

func TestLoadSeed_RepositoryFixture(t *testing.T) {
	_, b, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(b), "..", "..", "..")

	got, err := LoadSeed(filepath.Join(root, "config", "seed.yaml"))
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 seed products, got %d", len(got))
	}
	if got[0].Name != "Running Shoes Pro" || got[0].Brand != "Nike" {
		t.Errorf("unexpected first product: %+v", got[0])
	}
}
