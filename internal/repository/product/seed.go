package product

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	domproduct "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	ID          int64    `yaml:"id"`
	Name        string   `yaml:"name"`
	Brand       string   `yaml:"brand"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Usage       string   `yaml:"usage"`
	Price       *float64 `yaml:"price"`
	ImageURL    string   `yaml:"image_url"`
}

// LoadSeed reads a YAML catalog fixture.
func LoadSeed(path string) ([]domproduct.Product, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML catalog fixture.
func ParseSeed(data []byte) ([]domproduct.Product, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	out := make([]domproduct.Product, 0, len(f.Products))
	for i, p := range f.Products {
		if p.Name == "" {
			return nil, fmt.Errorf("seed product #%d: name is required", i)
		}
		out = append(out, domproduct.Product{
			ID:          p.ID,
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    p.Category,
			Description: p.Description,
			Usage:       p.Usage,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		})
	}
	return out, nil
}
