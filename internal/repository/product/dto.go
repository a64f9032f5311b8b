package product

import (
	"github.com/jackc/pgx/v5"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/db"
	domproduct "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
)

const productColumns = `p.id, p.name, p.brand, p.category, p.description, p.usage, p.price::float8, p.image_url`

// productRow mirrors productColumns.
type productRow struct {
	id          int64
	name        string
	brand       string
	category    string
	description string
	usage       string
	price       *float64
	imageURL    string
}

func (r *productRow) dest() []any {
	return []any{&r.id, &r.name, &r.brand, &r.category, &r.description, &r.usage, &r.price, &r.imageURL}
}

func (r *productRow) toDomain() domproduct.Product {
	return domproduct.Product{
		ID:          r.id,
		Name:        r.name,
		Brand:       r.brand,
		Category:    r.category,
		Description: r.description,
		Usage:       r.usage,
		Price:       r.price,
		ImageURL:    r.imageURL,
	}
}

func collectProducts(rows pgx.Rows) ([]domproduct.Product, error) {
	defer rows.Close()

	products := []domproduct.Product{}
	for rows.Next() {
		var row productRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		products = append(products, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return products, nil
}
