package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/db"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	domproduct "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/product"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
)

// querier is the consumer interface over a pgx pool (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements the catalog over products/product_embeddings with pgvector.
type Postgres struct {
	q    querier
	dims int
}

// NewPostgres creates a catalog repository. The stored embedding width is read
// from the column type so that query vectors can be checked before searching.
func NewPostgres(ctx context.Context, q querier) (*Postgres, error) {
	var dims int
	err := q.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = 'product_embeddings'::regclass AND attname = 'embedding'`,
	).Scan(&dims)
	if err != nil {
		return nil, &db.Error{Op: db.OpSchema, Err: fmt.Errorf("read embedding dimensions: %w", err)}
	}
	if dims <= 0 {
		return nil, fmt.Errorf("embedding column has no fixed dimension")
	}
	return &Postgres{q: q, dims: dims}, nil
}

// Dimensions returns the stored embedding width.
func (r *Postgres) Dimensions() int { return r.dims }

// nearestSQL ranks products by their closest embedding. pgvector yields NaN
// cosine distance for a zero-norm operand; that case is pinned to distance 1.
const nearestSQL = `
	SELECT ` + productColumns + `, 1 - best.distance AS similarity
	FROM (
		SELECT DISTINCT ON (pe.product_id) pe.product_id,
			COALESCE(NULLIF(pe.embedding <=> $1, 'NaN'::float8), 1) AS distance
		FROM product_embeddings pe
		ORDER BY pe.product_id, distance
	) best
	JOIN products p ON p.id = best.product_id
	ORDER BY best.distance, p.id
	LIMIT $2`

// Nearest returns up to k products ordered by cosine distance to vec, ties by id.
// A product with several embeddings is represented by its closest one.
func (r *Postgres) Nearest(ctx context.Context, vec []float32, k int) ([]result.Item, error) {
	if len(vec) != r.dims {
		return nil, domain.NewDimensionMismatch(len(vec), r.dims)
	}

	rows, err := r.q.Query(ctx, nearestSQL, pgvector.NewVector(vec), k)
	if err != nil {
		return nil, mapQueryErr(err, len(vec), r.dims)
	}
	defer rows.Close()

	items := make([]result.Item, 0, k)
	for rows.Next() {
		var row productRow
		var score float64
		if err := rows.Scan(append(row.dest(), &score)...); err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		items = append(items, result.NewScored(row.toDomain(), score))
	}
	if err := rows.Err(); err != nil {
		return nil, mapQueryErr(err, len(vec), r.dims)
	}
	return items, nil
}

// Filter returns every product matching c in id order.
func (r *Postgres) Filter(ctx context.Context, c filter.Criteria) ([]domproduct.Product, error) {
	sql, args := buildFilterQuery(c)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return collectProducts(rows)
}

// ListWithoutEmbedding returns products that have no stored embedding yet.
func (r *Postgres) ListWithoutEmbedding(ctx context.Context) ([]domproduct.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p
		WHERE NOT EXISTS (SELECT 1 FROM product_embeddings pe WHERE pe.product_id = p.id)
		ORDER BY p.id`)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	return collectProducts(rows)
}

// SaveEmbedding stores one embedding row.
func (r *Postgres) SaveEmbedding(ctx context.Context, e domproduct.Embedding) error {
	if e.Dimensions() != r.dims {
		return domain.NewDimensionMismatch(e.Dimensions(), r.dims)
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO product_embeddings (product_id, embedding, document_text) VALUES ($1, $2, $3)`,
		e.ProductID(), pgvector.NewVector(e.Vector()), e.DocumentText(),
	)
	if err != nil {
		return &db.Error{Op: db.OpExec, Err: err}
	}
	return nil
}

// Count returns the number of catalog products.
func (r *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpQuery, Err: err}
	}
	return n, nil
}

// Insert adds products in one transaction, assigning ids from the sequence.
// Either every product is stored or none is.
func (r *Postgres) Insert(ctx context.Context, products []domproduct.Product) (int, error) {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return 0, &db.Error{Op: db.OpExec, Err: fmt.Errorf("begin insert: %w", err)}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, p := range products {
		_, err := tx.Exec(ctx, `
			INSERT INTO products (name, brand, category, description, usage, price, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.Name, p.Brand, p.Category, p.Description, p.Usage, p.Price, p.ImageURL,
		)
		if err != nil {
			return 0, &db.Error{Op: db.OpExec, Err: fmt.Errorf("insert %q: %w", p.Name, err)}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, &db.Error{Op: db.OpExec, Err: fmt.Errorf("commit insert: %w", err)}
	}
	return len(products), nil
}

// buildFilterQuery renders AND-combined ILIKE and price predicates.
func buildFilterQuery(c filter.Criteria) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if c.Brand() != "" {
		add(`p.brand ILIKE '%%' || $%d || '%%'`, escapeLike(c.Brand()))
	}
	if c.Category() != "" {
		add(`p.category ILIKE '%%' || $%d || '%%'`, escapeLike(c.Category()))
	}
	if c.NameContains() != "" {
		add(`p.name ILIKE '%%' || $%d || '%%'`, escapeLike(c.NameContains()))
	}
	if c.MinPrice() != nil {
		add(`p.price >= $%d`, *c.MinPrice())
	}
	if c.MaxPrice() != nil {
		add(`p.price <= $%d`, *c.MaxPrice())
	}

	sql := `SELECT ` + productColumns + ` FROM products p`
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, ` AND `)
	}
	return sql + ` ORDER BY p.id`, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// mapQueryErr turns pgvector's dimension error into the domain error.
func mapQueryErr(err error, query, stored int) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.Message, "different vector dimensions") {
		return domain.NewDimensionMismatch(query, stored)
	}
	return &db.Error{Op: db.OpQuery, Err: err}
}
