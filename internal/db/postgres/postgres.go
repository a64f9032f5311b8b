// Package postgres opens the catalog database: a pgx pool with pgvector types
// registered on every connection.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/db"
)

var _ db.Readiness = (*Store)(nil)

// ErrVectorExtensionMissing signals a database without the pgvector extension.
var ErrVectorExtensionMissing = errors.New("pgvector extension not installed")

// hnsw indexes are limited to 2000 dimensions; larger vectors fall back to exact scans.
const maxIndexedDimensions = 2000

// Config holds connection parameters.
type Config struct {
	DSN      string
	MaxConns int32
}

// Store owns the connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New parses the DSN and creates a pool. Connections are established lazily.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool exposes the pool to repositories.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases all pooled connections.
func (s *Store) Close() { s.pool.Close() }

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Migrate creates the vector extension, the catalog tables and the cosine index.
// It is idempotent. dims fixes the embedding column width for the catalog.
func (s *Store) Migrate(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", dims)
	}
	for _, stmt := range schemaStatements(dims) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpSchema, Err: err}
		}
	}
	return nil
}

// CheckVectorExtension fails fast when pgvector is missing.
func (s *Store) CheckVectorExtension(ctx context.Context) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector')",
	).Scan(&exists)
	if err != nil {
		return &db.Error{Op: db.OpQuery, Err: err}
	}
	if !exists {
		return ErrVectorExtensionMissing
	}
	return nil
}

func schemaStatements(dims int) []string {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS products (
			id          BIGSERIAL PRIMARY KEY,
			name        VARCHAR(255) NOT NULL,
			brand       VARCHAR(100) NOT NULL DEFAULT '',
			category    VARCHAR(100) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			usage       TEXT NOT NULL DEFAULT '',
			price       NUMERIC(10, 2) CHECK (price >= 0),
			image_url   VARCHAR(500) NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS product_embeddings (
			id            BIGSERIAL PRIMARY KEY,
			product_id    BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			embedding     vector(%d) NOT NULL,
			document_text TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dims),
		`CREATE INDEX IF NOT EXISTS product_embeddings_product_id_idx ON product_embeddings (product_id)`,
	}
	if dims <= maxIndexedDimensions {
		stmts = append(stmts,
			`CREATE INDEX IF NOT EXISTS product_embeddings_embedding_idx
			 ON product_embeddings USING hnsw (embedding vector_cosine_ops)`)
	}
	return stmts
}
