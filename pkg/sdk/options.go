package productfinder

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	dsn        string
	products   []Product
	dimensions int

	embedder  Embedder
	completer Completer

	topK          int
	ingestWorkers int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPostgres uses a pgvector catalog. The schema is created if missing
// with an embedding column of dims dimensions.
func WithPostgres(dsn string, dims int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dsn = dsn
		c.dimensions = dims
	})
}

// WithProducts uses an in-memory catalog holding products.
// They are embedded during New.
func WithProducts(products ...Product) Option {
	return optionFunc(func(c *clientConfig) {
		c.products = append(c.products, products...)
	})
}

// WithDimensions sets the embedding width of the in-memory catalog.
func WithDimensions(dims int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dims
	})
}

// WithEmbedder sets the text embedding provider. Required.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCompleter sets the LLM used for routing and replies. Required.
func WithCompleter(l Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = l
	})
}

// WithTopK sets how many products similarity search returns. Default: 5.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithIngestWorkers sets the number of concurrent embedding calls during ingestion. Default: 4.
func WithIngestWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ingestWorkers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetrics registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
