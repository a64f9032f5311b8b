// Package batch holds per-product outcomes of embedding ingestion.
package batch

// ItemStatus is the processing outcome of a single product.
type ItemStatus string

// Item status values.
const (
	StatusEmbedded ItemStatus = "embedded"
	StatusFailed   ItemStatus = "failed"
)

// Result is the outcome of embedding one product.
type Result struct {
	productID int64
	status    ItemStatus
	tokens    int
	err       error
}

// NewEmbedded creates a successful result.
func NewEmbedded(productID int64, tokens int) Result {
	return Result{productID: productID, status: StatusEmbedded, tokens: tokens}
}

// NewFailed creates a failed result.
func NewFailed(productID int64, err error) Result {
	return Result{productID: productID, status: StatusFailed, err: err}
}

// ProductID returns the product identifier.
func (r Result) ProductID() int64 { return r.productID }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Tokens returns embedding tokens consumed, when the provider reports them.
func (r Result) Tokens() int { return r.tokens }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary counts outcomes of one ingestion run.
type Summary struct {
	Total    int // catalog size at start
	Embedded int
	Skipped  int // already had an embedding
	Failed   int
}

// Summarize counts results against the catalog size.
func Summarize(total int, results []Result) Summary {
	s := Summary{Total: total, Skipped: max(total-len(results), 0)}
	for _, r := range results {
		switch r.status {
		case StatusEmbedded:
			s.Embedded++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
