// Package turn holds the per-turn state carried through the routing pipeline.
// A Turn is created for one query and discarded once its reply is produced.
package turn

import (
	"errors"
	"fmt"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/filter"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/strategy"
)

// ErrInvalidTransition signals an out-of-order state change.
var ErrInvalidTransition = errors.New("invalid turn transition")

// State is a pipeline stage.
type State uint8

// Turn states in transition order.
const (
	Start State = iota
	Classified
	Retrieved
	Composed
	Done
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Classified:
		return "classified"
	case Retrieved:
		return "retrieved"
	case Composed:
		return "composed"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Fallback names a locally recovered degradation.
type Fallback string

// Recovered degradations.
const (
	FallbackClassification   Fallback = "classification_ambiguous"
	FallbackFilterExtraction Fallback = "filter_extraction_failed"
)

// Route is the retrieval path actually taken.
type Route string

// Retrieval paths.
const (
	RouteSimilarity Route = "similarity"
	RouteFilter     Route = "filter"
)

// Turn is the state of a single query/response exchange.
type Turn struct {
	query     string
	state     State
	strategy  strategy.Strategy
	criteria  *filter.Criteria
	route     Route
	items     []result.Item
	response  string
	fallbacks []Fallback
}

// New starts a turn for query.
func New(query string) *Turn {
	return &Turn{query: query, state: Start}
}

// Classify records the chosen strategy: start -> classified.
func (t *Turn) Classify(s strategy.Strategy) error {
	if !s.IsValid() {
		return fmt.Errorf("%w: strategy %v", ErrInvalidTransition, s)
	}
	if err := t.advance(Start, Classified); err != nil {
		return err
	}
	t.strategy = s
	return nil
}

// SetCriteria attaches extracted filter criteria. Only valid while classified.
func (t *Turn) SetCriteria(c filter.Criteria) error {
	if t.state != Classified {
		return fmt.Errorf("%w: criteria in state %s", ErrInvalidTransition, t.state)
	}
	t.criteria = &c
	return nil
}

// Retrieve records retrieval output: classified -> retrieved.
func (t *Turn) Retrieve(route Route, items []result.Item) error {
	if err := t.advance(Classified, Retrieved); err != nil {
		return err
	}
	t.route = route
	t.items = items
	return nil
}

// Compose records the reply: retrieved -> composed.
func (t *Turn) Compose(response string) error {
	if err := t.advance(Retrieved, Composed); err != nil {
		return err
	}
	t.response = response
	return nil
}

// Finish closes the turn: composed -> done.
func (t *Turn) Finish() (string, error) {
	if err := t.advance(Composed, Done); err != nil {
		return "", err
	}
	return t.response, nil
}

// RecordFallback notes a recovered degradation.
func (t *Turn) RecordFallback(f Fallback) { t.fallbacks = append(t.fallbacks, f) }

func (t *Turn) advance(from, to State) error {
	if t.state != from {
		return fmt.Errorf("%w: %s -> %s from %s", ErrInvalidTransition, from, to, t.state)
	}
	t.state = to
	return nil
}

// Query returns the raw user query.
func (t *Turn) Query() string { return t.query }

// State returns the current stage.
func (t *Turn) State() State { return t.state }

// Strategy returns the classified strategy.
func (t *Turn) Strategy() strategy.Strategy { return t.strategy }

// Criteria returns the extracted criteria, or nil.
func (t *Turn) Criteria() *filter.Criteria { return t.criteria }

// Route returns the retrieval path taken.
func (t *Turn) Route() Route { return t.route }

// Items returns the retrieval results.
func (t *Turn) Items() []result.Item { return t.items }

// Response returns the composed reply.
func (t *Turn) Response() string { return t.response }

// Fallbacks returns the recovered degradations in order.
func (t *Turn) Fallbacks() []Fallback { return t.fallbacks }
