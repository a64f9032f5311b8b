// Package compose turns retrieval results into the assistant's reply.
package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/llmtext"
)

// houseStyle is the reply contract: acknowledgment, structured results, follow-up offer.
const houseStyle = `You are ProductFinder, a helpful e-commerce assistant. You help shoppers discover,
compare and choose products from the store catalog.

Only recommend products that appear in the search results you are given. Never invent
products, prices or ratings.

Every reply has exactly three parts:

1. Acknowledgment: one sentence restating what the shopper asked for.

2. Results in a scannable form:
   - Several matches: ranked tiers, for example
     **Top Pick: <name>** with price, key features and who it is best for,
     **Best Value: <name>** with price and why it is good value,
     **Premium Option: <name>** with price and what the extra money buys.
     Skip a tier when the results do not support it.
   - Exactly two products being compared: a Markdown table with one column per product
     (price, main differences, best for), then a one-line recommendation.
   - No matches: say so plainly, then suggest alternatives such as broadening the price
     range, a related category or a different brand.

3. Follow-up: offer one specific next step, such as more details, a comparison,
   or a search in another price range.

Keep it concise and conversational.`

// Service composes replies with an LLM.
type Service struct {
	llm domain.Completer
}

// New creates a composer.
func New(llm domain.Completer) *Service {
	return &Service{llm: llm}
}

// Compose generates the reply for query from a formatted results block.
// Any failure, including an empty reply, wraps domain.ErrCompositionFailed.
func (s *Service) Compose(ctx context.Context, query, results string) (string, error) {
	out, err := s.llm.Complete(ctx, domain.CompletionRequest{
		System: houseStyle,
		Prompt: prompt(query, results),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCompositionFailed, err)
	}

	reply := llmtext.StripReasoning(out)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", domain.ErrCompositionFailed)
	}
	return reply, nil
}

func prompt(query, results string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %q\n\n", query)
	b.WriteString("Search Results:\n")
	b.WriteString(results)
	b.WriteString("\n\nWrite the reply now.")
	return b.String()
}
