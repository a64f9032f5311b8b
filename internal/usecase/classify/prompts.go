package classify

import "fmt"

const classifySystem = `You route product-search queries for an online store.
Answer with exactly one lowercase word and nothing else.`

func classifyPrompt(query string) string {
	return fmt.Sprintf(`Analyze this user query and determine the best search approach:
Query: %q

Choose one:
- "semantic" for natural language descriptions (e.g., "comfortable shoes for running")
- "structured" for specific filters (e.g., "Nike shoes under $100")
- "both" for mixed queries

Respond with just the strategy name.`, query)
}

const extractSystem = `You convert shopping queries into search filters. Reply with a single JSON object only.`

func extractPrompt(query string) string {
	return fmt.Sprintf(`Extract structured filters from this query: %q

Return a JSON object with these possible keys (only include if mentioned):
- brand: string
- category: string
- min_price: number
- max_price: number
- name_contains: string

Example: {"brand": "Nike", "max_price": 100}`, query)
}
