package chi

import "github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"

type itemsResponse struct {
	Items []itemDTO `json:"items"`
}

type itemDTO struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Brand           string   `json:"brand"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Usage           string   `json:"usage,omitempty"`
	Price           *float64 `json:"price"`
	ImageURL        string   `json:"image_url,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
}

func itemsToDTO(items []result.Item) []itemDTO {
	out := make([]itemDTO, len(items))
	for i := range items {
		p := items[i].Product()
		out[i] = itemDTO{
			ID:          p.ID,
			Name:        p.Name,
			Brand:       p.Brand,
			Category:    p.Category,
			Description: p.Description,
			Usage:       p.Usage,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
		}
		if score, ok := items[i].Score(); ok {
			out[i].SimilarityScore = &score
		}
	}
	return out
}
