// internal/workers/schemes/rank-category/models.go
package rankcategory

import "scheme-advisor/internal/models"

type Input struct {
	Slug     string `json:"slug"`
	MaxItems int    `json:"maxItems"`
}

type Output struct {
	Slug     string                `json:"slug"`
	Title    string                `json:"title"`
	Subtitle string                `json:"subtitle,omitempty"`
	Items    []models.ScoredScheme `json:"items"`
	Total    int                   `json:"total"`
}
