// internal/workers/schemes/interpret-query/models.go
package interpretquery

import (
	"scheme-advisor/internal/engine/query"
	"scheme-advisor/internal/models"
)

type Input struct {
	Prompt string `json:"prompt"`
}

type Output struct {
	Signals    query.Signals         `json:"signals"`
	Items      []models.ScoredScheme `json:"items"`
	TotalFound int                   `json:"totalFound"`
	// HasResults lets a gateway branch without a FEEL expression on items.
	HasResults bool `json:"hasResults"`
}
