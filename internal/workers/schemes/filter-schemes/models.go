// internal/workers/schemes/filter-schemes/models.go
package filterschemes

import "scheme-advisor/internal/models"

type Input struct {
	Amount          *float64 `json:"amount"`
	Tenure          *float64 `json:"tenure"`
	PreferredPayout string   `json:"preferredPayout"`
}

type Output struct {
	LowRisk       []models.ScoredScheme `json:"lowRisk"`
	HighRisk      []models.ScoredScheme `json:"highRisk"`
	EligibleCount int                   `json:"eligibleCount"`
}
