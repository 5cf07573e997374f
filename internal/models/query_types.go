// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeSearch   QueryType = "search"
	QueryTypeCategory QueryType = "category"
	QueryTypeBank     QueryType = "bank"
	QueryTypeRisk     QueryType = "risk"
	QueryTypeTenure   QueryType = "tenure"
	QueryTypeAll      QueryType = "all"
)

// CatalogOverview summarises the catalog for the "all" data query.
type CatalogOverview struct {
	TotalSchemes  int                `json:"totalSchemes"`
	Categories    []string           `json:"categories"`
	Banks         []string           `json:"banks"`
	RiskLevels    []string           `json:"riskLevels"`
	SampleSchemes []NormalizedScheme `json:"sampleSchemes"`
}
