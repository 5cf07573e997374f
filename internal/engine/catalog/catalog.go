// internal/engine/catalog/catalog.go
package catalog

import (
	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

const overviewSampleSize = 5

// Catalog is the normalized, read-only scheme collection. It is built once at
// startup and shared by every request without locking.
type Catalog struct {
	schemes      []models.NormalizedScheme
	byID         map[string]int
	providers    map[string]models.ProviderMeta
	providerKeys map[string]string
	duplicates   []string
}

// New normalizes schemes in order. When two records share a plan_id the first
// one wins and the id is reported by Duplicates.
func New(schemes []models.Scheme, providers map[string]models.ProviderMeta) *Catalog {
	c := &Catalog{
		schemes:      make([]models.NormalizedScheme, 0, len(schemes)),
		byID:         make(map[string]int, len(schemes)),
		providers:    make(map[string]models.ProviderMeta, len(providers)),
		providerKeys: make(map[string]string, len(providers)),
	}

	for _, s := range schemes {
		if _, seen := c.byID[s.PlanID]; seen {
			c.duplicates = append(c.duplicates, s.PlanID)
			continue
		}
		c.byID[s.PlanID] = len(c.schemes)
		c.schemes = append(c.schemes, Normalize(s))
	}

	for name, meta := range providers {
		c.providers[name] = meta
		c.providerKeys[fields.Fold(name)] = name
	}
	return c
}

// All returns the schemes in load order. Callers must not modify the slice.
func (c *Catalog) All() []models.NormalizedScheme {
	return c.schemes
}

func (c *Catalog) Len() int {
	return len(c.schemes)
}

func (c *Catalog) Duplicates() []string {
	return c.duplicates
}

func (c *Catalog) Get(planID string) (models.NormalizedScheme, bool) {
	idx, ok := c.byID[planID]
	if !ok {
		return models.NormalizedScheme{}, false
	}
	return c.schemes[idx], true
}

// Provider looks up metadata by provider name, exact match first and then
// ignoring case.
func (c *Catalog) Provider(name string) (models.ProviderMeta, bool) {
	if meta, ok := c.providers[name]; ok {
		return meta, true
	}
	if key, ok := c.providerKeys[fields.Fold(name)]; ok {
		return c.providers[key], true
	}
	return models.ProviderMeta{}, false
}

// Enrich attaches provider logo, banner and URL. Missing metadata leaves
// the fields nil.
func (c *Catalog) Enrich(n models.NormalizedScheme) models.ScoredScheme {
	out := models.ScoredScheme{NormalizedScheme: n}
	meta, ok := c.Provider(n.ProviderName)
	if !ok {
		return out
	}
	out.ProviderLogo = optional(meta.Logo)
	out.ProviderBanner = optional(meta.Banner)
	out.OfficialURL = optional(meta.OfficialURL)
	return out
}

func (c *Catalog) EnrichAll(ns []models.NormalizedScheme) []models.ScoredScheme {
	out := make([]models.ScoredScheme, len(ns))
	for i, n := range ns {
		out[i] = c.Enrich(n)
	}
	return out
}

// Overview lists the distinct categories, providers and risk levels in first
// seen order together with a handful of sample schemes.
func (c *Catalog) Overview() models.CatalogOverview {
	ov := models.CatalogOverview{
		TotalSchemes: len(c.schemes),
		Categories:   []string{},
		Banks:        []string{},
		RiskLevels:   []string{},
	}
	seenCat := map[string]bool{}
	seenBank := map[string]bool{}
	seenRisk := map[string]bool{}
	for _, s := range c.schemes {
		if !seenCat[s.Category] {
			seenCat[s.Category] = true
			ov.Categories = append(ov.Categories, s.Category)
		}
		if !seenBank[s.ProviderName] {
			seenBank[s.ProviderName] = true
			ov.Banks = append(ov.Banks, s.ProviderName)
		}
		if !seenRisk[s.RiskLevel] {
			seenRisk[s.RiskLevel] = true
			ov.RiskLevels = append(ov.RiskLevels, s.RiskLevel)
		}
	}

	n := overviewSampleSize
	if len(c.schemes) < n {
		n = len(c.schemes)
	}
	ov.SampleSchemes = append([]models.NormalizedScheme{}, c.schemes[:n]...)
	return ov
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
