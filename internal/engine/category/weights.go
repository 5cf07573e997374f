// internal/engine/category/weights.go
package category

import (
	"math"

	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

// rule is one row of a slug's scoring table.
type rule struct {
	name   string
	points func(n models.NormalizedScheme) float64
}

func when(pts float64, pred func(n models.NormalizedScheme) bool) func(models.NormalizedScheme) float64 {
	return func(n models.NormalizedScheme) float64 {
		if pred(n) {
			return pts
		}
		return 0
	}
}

func interest(ceiling, weight float64) func(models.NormalizedScheme) float64 {
	return func(n models.NormalizedScheme) float64 {
		return math.Min(math.Max(n.MaxInterestRate, 0), ceiling) / ceiling * weight
	}
}

func provider(points map[models.ProviderType]float64) func(models.NormalizedScheme) float64 {
	return func(n models.NormalizedScheme) float64 {
		return points[n.ProviderKind]
	}
}

func mentions(texts func(n models.NormalizedScheme) []string, terms ...string) func(models.NormalizedScheme) bool {
	return func(n models.NormalizedScheme) bool {
		return fields.ContainsAnyTerm(texts(n), terms)
	}
}

func nameOrDescription(n models.NormalizedScheme) []string {
	return []string{n.PlanName, n.Description}
}

func payout(n models.NormalizedScheme) []string {
	return []string{n.PayoutFrequency}
}

func lowRisk(n models.NormalizedScheme) bool    { return n.IsLowRisk }
func notLowRisk(n models.NormalizedScheme) bool { return !n.IsLowRisk }

func tenureMaxAtLeast(years float64) func(models.NormalizedScheme) bool {
	return func(n models.NormalizedScheme) bool { return n.TenureRange.Max >= years }
}

func tenureMinAtMost(years float64) func(models.NormalizedScheme) bool {
	return func(n models.NormalizedScheme) bool { return n.TenureRange.Min <= years }
}

var (
	govPublic = map[models.ProviderType]float64{
		models.ProviderGovernment:       5,
		models.ProviderPublicSectorBank: 5,
	}
	monthlyOrQuarterly = mentions(payout, "monthly", "quarter")
)

var tables = map[Slug][]rule{
	SmartInvestment: {
		{"equity or mutual sub-category", when(25, mentions(func(n models.NormalizedScheme) []string { return []string{n.SubCategory} }, "equity", "mutual"))},
		{"sip mention", when(15, mentions(nameOrDescription, "sip"))},
		{"long tenure", when(10, tenureMaxAtLeast(5))},
		{"growth risk", when(5, notLowRisk)},
		{"interest", interest(20, 30)},
	},
	FinancialPlanning: {
		{"low risk", when(25, lowRisk)},
		{"provider", provider(map[models.ProviderType]float64{
			models.ProviderGovernment:        15,
			models.ProviderPublicSectorBank:  10,
			models.ProviderPrivateSectorBank: 6,
		})},
		{"regular payout", when(5, monthlyOrQuarterly)},
		{"short entry", when(5, tenureMinAtMost(1))},
		{"interest", interest(10, 25)},
	},
	RealEstate: {
		{"reit mention", when(20, mentions(nameOrDescription, "reit"))},
		{"property category", when(15, mentions(func(n models.NormalizedScheme) []string { return []string{n.Category, n.SubCategory} }, "property", "real estate"))},
		{"long tenure", when(10, tenureMaxAtLeast(3))},
		{"provider", provider(govPublic)},
		{"interest", interest(15, 20)},
	},
	RetirementPlans: {
		{"provider", provider(map[models.ProviderType]float64{
			models.ProviderGovernment:       20,
			models.ProviderPublicSectorBank: 12,
		})},
		{"low risk", when(15, lowRisk)},
		{"long tenure", when(10, tenureMaxAtLeast(5))},
		{"payout", func(n models.NormalizedScheme) float64 {
			switch {
			case fields.ContainsTerm(n.PayoutFrequency, "monthly"):
				return 15
			case fields.ContainsTerm(n.PayoutFrequency, "quarter"):
				return 10
			}
			return 0
		}},
		{"interest", interest(9, 20)},
	},
	EducationFunds: {
		{"child mention", when(20, mentions(nameOrDescription, "sukanya", "child", "girl"))},
		{"80c benefit", when(10, mentions(func(n models.NormalizedScheme) []string { return []string{n.TaxBenefits} }, "80c"))},
		{"tenure", func(n models.NormalizedScheme) float64 {
			switch {
			case n.TenureRange.Max >= 10:
				return 15
			case n.TenureRange.Max >= 5:
				return 8
			}
			return 0
		}},
		{"government provider", provider(map[models.ProviderType]float64{models.ProviderGovernment: 10})},
		{"low risk", when(5, lowRisk)},
		{"interest", interest(10, 20)},
	},
	BusinessGrowth: {
		{"business mention", when(20, mentions(func(n models.NormalizedScheme) []string { return []string{n.PlanName, n.Description, n.Category} }, "business", "corporate", "msme"))},
		{"provider", provider(map[models.ProviderType]float64{
			models.ProviderPrivateSectorBank: 8,
			models.ProviderPublicSectorBank:  6,
		})},
		{"short entry", when(10, tenureMinAtMost(1))},
		{"regular payout", when(5, monthlyOrQuarterly)},
		{"interest", interest(12, 20)},
	},
}

func lowMinimumBonus(n models.NormalizedScheme) float64 {
	switch {
	case n.MinAmount <= 5000:
		return 10
	case n.MinAmount <= 25000:
		return 5
	}
	return 0
}

// Score is the slug-specific attractiveness of a scheme, an integer in
// [0, 100]. It does not depend on any user input. Unknown slugs score 0.
func Score(n models.NormalizedScheme, slug Slug) int {
	table, ok := tables[slug]
	if !ok {
		return 0
	}
	total := lowMinimumBonus(n)
	for _, r := range table {
		total += r.points(n)
	}
	return round(total)
}

// Explain lists the points each rule of the slug's table awarded.
func Explain(n models.NormalizedScheme, slug Slug) map[string]float64 {
	table, ok := tables[slug]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(table)+1)
	for _, r := range table {
		out[r.name] = r.points(n)
	}
	out["low minimum"] = lowMinimumBonus(n)
	return out
}
