// internal/engine/category/category.go
package category

import (
	"math"
	"sort"

	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

type Slug string

const (
	SmartInvestment   Slug = "smart-investment"
	FinancialPlanning Slug = "financial-planning"
	RealEstate        Slug = "real-estate"
	RetirementPlans   Slug = "retirement-plans"
	EducationFunds    Slug = "education-funds"
	BusinessGrowth    Slug = "business-growth"
)

// Info is the presentation metadata of a slug.
type Info struct {
	Slug     Slug   `json:"slug"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

var ordered = []Info{
	{SmartInvestment, "Smart Investment", "Higher growth options like SIPs and Equity funds"},
	{FinancialPlanning, "Financial Planning", "Conservative options for stability and savings"},
	{RealEstate, "Real Estate", "REITs and property-linked products"},
	{RetirementPlans, "Retirement Plans", "Secure your golden years with steady income"},
	{EducationFunds, "Education Funds", "Build a corpus for education and children"},
	{BusinessGrowth, "Business Growth", "Solutions tailored for business and corporate goals"},
}

// Slugs lists every category slug in display order.
func Slugs() []Slug {
	out := make([]Slug, len(ordered))
	for i, info := range ordered {
		out[i] = info.Slug
	}
	return out
}

// Lookup returns the title and subtitle for a slug.
func Lookup(slug string) (Info, bool) {
	for _, info := range ordered {
		if string(info.Slug) == slug {
			return info, true
		}
	}
	return Info{}, false
}

// Classify reports whether the scheme belongs to the slug. Unknown slugs
// match nothing.
func Classify(n models.NormalizedScheme, slug Slug) bool {
	switch slug {
	case SmartInvestment:
		return fields.ContainsAnyTerm(
			[]string{n.SubCategory, n.Description},
			[]string{"equity", "mutual", "sip"})
	case FinancialPlanning:
		return fields.ContainsAnyTerm(
			[]string{n.PlanName, n.Category, n.SubCategory},
			[]string{"fixed deposit", "recurring deposit", "monthly income", "savings", "ppf", "nsc", "kvp", "post office", "bond", "fd", "rd", "mis"})
	case RealEstate:
		return fields.ContainsAnyTerm(
			[]string{n.PlanName, n.Description, n.Category, n.SubCategory},
			[]string{"real estate", "reit", "property", "housing"})
	case RetirementPlans:
		return fields.ContainsAnyTerm([]string{n.RiskLevel, n.Category, n.SubCategory}, []string{"senior"}) ||
			fields.ContainsAnyTerm([]string{n.PlanName, n.Description}, []string{"retire", "pension", "senior citizen"})
	case EducationFunds:
		return fields.ContainsAnyTerm(
			[]string{n.PlanName, n.Description, n.Category, n.SubCategory},
			[]string{"education", "child", "sukanya", "girl", "student"})
	case BusinessGrowth:
		return fields.ContainsAnyTerm(
			[]string{n.PlanName, n.Description, n.Category, n.SubCategory, n.ProviderName},
			[]string{"business", "corporate", "msme", "enterprise", "working capital"})
	default:
		return false
	}
}

// Rank classifies every scheme against slug, scores the matches and sorts
// them by descending category score. Order among equal scores follows the
// input. Entries are not enriched.
func Rank(slug Slug, schemes []models.NormalizedScheme) []models.ScoredScheme {
	out := []models.ScoredScheme{}
	for _, n := range schemes {
		if !Classify(n, slug) {
			continue
		}
		score := Score(n, slug)
		out = append(out, models.ScoredScheme{NormalizedScheme: n, CategoryScore: &score})
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].CategoryScore > *out[j].CategoryScore })
	return out
}

func round(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
