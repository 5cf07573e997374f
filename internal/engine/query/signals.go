// internal/engine/query/signals.go
package query

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"scheme-advisor/internal/engine/category"
	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

// Signals are the structured hints found in a free-text prompt. Each field
// is nil or empty when the prompt does not mention it.
type Signals struct {
	Amount          *float64          `json:"amount"`
	TenureYears     *float64          `json:"tenureYears"`
	PreferredPayout string            `json:"preferredPayout,omitempty"`
	Risk            models.RiskIntent `json:"risk,omitempty"`
	Category        category.Slug     `json:"category,omitempty"`
}

var magnitudes = map[string]decimal.Decimal{
	"lakh":     decimal.New(1, 5),
	"lakhs":    decimal.New(1, 5),
	"lac":      decimal.New(1, 5),
	"lacs":     decimal.New(1, 5),
	"crore":    decimal.New(1, 7),
	"crores":   decimal.New(1, 7),
	"cr":       decimal.New(1, 7),
	"k":        decimal.New(1, 3),
	"thousand": decimal.New(1, 3),
	"million":  decimal.New(1, 6),
	"mn":       decimal.New(1, 6),
	"b":        decimal.New(1, 9),
	"bn":       decimal.New(1, 9),
	"billion":  decimal.New(1, 9),
}

const magnitudeAlt = `lakhs|lakh|lacs|lac|crores|crore|cr|thousand|k|million|mn|billion|bn|b`

var (
	magnitudeAmount = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(` + magnitudeAlt + `)\b`)
	currencyAmount  = regexp.MustCompile(`(?:₹|\brs\.?|\binr)\s*(\d+(?:\.\d+)?)(?:\s*(` + magnitudeAlt + `)\b)?`)
	bareAmount      = regexp.MustCompile(`\b(\d{4,}(?:\.\d+)?)\b(\s*(?:years?|yrs?|y|months?|mos?|days?)\b)?`)

	tenureYears  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:years?|yrs?|y)\b`)
	tenureMonths = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:months?|mos?)\b`)
)

var categoryKeywords = []struct {
	terms []string
	slug  category.Slug
}{
	{[]string{"sip", "mutual", "equity"}, category.SmartInvestment},
	{[]string{"retire", "senior"}, category.RetirementPlans},
	{[]string{"education", "child"}, category.EducationFunds},
	{[]string{"business", "corporate"}, category.BusinessGrowth},
	{[]string{"real estate", "reit"}, category.RealEstate},
	{[]string{"fd", "fixed deposit", "government", "rd", "mis"}, category.FinancialPlanning},
}

// ExtractSignals reads amount, tenure, payout, risk and category hints from
// the prompt. It never fails.
func ExtractSignals(prompt string) Signals {
	text := fields.Fold(prompt)
	return Signals{
		Amount:          extractAmount(text),
		TenureYears:     extractTenure(text),
		PreferredPayout: extractPayout(text),
		Risk:            extractRisk(text),
		Category:        extractCategory(text),
	}
}

func extractAmount(text string) *float64 {
	text = strings.ReplaceAll(text, ",", "")

	var best *decimal.Decimal
	consider := func(num, unit string) {
		v, err := decimal.NewFromString(num)
		if err != nil {
			return
		}
		if m, ok := magnitudes[unit]; ok {
			v = v.Mul(m)
		}
		if !v.IsPositive() {
			return
		}
		if best == nil || v.GreaterThan(*best) {
			best = &v
		}
	}

	for _, m := range magnitudeAmount.FindAllStringSubmatch(text, -1) {
		consider(m[1], m[2])
	}
	for _, m := range currencyAmount.FindAllStringSubmatch(text, -1) {
		consider(m[1], m[2])
	}
	for _, m := range bareAmount.FindAllStringSubmatch(text, -1) {
		if m[2] != "" {
			continue
		}
		consider(m[1], "")
	}

	if best == nil {
		return nil
	}
	f := best.InexactFloat64()
	return &f
}

func extractTenure(text string) *float64 {
	if m := tenureYears.FindStringSubmatch(text); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil && v.IsPositive() {
			f := v.InexactFloat64()
			return &f
		}
	}
	if m := tenureMonths.FindStringSubmatch(text); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil && v.IsPositive() {
			f := v.InexactFloat64() / 12
			return &f
		}
	}
	return nil
}

func extractPayout(text string) string {
	switch {
	case strings.Contains(text, "monthly"):
		return "monthly"
	case strings.Contains(text, "quarter"):
		return "quarter"
	case strings.Contains(text, "yearly"), strings.Contains(text, "annual"):
		return "year"
	}
	return ""
}

func extractRisk(text string) models.RiskIntent {
	switch {
	case strings.Contains(text, "low risk"), fields.ContainsTerm(text, "safe"), fields.ContainsTerm(text, "secure"):
		return models.RiskLow
	case strings.Contains(text, "high risk"), fields.ContainsTerm(text, "growth"), fields.ContainsTerm(text, "aggressive"):
		return models.RiskHigh
	}
	return models.RiskUnset
}

func extractCategory(text string) category.Slug {
	for _, kw := range categoryKeywords {
		for _, term := range kw.terms {
			if fields.ContainsTerm(text, term) {
				return kw.slug
			}
		}
	}
	return ""
}
