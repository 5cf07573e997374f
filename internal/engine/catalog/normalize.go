// internal/engine/catalog/normalize.go
package catalog

import (
	"math"
	"strings"

	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/models"
)

// Normalize derives the numeric view of a scheme. It never fails: unreadable
// text degrades to the parser defaults.
func Normalize(s models.Scheme) models.NormalizedScheme {
	n := models.NormalizedScheme{
		Scheme:          s,
		MaxInterestRate: fields.ParseInterestRate(s.InterestRate),
		TenureRange:     fields.ParseTenure(s.Tenure),
		IsLowRisk:       strings.Contains(fields.Fold(s.RiskLevel), "low"),
		ProviderKind:    ProviderKind(s.ProviderType),
	}

	if s.MinInvestment != nil && isUsable(*s.MinInvestment) {
		n.MinAmount = *s.MinInvestment
	}
	if s.MaxInvestment != nil && isUsable(*s.MaxInvestment) {
		max := *s.MaxInvestment
		n.MaxAmount = &max
	}
	if len(s.KeyFeatures) > 0 {
		n.KeyFeatures = append([]string(nil), s.KeyFeatures...)
	}
	return n
}

// ProviderKind maps the free-text provider type onto the fixed set used by
// the scorers. "Public-Sector-Bank", "public sector bank" and "PSU" all land
// on the same value.
func ProviderKind(text string) models.ProviderType {
	t := fields.Fold(text)
	t = strings.NewReplacer("-", " ", "_", " ").Replace(t)
	t = strings.Join(strings.Fields(t), " ")

	switch {
	case t == "":
		return models.ProviderOther
	case strings.Contains(t, "government") || strings.Contains(t, "govt"):
		return models.ProviderGovernment
	case strings.Contains(t, "public sector") || t == "public" || fields.ContainsTerm(t, "psu"):
		return models.ProviderPublicSectorBank
	case strings.Contains(t, "private sector") || t == "private":
		return models.ProviderPrivateSectorBank
	default:
		return models.ProviderOther
	}
}

func isUsable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
