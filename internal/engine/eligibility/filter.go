// internal/engine/eligibility/filter.go
package eligibility

import "scheme-advisor/internal/models"

// Eligible reports whether the scheme accepts the amount and the tenure in
// years. Only the derived numeric fields are consulted.
func Eligible(n models.NormalizedScheme, amount, tenureYears float64) bool {
	if amount < n.MinAmount {
		return false
	}
	if n.MaxAmount != nil && amount > *n.MaxAmount {
		return false
	}
	return n.TenureRange.Contains(tenureYears)
}

// Filter keeps the eligible schemes in their original order.
func Filter(amount, tenureYears float64, schemes []models.NormalizedScheme) []models.NormalizedScheme {
	out := make([]models.NormalizedScheme, 0, len(schemes))
	for _, n := range schemes {
		if Eligible(n, amount, tenureYears) {
			out = append(out, n)
		}
	}
	return out
}
