// internal/engine/eligibility/filter_test.go
package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scheme-advisor/internal/models"
)

func ptr(v float64) *float64 { return &v }

func scheme(id string, min float64, max *float64, tMin, tMax float64) models.NormalizedScheme {
	return models.NormalizedScheme{
		Scheme:      models.Scheme{PlanID: id},
		MinAmount:   min,
		MaxAmount:   max,
		TenureRange: models.TenureRange{Min: tMin, Max: tMax},
	}
}

func fixture() []models.NormalizedScheme {
	return []models.NormalizedScheme{
		scheme("fd", 1000, nil, 1, 3),
		scheme("rd", 100, ptr(50000), 0.5, 10),
		scheme("ppf", 500, ptr(150000), 15, 15),
		scheme("mis", 1000, ptr(900000), 5, 5),
		scheme("tax-fd", 100, ptr(150000), 5, 100),
	}
}

func ids(ns []models.NormalizedScheme) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.PlanID
	}
	return out
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name   string
		n      models.NormalizedScheme
		amount float64
		tenure float64
		want   bool
	}{
		{"inside everything", scheme("a", 1000, nil, 1, 3), 5000, 2, true},
		{"at minimum", scheme("a", 1000, nil, 1, 3), 1000, 2, true},
		{"below minimum", scheme("a", 1000, nil, 1, 3), 999, 2, false},
		{"at maximum", scheme("a", 0, ptr(5000), 1, 3), 5000, 2, true},
		{"above maximum", scheme("a", 0, ptr(5000), 1, 3), 5001, 2, false},
		{"unbounded maximum", scheme("a", 0, nil, 1, 3), 1e12, 2, true},
		{"tenure at lower edge", scheme("a", 0, nil, 1, 3), 10, 1, true},
		{"tenure at upper edge", scheme("a", 0, nil, 1, 3), 10, 3, true},
		{"tenure too short", scheme("a", 0, nil, 1, 3), 10, 0.5, false},
		{"tenure too long", scheme("a", 0, nil, 1, 3), 10, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(tt.n, tt.amount, tt.tenure))
		})
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	got := Filter(10000, 5, fixture())
	assert.Equal(t, []string{"rd", "mis", "tax-fd"}, ids(got))
}

func TestFilter_Empty(t *testing.T) {
	assert.Empty(t, Filter(10, 2, fixture()))
	assert.Empty(t, Filter(1000, 2, nil))
}

// Widening any bound never removes a scheme from the eligible set.
func TestFilter_Monotonic(t *testing.T) {
	catalog := fixture()
	contains := func(set []models.NormalizedScheme, id string) bool {
		for _, n := range set {
			if n.PlanID == id {
				return true
			}
		}
		return false
	}

	for _, amount := range []float64{50, 500, 1000, 20000, 200000} {
		for _, tenure := range []float64{0.5, 1, 2, 5, 15} {
			base := Filter(amount, tenure, catalog)

			// Relaxing the cap on every scheme.
			uncapped := make([]models.NormalizedScheme, len(catalog))
			copy(uncapped, catalog)
			for i := range uncapped {
				uncapped[i].MaxAmount = nil
			}
			widened := Filter(amount, tenure, uncapped)
			for _, n := range base {
				assert.True(t, contains(widened, n.PlanID), "amount=%v tenure=%v lost %s", amount, tenure, n.PlanID)
			}

			// Widening the tenure ranges.
			wide := make([]models.NormalizedScheme, len(catalog))
			copy(wide, catalog)
			for i := range wide {
				wide[i].TenureRange = models.TenureRange{Min: wide[i].TenureRange.Min - 1, Max: wide[i].TenureRange.Max + 1}
			}
			widened = Filter(amount, tenure, wide)
			for _, n := range base {
				assert.True(t, contains(widened, n.PlanID), "amount=%v tenure=%v lost %s", amount, tenure, n.PlanID)
			}
		}
	}
}
