// internal/engine/query/signals_test.go
package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-advisor/internal/engine/category"
	"scheme-advisor/internal/models"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		prompt string
		want   *float64
	}{
		{"invest 1.5 lakh", f(150000)},
		{"I have 2 lakhs to park", f(200000)},
		{"3 lac for my daughter", f(300000)},
		{"around 1 crore", f(10000000)},
		{"2 cr corpus", f(20000000)},
		{"50k monthly", f(50000)},
		{"10 thousand", f(10000)},
		{"1 million", f(1000000)},
		{"0.5 bn", f(500000000)},
		{"₹25,000 in an FD", f(25000)},
		{"Rs. 5000 only", f(5000)},
		{"rs 2 lakh", f(200000)},
		{"INR 7500", f(7500)},
		{"150000 for 2 years", f(150000)},
		{"1,50,000 rupees", f(150000)},
		{"2 lakh or maybe 5 lakh", f(500000)},
		{"1200 months", nil},
		{"for 2 years", nil},
		{"no numbers here", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got := ExtractSignals(tt.prompt).Amount
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-6)
		})
	}
}

func TestExtractTenure(t *testing.T) {
	tests := []struct {
		prompt string
		want   *float64
	}{
		{"for 2 years", f(2)},
		{"5 yrs", f(5)},
		{"1 year", f(1)},
		{"3y lock-in", f(3)},
		{"18 months", f(1.5)},
		{"6 mo", f(0.5)},
		{"1 lakh", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			got := ExtractSignals(tt.prompt).TenureYears
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestExtractPayoutRiskCategory(t *testing.T) {
	tests := []struct {
		prompt   string
		payout   string
		risk     models.RiskIntent
		category category.Slug
	}{
		{"safe monthly income", "monthly", models.RiskLow, ""},
		{"quarterly payout, low risk FD", "quarter", models.RiskLow, category.FinancialPlanning},
		{"annual interest", "year", models.RiskUnset, ""},
		{"aggressive growth via SIP", "", models.RiskHigh, category.SmartInvestment},
		{"high risk equity", "", models.RiskHigh, category.SmartInvestment},
		{"secure plan for retirement", "", models.RiskLow, category.RetirementPlans},
		{"child education corpus", "", models.RiskUnset, category.EducationFunds},
		{"corporate deposit", "", models.RiskUnset, category.BusinessGrowth},
		{"REIT income", "", models.RiskUnset, category.RealEstate},
		{"government backed", "", models.RiskUnset, category.FinancialPlanning},
		{"standard returns", "", models.RiskUnset, ""},
		{"", "", models.RiskUnset, ""},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			sig := ExtractSignals(tt.prompt)
			assert.Equal(t, tt.payout, sig.PreferredPayout)
			assert.Equal(t, tt.risk, sig.Risk)
			assert.Equal(t, tt.category, sig.Category)
		})
	}
}

// The first matching keyword group wins even when later groups also match.
func TestExtractCategory_FirstMatchWins(t *testing.T) {
	sig := ExtractSignals("SIP or FD for retirement?")
	assert.Equal(t, category.SmartInvestment, sig.Category)
}
