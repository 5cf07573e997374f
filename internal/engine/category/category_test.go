// internal/engine/category/category_test.go
package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scheme-advisor/internal/engine/catalog"
	"scheme-advisor/internal/models"
)

func ptr(v float64) *float64 { return &v }

func fixture() []models.NormalizedScheme {
	schemes := []models.Scheme{
		{
			PlanID: "HDFC-EQ", PlanName: "HDFC Top 100", Category: "Mutual Fund", SubCategory: "Equity Large Cap",
			ProviderName: "HDFC AMC", ProviderType: "Private Sector Bank", InterestRate: "14%",
			Tenure: "5+ years", MinInvestment: ptr(500), RiskLevel: "High", Description: "Start a SIP from 500",
		},
		{
			PlanID: "AXIS-MF", PlanName: "Axis Bluechip", Category: "Mutual Fund", SubCategory: "Mutual Fund",
			ProviderName: "Axis AMC", ProviderType: "Private Sector Bank", InterestRate: "11%",
			Tenure: "3 to 10 years", MinInvestment: ptr(5000), RiskLevel: "Moderate",
		},
		{
			PlanID: "SBI-FD", PlanName: "SBI Fixed Deposit", Category: "Fixed Deposit",
			ProviderName: "SBI", ProviderType: "Public Sector Bank", InterestRate: "7.1%",
			Tenure: "7 days to 10 years", MinInvestment: ptr(1000), RiskLevel: "Low",
			PayoutFrequency: "Monthly / Quarterly", Description: "Standard term deposit",
		},
		{
			PlanID: "SCSS", PlanName: "Senior Citizens Savings Scheme", Category: "Savings Scheme",
			ProviderName: "India Post", ProviderType: "Government", InterestRate: "8.2%",
			Tenure: "5 years", MinInvestment: ptr(1000), MaxInvestment: ptr(3000000),
			RiskLevel: "Low", PayoutFrequency: "Quarterly",
		},
		{
			PlanID: "SSY", PlanName: "Sukanya Samriddhi Yojana", Category: "Savings Scheme",
			ProviderName: "India Post", ProviderType: "Government", InterestRate: "8.2%",
			Tenure: "21 years", MinInvestment: ptr(250), MaxInvestment: ptr(150000),
			RiskLevel: "Low", TaxBenefits: "Section 80C", Description: "For the girl child",
		},
		{
			PlanID: "ICICI-CD", PlanName: "ICICI Corporate Deposit", Category: "Business Banking",
			ProviderName: "ICICI Bank", ProviderType: "Private Sector Bank", InterestRate: "7.5%",
			Tenure: "6 months to 5 years", MinInvestment: ptr(100000), RiskLevel: "Moderate",
			PayoutFrequency: "Monthly",
		},
		{
			PlanID: "EMB-REIT", PlanName: "Embassy Office Parks REIT", Category: "Real Estate",
			SubCategory: "REIT", ProviderName: "Embassy", ProviderType: "Other", InterestRate: "6-7%",
			Tenure: "3+ years", MinInvestment: ptr(15000), RiskLevel: "Moderate",
		},
	}
	out := make([]models.NormalizedScheme, len(schemes))
	for i, s := range schemes {
		out[i] = catalog.Normalize(s)
	}
	return out
}

func byID(t *testing.T, id string) models.NormalizedScheme {
	t.Helper()
	for _, n := range fixture() {
		if n.PlanID == id {
			return n
		}
	}
	t.Fatalf("no scheme %s", id)
	return models.NormalizedScheme{}
}

func rankedIDs(es []models.ScoredScheme) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.PlanID
	}
	return out
}

func TestLookupAndSlugs(t *testing.T) {
	slugs := Slugs()
	require.Len(t, slugs, 6)
	for _, s := range slugs {
		info, ok := Lookup(string(s))
		require.True(t, ok)
		assert.NotEmpty(t, info.Title)
		assert.NotEmpty(t, info.Subtitle)
	}

	info, _ := Lookup("retirement-plans")
	assert.Equal(t, "Retirement Plans", info.Title)

	_, ok := Lookup("crypto")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		id   string
		slug Slug
		want bool
	}{
		{"HDFC-EQ", SmartInvestment, true},
		{"AXIS-MF", SmartInvestment, true},
		{"SBI-FD", SmartInvestment, false},
		{"SBI-FD", FinancialPlanning, true},
		{"SCSS", FinancialPlanning, true},
		{"SCSS", RetirementPlans, true},
		{"SSY", RetirementPlans, false},
		{"SSY", EducationFunds, true},
		{"ICICI-CD", BusinessGrowth, true},
		{"EMB-REIT", RealEstate, true},
		{"SBI-FD", RealEstate, false},
		{"HDFC-EQ", Slug("crypto"), false},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+string(tt.slug), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(byID(t, tt.id), tt.slug))
		})
	}
}

// "rd" and "mis" are whole words only, so "Standard" does not make a
// scheme look like a recurring deposit.
func TestClassify_ShortTermsNeedWordBoundaries(t *testing.T) {
	n := catalog.Normalize(models.Scheme{PlanID: "X", PlanName: "Standard Chartered Premise Card"})
	assert.False(t, Classify(n, FinancialPlanning))

	n = catalog.Normalize(models.Scheme{PlanID: "Y", PlanName: "Post Office MIS"})
	assert.True(t, Classify(n, FinancialPlanning))
}

func TestScore_Tables(t *testing.T) {
	tests := []struct {
		id   string
		slug Slug
		want int
	}{
		// 25 + 15 + 10 + 5 + 14/20*30 + 10
		{"HDFC-EQ", SmartInvestment, 86},
		// 25 + 10 + 5 + 5 + 7.1/10*25 + 10
		{"SBI-FD", FinancialPlanning, 73},
		// 20 + 15 + 10 + 10 + 8.2/9*20 + 10
		{"SCSS", RetirementPlans, 83},
		// 20 + 10 + 15 + 10 + 5 + 8.2/10*20 + 10
		{"SSY", EducationFunds, 86},
		// 20 + 8 + 10 + 5 + 7.5/12*20
		{"ICICI-CD", BusinessGrowth, 56},
		// 20 + 15 + 10 + 0 + 7/15*20 + 5
		{"EMB-REIT", RealEstate, 59},
	}
	for _, tt := range tests {
		t.Run(string(tt.slug), func(t *testing.T) {
			assert.Equal(t, tt.want, Score(byID(t, tt.id), tt.slug))
		})
	}
}

func TestScore_UnknownSlug(t *testing.T) {
	assert.Equal(t, 0, Score(byID(t, "SBI-FD"), Slug("crypto")))
	assert.Nil(t, Explain(byID(t, "SBI-FD"), Slug("crypto")))
}

func TestScore_InRange(t *testing.T) {
	for _, n := range fixture() {
		for _, slug := range Slugs() {
			s := Score(n, slug)
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestExplain(t *testing.T) {
	parts := Explain(byID(t, "SBI-FD"), FinancialPlanning)
	assert.Equal(t, 25.0, parts["low risk"])
	assert.Equal(t, 10.0, parts["provider"])
	assert.Equal(t, 10.0, parts["low minimum"])
}

func TestRank_SmartInvestmentOnlyGrowthSchemes(t *testing.T) {
	got := Rank(SmartInvestment, fixture())

	require.Equal(t, []string{"HDFC-EQ", "AXIS-MF"}, rankedIDs(got))
	for i, e := range got {
		require.NotNil(t, e.CategoryScore)
		assert.Nil(t, e.Score)
		if i > 0 {
			assert.GreaterOrEqual(t, *got[i-1].CategoryScore, *e.CategoryScore)
		}
	}
}

func TestRank_UnknownSlugEmpty(t *testing.T) {
	got := Rank(Slug("crypto"), fixture())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
