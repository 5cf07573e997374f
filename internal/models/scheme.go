// internal/models/scheme.go
package models

// Scheme is a catalog record as authored by the data team.
type Scheme struct {
	PlanID          string   `json:"plan_id"`
	PlanName        string   `json:"plan_name"`
	Category        string   `json:"category"`
	SubCategory     string   `json:"sub_category"`
	ProviderName    string   `json:"provider_name"`
	ProviderType    string   `json:"provider_type"`
	InterestRate    string   `json:"interest_rate"`
	Tenure          string   `json:"tenure"`
	MinInvestment   *float64 `json:"min_investment"`
	MaxInvestment   *float64 `json:"max_investment"` // nil means no upper limit
	RiskLevel       string   `json:"risk_level"`
	PayoutFrequency string   `json:"payout_frequency"`
	TaxBenefits     string   `json:"tax_benefits"`
	LockInPeriod    string   `json:"lock_in_period"`
	Eligibility     string   `json:"eligibility"`
	Description     string   `json:"description"`
	KeyFeatures     []string `json:"key_features"`
}

type ProviderType string

const (
	ProviderGovernment        ProviderType = "Government"
	ProviderPublicSectorBank  ProviderType = "Public Sector Bank"
	ProviderPrivateSectorBank ProviderType = "Private Sector Bank"
	ProviderOther             ProviderType = "Other"
)

// TenureRange is a holding period in years.
type TenureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether years lies inside the closed range.
func (r TenureRange) Contains(years float64) bool {
	return years >= r.Min && years <= r.Max
}

// NormalizedScheme carries the numeric fields derived once at catalog load.
type NormalizedScheme struct {
	Scheme
	MaxInterestRate float64      `json:"maxInterestRate"`
	TenureRange     TenureRange  `json:"tenureRange"`
	IsLowRisk       bool         `json:"isLowRisk"`
	MinAmount       float64      `json:"-"`
	MaxAmount       *float64     `json:"-"`
	ProviderKind    ProviderType `json:"-"`
}

// Unbounded reports whether the scheme has no maximum investment.
func (n NormalizedScheme) Unbounded() bool {
	return n.MaxAmount == nil
}

type ProviderMeta struct {
	Logo        string `json:"logo"`
	Banner      string `json:"banner"`
	OfficialURL string `json:"official_url"`
}

// ScoredScheme is a per-request view of a scheme. Exactly one of Score and
// CategoryScore is set depending on the path that produced it; search hits
// carry neither.
type ScoredScheme struct {
	NormalizedScheme
	Score          *int    `json:"score,omitempty"`
	CategoryScore  *int    `json:"categoryScore,omitempty"`
	ProviderLogo   *string `json:"provider_logo"`
	ProviderBanner *string `json:"provider_banner"`
	OfficialURL    *string `json:"official_url"`
}

// RankValue returns whichever score the entry carries, or zero.
func (s ScoredScheme) RankValue() int {
	switch {
	case s.Score != nil:
		return *s.Score
	case s.CategoryScore != nil:
		return *s.CategoryScore
	default:
		return 0
	}
}

type RiskIntent string

const (
	RiskUnset RiskIntent = ""
	RiskLow   RiskIntent = "low"
	RiskHigh  RiskIntent = "high"
)

type UserQuery struct {
	Amount          *float64   `json:"amount,omitempty"`
	TenureYears     *float64   `json:"tenureYears,omitempty"`
	PreferredPayout string     `json:"preferredPayout,omitempty"`
	Risk            RiskIntent `json:"risk,omitempty"`
	Prompt          string     `json:"prompt,omitempty"`
	Category        string     `json:"category,omitempty"`
}
