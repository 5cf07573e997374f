// internal/engine/scoring/scorer.go
package scoring

import (
	"math"
	"sort"
	"strings"

	"scheme-advisor/internal/engine/eligibility"
	"scheme-advisor/internal/engine/fields"
	"scheme-advisor/internal/engine/tiebreak"
	"scheme-advisor/internal/models"
)

const (
	interestWeight = 45.0
	interestCap    = 15.0
	headroomWeight = 20.0
	headroomCap    = 5.0
	tenureWeight   = 20.0
	minSpread      = 0.01
	payoutBonus    = 5.0
)

var providerTrust = map[models.ProviderType]float64{
	models.ProviderGovernment:        10,
	models.ProviderPublicSectorBank:  8,
	models.ProviderPrivateSectorBank: 6,
}

const defaultTrust = 5.0

type Preferences struct {
	PreferredPayout string
}

// Factors is the per-factor contribution before rounding.
type Factors struct {
	Interest float64 `json:"interest"`
	Headroom float64 `json:"headroom"`
	Tenure   float64 `json:"tenure"`
	Provider float64 `json:"provider"`
	Payout   float64 `json:"payout"`
}

func (f Factors) Total() float64 {
	return f.Interest + f.Headroom + f.Tenure + f.Provider + f.Payout
}

func Breakdown(n models.NormalizedScheme, amount, tenureYears float64, prefs Preferences) Factors {
	var f Factors

	f.Interest = math.Min(math.Max(n.MaxInterestRate, 0), interestCap) / interestCap * interestWeight

	if amount >= n.MinAmount {
		ratio := math.Min(amount/math.Max(n.MinAmount, 1), headroomCap)
		f.Headroom = headroomWeight * clamp((ratio-1)/(headroomCap-1), 0, 1)
	}

	if n.TenureRange.Contains(tenureYears) {
		center := (n.TenureRange.Min + n.TenureRange.Max) / 2
		spread := math.Max(n.TenureRange.Max-n.TenureRange.Min, minSpread)
		distance := math.Abs(tenureYears - center)
		f.Tenure = tenureWeight * math.Max(0, 1-distance/(spread/2))
	}

	if trust, ok := providerTrust[n.ProviderKind]; ok {
		f.Provider = trust
	} else {
		f.Provider = defaultTrust
	}

	if p := strings.TrimSpace(prefs.PreferredPayout); p != "" && fields.ContainsFold(n.PayoutFrequency, p) {
		f.Payout = payoutBonus
	}
	return f
}

// Score is the suitability of an eligible scheme, an integer in [0, 100].
func Score(n models.NormalizedScheme, amount, tenureYears float64, prefs Preferences) int {
	total := Breakdown(n, amount, tenureYears, prefs).Total()
	return int(math.Round(clamp(total, 0, 100)))
}

// Rank filters the eligible schemes, scores them and returns the low-risk and
// remaining schemes as two lists, each sorted by descending score and then
// tie-break shuffled on its own. Entries are not enriched.
func Rank(amount, tenureYears float64, prefs Preferences, schemes []models.NormalizedScheme, src tiebreak.Source) (lowRisk, highRisk []models.ScoredScheme) {
	lowRisk = []models.ScoredScheme{}
	highRisk = []models.ScoredScheme{}

	for _, n := range eligibility.Filter(amount, tenureYears, schemes) {
		score := Score(n, amount, tenureYears, prefs)
		entry := models.ScoredScheme{NormalizedScheme: n, Score: &score}
		if n.IsLowRisk {
			lowRisk = append(lowRisk, entry)
		} else {
			highRisk = append(highRisk, entry)
		}
	}

	for _, list := range [][]models.ScoredScheme{lowRisk, highRisk} {
		sort.SliceStable(list, func(i, j int) bool { return *list[i].Score > *list[j].Score })
		tiebreak.Shuffle(list, src)
	}
	return lowRisk, highRisk
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
