// internal/engine/fields/tenure.go
package fields

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"scheme-advisor/internal/models"
)

// OpenEndedYears stands in for "no effective upper bound".
const OpenEndedYears = 100.0

// DefaultTenure never excludes a scheme from a tenure filter.
var DefaultTenure = models.TenureRange{Min: 0, Max: OpenEndedYears}

var (
	tenureRangePattern = regexp.MustCompile(
		`(\d+(?:\.\d+)?)\s*(days?|months?|years?)?\s*(?:to|-)\s*(\d+(?:\.\d+)?)\s*(days?|months?|years?)`,
	)
	tenureSinglePattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseTenure converts free-text tenure into a range of years. Ranges are
// tried first, then a single figure, and anything else falls back to
// DefaultTenure. Units are honoured in single figures as well as ranges, so
// "90 days" is 90/365 years and "18 months" is 1.5; a bare figure is years.
// The result always satisfies Min <= Max.
func ParseTenure(text string) models.TenureRange {
	str := strings.ToLower(strings.TrimSpace(text))
	if str == "" {
		return DefaultTenure
	}

	if parts := tenureRangePattern.FindStringSubmatch(str); parts != nil {
		lo, errLo := parseFinite(parts[1])
		hi, errHi := parseFinite(parts[3])
		if errLo == nil && errHi == nil {
			leftUnit, rightUnit := parts[2], parts[4]
			if leftUnit == "" {
				// "12-60 months" states the unit once for both ends
				leftUnit = rightUnit
			}
			r := models.TenureRange{Min: toYears(lo, leftUnit), Max: toYears(hi, rightUnit)}
			if r.Min > r.Max {
				r.Min, r.Max = r.Max, r.Min
			}
			return r
		}
	}

	if m := tenureSinglePattern.FindString(str); m != "" {
		n, err := parseFinite(m)
		if err != nil {
			return DefaultTenure
		}
		switch {
		case strings.Contains(str, "month"):
			return models.TenureRange{Min: n / 12, Max: n / 12}
		case strings.Contains(str, "day"):
			return models.TenureRange{Min: n / 365, Max: n / 365}
		}
		r := models.TenureRange{Min: n, Max: n}
		if strings.Contains(str, "+") || strings.Contains(str, "until") {
			r.Max = math.Max(OpenEndedYears, n)
		}
		return r
	}

	return DefaultTenure
}

func toYears(n float64, unit string) float64 {
	switch {
	case strings.HasPrefix(unit, "day"):
		return n / 365
	case strings.HasPrefix(unit, "month"):
		return n / 12
	default:
		return n
	}
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
