// internal/engine/fields/interest.go
package fields

import (
	"math"
	"regexp"
	"strconv"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseInterestRate returns the highest percentage mentioned in a rate string,
// so "3.50% - 7.75% p.a." ranks as 7.75. Text without digits yields 0.
func ParseInterestRate(text string) float64 {
	best := 0.0
	for _, m := range numberPattern.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}
