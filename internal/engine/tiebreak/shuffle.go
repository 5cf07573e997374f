// internal/engine/tiebreak/shuffle.go
package tiebreak

import (
	"math/rand/v2"

	"scheme-advisor/internal/models"
)

// Delta is how far below the top score an entry may sit and still be
// considered tied with it.
const Delta = 5

// Source supplies random indices. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Shuffle permutes, in place, the entries scoring within Delta of the first
// entry. The slice must already be sorted by descending RankValue. A nil
// src uses the process-wide generator.
func Shuffle(entries []models.ScoredScheme, src Source) {
	ShuffleBy(entries, models.ScoredScheme.RankValue, src)
}

func ShuffleBy(entries []models.ScoredScheme, key func(models.ScoredScheme) int, src Source) {
	if len(entries) < 2 {
		return
	}
	if src == nil {
		src = globalSource{}
	}

	floor := key(entries[0]) - Delta
	n := 1
	for n < len(entries) && key(entries[n]) >= floor {
		n++
	}

	for i := n - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		entries[i], entries[j] = entries[j], entries[i]
	}
}
