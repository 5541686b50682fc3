// Package sampler selects the questions of a new quiz from a pre-filtered
// candidate pool, biased toward the requested difficulty.
package sampler

import (
	"math/rand/v2"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/model"
)

// DifficultyIndifferent disables difficulty weighting and exclusion.
const DifficultyIndifferent = 0

// Weight tuning: every candidate starts at baseWeight; the adjustments bias
// the draw toward the requested tier without making lower tiers impossible.
const (
	baseWeight      = 100
	exactMatchBonus = 80
	oneBelowBonus   = 20
	twoBelowPenalty = 10
)

// Generate picks count questions from the pool.
//
// The pool must already be filtered on hard constraints (locale, contest,
// tags). Difficulty is the soft one handled here: candidates harder than the
// preference are excluded outright, remaining ones are weighted. When the
// preference is DifficultyIndifferent nothing is excluded and all weights
// are equal.
//
// If count covers the whole effective pool the entire pool is returned in
// random order, each question exactly once. Otherwise count questions are
// drawn by weighted choice with replacement; the same question showing up
// twice is an accepted quirk of that draw. An empty effective pool yields
// nil, meaning no quiz can be generated.
func Generate(rng *rand.Rand, pool []model.Question, count, difficulty int) []model.Question {
	candidates := pool
	if difficulty != DifficultyIndifferent {
		candidates = make([]model.Question, 0, len(pool))
		for _, q := range pool {
			if q.Difficulty <= difficulty {
				candidates = append(candidates, q)
			}
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	if count >= len(candidates) {
		selected := append([]model.Question(nil), candidates...)
		rng.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
		return selected
	}

	weights := make([]int, len(candidates))
	for i, q := range candidates {
		weights[i] = questionWeight(q, difficulty)
	}

	return weightedChoices(rng, candidates, weights, count)
}

// questionWeight computes the selection weight of one candidate relative to
// the difficulty preference.
func questionWeight(q model.Question, difficulty int) int {
	weight := baseWeight
	switch q.Difficulty {
	case difficulty:
		weight += exactMatchBonus
	case difficulty - 1:
		weight += oneBelowBonus
	case difficulty - 2:
		weight -= twoBelowPenalty
	}
	return weight
}

// weightedChoices draws k items with replacement, each with probability
// proportional to its weight. Non-positive weights are treated as zero,
// which removes the item from the draw.
func weightedChoices(rng *rand.Rand, items []model.Question, weights []int, k int) []model.Question {
	cumulative := make([]int, len(weights))
	total := 0
	for i, w := range weights {
		if w > 0 {
			total += w
		}
		cumulative[i] = total
	}
	if total == 0 {
		return nil
	}

	selected := make([]model.Question, 0, k)
	for n := 0; n < k; n++ {
		target := rng.IntN(total)
		// First index whose cumulative weight exceeds the target.
		lo, hi := 0, len(cumulative)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if cumulative[mid] <= target {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		selected = append(selected, items[lo])
	}
	return selected
}
