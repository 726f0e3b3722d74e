// Package rating implements the Elo update rules for head-to-head votes.
//
// Everything here is pure computation over value copies; callers own
// persistence. Upsets must be detected before ApplyResult mutates ratings.
package rating

import (
	"math"
	"time"

	"github.com/okian/faceoff/internal/domain/model"
)

// eloDivisor is the logistic spread of the standard Elo expectation.
const eloDivisor = 400

// Confidence reports how settled an item's rating is, as a fraction in [0,1].
// It saturates once the item reaches MinComparisonsForConfidence comparisons.
func Confidence(comparisonCount int, t model.Tuning) float64 {
	if t.MinComparisonsForConfidence <= 0 {
		return 1
	}
	return math.Min(1, float64(comparisonCount)/float64(t.MinComparisonsForConfidence))
}

// KFactor selects the K tier for a confidence fraction. Established ratings
// move slowly, novice ratings move fast. BaseK is the legacy fallback and is
// never consulted while tiering is active.
func KFactor(confidence float64, t model.Tuning) float64 {
	switch {
	case confidence >= t.HighConfidenceThreshold:
		return t.HighConfidenceK
	case confidence >= t.MediumConfidenceThreshold:
		return t.MediumConfidenceK
	default:
		return t.LowConfidenceK
	}
}

// ExpectedScore is the standard logistic Elo expectation that a beats b.
// ExpectedScore(r, r) is 0.5 and ExpectedScore(a, b)+ExpectedScore(b, a) is 1.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/eloDivisor))
}

// DetectUpset reports whether the winner was rated below the loser by more
// than the configured threshold. It reads pre-update ratings only.
func DetectUpset(winner, loser model.Item, t model.Tuning) bool {
	return loser.Rating-winner.Rating > t.UpsetThreshold
}

// ApplyResult returns both items with ratings and tallies advanced for a
// decided vote. Each side uses the K tier of its own confidence, so an
// established item gains and loses rating slower than a novice one.
// Ratings are unbounded; no floor or ceiling is applied.
func ApplyResult(winner, loser model.Item, at time.Time, t model.Tuning) (model.Item, model.Item) {
	kWinner := KFactor(Confidence(winner.ComparisonCount, t), t)
	kLoser := KFactor(Confidence(loser.ComparisonCount, t), t)

	expWinner := ExpectedScore(winner.Rating, loser.Rating)
	expLoser := ExpectedScore(loser.Rating, winner.Rating)

	winner.Rating += kWinner * (1 - expWinner)
	loser.Rating += kLoser * (0 - expLoser)

	winner.ComparisonCount++
	loser.ComparisonCount++
	winner.Wins++
	loser.Losses++
	winner.LastComparedAt = at
	loser.LastComparedAt = at

	return winner, loser
}
