// Package familiarity scores how well the voting population knows an item.
//
// The score biases pair selection toward items users have already engaged
// with, as opposed to novel ones. All inputs arrive pre-loaded; this package
// performs no I/O.
package familiarity

import (
	"math"
	"time"

	"github.com/okian/faceoff/internal/domain/model"
)

const hoursPerDay = 24

// Score maps an item's history to a [0,1] familiarity value using the
// configured factor weights. The composite is clamped so weight-sum drift
// cannot push it out of range.
func Score(it model.Item, now time.Time, t model.Tuning) float64 {
	score := t.ComparisonFactorWeight*comparisonFactor(it, t) +
		t.WinRateFactorWeight*winRateFactor(it) +
		t.RecencyFactorWeight*recencyFactor(it, now, t) +
		t.EngagementFactorWeight*engagementFactor(it)
	return math.Max(0, math.Min(1, score))
}

// WeightDrift returns how far the four factor weights stray from summing to
// one. Callers log a warning on material drift; scoring proceeds regardless.
func WeightDrift(t model.Tuning) float64 {
	sum := t.ComparisonFactorWeight + t.WinRateFactorWeight +
		t.RecencyFactorWeight + t.EngagementFactorWeight
	return math.Abs(sum - 1)
}

func comparisonFactor(it model.Item, t model.Tuning) float64 {
	if t.ComparisonSaturationPoint <= 0 {
		return 1
	}
	return math.Min(1, float64(it.ComparisonCount)/float64(t.ComparisonSaturationPoint))
}

func winRateFactor(it model.Item) float64 {
	decided := it.Wins + it.Losses
	if decided < 1 {
		decided = 1
	}
	return float64(it.Wins) / float64(decided)
}

func recencyFactor(it model.Item, now time.Time, t model.Tuning) float64 {
	if it.LastComparedAt.IsZero() || t.RecencyDecayDays <= 0 {
		return 0
	}
	days := now.Sub(it.LastComparedAt).Hours() / hoursPerDay
	return math.Max(0, 1-days/float64(t.RecencyDecayDays))
}

func engagementFactor(it model.Item) float64 {
	seen := it.ComparisonCount + it.SkipCount
	if seen < 1 {
		seen = 1
	}
	return 1 - float64(it.SkipCount)/float64(seen)
}
