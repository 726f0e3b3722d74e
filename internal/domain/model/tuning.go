package model

import "fmt"

// Tuning is the comparison engine configuration. It is loaded once per
// request by the caller and passed into every core operation as an immutable
// snapshot; the core never mutates it in place.
type Tuning struct {
	// FamiliarityWeight is the probability that a pair is drawn by
	// familiarity-weighted sampling. The remainder splits evenly between
	// needs-votes and random selection.
	FamiliarityWeight float64 `koanf:"familiarity_weight"`

	// CooldownPeriod counts the most recent comparisons whose items are
	// excluded from familiarity and needs-votes selection.
	CooldownPeriod int `koanf:"cooldown_period"`

	// NeedsVotesConfidenceThreshold and NeedsVotesComparisonThreshold bound
	// the needs-votes candidate pool: both must hold for an item to qualify.
	NeedsVotesConfidenceThreshold float64 `koanf:"needs_votes_confidence_threshold"`
	NeedsVotesComparisonThreshold int     `koanf:"needs_votes_comparison_threshold"`

	// BaseK is the legacy fallback K-factor. Confidence-tiered K values are
	// authoritative; BaseK is never consulted while tiering is active.
	BaseK             float64 `koanf:"base_k_factor"`
	HighConfidenceK   float64 `koanf:"high_confidence_k"`
	MediumConfidenceK float64 `koanf:"medium_confidence_k"`
	LowConfidenceK    float64 `koanf:"low_confidence_k"`

	// Confidence tier cut points; high must exceed medium.
	HighConfidenceThreshold   float64 `koanf:"high_confidence_threshold"`
	MediumConfidenceThreshold float64 `koanf:"medium_confidence_threshold"`

	// UpsetThreshold is the pre-vote rating gap beyond which a lower-rated
	// winner counts as an upset.
	UpsetThreshold float64 `koanf:"upset_threshold"`

	// MinComparisonsForConfidence is the comparison count at which an item's
	// rating confidence saturates at 1.
	MinComparisonsForConfidence int `koanf:"min_comparisons_for_confidence"`

	// ComparisonSaturationPoint caps the familiarity comparison factor.
	ComparisonSaturationPoint int `koanf:"comparison_saturation_point"`

	// RecencyDecayDays is the window over which the recency factor decays
	// from 1 to 0.
	RecencyDecayDays int `koanf:"recency_decay_days"`

	// Familiarity factor weights. They should sum to 1.0; drift is warned
	// about, not rejected, and the composite score is clamped.
	ComparisonFactorWeight float64 `koanf:"comparison_factor_weight"`
	WinRateFactorWeight    float64 `koanf:"win_rate_factor_weight"`
	RecencyFactorWeight    float64 `koanf:"recency_factor_weight"`
	EngagementFactorWeight float64 `koanf:"engagement_factor_weight"`
}

// DefaultTuning returns the stock engine configuration.
func DefaultTuning() Tuning {
	return Tuning{
		FamiliarityWeight:             0.7,
		CooldownPeriod:                10,
		NeedsVotesConfidenceThreshold: 0.5,
		NeedsVotesComparisonThreshold: 5,
		BaseK:                         32,
		HighConfidenceK:               16,
		MediumConfidenceK:             24,
		LowConfidenceK:                32,
		HighConfidenceThreshold:       0.8,
		MediumConfidenceThreshold:     0.5,
		UpsetThreshold:                200,
		MinComparisonsForConfidence:   10,
		ComparisonSaturationPoint:     20,
		RecencyDecayDays:              30,
		ComparisonFactorWeight:        0.4,
		WinRateFactorWeight:           0.2,
		RecencyFactorWeight:           0.2,
		EngagementFactorWeight:        0.2,
	}
}

// Validate checks structural constraints. Factor weight drift is not checked
// here; it is a warning condition, not an error.
func (t Tuning) Validate() error {
	switch {
	case t.FamiliarityWeight < 0 || t.FamiliarityWeight > 1:
		return fmt.Errorf("%w: familiarity_weight must be in [0,1]", ErrInvalidTuning)
	case t.CooldownPeriod < 0:
		return fmt.Errorf("%w: cooldown_period must not be negative", ErrInvalidTuning)
	case t.NeedsVotesConfidenceThreshold < 0 || t.NeedsVotesConfidenceThreshold > 1:
		return fmt.Errorf("%w: needs_votes_confidence_threshold must be in [0,1]", ErrInvalidTuning)
	case t.NeedsVotesComparisonThreshold < 1:
		return fmt.Errorf("%w: needs_votes_comparison_threshold must be positive", ErrInvalidTuning)
	case t.BaseK < 0 || t.HighConfidenceK < 0 || t.MediumConfidenceK < 0 || t.LowConfidenceK < 0:
		return fmt.Errorf("%w: k-factors must not be negative", ErrInvalidTuning)
	case t.HighConfidenceThreshold < 0 || t.HighConfidenceThreshold > 1:
		return fmt.Errorf("%w: high_confidence_threshold must be in [0,1]", ErrInvalidTuning)
	case t.MediumConfidenceThreshold < 0 || t.MediumConfidenceThreshold > 1:
		return fmt.Errorf("%w: medium_confidence_threshold must be in [0,1]", ErrInvalidTuning)
	case t.HighConfidenceThreshold <= t.MediumConfidenceThreshold:
		return fmt.Errorf("%w: high_confidence_threshold must exceed medium_confidence_threshold", ErrInvalidTuning)
	case t.UpsetThreshold < 0:
		return fmt.Errorf("%w: upset_threshold must not be negative", ErrInvalidTuning)
	case t.MinComparisonsForConfidence < 1:
		return fmt.Errorf("%w: min_comparisons_for_confidence must be positive", ErrInvalidTuning)
	case t.ComparisonSaturationPoint < 1:
		return fmt.Errorf("%w: comparison_saturation_point must be positive", ErrInvalidTuning)
	case t.RecencyDecayDays < 1:
		return fmt.Errorf("%w: recency_decay_days must be positive", ErrInvalidTuning)
	}
	return nil
}
