package model_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/faceoff/internal/domain/model"
)

func TestTuningValidate(t *testing.T) {
	Convey("Given the stock tuning", t, func() {
		Convey("Then it validates", func() {
			So(model.DefaultTuning().Validate(), ShouldBeNil)
		})
	})

	Convey("Given individually broken tunings", t, func() {
		cases := []struct {
			name   string
			mutate func(*model.Tuning)
		}{
			{"familiarity weight above one", func(t *model.Tuning) { t.FamiliarityWeight = 1.2 }},
			{"negative familiarity weight", func(t *model.Tuning) { t.FamiliarityWeight = -0.1 }},
			{"negative cooldown", func(t *model.Tuning) { t.CooldownPeriod = -1 }},
			{"zero needs-votes threshold", func(t *model.Tuning) { t.NeedsVotesComparisonThreshold = 0 }},
			{"needs-votes confidence above one", func(t *model.Tuning) { t.NeedsVotesConfidenceThreshold = 1.3 }},
			{"negative needs-votes confidence", func(t *model.Tuning) { t.NeedsVotesConfidenceThreshold = -0.2 }},
			{"negative K factor", func(t *model.Tuning) { t.MediumConfidenceK = -3 }},
			{"inverted confidence tiers", func(t *model.Tuning) { t.HighConfidenceThreshold = 0.4 }},
			{"high confidence tier above one", func(t *model.Tuning) { t.HighConfidenceThreshold = 1.4 }},
			{"negative medium confidence tier", func(t *model.Tuning) { t.MediumConfidenceThreshold = -0.5 }},
			{"negative upset threshold", func(t *model.Tuning) { t.UpsetThreshold = -10 }},
			{"zero confidence denominator", func(t *model.Tuning) { t.MinComparisonsForConfidence = 0 }},
			{"zero saturation point", func(t *model.Tuning) { t.ComparisonSaturationPoint = 0 }},
			{"zero decay window", func(t *model.Tuning) { t.RecencyDecayDays = 0 }},
		}

		for _, tc := range cases {
			Convey("Then "+tc.name+" is rejected", func() {
				tn := model.DefaultTuning()
				tc.mutate(&tn)
				So(tn.Validate(), ShouldWrap, model.ErrInvalidTuning)
			})
		}
	})

	Convey("Given drifting factor weights", t, func() {
		tn := model.DefaultTuning()
		tn.WinRateFactorWeight = 0.9

		Convey("Then validation still passes, drift is a warning elsewhere", func() {
			So(tn.Validate(), ShouldBeNil)
		})
	})
}

func TestItemEligible(t *testing.T) {
	Convey("Given catalog items", t, func() {
		Convey("Then only items with an image are eligible", func() {
			So(model.Item{ID: "a", ImageURL: "https://img/a"}.Eligible(), ShouldBeTrue)
			So(model.Item{ID: "b"}.Eligible(), ShouldBeFalse)
		})
	})
}

func TestComparisonSkipped(t *testing.T) {
	Convey("Given comparison rows", t, func() {
		Convey("Then a row without a winner reads as skipped", func() {
			So(model.Comparison{ID: "c1"}.Skipped(), ShouldBeTrue)
			So(model.Comparison{ID: "c2", WinnerID: "a"}.Skipped(), ShouldBeFalse)
		})
	})
}
