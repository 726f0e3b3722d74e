package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/faceoff/internal/adapters/repository"
	"github.com/okian/faceoff/internal/domain/model"
)

func openSQLite(t *testing.T) *repository.SQLStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "faceoff.db")
	s, err := repository.OpenSQLStore(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStoreCatalog(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh SQLite-backed store", t, func() {
		s := openSQLite(t)

		Convey("When items are added", func() {
			So(s.AddItem(ctx, model.Item{ID: "a", Title: "alpha", ImageURL: "https://img/a", Rating: 1500}), ShouldBeNil)
			So(s.AddItem(ctx, model.Item{ID: "b", Title: "beta", Rating: 1500}), ShouldBeNil)

			Convey("Then they read back by id", func() {
				got, err := s.Item(ctx, "a")
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "alpha")
				So(got.ImageURL, ShouldEqual, "https://img/a")
				So(got.Rating, ShouldEqual, 1500)
				So(got.LastComparedAt.IsZero(), ShouldBeTrue)
				So(s.Count(ctx), ShouldEqual, 2)
			})

			Convey("And only imaged items are eligible", func() {
				eligible, err := s.EligibleItems(ctx)
				So(err, ShouldBeNil)
				So(eligible, ShouldHaveLength, 1)
				So(eligible[0].ID, ShouldEqual, "a")
			})

			Convey("And an unknown id reports not found", func() {
				_, err := s.Item(ctx, "ghost")
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})
	})
}

func TestSQLStoreRankings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a SQLite catalog with varied ratings", t, func() {
		s := openSQLite(t)
		So(s.AddItem(ctx, model.Item{ID: "mid", Title: "mid", ImageURL: "u", Rating: 1500}), ShouldBeNil)
		So(s.AddItem(ctx, model.Item{ID: "top", Title: "top", ImageURL: "u", Rating: 1710}), ShouldBeNil)
		So(s.AddItem(ctx, model.Item{ID: "low", Title: "low", ImageURL: "u", Rating: 1320}), ShouldBeNil)

		Convey("When rankings are requested", func() {
			got, err := s.Rankings(ctx, 2)

			Convey("Then items arrive rating-descending and truncated", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].ID, ShouldEqual, "top")
				So(got[1].ID, ShouldEqual, "mid")
			})
		})

		Convey("When the limit is not positive", func() {
			_, err := s.Rankings(ctx, 0)

			Convey("Then the store rejects it", func() {
				So(err, ShouldWrap, repository.ErrInvalidLimit)
			})
		})
	})
}

func TestSQLStoreRecordVote(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given two rated items in SQLite", t, func() {
		s := openSQLite(t)
		So(s.AddItem(ctx, model.Item{ID: "w", Title: "winner", ImageURL: "u", Rating: 1500}), ShouldBeNil)
		So(s.AddItem(ctx, model.Item{ID: "l", Title: "loser", ImageURL: "u", Rating: 1500}), ShouldBeNil)

		Convey("When a vote applies rating deltas", func() {
			w, l, comp, err := s.RecordVote(ctx,
				repository.VoteUpdate{ItemID: "w", RatingDelta: 8, Won: true},
				repository.VoteUpdate{ItemID: "l", RatingDelta: -16},
				at,
			)

			Convey("Then both rows moved inside one transaction", func() {
				So(err, ShouldBeNil)
				So(w.Rating, ShouldEqual, 1508)
				So(w.Wins, ShouldEqual, 1)
				So(w.ComparisonCount, ShouldEqual, 1)
				So(l.Rating, ShouldEqual, 1484)
				So(l.Losses, ShouldEqual, 1)
				So(w.LastComparedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And the comparison row names the winner", func() {
				So(comp.WinnerID, ShouldEqual, "w")
				recent, recErr := s.RecentComparisons(ctx, 5)
				So(recErr, ShouldBeNil)
				So(recent, ShouldHaveLength, 1)
				So(recent[0].ID, ShouldEqual, comp.ID)
				So(recent[0].Skipped(), ShouldBeFalse)
				So(s.ComparisonCount(ctx), ShouldEqual, 1)
			})
		})

		Convey("When one side of the vote is unknown", func() {
			_, _, _, err := s.RecordVote(ctx,
				repository.VoteUpdate{ItemID: "w", RatingDelta: 8, Won: true},
				repository.VoteUpdate{ItemID: "ghost", RatingDelta: -8},
				at,
			)

			Convey("Then the transaction rolled back completely", func() {
				So(err, ShouldWrap, repository.ErrNotFound)

				w, getErr := s.Item(ctx, "w")
				So(getErr, ShouldBeNil)
				So(w.Rating, ShouldEqual, 1500)
				So(w.Wins, ShouldEqual, 0)
				So(w.ComparisonCount, ShouldEqual, 0)

				recent, recErr := s.RecentComparisons(ctx, 5)
				So(recErr, ShouldBeNil)
				So(recent, ShouldBeEmpty)
			})
		})
	})
}

func TestSQLStoreRecordSkip(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	Convey("Given two items in SQLite", t, func() {
		s := openSQLite(t)
		So(s.AddItem(ctx, model.Item{ID: "a", Title: "alpha", ImageURL: "u", Rating: 1540}), ShouldBeNil)
		So(s.AddItem(ctx, model.Item{ID: "b", Title: "beta", ImageURL: "u", Rating: 1460}), ShouldBeNil)

		Convey("When the pair is skipped", func() {
			a, b, comp, err := s.RecordSkip(ctx, "a", "b", at)

			Convey("Then skip counts moved and ratings held", func() {
				So(err, ShouldBeNil)
				So(a.SkipCount, ShouldEqual, 1)
				So(b.SkipCount, ShouldEqual, 1)
				So(a.Rating, ShouldEqual, 1540)
				So(b.Rating, ShouldEqual, 1460)
				So(a.ComparisonCount, ShouldEqual, 0)
			})

			Convey("And the logged row is winnerless", func() {
				So(comp.Skipped(), ShouldBeTrue)
				recent, recErr := s.RecentComparisons(ctx, 5)
				So(recErr, ShouldBeNil)
				So(recent, ShouldHaveLength, 1)
				So(recent[0].WinnerID, ShouldBeEmpty)
			})
		})

		Convey("When one side is unknown", func() {
			_, _, _, err := s.RecordSkip(ctx, "a", "ghost", at)

			Convey("Then nothing persisted", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
				a, getErr := s.Item(ctx, "a")
				So(getErr, ShouldBeNil)
				So(a.SkipCount, ShouldEqual, 0)
			})
		})
	})
}

func TestSQLStoreTuning(t *testing.T) {
	ctx := context.Background()

	Convey("Given a freshly opened SQLite store", t, func() {
		s := openSQLite(t)

		Convey("Then the seeded tuning matches the defaults", func() {
			got, err := s.Tuning(ctx)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, model.DefaultTuning())
		})

		Convey("When the tuning row is replaced", func() {
			next := model.DefaultTuning()
			next.CooldownPeriod = 42
			next.UpsetThreshold = 275
			So(s.SetTuning(ctx, next), ShouldBeNil)

			Convey("Then reads see the update", func() {
				got, err := s.Tuning(ctx)
				So(err, ShouldBeNil)
				So(got.CooldownPeriod, ShouldEqual, 42)
				So(got.UpsetThreshold, ShouldEqual, 275)
			})
		})

		Convey("When an invalid tuning is offered", func() {
			bad := model.DefaultTuning()
			bad.RecencyDecayDays = 0

			Convey("Then it is rejected before touching the row", func() {
				So(s.SetTuning(ctx, bad), ShouldWrap, model.ErrInvalidTuning)
				got, err := s.Tuning(ctx)
				So(err, ShouldBeNil)
				So(got.RecencyDecayDays, ShouldEqual, model.DefaultTuning().RecencyDecayDays)
			})
		})
	})
}
