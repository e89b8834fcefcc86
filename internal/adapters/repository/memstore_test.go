package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/roundelo/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore_Seed(t *testing.T) {
	Convey("Given a store seeded with three players", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore([]string{"c", "a", "b", "a"}, 1000, repository.WithExpectedRounds(4))

		Convey("Then duplicates collapse and players are sorted", func() {
			So(store.Players(ctx), ShouldResemble, []string{"a", "b", "c"})
			So(store.Count(ctx), ShouldEqual, 3)
			So(store.Has(ctx, "b"), ShouldBeTrue)
			So(store.Has(ctx, "z"), ShouldBeFalse)
		})

		Convey("And index 0 holds the initial rating", func() {
			r, err := store.At(ctx, "a", 0)
			So(err, ShouldBeNil)
			So(r, ShouldEqual, 1000)
			So(store.Rounds(ctx), ShouldEqual, 0)
		})

		Convey("And histories start empty", func() {
			h, err := store.History(ctx, "a")
			So(err, ShouldBeNil)
			So(h, ShouldBeEmpty)
		})
	})
}

func TestMemoryStore_Commit(t *testing.T) {
	Convey("Given a seeded store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore([]string{"a", "b"}, 1000)

		Convey("When rounds are committed in order", func() {
			So(store.Commit(ctx, 1, map[string]float64{"a": 1010, "b": 990}), ShouldBeNil)
			So(store.Commit(ctx, 2, map[string]float64{"a": 1010, "b": 995}), ShouldBeNil)

			Convey("Then each index is readable", func() {
				So(store.Rounds(ctx), ShouldEqual, 2)
				r, err := store.At(ctx, "b", 1)
				So(err, ShouldBeNil)
				So(r, ShouldEqual, 990)
			})

			Convey("And histories have one entry per round", func() {
				h, err := store.History(ctx, "a")
				So(err, ShouldBeNil)
				So(h, ShouldResemble, []float64{1010, 1010})
			})

			Convey("And current ratings are the latest cells", func() {
				So(store.Current(ctx), ShouldResemble, map[string]float64{"a": 1010, "b": 995})
			})

			Convey("And all histories are read at once", func() {
				all := store.Histories(ctx)
				So(all, ShouldResemble, map[string][]float64{
					"a": {1010, 1010},
					"b": {990, 995},
				})
				all["a"][0] = 0
				h, _ := store.History(ctx, "a")
				So(h[0], ShouldEqual, 1010)
			})

			Convey("And reading past the run fails", func() {
				_, err := store.At(ctx, "a", 3)
				So(errors.Is(err, repository.ErrIndexOutOfRun), ShouldBeTrue)
			})
		})

		Convey("When an index is rewritten", func() {
			So(store.Commit(ctx, 1, map[string]float64{"a": 1, "b": 2}), ShouldBeNil)
			err := store.Commit(ctx, 1, map[string]float64{"a": 3, "b": 4})

			Convey("Then the cell is kept and the write rejected", func() {
				So(errors.Is(err, repository.ErrOutOfOrder), ShouldBeTrue)
				r, _ := store.At(ctx, "a", 1)
				So(r, ShouldEqual, 1)
			})
		})

		Convey("When an index is skipped", func() {
			err := store.Commit(ctx, 2, map[string]float64{"a": 1, "b": 2})
			So(errors.Is(err, repository.ErrOutOfOrder), ShouldBeTrue)
		})

		Convey("When a commit misses a player", func() {
			err := store.Commit(ctx, 1, map[string]float64{"a": 1})

			Convey("Then nothing is written", func() {
				So(errors.Is(err, repository.ErrIncomplete), ShouldBeTrue)
				So(store.Rounds(ctx), ShouldEqual, 0)
			})
		})

		Convey("When a commit names a stranger", func() {
			err := store.Commit(ctx, 1, map[string]float64{"a": 1, "x": 2})
			So(errors.Is(err, repository.ErrIncomplete), ShouldBeTrue)
		})

		Convey("When reading an unknown player", func() {
			_, err := store.At(ctx, "x", 0)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = store.History(ctx, "x")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryStore_Ranking(t *testing.T) {
	Convey("Given committed ratings with a tie", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore([]string{"a", "b", "c", "d"}, 1000)
		So(store.Commit(ctx, 1, map[string]float64{"a": 990, "b": 1020, "c": 1020, "d": 970}), ShouldBeNil)

		Convey("Then TopN orders by rating then id", func() {
			top, err := store.TopN(ctx, 3)
			So(err, ShouldBeNil)
			So(top, ShouldResemble, []repository.Entry{
				{Rank: 1, PlayerID: "b", Rating: 1020},
				{Rank: 2, PlayerID: "c", Rating: 1020},
				{Rank: 3, PlayerID: "a", Rating: 990},
			})
		})

		Convey("And a large limit returns everyone", func() {
			top, err := store.TopN(ctx, 100)
			So(err, ShouldBeNil)
			So(top, ShouldHaveLength, 4)
		})

		Convey("And a non-positive limit is rejected", func() {
			_, err := store.TopN(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})

		Convey("And Rank finds a player", func() {
			e, err := store.Rank(ctx, "d")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 4)
			So(e.Rating, ShouldEqual, 970)
		})

		Convey("And the ranking follows later commits", func() {
			So(store.Commit(ctx, 2, map[string]float64{"a": 990, "b": 1020, "c": 1020, "d": 1100}), ShouldBeNil)
			e, err := store.Rank(ctx, "d")
			So(err, ShouldBeNil)
			So(e.Rank, ShouldEqual, 1)
		})

		Convey("And Rank agrees with the full board across commits", func() {
			ratings := []map[string]float64{
				{"a": 1040, "b": 1000, "c": 960, "d": 1000},
				{"a": 950, "b": 1060, "c": 1060, "d": 930},
			}
			for i, r := range ratings {
				So(store.Commit(ctx, i+2, r), ShouldBeNil)
				board, err := store.TopN(ctx, store.Count(ctx))
				So(err, ShouldBeNil)
				for _, want := range board {
					got, err := store.Rank(ctx, want.PlayerID)
					So(err, ShouldBeNil)
					So(got, ShouldResemble, want)
				}
			}
		})

		Convey("And unknown players are not found", func() {
			_, err := store.Rank(ctx, "zz")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
