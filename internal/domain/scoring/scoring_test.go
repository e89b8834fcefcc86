package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/roundelo/internal/domain/model"
	scoring "github.com/okian/roundelo/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func sum(m map[string]float64) float64 {
	s := 0.0
	for _, v := range m {
		s += v
	}
	return s
}

func TestActualResults(t *testing.T) {
	fsm := scoring.DefaultFieldSize()

	Convey("Given a round without ties", t, func() {
		groups := []model.TieGroup{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}}

		actual, err := scoring.ActualResults(groups, fsm, scoring.SoloFull)

		Convey("Then weights fall strictly with rank and sum to fsm(n)", func() {
			So(err, ShouldBeNil)
			So(actual["a"], ShouldBeGreaterThan, actual["b"])
			So(actual["b"], ShouldBeGreaterThan, actual["c"])
			So(actual["c"], ShouldBeGreaterThan, actual["d"])
			So(actual["d"], ShouldBeGreaterThan, actual["e"])
			So(actual["e"], ShouldEqual, 0)
			So(sum(actual), ShouldAlmostEqual, 2.5, tolerance)
		})
	})

	Convey("Given four players with a tie for second", t, func() {
		groups := []model.TieGroup{{"p1"}, {"p2", "p3"}, {"p4"}}

		actual, err := scoring.ActualResults(groups, fsm, scoring.SoloFull)

		Convey("Then the tied players split slots one and two evenly", func() {
			So(err, ShouldBeNil)
			So(actual["p1"], ShouldAlmostEqual, 0.8, tolerance)
			So(actual["p2"], ShouldAlmostEqual, 0.4, tolerance)
			So(actual["p3"], ShouldEqual, actual["p2"])
			So(actual["p4"], ShouldAlmostEqual, 0, tolerance)
			So(sum(actual), ShouldAlmostEqual, 1.6, tolerance)
		})
	})

	Convey("Given a tie spanning the last places", t, func() {
		groups := []model.TieGroup{{"a"}, {"b"}, {"c", "d", "e"}}

		actual, err := scoring.ActualResults(groups, fsm, scoring.SoloFull)

		Convey("Then the group keeps its total and the round sums to fsm(n)", func() {
			So(err, ShouldBeNil)
			// slots 2..4 hold ramp values 2,1,0 scaled by 2.5/10
			So(actual["c"], ShouldAlmostEqual, 0.25, tolerance)
			So(actual["d"], ShouldEqual, actual["c"])
			So(actual["e"], ShouldEqual, actual["c"])
			So(sum(actual), ShouldAlmostEqual, 2.5, tolerance)
		})
	})

	Convey("Given a round where everyone ties", t, func() {
		actual, err := scoring.ActualResults([]model.TieGroup{{"a", "b", "c"}}, fsm, scoring.SoloFull)

		Convey("Then everyone gets an equal share", func() {
			So(err, ShouldBeNil)
			So(actual["a"], ShouldAlmostEqual, 0.3, tolerance)
			So(actual["b"], ShouldAlmostEqual, 0.3, tolerance)
			So(actual["c"], ShouldAlmostEqual, 0.3, tolerance)
		})
	})

	Convey("Given a single participant", t, func() {
		groups := []model.TieGroup{{"solo"}}

		Convey("When the solo policy is full", func() {
			actual, err := scoring.ActualResults(groups, fsm, scoring.SoloFull)

			Convey("Then the player receives fsm(1)", func() {
				So(err, ShouldBeNil)
				So(actual["solo"], ShouldAlmostEqual, 0.1, tolerance)
			})
		})

		Convey("When the solo policy is zero", func() {
			actual, err := scoring.ActualResults(groups, fsm, scoring.SoloZero)

			Convey("Then the player receives nothing", func() {
				So(err, ShouldBeNil)
				So(actual["solo"], ShouldEqual, 0)
			})
		})
	})

	Convey("Given an empty round", t, func() {
		actual, err := scoring.ActualResults(nil, fsm, scoring.SoloFull)
		So(err, ShouldBeNil)
		So(actual, ShouldBeEmpty)
	})

	Convey("Given malformed groups", t, func() {
		Convey("When a group is empty", func() {
			_, err := scoring.ActualResults([]model.TieGroup{{"a"}, {}}, fsm, scoring.SoloFull)
			So(errors.Is(err, scoring.ErrEmptyGroup), ShouldBeTrue)
		})

		Convey("When a player is listed twice", func() {
			_, err := scoring.ActualResults([]model.TieGroup{{"a"}, {"a"}}, fsm, scoring.SoloFull)
			So(errors.Is(err, scoring.ErrDuplicatePlayer), ShouldBeTrue)
		})

		Convey("When fsm is negative", func() {
			neg := func(int) float64 { return -1 }
			_, err := scoring.ActualResults([]model.TieGroup{{"a"}, {"b"}}, neg, scoring.SoloFull)

			var fe *scoring.FieldSizeError
			So(errors.As(err, &fe), ShouldBeTrue)
			So(fe.N, ShouldEqual, 2)
			So(errors.Is(err, scoring.ErrNegativeFieldSize), ShouldBeTrue)
		})
	})
}

func TestExpectedResults(t *testing.T) {
	fsm := scoring.DefaultFieldSize()

	Convey("Given four equally rated players", t, func() {
		ids := []string{"p1", "p2", "p3", "p4"}
		ratings := map[string]float64{"p1": 1000, "p2": 1000, "p3": 1000, "p4": 1000}

		expected, err := scoring.ExpectedResults(ids, ratings, fsm)

		Convey("Then each expects a quarter of fsm(4)", func() {
			So(err, ShouldBeNil)
			for _, id := range ids {
				So(expected[id], ShouldAlmostEqual, 0.4, tolerance)
			}
		})
	})

	Convey("Given unequal ratings", t, func() {
		ids := []string{"a", "b"}
		ratings := map[string]float64{"a": 3000, "b": 1000, "c": 99}

		expected, err := scoring.ExpectedResults(ids, ratings, fsm)

		Convey("Then shares follow rating share and ignore non-participants", func() {
			So(err, ShouldBeNil)
			So(expected, ShouldHaveLength, 2)
			So(expected["a"], ShouldAlmostEqual, 0.3, tolerance)
			So(expected["b"], ShouldAlmostEqual, 0.1, tolerance)
		})
	})

	Convey("Given a participant with a non-positive rating", t, func() {
		_, err := scoring.ExpectedResults([]string{"a", "b"}, map[string]float64{"a": 10, "b": -2}, fsm)

		Convey("Then the offending player is reported", func() {
			var re *scoring.RatingError
			So(errors.As(err, &re), ShouldBeTrue)
			So(re.PlayerID, ShouldEqual, "b")
			So(re.Rating, ShouldEqual, -2)
			So(errors.Is(err, scoring.ErrNonPositiveRating), ShouldBeTrue)
		})
	})

	Convey("Given a NaN rating", t, func() {
		_, err := scoring.ExpectedResults([]string{"a"}, map[string]float64{"a": math.NaN()}, fsm)
		So(errors.Is(err, scoring.ErrNonPositiveRating), ShouldBeTrue)
	})

	Convey("Given a participant without a rating", t, func() {
		_, err := scoring.ExpectedResults([]string{"a"}, map[string]float64{}, fsm)
		So(errors.Is(err, scoring.ErrMissingRating), ShouldBeTrue)
	})
}

func TestCurves(t *testing.T) {
	Convey("Given named curves", t, func() {
		Convey("When resolving each name", func() {
			q, err := scoring.CurveByName("quadratic", 10)
			So(err, ShouldBeNil)
			So(q(4), ShouldAlmostEqual, 1.6, tolerance)

			l, err := scoring.CurveByName("Linear", 2)
			So(err, ShouldBeNil)
			So(l(4), ShouldAlmostEqual, 2, tolerance)

			f, err := scoring.CurveByName("flat", 4)
			So(err, ShouldBeNil)
			So(f(100), ShouldAlmostEqual, 0.25, tolerance)

			d, err := scoring.CurveByName("", 10)
			So(err, ShouldBeNil)
			So(d(10), ShouldAlmostEqual, 10, tolerance)
		})

		Convey("When the name is unknown", func() {
			_, err := scoring.CurveByName("cubic", 10)
			So(errors.Is(err, scoring.ErrUnknownCurve), ShouldBeTrue)
		})

		Convey("When the divisor is not positive", func() {
			_, err := scoring.CurveByName("linear", 0)
			So(errors.Is(err, scoring.ErrInvalidDivisor), ShouldBeTrue)
		})
	})

	Convey("Given solo policy names", t, func() {
		p, err := scoring.ParseSoloPolicy("zero")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, scoring.SoloZero)
		So(p.String(), ShouldEqual, "zero")

		p, err = scoring.ParseSoloPolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, scoring.SoloFull)

		_, err = scoring.ParseSoloPolicy("half")
		So(errors.Is(err, scoring.ErrUnknownSoloPolicy), ShouldBeTrue)
	})
}

func TestWeigher(t *testing.T) {
	Convey("Given a weigher with a linear curve", t, func() {
		w := scoring.NewWeigher(
			scoring.WithFieldSize(scoring.Linear(1)),
			scoring.WithSoloPolicy(scoring.SoloZero),
			scoring.WithFieldSize(nil),
		)

		Convey("Then actual and expected share the same total", func() {
			groups := []model.TieGroup{{"a"}, {"b"}, {"c"}}
			actual, err := w.Actual(groups)
			So(err, ShouldBeNil)
			expected, err := w.Expected([]string{"a", "b", "c"}, map[string]float64{"a": 1, "b": 2, "c": 3})
			So(err, ShouldBeNil)
			So(sum(actual), ShouldAlmostEqual, 3, tolerance)
			So(sum(expected), ShouldAlmostEqual, 3, tolerance)
			So(w.FieldSize()(3), ShouldEqual, 3)
		})

		Convey("And the solo policy is applied", func() {
			actual, err := w.Actual([]model.TieGroup{{"a"}})
			So(err, ShouldBeNil)
			So(actual["a"], ShouldEqual, 0)
		})
	})
}
