package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/roundelo/internal/config"
	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.KFactor, convey.ShouldEqual, 32)
			convey.So(cfg.InitialRating, convey.ShouldEqual, 1000)
			convey.So(cfg.FSMCurve, convey.ShouldEqual, "quadratic")
			convey.So(cfg.FSMDivisor, convey.ShouldEqual, 10)
			convey.So(cfg.SoloPolicy, convey.ShouldEqual, "full")
			convey.So(cfg.SweepWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the rating parameters match the engine defaults", func() {
			p, err := cfg.Params()
			convey.So(err, convey.ShouldBeNil)
			convey.So(p.K, convey.ShouldEqual, rating.DefaultK)
			convey.So(p.Solo, convey.ShouldEqual, scoring.SoloFull)
			convey.So(p.FieldSize(4), convey.ShouldAlmostEqual, 1.6, 1e-12)
		})

		convey.Convey("Then the sweep list parses", func() {
			ks, err := cfg.KFactors()
			convey.So(err, convey.ShouldBeNil)
			convey.So(ks, convey.ShouldResemble, []float64{8, 16, 24, 32, 48, 64})
		})
	})

	convey.Convey("Given invalid rating settings", t, func() {
		convey.Convey("When the curve is unknown", func() {
			cfg := config.New()
			cfg.FSMCurve = "cubic"
			_, err := cfg.Params()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, scoring.ErrUnknownCurve), convey.ShouldBeTrue)
		})

		convey.Convey("When K is not positive", func() {
			cfg := config.New()
			cfg.KFactor = 0
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, rating.ErrConfiguration), convey.ShouldBeTrue)
		})

		convey.Convey("When the solo policy is unknown", func() {
			cfg := config.New()
			cfg.SoloPolicy = "half"
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the sweep list is malformed", func() {
			cfg := config.New()
			cfg.SweepKFactors = "8, x"
			_, err := cfg.KFactors()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)

			cfg.SweepKFactors = " , "
			_, err = cfg.KFactors()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
