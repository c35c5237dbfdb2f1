package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/gaitprep/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Mode, convey.ShouldEqual, config.ModeAll)
			convey.So(cfg.Samples, convey.ShouldEqual, 50)
			convey.So(cfg.GaitEventKey, convey.ShouldEqual, "hs")
			convey.So(cfg.Axis, convey.ShouldEqual, 2)
			convey.So(cfg.MinStrideSamples, convey.ShouldEqual, 4)
			convey.So(cfg.Interpolation, convey.ShouldEqual, "cubic")
			convey.So(cfg.OutlierStrategy, convey.ShouldEqual, "iforest")
			convey.So(cfg.OutlierMinGroup, convey.ShouldEqual, 5)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 1)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad value each", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"unknown mode", func(c *config.Config) { c.Mode = "train" }},
			{"tiny K", func(c *config.Config) { c.Samples = 1 }},
			{"unknown key", func(c *config.Config) { c.GaitEventKey = "ms" }},
			{"bad axis", func(c *config.Config) { c.Axis = 3 }},
			{"no workers", func(c *config.Config) { c.WorkerCount = 0 }},
			{"no queue", func(c *config.Config) { c.QueueSize = 0 }},
			{"zero rate", func(c *config.Config) { c.SampleRateHz = 0 }},
			{"negative group", func(c *config.Config) { c.OutlierMinGroup = -1 }},
			{"unknown interpolation", func(c *config.Config) { c.Interpolation = "sinc" }},
			{"unknown strategy", func(c *config.Config) { c.OutlierStrategy = "svm" }},
		}

		for _, tc := range cases {
			cfg := config.New(context.Background())
			tc.mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		}
	})

	convey.Convey("Given an unknown outlier strategy", t, func() {
		cfg := config.New(context.Background())
		cfg.OutlierStrategy = "svm"
		err := cfg.Validate()

		convey.Convey("Then the accepted names are listed", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "isolation_forest")
		})
	})

	convey.Convey("Given a strategy alias in another case", t, func() {
		cfg := config.New(context.Background())
		cfg.OutlierStrategy = "Local-Outlier-Factor"

		convey.Convey("Then it validates", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given mode-dependent paths", t, func() {
		convey.Convey("When clean mode has no dataset root", func() {
			cfg := config.New(context.Background())
			cfg.Mode = config.ModeClean
			cfg.DatasetRoot = ""

			convey.Convey("Then it is still valid", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When normalize mode has no clean dir", func() {
			cfg := config.New(context.Background())
			cfg.Mode = config.ModeNormalize
			cfg.CleanDir = ""

			convey.Convey("Then it is still valid", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the normalized dir is missing", func() {
			cfg := config.New(context.Background())
			cfg.NormalizedDir = ""
			err := cfg.Validate()

			convey.Convey("Then a missing path error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrMissingPath), convey.ShouldBeTrue)
			})
		})
	})
}
