package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gaitprep/internal/config"
	"github.com/okian/gaitprep/internal/synthtrials"
	"github.com/okian/gaitprep/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init(logger.WithWriter(discard{}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestRun(t *testing.T) {
	convey.Convey("Given a synthetic dataset and GAITPREP_ paths in a temp dir", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		raw := filepath.Join(dir, "raw")

		gen := synthtrials.DefaultConfig()
		gen.Subjects = 2
		gen.Cycles = 9
		_, err := synthtrials.Write(ctx, raw, gen)
		convey.So(err, convey.ShouldBeNil)

		t.Setenv("GAITPREP_DATASET_ROOT", raw)
		t.Setenv("GAITPREP_NORMALIZED_DIR", filepath.Join(dir, "normalized"))
		t.Setenv("GAITPREP_CLEAN_DIR", filepath.Join(dir, "clean"))
		t.Setenv("GAITPREP_CATALOG_PATH", filepath.Join(dir, "catalog.db"))
		t.Setenv("GAITPREP_METRICS_TEXTFILE", filepath.Join(dir, "gaitprep.prom"))

		convey.Convey("When the full pipeline runs", func() {
			err := run(ctx, "")

			convey.Convey("Then both datasets and the side outputs are written", func() {
				convey.So(err, convey.ShouldBeNil)
				for _, p := range []string{
					filepath.Join(dir, "normalized", "AB01"),
					filepath.Join(dir, "normalized", "AB02"),
					filepath.Join(dir, "clean", "AB01"),
					filepath.Join(dir, "catalog.db"),
					filepath.Join(dir, "gaitprep.prom"),
				} {
					_, statErr := os.Stat(p)
					convey.So(statErr, convey.ShouldBeNil)
				}
			})

			convey.Convey("And a clean-only rerun reuses the normalized dataset", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(run(ctx, config.ModeClean), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the mode flag is unknown", func() {
			err := run(ctx, "everything")

			convey.Convey("Then configuration validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
