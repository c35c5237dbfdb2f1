package source_test

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/gaitprep/internal/adapters/source"
	"github.com/okian/gaitprep/internal/domain/labeling"
	"github.com/okian/gaitprep/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleTrial(subject, trial string, n int) model.RawTrial {
	angles := make(map[model.Joint]model.AngleSeries, len(model.Joints))
	for ji, j := range model.Joints {
		s := make(model.AngleSeries, n)
		for i := range s {
			x := float64(i) / 10
			s[i] = [3]float64{float64(ji), math.Cos(x), math.Sin(x) * float64(ji+1)}
		}
		angles[j] = s
	}
	return model.RawTrial{
		Subject: subject,
		Trial:   trial,
		Angles:  angles,
		Events: model.GaitEventTable{Cycles: []model.GaitCycle{
			{Terrain: "LW1F", Indices: [5]int{0, 5, 10, 15, 20}},
			{Terrain: "RA", Indices: [5]int{20, 25, 30, 35, 39}},
		}},
	}
}

func TestFileSource(t *testing.T) {
	Convey("Given two subjects written in the trial layout", t, func() {
		root := t.TempDir()
		So(source.WriteTrial(root, sampleTrial("S2", "t01", 40)), ShouldBeNil)
		So(source.WriteTrial(root, sampleTrial("S1", "t02", 40)), ShouldBeNil)
		So(source.WriteTrial(root, sampleTrial("S1", "t01", 40)), ShouldBeNil)

		src := source.NewFileSource(root, source.WithSampleRate(100))
		ctx := context.Background()

		Convey("When subjects are listed", func() {
			subjects, err := src.Subjects(ctx)

			Convey("Then they come back sorted", func() {
				So(err, ShouldBeNil)
				So(subjects, ShouldResemble, []string{"S1", "S2"})
			})
		})

		Convey("When a subject's trials are listed and loaded", func() {
			ids, err := src.Trials(ctx, "S1")
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"t01", "t02"})

			tr, err := src.Load(ctx, "S1", "t01")

			Convey("Then the trial round trips", func() {
				So(err, ShouldBeNil)
				So(tr.Subject, ShouldEqual, "S1")
				So(tr.Trial, ShouldEqual, "t01")
				So(tr.SampleRate, ShouldEqual, 100)
				So(tr.Len(), ShouldEqual, 40)

				want := sampleTrial("S1", "t01", 40)
				So(tr.Events, ShouldResemble, want.Events)
				for _, j := range model.Joints {
					So(tr.Angles[j][17][2], ShouldAlmostEqual, want.Angles[j][17][2], 1e-12)
					So(tr.Angles[j][3][0], ShouldEqual, want.Angles[j][3][0])
				}
			})
		})

		Convey("When an unknown subject is requested", func() {
			_, err := src.Trials(ctx, "S9")

			Convey("Then the error reports it and keeps the I/O cause", func() {
				So(errors.Is(err, source.ErrUnknownSubject), ShouldBeTrue)
				So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When a cycle table carries an unknown terrain code", func() {
			path := filepath.Join(root, "S2", "t01", source.CyclesFile)
			So(os.WriteFile(path, []byte("terrain,rhs,lto,lhs,rto,rhs_next\nXX,0,1,2,3,4\n"), 0o644), ShouldBeNil)

			_, err := src.Load(ctx, "S2", "t01")

			Convey("Then a validation error is returned", func() {
				So(errors.Is(err, labeling.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When a cycle table is not valid CSV", func() {
			path := filepath.Join(root, "S2", "t01", source.CyclesFile)
			So(os.WriteFile(path, []byte("terrain,rhs,lto,lhs,rto,rhs_next\nLW1F,0\"1,2,3,4,5\n"), 0o644), ShouldBeNil)

			_, err := src.Load(ctx, "S2", "t01")

			Convey("Then the trial is reported as malformed", func() {
				So(errors.Is(err, source.ErrMalformedTrial), ShouldBeTrue)
			})
		})

		Convey("When the kinematics file is missing", func() {
			So(os.Remove(filepath.Join(root, "S2", "t01", source.KinematicsFile)), ShouldBeNil)

			_, err := src.Load(ctx, "S2", "t01")

			Convey("Then the I/O error propagates", func() {
				So(errors.Is(err, fs.ErrNotExist), ShouldBeTrue)
			})
		})
	})

	Convey("Given a trial with a missing joint", t, func() {
		tr := sampleTrial("S1", "t01", 10)
		delete(tr.Angles, model.LeftHip)

		Convey("Then writing it fails", func() {
			err := source.WriteTrial(t.TempDir(), tr)
			So(errors.Is(err, source.ErrMalformedTrial), ShouldBeTrue)
		})
	})
}

func TestMemorySource(t *testing.T) {
	Convey("Given an in-memory source", t, func() {
		src := source.NewMemorySource(
			sampleTrial("B", "t2", 5),
			sampleTrial("A", "t1", 5),
			sampleTrial("B", "t1", 5),
		)
		ctx := context.Background()

		Convey("Then subjects and trials are sorted", func() {
			subjects, err := src.Subjects(ctx)
			So(err, ShouldBeNil)
			So(subjects, ShouldResemble, []string{"A", "B"})

			ids, err := src.Trials(ctx, "B")
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"t1", "t2"})

			tr, err := src.Load(ctx, "B", "t2")
			So(err, ShouldBeNil)
			So(tr.Trial, ShouldEqual, "t2")
		})

		Convey("Then unknown subjects and trials are reported", func() {
			_, err := src.Trials(ctx, "Z")
			So(errors.Is(err, source.ErrUnknownSubject), ShouldBeTrue)

			_, err = src.Load(ctx, "A", "t9")
			So(errors.Is(err, source.ErrUnknownTrial), ShouldBeTrue)
		})
	})
}
