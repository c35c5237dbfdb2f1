package stride_test

import (
	"errors"
	"testing"

	"github.com/okian/gaitprep/internal/domain/labeling"
	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/stride"
	. "github.com/smartystreets/goconvey/convey"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestStarts(t *testing.T) {
	Convey("Given per-sample phase labels", t, func() {
		r, l, n := model.PhaseRHS, model.PhaseLTO, model.PhaseNone

		Convey("When the first sample already carries the key", func() {
			starts := stride.Starts([]model.Phase{r, r, l, l, r, l}, r)

			Convey("Then index 0 is a start and runs count once", func() {
				So(starts, ShouldResemble, []int{0, 4})
			})
		})

		Convey("When the key appears after unlabeled samples", func() {
			starts := stride.Starts([]model.Phase{n, n, r, l, r, r, r, l}, r)

			Convey("Then only rising edges are returned", func() {
				So(starts, ShouldResemble, []int{2, 4})
			})
		})

		Convey("When the input is empty", func() {
			So(stride.Starts(nil, r), ShouldBeEmpty)
		})

		Convey("When segmenting twice", func() {
			phases := []model.Phase{n, r, l, r, l, r}
			So(stride.Starts(phases, r), ShouldResemble, stride.Starts(phases, r))
		})
	})
}

func TestKey(t *testing.T) {
	Convey("Given a gait-event key", t, func() {
		Convey("Then heel strike resolves per side", func() {
			p, err := stride.Key(model.SideRight, "hs")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, model.PhaseRHS)

			p, err = stride.Key(model.SideLeft, "hs")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, model.PhaseLHS)

			p, err = stride.Key(model.SideLeft, "to")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, model.PhaseLTO)
		})

		Convey("Then unknown keys are rejected", func() {
			_, err := stride.Key(model.SideRight, "ms")
			So(errors.Is(err, stride.ErrUnknownKey), ShouldBeTrue)
		})
	})
}

func TestSegment(t *testing.T) {
	cycle := func(terrain string, idx ...int) model.GaitCycle {
		c := model.GaitCycle{Terrain: model.TerrainCode(terrain)}
		copy(c.Indices[:], idx)
		return c
	}

	Convey("Given an 80-sample trial with heel strikes at 10, 40 and 70", t, func() {
		table := model.GaitEventTable{Cycles: []model.GaitCycle{
			cycle("LW1F", 10, 17, 25, 32, 40),
			cycle("LW1F", 40, 47, 55, 62, 70),
		}}
		labels, err := labeling.Assign(table, 80)
		So(err, ShouldBeNil)

		seg, err := stride.Segment(labels, ramp(80), model.SideRight, model.PhaseRHS)

		Convey("Then two ordered 30-sample strides are produced", func() {
			So(err, ShouldBeNil)
			So(seg.Strides, ShouldHaveLength, 2)
			So(seg.Strides[0].Start, ShouldEqual, 10)
			So(seg.Strides[0].End, ShouldEqual, 40)
			So(seg.Strides[1].Start, ShouldEqual, 40)
			So(seg.Strides[1].End, ShouldEqual, 70)
			So(seg.Strides[0].Len(), ShouldEqual, 30)
			So(seg.Strides[1].Values[0], ShouldEqual, 40.0)
		})

		Convey("And each stride is a single activity", func() {
			for _, s := range seg.Strides {
				So(stride.FinalLabel(s.Activities), ShouldEqual, model.FinalLabel("w2w"))
			}
		})
	})

	Convey("Given a gap between two event spans", t, func() {
		table := model.GaitEventTable{Cycles: []model.GaitCycle{
			cycle("RA", 0, 5, 10, 15, 20),
			cycle("RA", 20, 25, 30, 35, 40),
			cycle("RA", 50, 55, 60, 65, 70),
			cycle("RA", 70, 75, 80, 85, 90),
		}}
		labels, err := labeling.Assign(table, 95)
		So(err, ShouldBeNil)

		seg, err := stride.Segment(labels, ramp(95), model.SideRight, model.PhaseRHS)

		Convey("Then no stride contains a gap sample", func() {
			So(err, ShouldBeNil)
			for _, s := range seg.Strides {
				So(s.Start >= 50 || s.End <= 40, ShouldBeTrue)
			}
			So(seg.GapSpanning, ShouldEqual, 1)
			So(seg.Strides, ShouldHaveLength, 4)
		})
	})

	Convey("Given labels and values of different length", t, func() {
		_, err := stride.Segment(make([]model.Label, 3), ramp(4), model.SideLeft, model.PhaseLHS)

		Convey("Then a length mismatch is reported", func() {
			So(errors.Is(err, stride.ErrLengthMismatch), ShouldBeTrue)
		})
	})
}

func TestFinalLabel(t *testing.T) {
	Convey("Given the activities of a stride", t, func() {
		w, ra, sd := model.LevelWalk, model.RampAscent, model.StairDescent

		Convey("When all samples share one activity", func() {
			So(stride.FinalLabel([]model.Activity{ra, ra, ra}), ShouldEqual, model.FinalLabel("ra2ra"))
		})

		Convey("When the stride crosses from walking to ramp", func() {
			So(stride.FinalLabel([]model.Activity{w, w, ra, ra}), ShouldEqual, model.FinalLabel("w2ra"))
		})

		Convey("When three activities occur only first and last count", func() {
			So(stride.FinalLabel([]model.Activity{w, ra, sd}), ShouldEqual, model.FinalLabel("w2sd"))
		})
	})
}
