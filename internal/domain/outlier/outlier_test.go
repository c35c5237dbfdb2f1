package outlier_test

import (
	"errors"
	"testing"

	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/internal/domain/outlier"
	. "github.com/smartystreets/goconvey/convey"
)

// gridWithOutlier returns a 5x5 unit grid followed by one far point at
// index 25.
func gridWithOutlier() [][]float64 {
	rows := make([][]float64, 0, 26)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			rows = append(rows, []float64{float64(i), float64(j)})
		}
	}
	return append(rows, []float64{50, 50})
}

func TestNew(t *testing.T) {
	Convey("Given strategy names", t, func() {
		Convey("Then canonical names and aliases resolve case-insensitively", func() {
			cases := []struct {
				name string
				want string
			}{
				{"iForest", outlier.IsolationForest},
				{"isolation_forest", outlier.IsolationForest},
				{"MCD", outlier.MinCovDet},
				{"elliptic-envelope", outlier.MinCovDet},
				{"robust_covariance", outlier.MinCovDet},
				{"LOF", outlier.LocalOutlierFactor},
				{"local_outlier_factor", outlier.LocalOutlierFactor},
			}
			for _, tc := range cases {
				d, err := outlier.New(tc.name)
				So(err, ShouldBeNil)
				So(d.Name(), ShouldEqual, tc.want)
			}
		})

		Convey("Then an unknown name fails at construction", func() {
			_, err := outlier.New("dbscan")
			So(errors.Is(err, outlier.ErrUnknownStrategy), ShouldBeTrue)
		})

		Convey("Then invalid options are rejected", func() {
			_, err := outlier.New("mcd", outlier.WithContamination(0.9))
			So(errors.Is(err, outlier.ErrInvalidOption), ShouldBeTrue)
		})
	})
}

func TestDetectors(t *testing.T) {
	Convey("Given a tight cluster with one far point", t, func() {
		rows := gridWithOutlier()

		for _, name := range []string{outlier.IsolationForest, outlier.MinCovDet, outlier.LocalOutlierFactor} {
			d, err := outlier.New(name)
			So(err, ShouldBeNil)

			flagged, err := d.Detect(rows)
			So(err, ShouldBeNil)
			So(flagged, ShouldContain, 25)
		}
	})

	Convey("Given the covariance strategy with 10% contamination", t, func() {
		d, err := outlier.New("mcd")
		So(err, ShouldBeNil)
		flagged, err := d.Detect(gridWithOutlier())

		Convey("Then at most the top decile is flagged", func() {
			So(err, ShouldBeNil)
			So(len(flagged), ShouldBeLessThanOrEqualTo, 3)
		})
	})

	Convey("Given the local outlier factor on a regular grid", t, func() {
		d, err := outlier.New("lof")
		So(err, ShouldBeNil)
		flagged, err := d.Detect(gridWithOutlier())

		Convey("Then only the far point is flagged", func() {
			So(err, ShouldBeNil)
			So(flagged, ShouldResemble, []int{25})
		})
	})

	Convey("Given a seeded isolation forest", t, func() {
		d, err := outlier.New("iforest", outlier.WithSeed(7))
		So(err, ShouldBeNil)

		Convey("Then repeated runs flag the same rows", func() {
			first, err := d.Detect(gridWithOutlier())
			So(err, ShouldBeNil)
			second, err := d.Detect(gridWithOutlier())
			So(err, ShouldBeNil)
			So(first, ShouldResemble, second)
		})
	})

	Convey("Given degenerate input", t, func() {
		for _, name := range []string{"iforest", "mcd", "lof"} {
			d, err := outlier.New(name)
			So(err, ShouldBeNil)

			flagged, err := d.Detect(nil)
			So(err, ShouldBeNil)
			So(flagged, ShouldBeEmpty)

			_, err = d.Detect([][]float64{{1, 2}, {3}})
			So(errors.Is(err, outlier.ErrRaggedInput), ShouldBeTrue)
		}
	})
}

// firstMember flags member 0 of every group it sees.
type firstMember struct {
	calls []int
}

func (f *firstMember) Name() string { return "first" }

func (f *firstMember) Detect(rows [][]float64) ([]int, error) {
	f.calls = append(f.calls, len(rows))
	return []int{0}, nil
}

func corpusOf(groups map[model.Joint]int) model.Corpus {
	var c model.Corpus
	for _, j := range model.Joints {
		for i := 0; i < groups[j]; i++ {
			c.Append(model.CorpusLabel{Subject: "AB01", Joint: j, Label: "w2w"}, []float64{float64(i)})
		}
	}
	return c
}

func TestFilter(t *testing.T) {
	Convey("Given groups of five and six strides", t, func() {
		corpus := corpusOf(map[model.Joint]int{
			model.RightKnee: 5,
			model.LeftKnee:  6,
		})
		stub := &firstMember{}
		f := outlier.NewFilter(stub)

		out, reports, err := f.Apply(corpus)

		Convey("Then only the group of six is sent to the detector", func() {
			So(err, ShouldBeNil)
			So(stub.calls, ShouldResemble, []int{6})
			So(reports, ShouldHaveLength, 2)
			So(reports[0].Exempt, ShouldBeTrue)
			So(reports[0].Removed, ShouldEqual, 0)
			So(reports[1].Exempt, ShouldBeFalse)
			So(reports[1].Removed, ShouldEqual, 1)
		})

		Convey("Then the flagged row is dropped from data and labels alike", func() {
			So(out.Len(), ShouldEqual, 10)
			So(out.Labels, ShouldHaveLength, 10)
			knee := 0
			for _, l := range out.Labels {
				if l.Joint == model.RightKnee {
					knee++
				}
			}
			So(knee, ShouldEqual, 5)
		})

		Convey("Then survivors keep their relative order", func() {
			var left []float64
			for i, l := range out.Labels {
				if l.Joint == model.LeftKnee {
					left = append(left, out.Data[i][0])
				}
			}
			So(left, ShouldResemble, []float64{1, 2, 3, 4, 5})
		})

		Convey("Then the input corpus is untouched", func() {
			So(corpus.Len(), ShouldEqual, 11)
		})
	})

	Convey("Given a custom minimum group size", t, func() {
		corpus := corpusOf(map[model.Joint]int{model.RightHip: 3})
		stub := &firstMember{}
		out, _, err := outlier.NewFilter(stub, outlier.WithMinGroup(2)).Apply(corpus)

		So(err, ShouldBeNil)
		So(stub.calls, ShouldResemble, []int{3})
		So(out.Len(), ShouldEqual, 2)
	})

	Convey("Given an empty corpus", t, func() {
		out, reports, err := outlier.NewFilter(&firstMember{}).Apply(model.Corpus{})

		So(err, ShouldBeNil)
		So(out.Len(), ShouldEqual, 0)
		So(reports, ShouldBeEmpty)
	})
}
