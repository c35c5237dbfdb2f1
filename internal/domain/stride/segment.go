// Package stride slices labeled joint signals into single-stride windows and
// assigns each stride its final activity label.
package stride

import (
	"fmt"
	"slices"

	"github.com/okian/gaitprep/internal/domain/labeling"
	"github.com/okian/gaitprep/internal/domain/model"
)

// Key resolves the side-specific phase a stride starts on. The gait-event key
// is "hs" (heel strike) or "to" (toe off); Right joints use "rhs"/"rto",
// Left joints "lhs"/"lto".
func Key(side model.Side, key string) (model.Phase, error) {
	if key != "hs" && key != "to" {
		return model.PhaseNone, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	p, ok := model.KeyPhase(side, key)
	if !ok {
		return model.PhaseNone, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return p, nil
}

// Starts returns the stride start indices: 0 if the first sample already
// carries the key, and every later i where the key begins (rising edge).
// A run of consecutive key samples counts once.
func Starts(phases []model.Phase, key model.Phase) []int {
	var out []int
	for i, p := range phases {
		if p != key {
			continue
		}
		if i == 0 || phases[i-1] != key {
			out = append(out, i)
		}
	}
	return out
}

// Segmentation is the output of Segment.
type Segmentation struct {
	Strides []model.Stride
	// GapSpanning counts windows dropped because they cover unlabeled samples.
	GapSpanning int
}

// Segment cuts values into the half-open windows between consecutive stride
// starts. A trailing start without a successor yields no stride. Windows that
// contain a none-activity sample (a gap between cycles) are dropped, so
// unlabeled samples never appear inside a stride.
func Segment(labels []model.Label, values []float64, side model.Side, key model.Phase) (Segmentation, error) {
	if len(labels) != len(values) {
		return Segmentation{}, fmt.Errorf("%w: %d labels, %d values", ErrLengthMismatch, len(labels), len(values))
	}

	starts := Starts(labeling.Phases(labels), key)

	var seg Segmentation
	for i := 0; i+1 < len(starts); i++ {
		lo, hi := starts[i], starts[i+1]
		acts := labeling.Activities(labels[lo:hi])
		if slices.Contains(acts, model.ActivityNone) {
			seg.GapSpanning++
			continue
		}
		seg.Strides = append(seg.Strides, model.Stride{
			Side:       side,
			Start:      lo,
			End:        hi,
			Values:     append([]float64(nil), values[lo:hi]...),
			Activities: acts,
		})
	}
	return seg, nil
}
