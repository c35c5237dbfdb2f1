package outlier

import (
	"fmt"

	"github.com/okian/gaitprep/internal/domain/model"
)

// DefaultMinGroup is the largest group size exempt from pruning.
const DefaultMinGroup = 5

// GroupKey identifies one (joint, label) group of the corpus.
type GroupKey struct {
	Joint model.Joint
	Label model.FinalLabel
}

// GroupReport summarizes filtering of one group.
type GroupReport struct {
	Key     GroupKey
	Members int
	Removed int
	Exempt  bool
}

// FilterOption applies a configuration option to the Filter.
type FilterOption func(*Filter)

// WithMinGroup sets the largest exempt group size. Groups with strictly more
// members are pruned.
func WithMinGroup(n int) FilterOption {
	return func(f *Filter) {
		f.minGroup = n
	}
}

// Filter removes flagged strides group by group.
type Filter struct {
	detector Detector
	minGroup int
}

// NewFilter creates a Filter around one globally selected detector.
func NewFilter(detector Detector, opts ...FilterOption) *Filter {
	f := &Filter{
		detector: detector,
		minGroup: DefaultMinGroup,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Detector returns the strategy in use.
func (f *Filter) Detector() Detector { return f.detector }

// Groups returns the row indices of each (joint, label) group, in order of
// first appearance.
func Groups(corpus model.Corpus) ([]GroupKey, map[GroupKey][]int) {
	var keys []GroupKey
	members := make(map[GroupKey][]int)
	for i, l := range corpus.Labels {
		key := GroupKey{Joint: l.Joint, Label: l.Label}
		if _, seen := members[key]; !seen {
			keys = append(keys, key)
		}
		members[key] = append(members[key], i)
	}
	return keys, members
}

// Apply runs the detector on every eligible group and drops flagged rows
// from data and labels in one pass. Survivors keep their relative order.
// The input corpus is not modified.
func (f *Filter) Apply(corpus model.Corpus) (model.Corpus, []GroupReport, error) {
	if len(corpus.Data) != len(corpus.Labels) {
		return model.Corpus{}, nil, fmt.Errorf("corpus has %d data rows and %d label rows", len(corpus.Data), len(corpus.Labels))
	}

	keys, members := Groups(corpus)
	drop := make([]bool, corpus.Len())
	reports := make([]GroupReport, 0, len(keys))

	for _, key := range keys {
		idx := members[key]
		report := GroupReport{Key: key, Members: len(idx)}
		if len(idx) <= f.minGroup {
			report.Exempt = true
			reports = append(reports, report)
			continue
		}

		rows := make([][]float64, len(idx))
		for j, i := range idx {
			rows[j] = corpus.Data[i]
		}
		flagged, err := f.detector.Detect(rows)
		if err != nil {
			return model.Corpus{}, nil, fmt.Errorf("detect outliers in %s/%s: %w", key.Joint, key.Label, err)
		}
		for _, j := range flagged {
			if j < 0 || j >= len(idx) {
				return model.Corpus{}, nil, fmt.Errorf("%w: %d in group of %d", ErrIndexOutOfRange, j, len(idx))
			}
			if !drop[idx[j]] {
				drop[idx[j]] = true
				report.Removed++
			}
		}
		reports = append(reports, report)
	}

	var out model.Corpus
	for i := range corpus.Data {
		if !drop[i] {
			out.Append(corpus.Labels[i], corpus.Data[i])
		}
	}
	return out, reports, nil
}
