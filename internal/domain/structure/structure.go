// Package structure reorganizes the flat stride corpus into a nested
// subject -> joint -> label dataset ready for persistence.
package structure

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/gaitprep/internal/domain/model"
)

// Dataset maps subject -> joint -> label -> stride matrix (one row per
// stride).
type Dataset map[string]map[model.Joint]map[model.FinalLabel]*mat.Dense

// Leaf is one persisted artifact of a Dataset.
type Leaf struct {
	Subject string
	Joint   model.Joint
	Label   model.FinalLabel
	Strides *mat.Dense
}

// Build groups the corpus rows by the subject, joint and label values
// actually observed, in one indexed pass. Rows keep their corpus order
// within a leaf.
func Build(corpus model.Corpus) (Dataset, error) {
	if len(corpus.Data) != len(corpus.Labels) {
		return nil, fmt.Errorf("%w: %d data, %d labels", ErrCorpusMismatch, len(corpus.Data), len(corpus.Labels))
	}

	index := make(map[model.CorpusLabel][]int)
	for i, l := range corpus.Labels {
		index[l] = append(index[l], i)
	}

	ds := make(Dataset)
	for key, rows := range index {
		m, err := stack(corpus.Data, rows)
		if err != nil {
			return nil, fmt.Errorf("%s/%s/%s: %w", key.Subject, key.Joint, key.Label, err)
		}
		joints, ok := ds[key.Subject]
		if !ok {
			joints = make(map[model.Joint]map[model.FinalLabel]*mat.Dense)
			ds[key.Subject] = joints
		}
		labels, ok := joints[key.Joint]
		if !ok {
			labels = make(map[model.FinalLabel]*mat.Dense)
			joints[key.Joint] = labels
		}
		labels[key.Label] = m
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func stack(data [][]float64, rows []int) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyLeaf
	}
	width := len(data[rows[0]])
	if width == 0 {
		return nil, ErrEmptyLeaf
	}
	flat := make([]float64, 0, len(rows)*width)
	for _, i := range rows {
		if len(data[i]) != width {
			return nil, fmt.Errorf("%w: %d vs %d", ErrRaggedLeaf, len(data[i]), width)
		}
		flat = append(flat, data[i]...)
	}
	return mat.NewDense(len(rows), width, flat), nil
}

// Validate rejects any leaf holding zero strides.
func (d Dataset) Validate() error {
	for subject, joints := range d {
		for joint, labels := range joints {
			for label, m := range labels {
				if m == nil || m.IsEmpty() {
					return fmt.Errorf("%w: %s/%s/%s", ErrEmptyLeaf, subject, joint, label)
				}
			}
		}
	}
	return nil
}

// Leaves returns every leaf sorted by subject, joint and label.
func (d Dataset) Leaves() []Leaf {
	var out []Leaf
	for subject, joints := range d {
		for joint, labels := range joints {
			for label, m := range labels {
				out = append(out, Leaf{Subject: subject, Joint: joint, Label: label, Strides: m})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Joint != b.Joint {
			return a.Joint < b.Joint
		}
		return a.Label < b.Label
	})
	return out
}

// Rows returns the total number of strides in the dataset.
func (d Dataset) Rows() int {
	n := 0
	for _, leaf := range d.Leaves() {
		r, _ := leaf.Strides.Dims()
		n += r
	}
	return n
}

// Flatten converts leaves back into a flat corpus, in Leaves order.
func Flatten(leaves []Leaf) model.Corpus {
	var c model.Corpus
	for _, leaf := range leaves {
		r, _ := leaf.Strides.Dims()
		label := model.CorpusLabel{Subject: leaf.Subject, Joint: leaf.Joint, Label: leaf.Label}
		for i := 0; i < r; i++ {
			c.Append(label, mat.Row(nil, i, leaf.Strides))
		}
	}
	return c
}
