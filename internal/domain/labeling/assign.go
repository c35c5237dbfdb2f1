// Package labeling turns discrete gait events into per-sample labels.
package labeling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/gaitprep/internal/domain/model"
)

// ParseCycle builds a gait cycle from a raw terrain code and its five event
// indices, rejecting codes outside the terrain vocabulary.
func ParseCycle(terrain string, indices []int) (model.GaitCycle, error) {
	code := model.TerrainCode(strings.TrimSpace(terrain))
	if _, ok := code.Activity(); !ok {
		return model.GaitCycle{}, fmt.Errorf("%w: unknown terrain code %q", ErrValidation, terrain)
	}
	if len(indices) != len(model.CyclePhases) {
		return model.GaitCycle{}, fmt.Errorf("%w: cycle has %d events, want %d", ErrValidation, len(indices), len(model.CyclePhases))
	}
	c := model.GaitCycle{Terrain: code}
	copy(c.Indices[:], indices)
	return c, nil
}

// ParsePhases checks that names spell out the cyclic phase vocabulary in
// order, e.g. a table header "rhs,lto,lhs,rto,rhs".
func ParsePhases(names []string) error {
	if len(names) != len(model.CyclePhases) {
		return fmt.Errorf("%w: expected %d phase columns, got %d", ErrValidation, len(model.CyclePhases), len(names))
	}
	for i, n := range names {
		n = strings.TrimSpace(strings.ToLower(n))
		n = strings.TrimSuffix(n, "_next")
		p, ok := model.ParsePhase(n)
		if !ok || p == model.PhaseNone {
			return fmt.Errorf("%w: unknown phase code %q", ErrValidation, names[i])
		}
		if p != model.CyclePhases[i] {
			return fmt.Errorf("%w: phase %q at position %d, want %q", ErrValidation, n, i, model.CyclePhases[i])
		}
	}
	return nil
}

// ParseTable builds a gait event table from a header of the form
// "terrain,rhs,lto,lhs,rto,rhs_next" and its records, one cycle per record.
// Cycles keep record order.
func ParseTable(header []string, records [][]string) (model.GaitEventTable, error) {
	if len(header) != len(model.CyclePhases)+1 || strings.TrimSpace(strings.ToLower(header[0])) != "terrain" {
		return model.GaitEventTable{}, fmt.Errorf("%w: header %q", ErrValidation, strings.Join(header, ","))
	}
	if err := ParsePhases(header[1:]); err != nil {
		return model.GaitEventTable{}, err
	}

	table := model.GaitEventTable{Cycles: make([]model.GaitCycle, 0, len(records))}
	for ri, rec := range records {
		if len(rec) != len(header) {
			return model.GaitEventTable{}, fmt.Errorf("%w: row %d has %d fields, want %d", ErrValidation, ri+1, len(rec), len(header))
		}
		indices := make([]int, len(model.CyclePhases))
		for j, field := range rec[1:] {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return model.GaitEventTable{}, fmt.Errorf("%w: row %d: index %q: %w", ErrValidation, ri+1, field, err)
			}
			indices[j] = v
		}
		c, err := ParseCycle(rec[0], indices)
		if err != nil {
			return model.GaitEventTable{}, fmt.Errorf("row %d: %w", ri+1, err)
		}
		table.Cycles = append(table.Cycles, c)
	}
	return table, nil
}

// Validate checks a table against a trial of n samples: known terrain codes,
// strictly increasing indices inside each cycle, cycles in recording order
// (a cycle may open on the index the previous one closed on) and every index
// inside [0, n).
func Validate(table model.GaitEventTable, n int) error {
	prevLast := -1
	for ci, c := range table.Cycles {
		if _, ok := c.Terrain.Activity(); !ok {
			return fmt.Errorf("%w: cycle %d: unknown terrain code %q", ErrValidation, ci, c.Terrain)
		}
		for j, idx := range c.Indices {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: cycle %d: index %d outside trial of %d samples", ErrValidation, ci, idx, n)
			}
			if j > 0 && idx <= c.Indices[j-1] {
				return fmt.Errorf("%w: cycle %d: index %d not after %d", ErrValidation, ci, idx, c.Indices[j-1])
			}
		}
		if c.Indices[0] < prevLast {
			return fmt.Errorf("%w: cycle %d starts at %d before previous cycle ends at %d", ErrValidation, ci, c.Indices[0], prevLast)
		}
		prevLast = c.Indices[len(c.Indices)-1]
	}
	return nil
}

// boundary is one distinct declared event index with the label it opens.
type boundary struct {
	index int
	label model.Label
	// gapAfter is set when the next boundary belongs to a non-contiguous cycle.
	gapAfter bool
}

// boundaries collapses the table into distinct, increasing event indices.
// A shared index (closing RHS of one cycle, opening RHS of the next) takes
// the label of the later cycle.
func boundaries(table model.GaitEventTable) []boundary {
	out := make([]boundary, 0, len(table.Cycles)*4+1)
	for ci, c := range table.Cycles {
		act, _ := c.Terrain.Activity()
		for j, idx := range c.Indices {
			lab := model.Label{Activity: act, Phase: model.CyclePhases[j]}
			if n := len(out); n > 0 && out[n-1].index == idx {
				out[n-1].label = lab
				continue
			}
			out = append(out, boundary{index: idx, label: lab})
		}
		if ci+1 < len(table.Cycles) {
			last := c.Indices[len(c.Indices)-1]
			next := table.Cycles[ci+1].Indices[0]
			if last+1 != next && last != next {
				out[len(out)-1].gapAfter = true
			}
		}
	}
	return out
}

// Assign labels every sample of an n-sample trial with its (activity, phase).
//
// Samples before the first or after the last declared index are none. A sample
// in [idx_j, idx_j+1) takes the label of idx_j, except samples strictly inside
// a gap between two non-contiguous cycles, which are none. The last declared
// index takes its own label. The result covers 0..n-1 exactly once.
func Assign(table model.GaitEventTable, n int) ([]model.Label, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative trial length %d", ErrValidation, n)
	}
	if err := Validate(table, n); err != nil {
		return nil, err
	}

	labels := make([]model.Label, n)
	for i := range labels {
		labels[i] = model.NoneLabel
	}

	bs := boundaries(table)
	for j := 0; j+1 < len(bs); j++ {
		b := bs[j]
		if b.gapAfter {
			labels[b.index] = b.label
			continue
		}
		for i := b.index; i < bs[j+1].index; i++ {
			labels[i] = b.label
		}
	}
	if len(bs) > 0 {
		last := bs[len(bs)-1]
		labels[last.index] = last.label
	}
	return labels, nil
}

// Activities projects the activity component of labels.
func Activities(labels []model.Label) []model.Activity {
	out := make([]model.Activity, len(labels))
	for i, l := range labels {
		out[i] = l.Activity
	}
	return out
}

// Phases projects the gait-phase component of labels.
func Phases(labels []model.Label) []model.Phase {
	out := make([]model.Phase, len(labels))
	for i, l := range labels {
		out[i] = l.Phase
	}
	return out
}
