package repository

import (
	"context"
	"fmt"

	"github.com/okian/gaitprep/internal/domain/structure"
)

// PutLeaves writes every leaf and calls onWrite after each one. It stops at
// the first error.
func PutLeaves(ctx context.Context, s Store, leaves []structure.Leaf, onWrite func(structure.Leaf)) error {
	for _, leaf := range leaves {
		key := Key{Subject: leaf.Subject, Joint: leaf.Joint, Label: leaf.Label}
		if err := s.Put(ctx, key, leaf.Strides); err != nil {
			return fmt.Errorf("persist %s/%s/%s: %w", leaf.Subject, leaf.Joint, leaf.Label, err)
		}
		if onWrite != nil {
			onWrite(leaf)
		}
	}
	return nil
}

// LoadLeaves walks the store subject -> joint -> label and reads every leaf
// in lexical order. Missing or unreadable artifacts propagate as errors.
func LoadLeaves(ctx context.Context, s Store) ([]structure.Leaf, error) {
	subjects, err := s.Subjects(ctx)
	if err != nil {
		return nil, err
	}

	var out []structure.Leaf
	for _, subject := range subjects {
		joints, err := s.Joints(ctx, subject)
		if err != nil {
			return nil, err
		}
		for _, joint := range joints {
			labels, err := s.Labels(ctx, subject, joint)
			if err != nil {
				return nil, err
			}
			for _, label := range labels {
				m, err := s.Get(ctx, Key{Subject: subject, Joint: joint, Label: label})
				if err != nil {
					return nil, err
				}
				out = append(out, structure.Leaf{Subject: subject, Joint: joint, Label: label, Strides: m})
			}
		}
	}
	return out, nil
}
