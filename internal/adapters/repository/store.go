// Package repository defines the persisted stride store interface, its
// implementations and the flat corpus export.
package repository

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/gaitprep/internal/domain/model"
)

// Key addresses one persisted stride array.
type Key struct {
	Subject string
	Joint   model.Joint
	Label   model.FinalLabel
}

// Store provides read/write access to persisted stride arrays laid out as
// subject -> joint -> label.
type Store interface {
	// Put writes one leaf, creating parent levels as needed. Existing
	// levels are reused and an existing leaf is replaced.
	Put(ctx context.Context, key Key, strides *mat.Dense) error

	// Get reads one leaf.
	// Returns ErrNotFound if the leaf does not exist.
	Get(ctx context.Context, key Key) (*mat.Dense, error)

	// Subjects lists subject names in lexical order.
	Subjects(ctx context.Context) ([]string, error)

	// Joints lists the joints stored for a subject in lexical order.
	Joints(ctx context.Context, subject string) ([]model.Joint, error)

	// Labels lists the labels stored for a subject and joint in lexical order.
	Labels(ctx context.Context, subject string, joint model.Joint) ([]model.FinalLabel, error)
}
