package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/gaitprep/internal/domain/model"
)

// MemoryStore keeps leaves in memory. It is safe for concurrent use and
// stores copies, so callers may reuse their matrices.
type MemoryStore struct {
	mu     sync.RWMutex
	leaves map[Key]*mat.Dense
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{leaves: make(map[Key]*mat.Dense)}
}

// Put stores a copy of strides under key.
func (s *MemoryStore) Put(ctx context.Context, key Key, strides *mat.Dense) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	if strides == nil || strides.IsEmpty() {
		return fmt.Errorf("put %s/%s/%s: empty array", key.Subject, key.Joint, key.Label)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves[key] = mat.DenseCopyOf(strides)
	return nil
}

// Get returns a copy of the leaf under key.
func (s *MemoryStore) Get(ctx context.Context, key Key) (*mat.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.leaves[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrNotFound, key.Subject, key.Joint, key.Label)
	}
	return mat.DenseCopyOf(m), nil
}

// Subjects lists stored subjects.
func (s *MemoryStore) Subjects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for k := range s.leaves {
		if !seen[k.Subject] {
			seen[k.Subject] = true
			out = append(out, k.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Joints lists stored joints of a subject.
func (s *MemoryStore) Joints(ctx context.Context, subject string) ([]model.Joint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[model.Joint]bool)
	var out []model.Joint
	for k := range s.leaves {
		if k.Subject == subject && !seen[k.Joint] {
			seen[k.Joint] = true
			out = append(out, k.Joint)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: subject %s", ErrNotFound, subject)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Labels lists stored labels of a subject and joint.
func (s *MemoryStore) Labels(ctx context.Context, subject string, joint model.Joint) ([]model.FinalLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.FinalLabel
	for k := range s.leaves {
		if k.Subject == subject && k.Joint == joint {
			out = append(out, k.Label)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, subject, joint)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Len returns the number of stored leaves.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leaves)
}
