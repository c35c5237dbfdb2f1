package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/gaitprep/internal/domain/model"
)

// MemorySource serves trials held in memory.
type MemorySource struct {
	mu     sync.RWMutex
	trials map[string][]model.RawTrial
}

// NewMemorySource creates a source holding trials.
func NewMemorySource(trials ...model.RawTrial) *MemorySource {
	s := &MemorySource{trials: make(map[string][]model.RawTrial)}
	for _, t := range trials {
		s.Add(t)
	}
	return s
}

// Add registers a trial under its subject.
func (s *MemorySource) Add(t model.RawTrial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trials[t.Subject] = append(s.trials[t.Subject], t)
}

// Subjects lists subjects in lexical order.
func (s *MemorySource) Subjects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.trials))
	for subject := range s.trials {
		out = append(out, subject)
	}
	sort.Strings(out)
	return out, nil
}

// Trials lists the trial ids of subject in lexical order.
func (s *MemorySource) Trials(ctx context.Context, subject string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ts, ok := s.trials[subject]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Trial)
	}
	sort.Strings(out)
	return out, nil
}

// Load returns one stored trial.
func (s *MemorySource) Load(ctx context.Context, subject, trial string) (model.RawTrial, error) {
	if err := ctx.Err(); err != nil {
		return model.RawTrial{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trials[subject] {
		if t.Trial == trial {
			return t, nil
		}
	}
	return model.RawTrial{}, fmt.Errorf("%w: %s/%s", ErrUnknownTrial, subject, trial)
}
