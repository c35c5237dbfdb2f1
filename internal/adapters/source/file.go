package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/okian/gaitprep/internal/domain/model"
)

// FileSource reads trials from <root>/<subject>/<trial>/ directories holding
// kinematics.parquet and gait_cycles.csv.
type FileSource struct {
	root       string
	sampleRate float64
}

// Option applies a configuration option to the FileSource.
type Option func(*FileSource)

// WithSampleRate sets the recording rate attached to loaded trials.
func WithSampleRate(hz float64) Option {
	return func(s *FileSource) {
		if hz > 0 {
			s.sampleRate = hz
		}
	}
}

// NewFileSource creates a source rooted at root.
func NewFileSource(root string, opts ...Option) *FileSource {
	s := &FileSource{root: root, sampleRate: DefaultSampleRate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subjects lists subject directories.
func (s *FileSource) Subjects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return listDirs(s.root)
}

// Trials lists the trial directories of subject.
func (s *FileSource) Trials(ctx context.Context, subject string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := listDirs(filepath.Join(s.root, subject))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnknownSubject, subject, err)
		}
		return nil, err
	}
	return names, nil
}

// Load reads one trial directory.
func (s *FileSource) Load(ctx context.Context, subject, trial string) (model.RawTrial, error) {
	if err := ctx.Err(); err != nil {
		return model.RawTrial{}, err
	}
	dir := filepath.Join(s.root, subject, trial)
	angles, err := readKinematics(filepath.Join(dir, KinematicsFile))
	if err != nil {
		return model.RawTrial{}, fmt.Errorf("trial %s/%s: %w", subject, trial, err)
	}
	table, err := readCycles(filepath.Join(dir, CyclesFile))
	if err != nil {
		return model.RawTrial{}, fmt.Errorf("trial %s/%s: %w", subject, trial, err)
	}
	return model.RawTrial{
		Subject:    subject,
		Trial:      trial,
		SampleRate: s.sampleRate,
		Angles:     angles,
		Events:     table,
	}, nil
}

// WriteTrial stores t under <root>/<t.Subject>/<t.Trial>/.
func WriteTrial(root string, t model.RawTrial) error {
	if t.Subject == "" || t.Trial == "" {
		return fmt.Errorf("%w: empty subject or trial id", ErrMalformedTrial)
	}
	dir := filepath.Join(root, t.Subject, t.Trial)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := writeKinematics(filepath.Join(dir, KinematicsFile), t.Angles); err != nil {
		return err
	}
	return writeCycles(filepath.Join(dir, CyclesFile), t.Events)
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
