// Package outlier detects and removes anomalous strides within each
// (joint, label) group of the corpus.
package outlier

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical strategy names.
const (
	IsolationForest    = "iforest"
	MinCovDet          = "mcd"
	LocalOutlierFactor = "lof"
)

// Default detector configuration constants.
const (
	DefaultSeed          = 42
	DefaultTrees         = 100
	DefaultSampleSize    = 256
	DefaultContamination = 0.1
	DefaultNeighbors     = 20
	DefaultStarts        = 10

	// anomalyScoreThreshold flags isolation scores above it.
	anomalyScoreThreshold = 0.5
	// lofThreshold flags local outlier factors above it.
	lofThreshold = 1.5
)

var aliases = map[string]string{
	"iforest":              IsolationForest,
	"isolation_forest":     IsolationForest,
	"mcd":                  MinCovDet,
	"robust_covariance":    MinCovDet,
	"elliptic_envelope":    MinCovDet,
	"lof":                  LocalOutlierFactor,
	"local_outlier_factor": LocalOutlierFactor,
}

// Detector flags anomalous members of one group.
type Detector interface {
	// Name returns the canonical strategy name.
	Name() string
	// Detect returns the ascending indices of anomalous rows. All rows must
	// have the same width. Empty input yields an empty result.
	Detect(rows [][]float64) ([]int, error)
}

// Option applies a configuration option to a detector.
type Option func(*settings)

type settings struct {
	seed          int64
	trees         int
	sampleSize    int
	contamination float64
	neighbors     int
	starts        int
}

// WithSeed seeds the stochastic strategies.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// WithTrees sets the isolation forest size.
func WithTrees(n int) Option {
	return func(s *settings) {
		s.trees = n
	}
}

// WithSampleSize sets the per-tree subsample size of the isolation forest.
func WithSampleSize(n int) Option {
	return func(s *settings) {
		s.sampleSize = n
	}
}

// WithContamination sets the expected outlier share for the covariance
// strategy.
func WithContamination(c float64) Option {
	return func(s *settings) {
		s.contamination = c
	}
}

// WithNeighbors sets k for the local outlier factor.
func WithNeighbors(k int) Option {
	return func(s *settings) {
		s.neighbors = k
	}
}

// WithStarts sets the number of random starts of the covariance search.
func WithStarts(n int) Option {
	return func(s *settings) {
		s.starts = n
	}
}

func (s settings) validate() error {
	switch {
	case s.trees < 1:
		return fmt.Errorf("%w: trees must be positive, got %d", ErrInvalidOption, s.trees)
	case s.sampleSize < 2:
		return fmt.Errorf("%w: sample size must be at least 2, got %d", ErrInvalidOption, s.sampleSize)
	case s.contamination <= 0 || s.contamination > 0.5:
		return fmt.Errorf("%w: contamination must be in (0, 0.5], got %g", ErrInvalidOption, s.contamination)
	case s.neighbors < 1:
		return fmt.Errorf("%w: neighbors must be positive, got %d", ErrInvalidOption, s.neighbors)
	case s.starts < 1:
		return fmt.Errorf("%w: starts must be positive, got %d", ErrInvalidOption, s.starts)
	}
	return nil
}

// Canonical resolves a strategy name or alias, case-insensitively.
func Canonical(name string) (string, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	canonical, ok := aliases[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return canonical, nil
}

// Strategies lists the accepted names, aliases included.
func Strategies() []string {
	out := make([]string, 0, len(aliases))
	for name := range aliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// New builds the detector for the named strategy.
func New(name string, opts ...Option) (Detector, error) {
	canonical, err := Canonical(name)
	if err != nil {
		return nil, err
	}

	s := settings{
		seed:          DefaultSeed,
		trees:         DefaultTrees,
		sampleSize:    DefaultSampleSize,
		contamination: DefaultContamination,
		neighbors:     DefaultNeighbors,
		starts:        DefaultStarts,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	switch canonical {
	case IsolationForest:
		return &isolationForest{trees: s.trees, sampleSize: s.sampleSize, seed: s.seed}, nil
	case MinCovDet:
		return &minCovDet{contamination: s.contamination, starts: s.starts, seed: s.seed}, nil
	default:
		return &localOutlierFactor{neighbors: s.neighbors}, nil
	}
}

// shape returns the row count and common width of rows.
func shape(rows [][]float64) (int, int, error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}
	width := len(rows[0])
	if width == 0 {
		return 0, 0, fmt.Errorf("%w: empty row", ErrRaggedInput)
	}
	for i, r := range rows {
		if len(r) != width {
			return 0, 0, fmt.Errorf("%w: row %d has %d values, want %d", ErrRaggedInput, i, len(r), width)
		}
	}
	return len(rows), width, nil
}
