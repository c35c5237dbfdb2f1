// Package config defines pipeline configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and GAITPREP_ env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/gaitprep/internal/domain/outlier"
	"github.com/okian/gaitprep/internal/domain/resample"
)

// Run modes.
const (
	ModeAll       = "all"
	ModeNormalize = "normalize"
	ModeClean     = "clean"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Mode selects the stages to run: all, normalize or clean.
	Mode string `koanf:"mode"`

	// DatasetRoot holds one directory per subject of raw trials.
	DatasetRoot string `koanf:"dataset_root"`

	// NormalizedDir receives the normalized corpus (AB<nn> subjects).
	NormalizedDir string `koanf:"normalized_dir"`

	// CleanDir receives the filtered, structured corpus.
	CleanDir string `koanf:"clean_dir"`

	// FlatCorpusPath, when set, receives a parquet export of the flat
	// corpus before filtering.
	FlatCorpusPath string `koanf:"flat_corpus_path"`

	// CatalogPath, when set, records runs and artifacts in SQLite.
	CatalogPath string `koanf:"catalog_path"`

	// MetricsTextfile, when set, receives a Prometheus textfile dump at the
	// end of the run.
	MetricsTextfile string `koanf:"metrics_textfile"`

	// Samples is K, the fixed length of every resampled stride.
	Samples int `koanf:"samples"`

	// GaitEventKey selects the stride start event: hs or to.
	GaitEventKey string `koanf:"gait_event_key"`

	// Axis selects the angle component (0..2); 2 is sagittal.
	Axis int `koanf:"axis"`

	// MinStrideSamples is the shortest stride accepted for resampling.
	MinStrideSamples int `koanf:"min_stride_samples"`

	// Interpolation names the resampling method.
	Interpolation string `koanf:"interpolation"`

	// OutlierStrategy names the anomaly detector: iforest, mcd or lof.
	OutlierStrategy string `koanf:"outlier_strategy"`

	// OutlierSeed seeds the stochastic detectors.
	OutlierSeed int64 `koanf:"outlier_seed"`

	// OutlierMinGroup is the largest group size exempt from filtering.
	OutlierMinGroup int `koanf:"outlier_min_group"`

	// WorkerCount sets the number of subject workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the subject job queue.
	QueueSize int `koanf:"queue_size"`

	// SampleRateHz is assumed for trials that do not carry a rate.
	SampleRateHz float64 `koanf:"sample_rate_hz"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Mode:             ModeAll,
		DatasetRoot:      "./data/raw",
		NormalizedDir:    "./data/normalized",
		CleanDir:         "./data/clean",
		Samples:          50,
		GaitEventKey:     "hs",
		Axis:             2,
		MinStrideSamples: 4,
		Interpolation:    "cubic",
		OutlierStrategy:  "iforest",
		OutlierSeed:      42,
		OutlierMinGroup:  5,
		WorkerCount:      1,
		QueueSize:        64,
		SampleRateHz:     200,
	}
}

// Validate checks value ranges and the paths each mode needs.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAll, ModeNormalize, ModeClean:
	default:
		return fmt.Errorf("%w: mode %q (want all, normalize or clean)", ErrInvalidConfig, c.Mode)
	}
	if c.Mode != ModeClean && c.DatasetRoot == "" {
		return fmt.Errorf("%w: %w: dataset_root", ErrInvalidConfig, ErrMissingPath)
	}
	if c.NormalizedDir == "" {
		return fmt.Errorf("%w: %w: normalized_dir", ErrInvalidConfig, ErrMissingPath)
	}
	if c.Mode != ModeNormalize && c.CleanDir == "" {
		return fmt.Errorf("%w: %w: clean_dir", ErrInvalidConfig, ErrMissingPath)
	}
	if c.Samples < 2 {
		return fmt.Errorf("%w: samples must be at least 2, got %d", ErrInvalidConfig, c.Samples)
	}
	if c.GaitEventKey != "hs" && c.GaitEventKey != "to" {
		return fmt.Errorf("%w: gait_event_key %q (want hs or to)", ErrInvalidConfig, c.GaitEventKey)
	}
	if c.Axis < 0 || c.Axis > 2 {
		return fmt.Errorf("%w: axis must be 0, 1 or 2, got %d", ErrInvalidConfig, c.Axis)
	}
	if c.MinStrideSamples < 1 {
		return fmt.Errorf("%w: min_stride_samples must be positive, got %d", ErrInvalidConfig, c.MinStrideSamples)
	}
	if c.OutlierMinGroup < 0 {
		return fmt.Errorf("%w: outlier_min_group must not be negative, got %d", ErrInvalidConfig, c.OutlierMinGroup)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("%w: sample_rate_hz must be positive, got %g", ErrInvalidConfig, c.SampleRateHz)
	}
	if !slices.Contains(resample.Methods(), strings.ToLower(strings.TrimSpace(c.Interpolation))) {
		return fmt.Errorf("%w: interpolation %q (want one of %s)", ErrInvalidConfig, c.Interpolation, strings.Join(resample.Methods(), ", "))
	}
	if _, err := outlier.Canonical(c.OutlierStrategy); err != nil {
		return fmt.Errorf("%w: outlier_strategy %q (want one of %s)", ErrInvalidConfig, c.OutlierStrategy, strings.Join(outlier.Strategies(), ", "))
	}
	return nil
}
