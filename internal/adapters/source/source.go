// Package source loads raw walking trials for the pipeline.
package source

import (
	"context"

	"github.com/okian/gaitprep/internal/domain/model"
)

// File names inside a trial directory.
const (
	KinematicsFile = "kinematics.parquet"
	CyclesFile     = "gait_cycles.csv"
)

// DefaultSampleRate is the recording rate assumed when none is configured.
const DefaultSampleRate = 200.0

// Source delivers raw trials grouped by subject.
type Source interface {
	// Subjects lists subject ids in lexical order.
	Subjects(ctx context.Context) ([]string, error)

	// Trials lists the trial ids of a subject in lexical order.
	Trials(ctx context.Context, subject string) ([]string, error)

	// Load reads one trial. Malformed content is reported with
	// ErrMalformedTrial or labeling.ErrValidation so callers can skip the
	// trial and keep going.
	Load(ctx context.Context, subject, trial string) (model.RawTrial, error)
}
