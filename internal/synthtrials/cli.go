package synthtrials

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/gaitprep/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger. When logFile is set, output is
// written to both stdout and the file.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return nil
}

// ShowHelp prints usage information for the trial generator.
func ShowHelp() {
	os.Stdout.WriteString(`Synthetic Gait Trial Generator
==============================

Writes deterministic walking trials in the dataset layout read by gaitprep:
<root>/<subject>/<trial>/kinematics.parquet and gait_cycles.csv.

Usage:
  go run ./cmd/gen-trials [options]

Options:
  -root string
        Dataset root to write into (default "data/raw")
  -subjects int
        Number of subjects (default 3)
  -trials int
        Trials per subject (default 2)
  -cycles int
        Gait cycles per trial (default 12)
  -cycle-samples int
        Nominal samples per gait cycle (default 100)
  -jitter int
        Maximum +/- deviation of a cycle length (default 8)
  -gap int
        Unlabeled samples inserted mid-trial, 0 disables (default 15)
  -anomaly
        Distort one cycle in each subject's first trial (default true)
  -seed int
        Base random seed (default 7)
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Small dataset for a smoke run
  go run ./cmd/gen-trials -root /tmp/gait

  # Larger, clean dataset
  go run ./cmd/gen-trials -subjects 10 -cycles 40 -anomaly=false
`)
}
