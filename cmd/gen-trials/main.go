package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/gaitprep/internal/synthtrials"
)

func main() {
	def := synthtrials.DefaultConfig()
	var (
		root         = flag.String("root", "data/raw", "Dataset root to write into")
		subjects     = flag.Int("subjects", def.Subjects, "Number of subjects")
		trials       = flag.Int("trials", def.Trials, "Trials per subject")
		cycles       = flag.Int("cycles", def.Cycles, "Gait cycles per trial")
		cycleSamples = flag.Int("cycle-samples", def.CycleSamples, "Nominal samples per gait cycle")
		jitter       = flag.Int("jitter", def.Jitter, "Maximum +/- deviation of a cycle length")
		gap          = flag.Int("gap", def.Gap, "Unlabeled samples inserted mid-trial, 0 disables")
		anomaly      = flag.Bool("anomaly", def.Anomaly, "Distort one cycle in each subject's first trial")
		seed         = flag.Int64("seed", def.Seed, "Base random seed")
		logFile      = flag.String("log", "", "Also write logs to this file")
		verbose      = flag.Bool("verbose", false, "Enable debug logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synthtrials.ShowHelp()
		return
	}

	// Setup logging
	if err := synthtrials.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := def
	cfg.Subjects = *subjects
	cfg.Trials = *trials
	cfg.Cycles = *cycles
	cfg.CycleSamples = *cycleSamples
	cfg.Jitter = *jitter
	cfg.Gap = *gap
	cfg.Anomaly = *anomaly
	cfg.Seed = *seed

	if _, err := synthtrials.Write(ctx, *root, cfg); err != nil {
		os.Stderr.WriteString("Generation failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
