// Package synthtrials generates deterministic synthetic walking trials in the
// on-disk trial layout, for smoke runs and integration tests.
package synthtrials

// Config holds configuration for the generator.
type Config struct {
	Subjects     int   // Number of subjects
	Trials       int   // Trials per subject
	Cycles       int   // Gait cycles per trial
	CycleSamples int   // Nominal samples per gait cycle
	Jitter       int   // Maximum +/- deviation of a cycle length
	Lead         int   // Unlabeled samples before the first and after the last cycle
	Gap          int   // Samples skipped between two cycles mid-trial; 0 disables
	Anomaly      bool  // Distort one cycle in each subject's first trial
	Seed         int64 // Base seed; subject i uses Seed+i
}

// Stats summarizes one generation.
type Stats struct {
	Subjects int
	Trials   int
	Cycles   int
	Samples  int
}

// DefaultConfig returns a small dataset that exercises every stage.
func DefaultConfig() Config {
	return Config{
		Subjects:     3,
		Trials:       2,
		Cycles:       12,
		CycleSamples: defaultCycleSamples,
		Jitter:       defaultJitter,
		Lead:         defaultLead,
		Gap:          defaultGap,
		Anomaly:      true,
		Seed:         defaultSeed,
	}
}
