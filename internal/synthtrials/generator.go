package synthtrials

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/okian/gaitprep/internal/adapters/source"
	"github.com/okian/gaitprep/internal/domain/model"
	"github.com/okian/gaitprep/pkg/logger"
)

// ErrInvalidConfig reports unusable generator settings.
var ErrInvalidConfig = errors.New("invalid generator config")

// profile shapes the sagittal angle of one joint.
type profile struct {
	base  float64
	amp   float64
	shift float64 // fraction of a cycle
}

var profiles = map[model.Joint]profile{
	model.RightKnee:  {base: 30, amp: 30, shift: 0},
	model.LeftKnee:   {base: 30, amp: 30, shift: 0.5},
	model.RightAnkle: {base: 0, amp: 15, shift: 0.1},
	model.LeftAnkle:  {base: 0, amp: 15, shift: 0.6},
	model.RightHip:   {base: 10, amp: 20, shift: 0.25},
	model.LeftHip:    {base: 10, amp: 20, shift: 0.75},
}

// SubjectName returns the raw id of the index-th subject (0-based).
func SubjectName(index int) string { return fmt.Sprintf("SUB%02d", index+1) }

// TrialName returns the id of the index-th trial (0-based).
func TrialName(index int) string { return fmt.Sprintf("trial%02d", index+1) }

func (c Config) validate() error {
	switch {
	case c.Subjects < 1 || c.Trials < 1 || c.Cycles < 1:
		return fmt.Errorf("%w: subjects, trials and cycles must be positive", ErrInvalidConfig)
	case c.Jitter < 0 || c.Lead < 0 || c.Gap < 0:
		return fmt.Errorf("%w: jitter, lead and gap must not be negative", ErrInvalidConfig)
	case c.CycleSamples-c.Jitter < minCycleSamples:
		return fmt.Errorf("%w: cycles of %d±%d samples, need at least %d", ErrInvalidConfig, c.CycleSamples, c.Jitter, minCycleSamples)
	}
	return nil
}

// Generate builds every trial of every subject. The same Config always
// yields the same trials.
func Generate(cfg Config) ([]model.RawTrial, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	out := make([]model.RawTrial, 0, cfg.Subjects*cfg.Trials)
	for s := 0; s < cfg.Subjects; s++ {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(s))) //nolint:gosec // reproducible synthetic data
		for t := 0; t < cfg.Trials; t++ {
			out = append(out, generateTrial(rng, cfg, SubjectName(s), t))
		}
	}
	return out, nil
}

func generateTrial(rng *rand.Rand, cfg Config, subject string, t int) model.RawTrial {
	table := model.GaitEventTable{Cycles: make([]model.GaitCycle, 0, cfg.Cycles)}
	pos := cfg.Lead
	for c := 0; c < cfg.Cycles; c++ {
		if cfg.Gap > 0 && c > 0 && c == cfg.Cycles/2 {
			pos += cfg.Gap
		}
		l := cfg.CycleSamples
		if cfg.Jitter > 0 {
			l += rng.Intn(2*cfg.Jitter+1) - cfg.Jitter
		}
		fl := float64(l)
		terrain := terrainBlocks[(c/cyclesPerBlock+t)%len(terrainBlocks)]
		table.Cycles = append(table.Cycles, model.GaitCycle{
			Terrain: model.TerrainCode(terrain),
			Indices: [5]int{pos, pos + int(ltoFraction*fl), pos + int(lhsFraction*fl), pos + int(rtoFraction*fl), pos + l},
		})
		pos += l
	}
	n := pos + cfg.Lead + 1

	phase := cyclePhase(table, n, float64(cfg.CycleSamples))

	angles := make(map[model.Joint]model.AngleSeries, len(model.Joints))
	for _, j := range model.Joints {
		p := profiles[j]
		series := make(model.AngleSeries, n)
		for i := range series {
			w := 2 * math.Pi * (phase[i] + p.shift)
			series[i] = [3]float64{
				0.2 * p.amp * math.Sin(w+1),
				0.1 * p.amp * math.Cos(w),
				p.base + p.amp*(math.Sin(w)+secondHarmonic*math.Sin(2*w)) + rng.NormFloat64()*noiseStdDev,
			}
		}
		angles[j] = series
	}

	if cfg.Anomaly && t == 0 && len(table.Cycles) > 1 {
		c := table.Cycles[1]
		for _, j := range model.Joints {
			for i := c.Indices[0]; i < c.Indices[4]; i++ {
				angles[j][i][model.Sagittal] += anomalyOffset
			}
		}
	}

	return model.RawTrial{
		Subject:    subject,
		Trial:      TrialName(t),
		SampleRate: source.DefaultSampleRate,
		Angles:     angles,
		Events:     table,
	}
}

// cyclePhase returns a continuous gait phase per sample, counted in cycles.
// Samples outside declared cycles advance at the nominal rate.
func cyclePhase(table model.GaitEventTable, n int, nominal float64) []float64 {
	phase := make([]float64, n)
	if len(table.Cycles) == 0 {
		for i := range phase {
			phase[i] = float64(i) / nominal
		}
		return phase
	}

	first := table.Cycles[0].Indices[0]
	for i := 0; i < first && i < n; i++ {
		phase[i] = float64(i-first) / nominal
	}
	for ci, c := range table.Cycles {
		lo, hi := c.Indices[0], c.Indices[4]
		span := float64(hi - lo)
		for i := lo; i < hi && i < n; i++ {
			phase[i] = float64(ci) + float64(i-lo)/span
		}
		next := n
		if ci+1 < len(table.Cycles) {
			next = table.Cycles[ci+1].Indices[0]
		}
		for i := hi; i < next && i < n; i++ {
			phase[i] = float64(ci+1) + float64(i-hi)/nominal
		}
	}
	return phase
}

// Write generates the dataset and stores it under root in the trial layout.
func Write(ctx context.Context, root string, cfg Config) (Stats, error) {
	trials, err := Generate(cfg)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	stats.Subjects = cfg.Subjects
	for _, t := range trials {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := source.WriteTrial(root, t); err != nil {
			return stats, fmt.Errorf("write %s/%s: %w", t.Subject, t.Trial, err)
		}
		stats.Trials++
		stats.Cycles += len(t.Events.Cycles)
		stats.Samples += t.Len()
	}

	logger.Get().Info(ctx, "synthetic trials written",
		logger.String("root", root),
		logger.Int("subjects", stats.Subjects),
		logger.Int("trials", stats.Trials),
		logger.Int("cycles", stats.Cycles),
		logger.Int("samples", stats.Samples),
	)
	return stats, nil
}
