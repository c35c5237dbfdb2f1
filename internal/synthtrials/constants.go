package synthtrials

// Generator defaults.
const (
	defaultCycleSamples = 100
	defaultJitter       = 8
	defaultLead         = 12
	defaultGap          = 15
	defaultSeed         = 7
)

// Event placement inside a cycle, as a fraction of its length.
const (
	ltoFraction = 0.12
	lhsFraction = 0.50
	rtoFraction = 0.62
)

// Signal shape constants, in degrees.
const (
	noiseStdDev     = 0.4
	anomalyOffset   = 45.0
	secondHarmonic  = 0.3
	minCycleSamples = 8
)

// terrainBlocks is the terrain sequence walked by every trial. Each trial
// starts at a different block so subjects cover transitions in both
// directions.
var terrainBlocks = []string{"LW1F", "RA", "LW2F", "SA", "LW3B", "RD", "LW0B", "SD"}

// cyclesPerBlock is the number of consecutive cycles walked on one terrain.
const cyclesPerBlock = 3
