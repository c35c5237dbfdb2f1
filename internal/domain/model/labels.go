package model

import "strings"

// Phase is the per-sample gait-phase tag: the most recent canonical gait event.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseRHS        // right heel strike
	PhaseLTO        // left toe off
	PhaseLHS        // left heel strike
	PhaseRTO        // right toe off
)

var phaseNames = [...]string{"none", "rhs", "lto", "lhs", "rto"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "none"
}

// ParsePhase maps a short phase name ("rhs", "lto", ...) to a Phase.
func ParsePhase(s string) (Phase, bool) {
	for i, n := range phaseNames {
		if n == s {
			return Phase(i), true
		}
	}
	return PhaseNone, false
}

// CyclePhases is the closed cyclic phase vocabulary of one gait cycle.
// The last entry repeats the first: a cycle closes on the next heel strike.
var CyclePhases = [5]Phase{PhaseRHS, PhaseLTO, PhaseLHS, PhaseRTO, PhaseRHS}

// KeyPhase returns the phase a stride of the given side starts on, for a
// gait-event key of "hs" (heel strike) or "to" (toe off).
func KeyPhase(side Side, key string) (Phase, bool) {
	return ParsePhase(side.Prefix() + key)
}

// Activity is the per-sample ambulation context.
type Activity uint8

const (
	ActivityNone Activity = iota
	LevelWalk
	RampAscent
	RampDescent
	StairAscent
	StairDescent
)

var activityNames = [...]string{"none", "w2w", "ra2ra", "rd2rd", "sa2sa", "sd2sd"}

func (a Activity) String() string {
	if int(a) < len(activityNames) {
		return activityNames[a]
	}
	return "none"
}

// ParseActivity maps an activity name ("w2w", "ra2ra", ...) to an Activity.
func ParseActivity(s string) (Activity, bool) {
	for i, n := range activityNames {
		if n == s {
			return Activity(i), true
		}
	}
	return ActivityNone, false
}

// Prefix strips the terrain-direction suffix: "ra2ra" -> "ra".
func (a Activity) Prefix() string {
	s := a.String()
	if i := strings.IndexByte(s, '2'); i >= 0 {
		return s[:i]
	}
	return s
}

// TerrainCode is the raw terrain tag attached to a gait cycle:
// LW<section><F|B> for level walking, RA/RD for ramps, SA/SD for stairs.
type TerrainCode string

// Activity maps the terrain code onto the closed activity vocabulary.
func (t TerrainCode) Activity() (Activity, bool) {
	s := string(t)
	switch s {
	case "RA":
		return RampAscent, true
	case "RD":
		return RampDescent, true
	case "SA":
		return StairAscent, true
	case "SD":
		return StairDescent, true
	}
	if len(s) == 4 && strings.HasPrefix(s, "LW") && s[2] >= '0' && s[2] <= '4' && (s[3] == 'F' || s[3] == 'B') {
		return LevelWalk, true
	}
	return ActivityNone, false
}

// Label is the (activity, gait-phase) pair assigned to one sample.
type Label struct {
	Activity Activity
	Phase    Phase
}

// NoneLabel marks a sample not covered by declared events.
var NoneLabel = Label{Activity: ActivityNone, Phase: PhaseNone}

// GaitCycle is one labeled cycle: five event indices following CyclePhases.
type GaitCycle struct {
	Terrain TerrainCode
	Indices [5]int
}

// GaitEvent is one (sample index, event kind) pair of a GaitEventTable.
type GaitEvent struct {
	Index   int
	Phase   Phase
	Terrain TerrainCode
}

// GaitEventTable lists the gait cycles of a trial in recording order.
type GaitEventTable struct {
	Cycles []GaitCycle
}

// Events flattens the table into ordered (index, kind) pairs.
func (t GaitEventTable) Events() []GaitEvent {
	out := make([]GaitEvent, 0, len(t.Cycles)*len(CyclePhases))
	for _, c := range t.Cycles {
		for j, idx := range c.Indices {
			out = append(out, GaitEvent{Index: idx, Phase: CyclePhases[j], Terrain: c.Terrain})
		}
	}
	return out
}
