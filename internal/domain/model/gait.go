// Package model contains the gait domain types passed between pipeline stages.
package model

import "strings"

// Side identifies the body side a joint (and its strides) belongs to.
type Side uint8

const (
	SideRight Side = iota
	SideLeft
)

func (s Side) String() string {
	if s == SideLeft {
		return "Left"
	}
	return "Right"
}

// Prefix is the single-letter phase prefix for the side ("r" or "l").
func (s Side) Prefix() string {
	if s == SideLeft {
		return "l"
	}
	return "r"
}

// Joint names a recorded joint, e.g. "Right_Knee".
type Joint string

// Fixed joint vocabulary delivered by a RawTrialSource.
const (
	RightKnee  Joint = "Right_Knee"
	LeftKnee   Joint = "Left_Knee"
	RightAnkle Joint = "Right_Ankle"
	LeftAnkle  Joint = "Left_Ankle"
	RightHip   Joint = "Right_Hip"
	LeftHip    Joint = "Left_Hip"
)

// Joints lists the joint vocabulary in canonical order.
var Joints = []Joint{RightKnee, LeftKnee, RightAnkle, LeftAnkle, RightHip, LeftHip}

// Side derives the body side from the joint name prefix.
func (j Joint) Side() Side {
	if strings.HasPrefix(string(j), "Left") {
		return SideLeft
	}
	return SideRight
}

// Known reports whether j belongs to the fixed joint vocabulary.
func (j Joint) Known() bool {
	for _, k := range Joints {
		if k == j {
			return true
		}
	}
	return false
}

// Axis indexes one of the three Euler angle components.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Sagittal is the flexion/extension component used for stride vectors.
const Sagittal = AxisZ

// AngleSeries holds N samples of a 3-axis joint angle (degrees).
type AngleSeries [][3]float64

// Component copies one axis out of the series.
func (a AngleSeries) Component(ax Axis) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = v[ax]
	}
	return out
}

// RawTrial is one recorded walking trial. Inputs are treated as immutable.
type RawTrial struct {
	Subject    string
	Trial      string
	SampleRate float64
	Angles     map[Joint]AngleSeries
	Events     GaitEventTable
}

// Len returns the number of samples. All joints share the same length.
func (t RawTrial) Len() int {
	for _, j := range Joints {
		if s, ok := t.Angles[j]; ok {
			return len(s)
		}
	}
	for _, s := range t.Angles {
		return len(s)
	}
	return 0
}
