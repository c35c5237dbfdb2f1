package resample

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrInsufficientData marks a stride too short for a well-posed fit.
	// Callers skip the stride and continue.
	ErrInsufficientData = errors.New("insufficient samples for interpolation")
	ErrUnknownMethod    = errors.New("unknown interpolation method")
	ErrInvalidSamples   = errors.New("invalid target sample count")
)
