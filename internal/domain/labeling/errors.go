package labeling

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	// ErrValidation marks a malformed gait event table. It is fatal for the
	// trial that carried the table only.
	ErrValidation = errors.New("invalid gait event table")
)
