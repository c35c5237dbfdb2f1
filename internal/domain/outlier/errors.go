package outlier

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrUnknownStrategy is returned at construction for an unrecognized
	// strategy name, before any data flows.
	ErrUnknownStrategy = errors.New("unknown outlier strategy")
	ErrInvalidOption   = errors.New("invalid outlier option")
	ErrRaggedInput     = errors.New("rows have different widths")
	ErrDegenerate      = errors.New("degenerate covariance estimate")
	ErrIndexOutOfRange = errors.New("flagged index out of range")
)
